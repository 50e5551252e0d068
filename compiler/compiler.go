// Package compiler turns a jsonschema.Schema into an immutable Validator.
//
// Compilation is a single recursive pass: the property builder walks
// properties, the type resolver classifies each node, primitives, compositions
// and multi-type dispatchers are built per node, and every if/then/else block
// is compiled into chain-guarded rules attached to the keys it constrains.
package compiler

import (
	"fmt"
	"maps"

	"github.com/go-faster/errors"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/i18n"
	"github.com/reoring/skemac/jsonschema"
)

// Options configures compilation. The zero value is ready to use.
type Options struct {
	// Messages supplies custom messages; nil or a miss falls back to Translator.
	Messages skemac.MessageResolver
	// Translator renders default messages; nil uses i18n.Current().
	Translator i18n.Translator
	// Tracer receives compile and validation events; nil disables tracing.
	Tracer skemac.Tracer
}

type compiler struct {
	messages   skemac.MessageResolver
	translator i18n.Translator
	tracer     skemac.Tracer
}

// Compile builds a Validator for s. The last Options wins. Failures are
// *skemac.CompileError values (ErrMissingType, ErrUnsupportedType) wrapped
// with the property path that led to them, or pattern compilation errors.
func Compile(s *jsonschema.Schema, opts ...Options) (*Validator, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	c := &compiler{messages: opt.Messages, translator: opt.Translator, tracer: opt.Tracer}
	if c.translator == nil {
		c.translator = i18n.Current()
	}
	if s == nil {
		return nil, &skemac.CompileError{Pointer: "/", Keyword: "type", Err: skemac.ErrMissingType}
	}
	root, err := c.rule(c.newField("", s, nil), s, "")
	if err != nil {
		return nil, errors.Wrap(err, "compile schema")
	}
	return &Validator{root: root, tracer: opt.Tracer, schema: s}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(s *jsonschema.Schema, opts ...Options) *Validator {
	v, err := Compile(s, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

func (c *compiler) trace(event string, keyvals ...any) {
	if c.tracer != nil {
		c.tracer.Trace(event, keyvals...)
	}
}

// newField derives presence facts for key from the parent's required and
// nullable lists.
func (c *compiler) newField(key string, node, parent *jsonschema.Schema) field {
	f := field{
		key:      key,
		label:    i18n.Label(node.Title, key),
		required: parent.IsRequired(key),
		nullable: parent.IsNullable(key),
	}
	f.requiredMsg = c.message("required", f, nil)
	f.nullMsg = c.message("nullable", f, nil)
	return f
}

// childField is the field of a sub-schema validating the same value (composition
// children, type candidates) or an element of it (array items).
func (c *compiler) childField(parent field, node *jsonschema.Schema) field {
	f := parent.optional()
	if node.Title != "" {
		f.label = node.Title
		f.requiredMsg = c.message("required", f, nil)
		f.nullMsg = c.message("nullable", f, nil)
	}
	return f
}

// message resolves the text of an issue at compile time: the MessageResolver
// first, then the translator's default phrase.
func (c *compiler) message(keyword string, f field, params map[string]any) string {
	p := make(map[string]any, len(params)+2)
	maps.Copy(p, params)
	p["label"] = f.label
	p["key"] = f.key
	if c.messages != nil {
		if m, ok := c.messages.Message(keyword, f.key, p); ok {
			return m
		}
	}
	data := make(map[string]string, len(p))
	for k, v := range p {
		data[k] = fmt.Sprint(v)
	}
	return c.translator.Message(keyword, data)
}

// rule compiles node for field f, dispatching on its resolved type declaration.
func (c *compiler) rule(f field, node *jsonschema.Schema, ptr string) (rule, error) {
	d, err := resolveAt(node, pointer(ptr))
	if err != nil {
		return nil, err
	}
	switch d.Form {
	case FormComposition:
		return c.composition(f, node, d, ptr)
	case FormMulti:
		return c.dispatch(f, node, d.Kinds, ptr)
	case FormSingle:
		return c.typed(f, node, d.Kinds[0], ptr)
	}
	return nil, errors.Errorf("unhandled type form %s", d.Form)
}

// pointer renders a schema JSON Pointer, "/" for the root.
func pointer(ptr string) string {
	if ptr == "" {
		return "/"
	}
	return ptr
}

func join(ptr string, tokens ...string) string {
	for _, t := range tokens {
		ptr += "/" + skemac.EscapePointerToken(t)
	}
	return ptr
}
