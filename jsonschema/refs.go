package jsonschema

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	skemac "github.com/reoring/skemac"
	eng "github.com/reoring/skemac/internal/engine"
)

var (
	// ErrUnresolvedRef is returned for a $ref that does not point into the document.
	ErrUnresolvedRef = errors.New("unresolved $ref")
	// ErrCyclicRef is returned when $ref expansion would never terminate.
	ErrCyclicRef = errors.New("cyclic $ref")
)

// Dereference expands local $ref values ("#/$defs/x", "#/definitions/x" or any
// local JSON Pointer) so the compiler only ever sees a self-contained tree.
// Sibling keywords next to a $ref win over the referenced ones. Definition
// containers are dropped from the output.
func Dereference(doc any) (any, error) {
	r := &resolver{root: doc, active: map[string]bool{}}
	return r.walk(doc)
}

type resolver struct {
	root   any
	active map[string]bool
}

func isDefinitions(k string) bool { return k == "$defs" || k == "definitions" }

func (r *resolver) walk(v any) (any, error) {
	switch t := v.(type) {
	case *eng.Object:
		var base *eng.Object
		if raw, ok := t.Get("$ref"); ok {
			ref, isStr := raw.(string)
			if !isStr {
				return nil, errors.Errorf("$ref must be a string, got %T", raw)
			}
			expanded, err := r.expand(ref)
			if err != nil {
				return nil, err
			}
			base = toOrdered(expanded)
		}
		out := eng.NewObject()
		if base != nil {
			for k, e := range base.All() {
				out.Set(k, e)
			}
		}
		for k, e := range t.All() {
			if k == "$ref" || isDefinitions(k) {
				continue
			}
			w, err := r.walk(e)
			if err != nil {
				return nil, err
			}
			out.Set(k, w)
		}
		return out, nil
	case map[string]any:
		return r.walk(toOrdered(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			w, err := r.walk(e)
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	}
	return v, nil
}

func (r *resolver) expand(ref string) (any, error) {
	if r.active[ref] {
		return nil, errors.Wrap(ErrCyclicRef, ref)
	}
	target, err := r.lookup(ref)
	if err != nil {
		return nil, err
	}
	r.active[ref] = true
	defer delete(r.active, ref)
	return r.walk(target)
}

func (r *resolver) lookup(ref string) (any, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, errors.Wrapf(ErrUnresolvedRef, "%s (only local references are supported)", ref)
	}
	cur := r.root
	pointer := strings.TrimPrefix(ref, "#")
	if pointer == "" || pointer == "/" {
		return cur, nil
	}
	for _, tok := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		tok = skemac.UnescapePointerToken(tok)
		switch t := cur.(type) {
		case *eng.Object:
			next, ok := t.Get(tok)
			if !ok {
				return nil, errors.Wrap(ErrUnresolvedRef, ref)
			}
			cur = next
		case map[string]any:
			next, ok := t[tok]
			if !ok {
				return nil, errors.Wrap(ErrUnresolvedRef, ref)
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(t) {
				return nil, errors.Wrap(ErrUnresolvedRef, ref)
			}
			cur = t[i]
		default:
			return nil, errors.Wrap(ErrUnresolvedRef, ref)
		}
	}
	return cur, nil
}

// toOrdered returns v as an ordered object; plain maps are copied in sorted
// key order.
func toOrdered(v any) *eng.Object {
	if o, ok := v.(*eng.Object); ok {
		return o
	}
	members, ok := entries(v)
	if !ok {
		return nil
	}
	out := eng.NewObject()
	for k, e := range members {
		out.Set(k, e)
	}
	return out
}
