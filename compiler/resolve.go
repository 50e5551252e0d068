package compiler

import (
	"github.com/samber/lo"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/jsonschema"
)

// Form is the shape of a node's type declaration.
type Form int

const (
	FormSingle Form = iota
	FormMulti
	FormComposition
)

func (f Form) String() string {
	switch f {
	case FormSingle:
		return "single"
	case FormMulti:
		return "multi"
	case FormComposition:
		return "composition"
	}
	return "unknown"
}

// Op is a composition operator.
type Op int

const (
	OpAllOf Op = iota
	OpAnyOf
	OpOneOf
	OpNot
)

func (o Op) String() string {
	switch o {
	case OpAllOf:
		return "allOf"
	case OpAnyOf:
		return "anyOf"
	case OpOneOf:
		return "oneOf"
	case OpNot:
		return "not"
	}
	return "unknown"
}

// TypeDecl is the resolved type declaration of a schema node.
//
// FormComposition wins over the type keyword for dispatch; Kinds still lists the
// declared types of such a node so both sets of rules can be enforced.
type TypeDecl struct {
	Form  Form
	Kinds []Kind // declared kinds, in declaration order, without duplicates
	Ops   []Op   // composition operators present, in allOf, anyOf, oneOf, not order
}

// Resolve classifies a schema node. A node with none of type, allOf, anyOf,
// oneOf and not fails with ErrMissingType, except that a node declaring
// properties is an implicit object. Unknown type names fail with
// ErrUnsupportedType. allOf entries that only carry if/then/else belong to the
// conditional compiler and do not count as composition.
func Resolve(s *jsonschema.Schema) (TypeDecl, error) {
	return resolveAt(s, "/")
}

func resolveAt(s *jsonschema.Schema, pointer string) (TypeDecl, error) {
	var d TypeDecl
	if s == nil {
		return d, &skemac.CompileError{Pointer: pointer, Keyword: "type", Err: skemac.ErrMissingType}
	}
	for _, name := range lo.Uniq(s.Type) {
		k, ok := KindOf(name)
		if !ok {
			return d, &skemac.CompileError{Pointer: pointer, Keyword: "type", Value: name, Err: skemac.ErrUnsupportedType}
		}
		d.Kinds = append(d.Kinds, k)
	}
	if len(s.ComposedAllOf()) > 0 {
		d.Ops = append(d.Ops, OpAllOf)
	}
	if len(s.AnyOf) > 0 {
		d.Ops = append(d.Ops, OpAnyOf)
	}
	if len(s.OneOf) > 0 {
		d.Ops = append(d.Ops, OpOneOf)
	}
	if s.Not != nil {
		d.Ops = append(d.Ops, OpNot)
	}
	switch {
	case len(d.Ops) > 0:
		d.Form = FormComposition
	case len(d.Kinds) > 1:
		d.Form = FormMulti
	case len(d.Kinds) == 1:
		d.Form = FormSingle
	case s.Properties != nil:
		d.Form, d.Kinds = FormSingle, []Kind{KindObject}
	default:
		return d, &skemac.CompileError{Pointer: pointer, Keyword: "type", Err: skemac.ErrMissingType}
	}
	return d, nil
}
