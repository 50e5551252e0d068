package compiler

import (
	"strconv"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/jsonschema"
)

// composite combines child validators of one composition keyword.
type composite struct {
	op       Op
	field    field
	children []rule
	message  string
}

func (r *composite) check(e *evaluator, at skemac.PathRef, in input) bool {
	if !in.present {
		return r.field.absent(e, at)
	}
	if in.value == nil && r.field.nullable {
		return true
	}
	switch r.op {
	case OpAllOf:
		valid := true
		for _, ch := range r.children {
			if e.stopped() {
				return false
			}
			if !ch.check(e, at, in) {
				valid = false
				if !e.all() {
					return false
				}
			}
		}
		return valid

	case OpAnyOf:
		var causes skemac.Issues
		for _, ch := range r.children {
			sub := e.fork()
			if ch.check(sub, at, in) {
				return true
			}
			causes = append(causes, sub.issues...)
		}
		e.report(r.issue(at, skemac.CodeNoMatch, causes, nil))
		return false

	case OpOneOf:
		var causes skemac.Issues
		matched := 0
		for _, ch := range r.children {
			sub := e.fork()
			if ch.check(sub, at, in) {
				matched++
				if matched > 1 {
					break
				}
				continue
			}
			causes = append(causes, sub.issues...)
		}
		switch matched {
		case 1:
			return true
		case 0:
			e.report(r.issue(at, skemac.CodeNoMatch, causes, nil))
		default:
			e.report(r.issue(at, skemac.CodeUnionAmbiguous, nil, map[string]any{"matches": matched}))
		}
		return false

	case OpNot:
		if r.children[0].check(newProbe(), at, in) {
			e.report(r.issue(at, skemac.CodeNotAllowed, nil, nil))
			return false
		}
		return true
	}
	return false
}

func (r *composite) issue(at skemac.PathRef, code string, causes skemac.Issues, params map[string]any) skemac.Issue {
	is := skemac.IssueAt(at, code, r.op.String(), skemac.CategoryComposition, r.message, params)
	if len(causes) > 0 {
		is.Cause = causes
	}
	return is
}

// composition compiles a node carrying allOf/anyOf/oneOf/not. When the node
// also declares a type, the typed rule of the node without its composition
// keywords is conjoined after the composites.
func (c *compiler) composition(f field, node *jsonschema.Schema, d TypeDecl, ptr string) (rule, error) {
	inner := f.optional()
	var rules conjunction
	if f.required {
		rules = append(rules, &presence{field: f})
	}
	for _, op := range d.Ops {
		var list []*jsonschema.Schema
		var kw string
		switch op {
		case OpAllOf:
			list, kw = node.ComposedAllOf(), "allOf"
		case OpAnyOf:
			list, kw = node.AnyOf, "anyOf"
		case OpOneOf:
			list, kw = node.OneOf, "oneOf"
		case OpNot:
			list, kw = []*jsonschema.Schema{node.Not}, "not"
		}
		comp := &composite{op: op, field: inner, message: c.message(kw, f, nil)}
		for i, child := range list {
			child = inherit(child, node)
			cptr := join(ptr, kw, strconv.Itoa(i))
			if op == OpNot {
				cptr = join(ptr, kw)
			}
			r, err := c.rule(c.childField(inner, child), child, cptr)
			if err != nil {
				return nil, err
			}
			comp.children = append(comp.children, r)
		}
		rules = append(rules, comp)
	}
	if len(d.Kinds) > 0 {
		r, err := c.rule(inner, node.WithoutComposition(), ptr)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	if len(rules) == 1 {
		return rules[0], nil
	}
	return rules, nil
}

// inherit gives an untyped child the type of its composition parent.
func inherit(child, parent *jsonschema.Schema) *jsonschema.Schema {
	if len(child.Type) > 0 || len(parent.Type) == 0 || child.HasComposition() || child.Properties != nil {
		return child
	}
	cp := *child
	cp.Type = parent.Type
	return &cp
}
