package compiler

import (
	"strings"

	"github.com/samber/lo"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/jsonschema"
)

// dispatch validates a field declaring several types: the first candidate
// whose kind matches the runtime value gets to validate it.
type dispatch struct {
	field      field
	candidates []Kind
	byKind     map[Kind]rule
	acceptNull bool
	message    string
}

func (r *dispatch) check(e *evaluator, at skemac.PathRef, in input) bool {
	if !in.present {
		return r.field.absent(e, at)
	}
	v := in.value
	if r.acceptNull {
		if s, ok := v.(string); ok && s == "" {
			v = nil
		}
	}
	for _, k := range r.candidates {
		if !k.Matches(v) {
			continue
		}
		e.trace("dispatch.select", "path", at.Pointer(), "type", k.String())
		return r.byKind[k].check(e, at, input{value: v, present: true, siblings: in.siblings})
	}
	if v == nil && r.field.nullable {
		return true
	}
	e.report(skemac.IssueAt(at, skemac.CodeInvalidType, "type", skemac.CategoryTypeMismatch, r.message,
		map[string]any{"expected": lo.Map(r.candidates, func(k Kind, _ int) string { return k.String() })}))
	return false
}

func (c *compiler) dispatch(f field, node *jsonschema.Schema, kinds []Kind, ptr string) (rule, error) {
	names := lo.Map(kinds, func(k Kind, _ int) string { return k.String() })
	d := &dispatch{
		field:      f,
		candidates: kinds,
		byKind:     make(map[Kind]rule, len(kinds)),
		acceptNull: lo.Contains(kinds, KindNull),
		message:    c.message("types", f, map[string]any{"types": strings.Join(names, ", ")}),
	}
	inner := f.optional()
	for _, k := range kinds {
		r, err := c.typed(inner, node, k, ptr)
		if err != nil {
			return nil, err
		}
		d.byKind[k] = r
	}
	return d, nil
}
