package compiler

import (
	"strconv"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/jsonschema"
)

// elements validates array members: prefix (tuple) positions first, then the
// items schema for the rest. The array rule in front of it has already checked
// presence and kind.
type elements struct {
	tuple []rule
	items rule
}

func (r *elements) check(e *evaluator, at skemac.PathRef, in input) bool {
	if !in.present || in.value == nil {
		return true
	}
	arr, ok := asSlice(in.value)
	if !ok {
		return true
	}
	valid := true
	for i, el := range arr {
		if e.stopped() {
			return false
		}
		er := r.items
		if i < len(r.tuple) {
			er = r.tuple[i]
		}
		if er == nil {
			continue
		}
		if !er.check(e, at.Index(i), presentValue(el)) {
			valid = false
		}
	}
	return valid
}

// elements compiles items and prefixItems of an array node; nil when neither is set.
func (c *compiler) elements(f field, node *jsonschema.Schema, ptr string) (*elements, error) {
	if node.Items == nil && len(node.PrefixItems) == 0 {
		return nil, nil
	}
	el := &elements{}
	for i, s := range node.PrefixItems {
		r, err := c.rule(c.childField(f, s), s, join(ptr, "prefixItems", strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		el.tuple = append(el.tuple, r)
	}
	if node.Items != nil {
		r, err := c.rule(c.childField(f, node.Items), node.Items, join(ptr, "items"))
		if err != nil {
			return nil, err
		}
		el.items = r
	}
	return el, nil
}
