package compiler

import (
	"strconv"

	"github.com/speakeasy-api/openapi/sequencedmap"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/jsonschema"
)

// ruleSet maps property keys to their rules in first-seen order. Adding to a
// key that already has rules conjoins the new rule with them.
type ruleSet struct {
	m *sequencedmap.Map[string, []rule]
}

func newRuleSet() ruleSet { return ruleSet{m: sequencedmap.New[string, []rule]()} }

func (s ruleSet) add(key string, r rule) {
	cur, _ := s.m.Get(key)
	s.m.Set(key, append(cur, r))
}

// objectRule validates the members of an object value, key by key in schema
// order.
type objectRule struct {
	fields *sequencedmap.Map[string, []rule]
}

func (o *objectRule) check(e *evaluator, at skemac.PathRef, obj map[string]any) bool {
	valid := true
	for key, rules := range o.fields.All() {
		v, present := obj[key]
		in := input{value: v, present: present, siblings: obj}
		p := at.Field(key)
		for _, r := range rules {
			if e.stopped() {
				return false
			}
			if !r.check(e, p, in) {
				valid = false
				if !e.all() {
					break
				}
			}
		}
	}
	return valid
}

// block is an if/then/else carrier of an object: the object itself or one of
// its allOf entries.
type block struct {
	node *jsonschema.Schema
	ptr  string
}

// object builds the validator for the members of s. Each property is compiled
// in order; the first time a property appears in an if block, that block's
// conditional rules are compiled and merged into the set. Blocks conditioned on
// keys that are not declared properties are compiled afterwards, and required
// keys without a property schema get presence rules.
func (c *compiler) object(s *jsonschema.Schema, ptr string) (*objectRule, error) {
	set := newRuleSet()
	var pending []block
	if s.If != nil {
		pending = append(pending, block{node: s, ptr: ptr})
	}
	for i, entry := range s.AllOf {
		if entry.If != nil {
			pending = append(pending, block{node: entry, ptr: join(ptr, "allOf", strconv.Itoa(i))})
		}
	}
	done := make(map[*jsonschema.Schema]bool, len(pending))
	compile := func(b block) error {
		if done[b.node] {
			return nil
		}
		done[b.node] = true
		return c.conditional(b.node, s, nil, false, set, b.ptr)
	}

	keys := s.PropertyNames()
	for _, key := range keys {
		frag, _ := s.Property(key)
		fptr := join(ptr, "properties", key)
		r, err := c.rule(c.newField(key, frag, s), frag, fptr)
		if err != nil {
			return nil, err
		}
		set.add(key, r)
		c.trace("compile.property", "pointer", fptr, "key", key)
	}
	// Conditional rules go after the unconditional rule of every key.
	for _, key := range keys {
		for _, b := range pending {
			if !b.node.If.HasProperty(key) {
				continue
			}
			if err := compile(b); err != nil {
				return nil, err
			}
		}
	}
	for _, b := range pending {
		if err := compile(b); err != nil {
			return nil, err
		}
	}
	for _, key := range s.Required {
		if !s.HasProperty(key) {
			set.add(key, &presence{field: c.newField(key, &jsonschema.Schema{}, s)})
		}
	}
	return &objectRule{fields: set.m}, nil
}
