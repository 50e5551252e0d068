package compiler

import (
	"slices"

	"github.com/samber/lo"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/jsonschema"
)

// conditional guards a branch rule with a condition chain evaluated against
// the sibling values of the key it is attached to.
//
// Without otherwise, the rule is skipped unless the whole chain holds. With
// otherwise, the ancestors must hold and the leaf picks the branch.
type conditional struct {
	chain     *chain
	then      rule
	otherwise rule
}

func (r *conditional) check(e *evaluator, at skemac.PathRef, in input) bool {
	branch, active := r.then, r.chain
	if r.otherwise == nil {
		if !r.chain.holds(e, in.siblings) {
			return true
		}
	} else {
		if !r.chain.parent.holds(e, in.siblings) {
			return true
		}
		leaf := r.chain.entry.holds(in.siblings)
		e.trace("chain.entry", "key", r.chain.entry.key, "depth", r.chain.depth, "inverted", r.chain.entry.inverted, "holds", leaf)
		if !leaf {
			branch, active = r.otherwise, r.chain.invertLeaf()
		}
	}
	sub := e.fork()
	ok := branch.check(sub, at, in)
	desc := active.String()
	for _, is := range sub.issues {
		is.Category = skemac.CategoryConditional
		is.Rule = desc
		e.report(is)
	}
	return ok
}

// conditional compiles the if/then/else block of s into rules keyed by the
// properties its branches constrain. host is the object schema the rules are
// attached to, parent the chain of enclosing conditions; fromElse means s is
// the else branch of that chain's leaf.
//
// Only the first property of the if block controls the condition. A then
// without if, or an else without then, contributes nothing.
func (c *compiler) conditional(s, host *jsonschema.Schema, parent *chain, fromElse bool, out ruleSet, ptr string) error {
	if s == nil || s.If == nil || s.Then == nil {
		return nil
	}
	key, frag, ok := s.If.FirstProperty()
	if !ok {
		c.trace("compile.conditional.skip", "pointer", pointer(ptr), "reason", "if declares no properties")
		return nil
	}
	test, err := c.predicate(key, frag, s.If, join(ptr, "if", "properties", key))
	if err != nil {
		return err
	}
	base := parent
	if fromElse {
		base = parent.invertLeaf()
	}
	full := base.extend(chainEntry{key: key, test: test})
	c.trace("compile.conditional", "pointer", pointer(ptr), "key", key, "depth", full.depth)

	elseKeys := branchKeys(s.Else)
	for _, k := range branchKeys(s.Then) {
		tr, err := c.branch(k, s.Then, host, join(ptr, "then"))
		if err != nil {
			return err
		}
		cond := &conditional{chain: full, then: tr}
		if i := slices.Index(elseKeys, k); i >= 0 {
			elseKeys = slices.Delete(elseKeys, i, i+1)
			if cond.otherwise, err = c.branch(k, s.Else, host, join(ptr, "else")); err != nil {
				return err
			}
		}
		out.add(k, cond)
	}
	for _, k := range elseKeys {
		er, err := c.branch(k, s.Else, host, join(ptr, "else"))
		if err != nil {
			return err
		}
		out.add(k, &conditional{chain: full.invertLeaf(), then: er})
	}

	if err := c.conditional(s.Then, host, full, false, out, join(ptr, "then")); err != nil {
		return err
	}
	return c.conditional(s.Else, host, full, true, out, join(ptr, "else"))
}

// branchKeys lists the keys a branch constrains: properties in document order,
// then keys that are only required.
func branchKeys(b *jsonschema.Schema) []string {
	if b == nil {
		return nil
	}
	return lo.Uniq(append(b.PropertyNames(), b.Required...))
}

// branch compiles the rule a then/else branch imposes on key. A fragment
// without a type refines the host's declaration of the same key and takes its
// type.
func (c *compiler) branch(key string, b, host *jsonschema.Schema, ptr string) (rule, error) {
	frag, ok := b.Property(key)
	if !ok {
		return &presence{field: c.newField(key, &jsonschema.Schema{}, b)}, nil
	}
	if decl, ok := host.Property(key); ok {
		frag = inherit(frag, decl)
	}
	return c.rule(c.newField(key, frag, b), frag, join(ptr, "properties", key))
}

// predicate compiles an if-property fragment into a yes/no test. Fragments
// without a type check only const and enum.
func (c *compiler) predicate(key string, frag, ifNode *jsonschema.Schema, ptr string) (func(input) bool, error) {
	f := c.newField(key, frag, ifNode)
	var (
		r   rule
		err error
	)
	if len(frag.Type) == 0 && !frag.HasComposition() && frag.Properties == nil {
		r, err = c.typed(f, frag, kindAny, ptr)
	} else {
		r, err = c.rule(f, frag, ptr)
	}
	if err != nil {
		return nil, err
	}
	return func(in input) bool {
		return r.check(newProbe(), skemac.RootPath(), in)
	}, nil
}
