package compiler

import (
	"strings"
)

// chainEntry is one condition of an if/then/else nesting: the named sibling
// must satisfy test, or must not when inverted (the else side).
type chainEntry struct {
	key      string
	test     func(in input) bool
	inverted bool
}

func (en chainEntry) holds(obj map[string]any) bool {
	v, ok := obj[en.key]
	return en.test(input{value: v, present: ok, siblings: obj}) != en.inverted
}

// chain is a persistent list of condition entries, outermost first. Appending
// or inverting returns a new chain that shares the parent; nil is the empty
// chain, which always holds.
type chain struct {
	parent *chain
	entry  chainEntry
	depth  int
}

func (c *chain) extend(en chainEntry) *chain {
	return &chain{parent: c, entry: en, depth: c.Len() + 1}
}

// invertLeaf returns the chain with its last entry negated.
func (c *chain) invertLeaf() *chain {
	if c == nil {
		return nil
	}
	en := c.entry
	en.inverted = !en.inverted
	return &chain{parent: c.parent, entry: en, depth: c.depth}
}

func (c *chain) Len() int {
	if c == nil {
		return 0
	}
	return c.depth
}

func (c *chain) entries() []chainEntry {
	out := make([]chainEntry, c.Len())
	for n := c; n != nil; n = n.parent {
		out[n.depth-1] = n.entry
	}
	return out
}

// holds evaluates the chain against obj, outermost entry first, stopping at the
// first entry that does not hold. With a tracer attached every entry is
// evaluated and traced.
func (c *chain) holds(e *evaluator, obj map[string]any) bool {
	if c == nil {
		return true
	}
	if e.tracer == nil {
		return c.parent.holds(e, obj) && c.entry.holds(obj)
	}
	all := true
	for i, en := range c.entries() {
		ok := en.holds(obj)
		e.trace("chain.entry", "key", en.key, "depth", i+1, "inverted", en.inverted, "holds", ok)
		all = all && ok
	}
	return all
}

// String renders the chain as "if a then / if b else".
func (c *chain) String() string {
	parts := make([]string, 0, c.Len())
	for _, en := range c.entries() {
		side := "then"
		if en.inverted {
			side = "else"
		}
		parts = append(parts, "if "+en.key+" "+side)
	}
	return strings.Join(parts, " / ")
}
