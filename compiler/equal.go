package compiler

import (
	"math/big"

	"github.com/google/go-cmp/cmp"
)

var ratComparer = cmp.Comparer(func(x, y *big.Rat) bool {
	if x == nil || y == nil {
		return x == y
	}
	return x.Cmp(y) == 0
})

// canonical rewrites a JSON-like value so structurally equal values compare
// equal: every number becomes *big.Rat, every list []any and every object
// map[string]any.
func canonical(v any) any {
	if r, ok := toRat(v); ok {
		return r
	}
	if m, ok := asObject(v); ok {
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[k] = canonical(e)
		}
		return out
	}
	if s, ok := asSlice(v); ok {
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = canonical(e)
		}
		return out
	}
	return v
}

// isStructured reports whether a literal is a list or an object.
func isStructured(v any) bool {
	if _, ok := asObject(v); ok {
		return true
	}
	_, ok := asSlice(v)
	return ok
}

// literal is a const or enum member prepared at compile time.
type literal struct {
	raw   any
	canon any
	deep  bool
}

func newLiteral(v any) literal {
	return literal{raw: v, canon: canonical(v), deep: isStructured(v)}
}

// matches compares a value with the literal: scalars by identity-style
// equality (numbers by numeric value), lists and objects by deep structural
// equality over nested values and key sets.
func (l literal) matches(v any) bool {
	if l.deep {
		if !isStructured(v) {
			return false
		}
		return cmp.Equal(l.canon, canonical(v), ratComparer)
	}
	return scalarEqual(l.canon, v)
}

func scalarEqual(canon, v any) bool {
	switch c := canon.(type) {
	case *big.Rat:
		r, ok := toRat(v)
		return ok && c.Cmp(r) == 0
	case nil:
		return v == nil
	case string:
		s, ok := v.(string)
		return ok && s == c
	case bool:
		b, ok := v.(bool)
		return ok && b == c
	}
	return false
}

// deepEqual compares two arbitrary input values structurally.
func deepEqual(a, b any) bool {
	return cmp.Equal(canonical(a), canonical(b), ratComparer)
}
