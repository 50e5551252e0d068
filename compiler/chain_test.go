package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func constTest(want string) func(input) bool {
	return func(in input) bool {
		s, ok := in.value.(string)
		return in.present && ok && s == want
	}
}

func TestChain_Persistent(t *testing.T) {
	var root *chain
	a := root.extend(chainEntry{key: "a", test: constTest("x")})
	ab := a.extend(chainEntry{key: "b", test: constTest("y")})
	ac := a.extend(chainEntry{key: "c", test: constTest("z")})
	notB := ab.invertLeaf()

	if root.Len() != 0 || a.Len() != 1 || ab.Len() != 2 || ac.Len() != 2 {
		t.Fatalf("unexpected lengths: %d %d %d %d", root.Len(), a.Len(), ab.Len(), ac.Len())
	}
	if ab.entry.inverted {
		t.Fatalf("invertLeaf mutated its receiver")
	}
	if notB.parent != a {
		t.Fatalf("inverted chain must share its parent")
	}
	got := []string{a.String(), ab.String(), ac.String(), notB.String()}
	want := []string{"if a then", "if a then / if b then", "if a then / if c then", "if a then / if b else"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("renderings (-want +got):\n%s", diff)
	}
}

func TestChain_Holds(t *testing.T) {
	var root *chain
	ab := root.extend(chainEntry{key: "a", test: constTest("x")}).
		extend(chainEntry{key: "b", test: constTest("y")})
	notB := ab.invertLeaf()

	tests := []struct {
		obj       map[string]any
		ab, notAB bool
	}{
		{map[string]any{"a": "x", "b": "y"}, true, false},
		{map[string]any{"a": "x", "b": "n"}, false, true},
		{map[string]any{"a": "n", "b": "y"}, false, false},
		{map[string]any{"a": "n"}, false, false},
	}
	for _, tt := range tests {
		e := newProbe()
		if got := ab.holds(e, tt.obj); got != tt.ab {
			t.Fatalf("%v: chain holds=%v, want %v", tt.obj, got, tt.ab)
		}
		if got := notB.holds(e, tt.obj); got != tt.notAB {
			t.Fatalf("%v: inverted chain holds=%v, want %v", tt.obj, got, tt.notAB)
		}
	}
	if !root.holds(newProbe(), nil) {
		t.Fatalf("the empty chain always holds")
	}
}

func TestChain_ShortCircuitsWithoutTracer(t *testing.T) {
	var calls []string
	probe := func(key string, result bool) func(input) bool {
		return func(input) bool {
			calls = append(calls, key)
			return result
		}
	}
	var root *chain
	c := root.extend(chainEntry{key: "a", test: probe("a", false)}).
		extend(chainEntry{key: "b", test: probe("b", true)})

	c.holds(newProbe(), map[string]any{})
	if diff := cmp.Diff([]string{"a"}, calls); diff != "" {
		t.Fatalf("evaluation (-want +got):\n%s", diff)
	}

	calls = nil
	e := newProbe()
	e.tracer = tracerFunc(func(string, ...any) {})
	c.holds(e, map[string]any{})
	if diff := cmp.Diff([]string{"a", "b"}, calls); diff != "" {
		t.Fatalf("diagnostic evaluation (-want +got):\n%s", diff)
	}
}

type tracerFunc func(event string, keyvals ...any)

func (f tracerFunc) Trace(event string, keyvals ...any) { f(event, keyvals...) }
