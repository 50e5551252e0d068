package compiler

import (
	"context"
	"maps"

	skemac "github.com/reoring/skemac"
)

// rule is a compiled validator node. Implementations are immutable after
// compilation; every call only reads the tree and writes to its evaluator.
//
// The closed set of variants: *primitive, *composite, *dispatch, *conditional,
// plus the structural helpers *elements, *presence and conjunction.
type rule interface {
	check(e *evaluator, at skemac.PathRef, in input) bool
}

// input is the value under validation. siblings is the enclosing object, read
// by condition chains.
type input struct {
	value    any
	present  bool
	siblings map[string]any
}

func presentValue(v any) input { return input{value: v, present: true} }

type mode int

const (
	modeFirstPerField mode = iota
	modeCollectAll
	modeFailFast
)

// evaluator collects issues for one validation call.
type evaluator struct {
	mode   mode
	tracer skemac.Tracer
	issues skemac.Issues
	halted bool
}

func newEvaluator(ctx context.Context, tracer skemac.Tracer) *evaluator {
	m := modeFirstPerField
	switch {
	case skemac.IsFailFast(ctx):
		m = modeFailFast
	case skemac.IsCollectAll(ctx):
		m = modeCollectAll
	}
	return &evaluator{mode: m, tracer: tracer}
}

// newProbe returns an evaluator for yes/no questions (conditions, not, contains).
func newProbe() *evaluator { return &evaluator{mode: modeFailFast} }

func (e *evaluator) report(is skemac.Issue) {
	e.issues = append(e.issues, is)
	if e.mode == modeFailFast {
		e.halted = true
	}
}

// all reports whether rules keep running after a failure.
func (e *evaluator) all() bool { return e.mode == modeCollectAll }

func (e *evaluator) stopped() bool { return e.halted }

// fork returns a fresh evaluator with the same mode whose issues the caller
// decides what to do with.
func (e *evaluator) fork() *evaluator { return &evaluator{mode: e.mode, tracer: e.tracer} }

func (e *evaluator) trace(event string, keyvals ...any) {
	if e.tracer != nil {
		e.tracer.Trace(event, keyvals...)
	}
}

// field carries the per-property facts shared by every variant: identity,
// presence rules and the messages resolved for them at compile time.
type field struct {
	key         string
	label       string
	required    bool
	nullable    bool
	requiredMsg string
	nullMsg     string
}

// optional returns a copy of f that no longer enforces presence; used for
// rules nested under a rule that already did.
func (f field) optional() field {
	f.required = false
	return f
}

// absent handles a missing value.
func (f *field) absent(e *evaluator, at skemac.PathRef) bool {
	if !f.required {
		return true
	}
	e.report(skemac.IssueAt(at, skemac.CodeRequired, "required", skemac.CategoryConstraint, f.requiredMsg, map[string]any{"key": f.key}))
	return false
}

func (f *field) nullIssue(at skemac.PathRef) skemac.Issue {
	return skemac.IssueAt(at, skemac.CodeInvalidType, "nullable", skemac.CategoryTypeMismatch, f.nullMsg, map[string]any{"key": f.key})
}

// constraint is one keyword check on a value whose kind already matched.
type constraint struct {
	keyword  string
	code     string
	message  string
	params   map[string]any
	test     func(v any) bool
	category skemac.Category
}

func (c *constraint) issue(at skemac.PathRef) skemac.Issue {
	cat := c.category
	if cat == "" {
		cat = skemac.CategoryConstraint
	}
	return skemac.IssueAt(at, c.code, c.keyword, cat, c.message, maps.Clone(c.params))
}

// presence enforces only that a required key exists. It backs required keys
// that have no property schema.
type presence struct{ field field }

func (r *presence) check(e *evaluator, at skemac.PathRef, in input) bool {
	if in.present {
		return true
	}
	return r.field.absent(e, at)
}

// conjunction applies every rule to the same value. The first rule carries the
// presence check; the rest are built with optional fields.
type conjunction []rule

func (rs conjunction) check(e *evaluator, at skemac.PathRef, in input) bool {
	valid := true
	for _, r := range rs {
		if e.stopped() {
			return false
		}
		if !r.check(e, at, in) {
			valid = false
			if !e.all() {
				return false
			}
		}
	}
	return valid
}
