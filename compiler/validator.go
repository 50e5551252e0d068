package compiler

import (
	"context"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/jsonschema"
)

// Validator is a compiled schema. It is immutable and safe for concurrent use.
type Validator struct {
	root   rule
	tracer skemac.Tracer
	schema *jsonschema.Schema
}

// Result is the outcome of Check. Errors is empty when Valid is true.
type Result struct {
	Valid  bool
	Errors skemac.Issues
}

// Schema returns the schema the validator was compiled from.
func (v *Validator) Schema() *jsonschema.Schema { return v.schema }

// Check validates value and returns every issue the context's mode collects.
func (v *Validator) Check(ctx context.Context, value any) Result {
	e := newEvaluator(ctx, v.tracer)
	ok := v.root.check(e, skemac.RootPath(), presentValue(value))
	return Result{Valid: ok && len(e.issues) == 0, Errors: e.issues}
}

// IsValid reports validity, stopping at the first failure.
func (v *Validator) IsValid(value any) bool {
	e := newProbe()
	e.tracer = v.tracer
	return v.root.check(e, skemac.RootPath(), presentValue(value)) && len(e.issues) == 0
}

// Validate returns nil or the skemac.Issues found.
func (v *Validator) Validate(ctx context.Context, value any) error {
	r := v.Check(ctx, value)
	if r.Valid {
		return nil
	}
	return r.Errors
}

// ValidateFrom decodes a value from src and validates it. Decoding failures are
// returned as parse issues; the mode flags of the last opt apply to validation.
func (v *Validator) ValidateFrom(ctx context.Context, src skemac.Source, opts ...skemac.ParseOpt) error {
	value, err := skemac.DecodeFrom(src, opts...)
	if err != nil {
		return err
	}
	if len(opts) > 0 {
		ctx = skemac.ContextWithOpt(ctx, opts[len(opts)-1])
	}
	return v.Validate(ctx, value)
}
