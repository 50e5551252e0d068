package compiler_test

import (
	"context"
	"testing"

	"go.uber.org/goleak"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/compiler"
	"github.com/reoring/skemac/jsonschema"
)

func TestMain(m *testing.M) {
	// regexp2 keeps a shared clock goroutine alive while match timeouts are pending.
	goleak.VerifyTestMain(m, goleak.IgnoreAnyFunction("github.com/dlclark/regexp2.runClock"))
}

func mustCompile(t *testing.T, doc string, opts ...compiler.Options) *compiler.Validator {
	t.Helper()
	s, err := jsonschema.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	v, err := compiler.Compile(s, opts...)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return v
}

func decode(t *testing.T, doc string) any {
	t.Helper()
	v, err := skemac.DecodeFrom(skemac.JSONBytes([]byte(doc)))
	if err != nil {
		t.Fatalf("decode %s: %v", doc, err)
	}
	return v
}

func collectAll() context.Context {
	return skemac.WithCollectAll(context.Background(), true)
}

// check validates doc in every mode and fails when the modes disagree on validity.
func check(t *testing.T, v *compiler.Validator, doc string) compiler.Result {
	t.Helper()
	val := decode(t, doc)
	first := v.Check(context.Background(), val)
	all := v.Check(collectAll(), val)
	fast := v.IsValid(val)
	if first.Valid != all.Valid || first.Valid != fast {
		t.Fatalf("modes disagree for %s: first=%v all=%v fast=%v", doc, first.Valid, all.Valid, fast)
	}
	if len(all.Errors) < len(first.Errors) {
		t.Fatalf("collect-all reported fewer issues (%d) than default (%d) for %s", len(all.Errors), len(first.Errors), doc)
	}
	return first
}

func wantValid(t *testing.T, v *compiler.Validator, doc string) {
	t.Helper()
	if r := check(t, v, doc); !r.Valid {
		t.Fatalf("want valid for %s, got %v", doc, r.Errors)
	}
}

func wantInvalid(t *testing.T, v *compiler.Validator, doc string) skemac.Issues {
	t.Helper()
	r := check(t, v, doc)
	if r.Valid {
		t.Fatalf("want invalid for %s", doc)
	}
	return r.Errors
}

func hasIssue(iss skemac.Issues, path, code string) bool {
	for _, is := range iss {
		if is.Path == path && is.Code == code {
			return true
		}
	}
	return false
}
