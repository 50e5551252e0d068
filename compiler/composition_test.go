package compiler_test

import (
	"testing"

	skemac "github.com/reoring/skemac"
)

func TestOneOf_Exclusivity(t *testing.T) {
	v := mustCompile(t, `{"oneOf":[
		{"type":"integer","minimum":0},
		{"type":"integer","maximum":10}
	]}`)
	wantValid(t, v, `-5`)
	wantValid(t, v, `20`)

	iss := wantInvalid(t, v, `5`)
	if iss[0].Code != skemac.CodeUnionAmbiguous || iss[0].Category != skemac.CategoryComposition {
		t.Fatalf("want union_ambiguous composition failure, got %+v", iss[0])
	}
	if iss[0].Params["matches"] != 2 {
		t.Fatalf("want matches=2, got %v", iss[0].Params)
	}

	iss = wantInvalid(t, v, `"x"`)
	if iss[0].Code != skemac.CodeNoMatch {
		t.Fatalf("want no_match, got %+v", iss[0])
	}
	causes, ok := skemac.AsIssues(iss[0].Cause)
	if !ok || len(causes) != 2 {
		t.Fatalf("want both alternatives as causes, got %v", iss[0].Cause)
	}
}

func TestAnyOf(t *testing.T) {
	v := mustCompile(t, `{"type":"object","properties":{
		"id":{"anyOf":[{"type":"string","minLength":3},{"type":"integer"}]}
	}}`)
	wantValid(t, v, `{"id":"abc"}`)
	wantValid(t, v, `{"id":7}`)
	wantValid(t, v, `{}`)
	iss := wantInvalid(t, v, `{"id":"ab"}`)
	if !hasIssue(iss, "/id", skemac.CodeNoMatch) || iss[0].Keyword != "anyOf" {
		t.Fatalf("want anyOf no_match at /id, got %v", iss)
	}
	if iss[0].Message != "Id does not match any of the schemas" {
		t.Fatalf("message: got %q", iss[0].Message)
	}
}

func TestAllOf_SurfacesChildIssues(t *testing.T) {
	v := mustCompile(t, `{"allOf":[{"type":"string","minLength":2},{"type":"string","pattern":"^a"}]}`)
	wantValid(t, v, `"ab"`)
	iss := wantInvalid(t, v, `"b"`)
	if iss[0].Code != skemac.CodeTooShort {
		t.Fatalf("default mode: want the first child issue, got %v", iss)
	}
	all := v.Check(collectAll(), decode(t, `"b"`))
	if len(all.Errors) != 2 {
		t.Fatalf("collect-all: want 2 issues, got %v", all.Errors)
	}
}

func TestNot(t *testing.T) {
	v := mustCompile(t, `{"type":"string","not":{"const":"root"}}`)
	wantValid(t, v, `"alice"`)
	iss := wantInvalid(t, v, `"root"`)
	if iss[0].Code != skemac.CodeNotAllowed {
		t.Fatalf("want not_allowed, got %v", iss)
	}
	// The declared type still applies next to the composition.
	iss = wantInvalid(t, v, `1`)
	if iss[0].Code != skemac.CodeInvalidType {
		t.Fatalf("want invalid_type, got %v", iss)
	}
}

func TestComposition_RequiredReportedOnce(t *testing.T) {
	v := mustCompile(t, `{"type":"object","required":["v"],"properties":{
		"v":{"type":"string","anyOf":[{"minLength":1},{"const":""}]}
	}}`)
	all := v.Check(collectAll(), decode(t, `{}`))
	if len(all.Errors) != 1 || all.Errors[0].Code != skemac.CodeRequired {
		t.Fatalf("want a single required issue, got %v", all.Errors)
	}
}
