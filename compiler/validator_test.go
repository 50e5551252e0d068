package compiler_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/compiler"
	"github.com/reoring/skemac/i18n"
)

const order = `{"type":"object","title":"Order",
	"properties":{
		"id":{"type":"string","minLength":3},
		"status":{"type":"string","enum":["open","closed"]},
		"pair":{"type":"array","enum":[[1,"a"],[2,"b"]]},
		"meta":{"type":"object","const":{"v":1,"tags":["x"]}}
	},
	"required":["id","status"]}`

func TestConstEnum_DeepEquality(t *testing.T) {
	v := mustCompile(t, order)
	wantValid(t, v, `{"id":"abc","status":"open","pair":[1.0,"a"],"meta":{"tags":["x"],"v":1}}`)

	iss := wantInvalid(t, v, `{"id":"abc","status":"open","pair":[1,"b"]}`)
	if !hasIssue(iss, "/pair", skemac.CodeInvalidEnum) {
		t.Fatalf("want invalid_enum at /pair, got %v", iss)
	}
	iss = wantInvalid(t, v, `{"id":"abc","status":"open","meta":{"v":1,"tags":["x"],"extra":true}}`)
	if !hasIssue(iss, "/meta", skemac.CodeInvalidConst) {
		t.Fatalf("want invalid_const at /meta, got %v", iss)
	}
	if iss[0].Message != "Meta does not match constant" {
		t.Fatalf("message: got %q", iss[0].Message)
	}
	iss = wantInvalid(t, v, `{"id":"abc","status":"pending"}`)
	if iss[0].Message != "Status does not match any of the enumerables" {
		t.Fatalf("message: got %q", iss[0].Message)
	}
}

func TestModes(t *testing.T) {
	v := mustCompile(t, order)
	doc := decode(t, `{"id":"ab","status":"pending","pair":"x"}`)

	first := v.Check(context.Background(), doc)
	if got := first.Errors.Paths(); !cmp.Equal(got, []string{"/id", "/status", "/pair"}) {
		t.Fatalf("default mode: one issue per field, got %v", got)
	}
	fast := v.Check(skemac.WithFailFast(context.Background(), true), doc)
	if len(fast.Errors) != 1 || fast.Valid {
		t.Fatalf("fail-fast: want exactly one issue, got %v", fast.Errors)
	}
	if v.IsValid(doc) {
		t.Fatalf("IsValid must agree with Check")
	}
}

func TestCustomMessages(t *testing.T) {
	table := i18n.Table{
		"status": {"enum": "pick open or closed"},
		"*":      {"required": "{label} must be set"},
	}
	v := mustCompile(t, order, compiler.Options{Messages: table})
	r := v.Check(collectAll(), decode(t, `{"status":"x"}`))
	got := make(map[string]string)
	for _, is := range r.Errors {
		got[is.Path] = is.Message
	}
	want := map[string]string{"/id": "Id must be set", "/status": "pick open or closed"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("messages (-want +got):\n%s", diff)
	}
}

func TestTranslator(t *testing.T) {
	v := mustCompile(t, order, compiler.Options{Translator: i18n.Dictionary("ja")})
	r := v.Check(context.Background(), decode(t, `{"status":"open"}`))
	if r.Errors[0].Message != "Idは必須です" {
		t.Fatalf("got %q", r.Errors[0].Message)
	}
}

func TestValidateFrom(t *testing.T) {
	v := mustCompile(t, order)
	ctx := context.Background()
	if err := v.ValidateFrom(ctx, skemac.JSONReader(bytes.NewReader([]byte(`{"id":"abc","status":"open"}`)))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := v.ValidateFrom(ctx, skemac.JSONBytes([]byte(`{"id":"abc","id":"abd","status":"open"}`)),
		skemac.ParseOpt{Strictness: skemac.Strictness{OnDuplicateKey: skemac.Error}})
	iss, ok := skemac.AsIssues(err)
	if !ok || iss[0].Code != skemac.CodeDuplicateKey {
		t.Fatalf("want duplicate_key, got %v", err)
	}

	err = v.ValidateFrom(ctx, skemac.JSONBytes([]byte(`{"status":"open"}`)))
	var target skemac.Issues
	if !errors.As(err, &target) || target[0].Code != skemac.CodeRequired {
		t.Fatalf("want required issue, got %v", err)
	}
}

func TestValidator_ConcurrentUse(t *testing.T) {
	v := mustCompile(t, countries)
	docs := []struct {
		doc   string
		valid bool
	}{
		{`{"isTaxResidentOnly":"true"}`, true},
		{`{"isTaxResidentOnly":"false"}`, false},
		{`{"isTaxResidentOnly":"false","countries":[{"country":"SG","hasID":"true","id":"X"}]}`, true},
		{`{"isTaxResidentOnly":"false","countries":[{"country":"SG","hasID":"false"}]}`, false},
	}
	values := make([]any, len(docs))
	for i, d := range docs {
		values[i] = decode(t, d.doc)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				i := n % len(docs)
				if got := v.Check(collectAll(), values[i]).Valid; got != docs[i].valid {
					errs <- fmt.Errorf("%s: valid=%v", docs[i].doc, got)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
