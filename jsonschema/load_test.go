package jsonschema_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/skemac/jsonschema"
)

func TestParse_KeepsPropertyOrder(t *testing.T) {
	s, err := jsonschema.Parse([]byte(`{"type":"object","properties":{"z":{"type":"string"},"a":{"type":"string"},"m":{"type":"integer"}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, s.PropertyNames()); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	key, _, ok := s.FirstProperty()
	if !ok || key != "z" {
		t.Fatalf("first property: got %q", key)
	}
}

func TestParse_RejectsDuplicateKeys(t *testing.T) {
	if _, err := jsonschema.Parse([]byte(`{"type":"object","type":"string"}`)); err == nil {
		t.Fatalf("want duplicate key error")
	}
}

func TestParseYAML(t *testing.T) {
	s, err := jsonschema.ParseYAML([]byte(`
type: object
required: [b]
nullable: [a]
properties:
  b:
    type: [string, "null"]
    maxLength: 3
  a:
    type: number
    multipleOf: 0.5
    const: 1.5
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "a"}, s.PropertyNames()); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	b, _ := s.Property("b")
	if diff := cmp.Diff(jsonschema.TypeList{"string", "null"}, b.Type); diff != "" {
		t.Fatalf("type (-want +got):\n%s", diff)
	}
	if b.MaxLength == nil || *b.MaxLength != 3 {
		t.Fatalf("maxLength: got %v", b.MaxLength)
	}
	a, _ := s.Property("a")
	if a.MultipleOf == nil || *a.MultipleOf != 0.5 || a.Const == nil || *a.Const != 1.5 {
		t.Fatalf("number keywords: %+v", a)
	}
	if !s.IsRequired("b") || !s.IsNullable("a") {
		t.Fatalf("required/nullable lists not decoded")
	}
}

func TestParseYAML_DuplicateKey(t *testing.T) {
	_, err := jsonschema.ParseYAML([]byte("type: object\ntype: string\n"))
	var dup *jsonschema.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("want DuplicateKeyError, got %v", err)
	}
	if dup.Key != "type" || dup.Line != 2 || dup.FirstLine != 1 {
		t.Fatalf("got %+v", dup)
	}
}

func TestParse_ItemsListIsTuple(t *testing.T) {
	s, err := jsonschema.Parse([]byte(`{"type":"array","items":[{"type":"string"},{"type":"integer"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Items != nil || len(s.PrefixItems) != 2 {
		t.Fatalf("want two prefix items, got items=%v prefix=%d", s.Items, len(s.PrefixItems))
	}
}

func TestParse_Draft4ExclusiveBounds(t *testing.T) {
	s, err := jsonschema.Parse([]byte(`{"type":"number","minimum":1,"exclusiveMinimum":true,"maximum":5}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Minimum != nil || s.ExclusiveMinimum == nil || *s.ExclusiveMinimum != 1 {
		t.Fatalf("want exclusiveMinimum=1, got min=%v excl=%v", s.Minimum, s.ExclusiveMinimum)
	}
	if s.Maximum == nil || *s.Maximum != 5 {
		t.Fatalf("maximum must stay inclusive")
	}
}

func TestParse_InvalidMultipleOf(t *testing.T) {
	if _, err := jsonschema.Parse([]byte(`{"type":"number","multipleOf":0}`)); err == nil {
		t.Fatalf("want error for multipleOf 0")
	}
}

func TestParse_Refs(t *testing.T) {
	s, err := jsonschema.Parse([]byte(`{
		"type":"object",
		"$defs":{"name":{"type":"string","minLength":1}},
		"definitions":{"list":{"type":"array","items":{"$ref":"#/$defs/name"}}},
		"properties":{
			"first":{"$ref":"#/$defs/name","title":"First name"},
			"all":{"$ref":"#/definitions/list"},
			"again":{"$ref":"#/properties/first"}
		}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	first, _ := s.Property("first")
	if first.Title != "First name" || first.MinLength == nil || *first.MinLength != 1 {
		t.Fatalf("first: %+v", first)
	}
	all, _ := s.Property("all")
	if all.Items == nil || all.Items.Type[0] != "string" {
		t.Fatalf("nested ref not expanded: %+v", all)
	}
	again, _ := s.Property("again")
	if again.Title != "First name" {
		t.Fatalf("pointer into properties: %+v", again)
	}
}

func TestParse_RefErrors(t *testing.T) {
	_, err := jsonschema.Parse([]byte(`{"type":"object","properties":{"a":{"$ref":"#/$defs/missing"}}}`))
	if !errors.Is(err, jsonschema.ErrUnresolvedRef) {
		t.Fatalf("want ErrUnresolvedRef, got %v", err)
	}
	_, err = jsonschema.Parse([]byte(`{"$defs":{"n":{"type":"object","properties":{"next":{"$ref":"#/$defs/n"}}}},"$ref":"#/$defs/n"}`))
	if !errors.Is(err, jsonschema.ErrCyclicRef) {
		t.Fatalf("want ErrCyclicRef, got %v", err)
	}
	_, err = jsonschema.Parse([]byte(`{"$ref":"other.json#/x"}`))
	if !errors.Is(err, jsonschema.ErrUnresolvedRef) {
		t.Fatalf("want ErrUnresolvedRef for remote refs, got %v", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	if err := os.WriteFile(path, []byte("type: string\nminLength: 2\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := jsonschema.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if s.Type[0] != "string" || *s.MinLength != 2 {
		t.Fatalf("got %+v", s)
	}
	if _, err := jsonschema.ReadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("want error for missing file")
	}
}

func TestWithoutComposition_KeepsConditionalBlocks(t *testing.T) {
	s, err := jsonschema.Parse([]byte(`{"type":"object","allOf":[{"required":["a"]},{"if":{"properties":{"a":{"const":1}}},"then":{"required":["b"]}}],"not":{"required":["c"]}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(s.ComposedAllOf()) != 1 || len(s.ConditionalAllOf()) != 1 {
		t.Fatalf("allOf split: composed=%d conditional=%d", len(s.ComposedAllOf()), len(s.ConditionalAllOf()))
	}
	bare := s.WithoutComposition()
	if bare.HasComposition() || len(bare.ConditionalAllOf()) != 1 {
		t.Fatalf("want only the conditional block left, got %+v", bare.AllOf)
	}
}
