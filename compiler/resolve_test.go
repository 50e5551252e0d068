package compiler_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/compiler"
	"github.com/reoring/skemac/jsonschema"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want compiler.TypeDecl
	}{
		{"single", `{"type":"string"}`, compiler.TypeDecl{Form: compiler.FormSingle, Kinds: []compiler.Kind{compiler.KindString}}},
		{"multi", `{"type":["array","null"]}`, compiler.TypeDecl{Form: compiler.FormMulti, Kinds: []compiler.Kind{compiler.KindArray, compiler.KindNull}}},
		{"duplicate names collapse", `{"type":["string","string"]}`, compiler.TypeDecl{Form: compiler.FormSingle, Kinds: []compiler.Kind{compiler.KindString}}},
		{"implicit object", `{"properties":{"a":{"type":"string"}}}`, compiler.TypeDecl{Form: compiler.FormSingle, Kinds: []compiler.Kind{compiler.KindObject}}},
		{"composition wins over type", `{"type":"string","anyOf":[{"minLength":1}],"not":{"const":"x"}}`,
			compiler.TypeDecl{Form: compiler.FormComposition, Kinds: []compiler.Kind{compiler.KindString}, Ops: []compiler.Op{compiler.OpAnyOf, compiler.OpNot}}},
		{"conditional allOf is not composition", `{"type":"object","allOf":[{"if":{"properties":{"a":{"const":1}}},"then":{"required":["b"]}}]}`,
			compiler.TypeDecl{Form: compiler.FormSingle, Kinds: []compiler.Kind{compiler.KindObject}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := jsonschema.Parse([]byte(tt.doc))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			got, err := compiler.Resolve(s)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("TypeDecl mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile_MissingType(t *testing.T) {
	s, err := jsonschema.Parse([]byte(`{"type":"object","properties":{"a":{"minLength":1}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = compiler.Compile(s)
	if !errors.Is(err, skemac.ErrMissingType) {
		t.Fatalf("want ErrMissingType, got %v", err)
	}
	var ce *skemac.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("want *CompileError in chain, got %T", err)
	}
	if ce.Pointer != "/properties/a" {
		t.Fatalf("pointer: want /properties/a, got %q", ce.Pointer)
	}
}

func TestCompile_UnsupportedType(t *testing.T) {
	s, err := jsonschema.Parse([]byte(`{"type":"object","properties":{"a":{"type":"date"}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = compiler.Compile(s)
	if !errors.Is(err, skemac.ErrUnsupportedType) {
		t.Fatalf("want ErrUnsupportedType, got %v", err)
	}
}

func TestCompile_InvalidPattern(t *testing.T) {
	s, err := jsonschema.Parse([]byte(`{"type":"string","pattern":"(["}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := compiler.Compile(s); err == nil {
		t.Fatalf("want pattern compile error")
	}
}
