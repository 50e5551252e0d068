package skemac_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	skemac "github.com/reoring/skemac"
)

func TestIssues_Error(t *testing.T) {
	iss := skemac.Issues{
		{Path: "/a", Code: skemac.CodeRequired},
		{Path: "/b", Code: skemac.CodeTooShort},
		{Path: "/c/0", Code: skemac.CodeInvalidType},
		{Path: "/d", Code: skemac.CodePattern},
	}
	want := "required at /a; too_short at /b; invalid_type at /c/0; ... (total 4)"
	if got := iss.Error(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if diff := cmp.Diff([]string{"/a", "/b", "/c/0", "/d"}, iss.Paths()); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}

	var err error = iss
	got, ok := skemac.AsIssues(err)
	if !ok || len(got) != 4 {
		t.Fatalf("AsIssues: got %v, %v", got, ok)
	}
}

func TestCompileError_Unwrap(t *testing.T) {
	err := error(&skemac.CompileError{Pointer: "/properties/a", Keyword: "type", Value: "date", Err: skemac.ErrUnsupportedType})
	if !errors.Is(err, skemac.ErrUnsupportedType) {
		t.Fatalf("want ErrUnsupportedType in chain")
	}
	if err.Error() != "unsupported data type at /properties/a: date" {
		t.Fatalf("got %q", err.Error())
	}
}

func TestPathRef(t *testing.T) {
	root := skemac.RootPath()
	if root.Pointer() != "/" {
		t.Fatalf("root pointer: got %q", root.Pointer())
	}
	items := root.Field("items")
	a := items.Index(0).Field("a/b")
	b := items.Index(1).Field("c~d")
	if a.Pointer() != "/items/0/a~1b" || b.Pointer() != "/items/1/c~0d" {
		t.Fatalf("got %q and %q", a.Pointer(), b.Pointer())
	}
	if items.Pointer() != "/items" {
		t.Fatalf("parent mutated: %q", items.Pointer())
	}
	is := a.Issue(skemac.CodeRequired, "required", "A is required", nil)
	if is.Path != "/items/0/a~1b" || is.Keyword != "required" {
		t.Fatalf("got %+v", is)
	}
	if skemac.PathAt("/x/1").Pointer() != "/x/1" {
		t.Fatalf("PathAt round trip failed")
	}
	if skemac.UnescapePointerToken("a~1b~0") != "a/b~" {
		t.Fatalf("unescape failed")
	}
}
