package skemac

import (
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code, keyword, msg string, params map[string]any) Issue
}

// RootPath returns the PathRef of the document root ("/").
func RootPath() PathRef { return rootPath }

// PathAt parses a JSON Pointer into a PathRef. Escaped tokens are kept as-is.
func PathAt(pointer string) PathRef {
	if pointer == "" || pointer == "/" {
		return rootPath
	}
	parts := []string{}
	for _, p := range strings.Split(pointer, "/") {
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return &pathRef{parts: parts}
}

var rootPath = &pathRef{}

type pathRef struct {
	parts []string
}

// Field appends an object member. Parts are copied so sibling paths never
// share a backing array.
func (p *pathRef) Field(name string) PathRef {
	return &pathRef{parts: append(append(make([]string, 0, len(p.parts)+1), p.parts...), EscapePointerToken(name))}
}

func (p *pathRef) Index(i int) PathRef {
	return &pathRef{parts: append(append(make([]string, 0, len(p.parts)+1), p.parts...), strconv.Itoa(i))}
}

func (p *pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p *pathRef) Issue(code, keyword, msg string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Code: code, Keyword: keyword, Message: msg, Params: params, Offset: -1}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// EscapePointerToken escapes '~' -> '~0' and '/' -> '~1' per RFC6901.
func EscapePointerToken(s string) string { return pointerEscaper.Replace(s) }

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// UnescapePointerToken reverses EscapePointerToken.
func UnescapePointerToken(s string) string { return pointerUnescaper.Replace(s) }
