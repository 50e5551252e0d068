package engine

import (
	"strconv"
	"strings"
)

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a decoding problem found by the enforcement wrapper.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError carries a SimpleIssue as an error.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.Message }

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives every issue, including warnings that do not stop
	// decoding.
	IssueSink func(SimpleIssue)
	// FailFast turns duplicate-key warnings into errors.
	FailFast bool
}

// frame is an open container on the enforcement stack.
type frame struct {
	array bool
	path  string
	index int                 // next element index (arrays)
	key   string              // member whose value is being read (objects)
	seen  map[string]struct{} // member names so far, when duplicates are checked
}

type enforcer struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
	read  int64
}

// WrapWithEnforcement returns a TokenSource that applies the duplicate key
// policy and the depth and size limits of opt while tokens stream through.
//
// Size is measured with the inner source's offsets. Sources that cannot report
// offsets are measured by token text, which ignores whitespace and separators.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcer{inner: inner, opt: opt}
}

func (e *enforcer) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	e.read += tokenSize(tok)

	switch tok.Kind {
	case KindKey:
		if si, dup := e.member(tok.String); dup {
			e.emit(si)
			if e.opt.OnDuplicate == DupError || e.opt.FailFast {
				return Token{}, IssueError{si}
			}
		}
	case KindBeginObject, KindBeginArray:
		p := e.enter()
		f := frame{array: tok.Kind == KindBeginArray, path: p}
		if !f.array && e.opt.OnDuplicate != DupIgnore {
			f.seen = make(map[string]struct{})
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.fail("parse_error", p, "max depth exceeded")
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
		e.leave()
	default:
		e.enter()
		e.leave()
	}

	if e.opt.MaxBytes > 0 {
		off := e.inner.Location()
		if off < 0 {
			off = e.read
		}
		if off > e.opt.MaxBytes {
			return Token{}, e.fail("truncated", e.current(), "max bytes exceeded")
		}
	}
	return tok, nil
}

func (e *enforcer) Location() int64 { return e.inner.Location() }

func (e *enforcer) emit(si SimpleIssue) {
	if e.opt.IssueSink != nil {
		e.opt.IssueSink(si)
	}
}

func (e *enforcer) fail(code, path, msg string) error {
	si := SimpleIssue{Code: code, Path: rootIfEmpty(path), Message: msg}
	e.emit(si)
	return IssueError{si}
}

// member records an object key and reports whether it repeats.
func (e *enforcer) member(key string) (SimpleIssue, bool) {
	n := len(e.stack)
	if n == 0 || e.stack[n-1].array {
		return SimpleIssue{}, false
	}
	top := &e.stack[n-1]
	top.key = key
	if top.seen == nil {
		return SimpleIssue{}, false
	}
	if _, dup := top.seen[key]; dup {
		return SimpleIssue{Code: "duplicate_key", Path: joinPointer(top.path, key), Message: "duplicate key " + strconv.Quote(key)}, true
	}
	top.seen[key] = struct{}{}
	return SimpleIssue{}, false
}

// enter returns the pointer of the value that starts at the current token and
// advances the enclosing array index.
func (e *enforcer) enter() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.array {
		p := joinPointer(top.path, strconv.Itoa(top.index))
		top.index++
		return p
	}
	return joinPointer(top.path, top.key)
}

// leave marks the value of the current object member as complete.
func (e *enforcer) leave() {
	if n := len(e.stack); n > 0 && !e.stack[n-1].array {
		e.stack[n-1].key = ""
	}
}

func (e *enforcer) current() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := e.stack[n-1]
	if !top.array && top.key != "" {
		return joinPointer(top.path, top.key)
	}
	return top.path
}

// tokenSize is a lower bound of the encoded size of tok.
func tokenSize(tok Token) int64 {
	switch tok.Kind {
	case KindKey:
		return int64(len(tok.String)) + 3
	case KindString:
		return int64(len(tok.String)) + 2
	case KindNumber:
		return int64(len(tok.Number))
	case KindBool:
		if tok.Bool {
			return 4
		}
		return 5
	case KindNull:
		return 4
	default:
		return 1
	}
}

func rootIfEmpty(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
