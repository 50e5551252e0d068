package skemac

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeDuplicateKey   = "duplicate_key"
	CodeTooSmall       = "too_small"
	CodeTooBig         = "too_big"
	CodeTooShort       = "too_short"
	CodeTooLong        = "too_long"
	CodePattern        = "pattern"
	CodeInvalidEnum    = "invalid_enum"
	CodeInvalidConst   = "invalid_const"
	CodeInvalidFormat  = "invalid_format"
	CodeNotMultipleOf  = "not_multiple_of"
	CodeUniqueness     = "uniqueness"
	CodeContains       = "contains"
	CodeNoMatch        = "no_match"
	CodeUnionAmbiguous = "union_ambiguous"
	CodeNotAllowed     = "not_allowed"
	CodeParseError     = "parse_error"
	CodeTruncated      = "truncated"
)

// Category classifies validation issues into the failure taxonomy.
type Category string

const (
	CategoryTypeMismatch Category = "type_mismatch"
	CategoryConstraint   Category = "constraint_violation"
	CategoryComposition  Category = "composition_failure"
	CategoryConditional  Category = "conditional_violation"
	CategoryParse        Category = "parse"
)

// Issue represents a single validation entry.
type Issue struct {
	Path     string // JSON Pointer (for example: /items/2/price).
	Code     string // One of the codes listed above.
	Keyword  string // Schema keyword that produced the issue (type, const, minItems, ...).
	Category Category
	Message  string
	// Cause carries the aggregated child Issues of a failed composition, or an
	// underlying error for parse issues.
	Cause  error
	Offset int64 // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"min":1, "max":10}) for
	// message resolution and observability.
	Params map[string]any
	// Rule records the condition chain for conditional issues, outermost
	// first, e.g. "if a then / if b else".
	Rule string
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. required at /name
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Paths returns the JSON Pointers of all issues in order.
func (iss Issues) Paths() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Path
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Compile-time failures. They are always delivered wrapped in a *CompileError.
var (
	ErrMissingType     = errors.New("type key is missing")
	ErrUnsupportedType = errors.New("unsupported data type")
)

// CompileError reports a schema fragment that cannot be compiled.
type CompileError struct {
	Pointer string // JSON Pointer of the offending node inside the schema document.
	Keyword string // Usually "type".
	Value   any    // Offending keyword value, when there is one.
	Err     error  // ErrMissingType or ErrUnsupportedType.
}

func (e *CompileError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s at %s: %v", e.Err, e.Pointer, e.Value)
	}
	return fmt.Sprintf("%s at %s", e.Err, e.Pointer)
}

func (e *CompileError) Unwrap() error { return e.Err }
