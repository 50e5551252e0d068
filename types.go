package skemac

// NumberMode dictates how numbers are interpreted.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // Fast mode (with potential precision loss).
	NumberJSONNumber                   // Preserve json.Number (default; exact multipleOf/const checks).
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Warn or Error (duplicate JSON keys).
}

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// ParseOpt bundles decoding options for Source-driven validation.
// Zero limits are unbounded.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int   // nesting depth of objects and arrays
	MaxBytes   int64 // encoded document size
	// FailFast stops decoding and validation at the first issue.
	FailFast bool
	// CollectAll reports every issue of a field instead of only the first.
	CollectAll bool
}
