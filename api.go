package skemac

import "context"

// MessageResolver supplies custom validation messages. It receives the schema
// keyword that failed (const, enum, type, minItems, ...), the field key and
// contextual parameters (title, label, literal values, limits). Returning false
// selects the default message.
type MessageResolver interface {
	Message(keyword, key string, params map[string]any) (string, bool)
}

// MessageFunc adapts a function to MessageResolver.
type MessageFunc func(keyword, key string, params map[string]any) (string, bool)

func (f MessageFunc) Message(keyword, key string, params map[string]any) (string, bool) {
	return f(keyword, key, params)
}

// ---- Validation-time context options ----

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
	_ctxKeyCollectAll
)

// WithFailFast returns a child context that stops validation at the first issue.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current validation should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}

// WithCollectAll returns a child context that reports every violated rule
// instead of the first failing rule per field.
func WithCollectAll(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyCollectAll, enabled)
}

// IsCollectAll reports whether every violated rule should be reported.
func IsCollectAll(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyCollectAll)
	b, _ := v.(bool)
	return b
}

// ContextWithOpt projects the mode flags of a ParseOpt onto ctx.
func ContextWithOpt(ctx context.Context, opt ParseOpt) context.Context {
	if opt.FailFast {
		ctx = WithFailFast(ctx, true)
	}
	if opt.CollectAll {
		ctx = WithCollectAll(ctx, true)
	}
	return ctx
}
