package skemac

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Tracer receives compile and validation events. Implementations must be safe
// for concurrent use when the compiled validator is shared.
type Tracer interface {
	Trace(event string, keyvals ...any)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(event string, keyvals ...any)

func (f TracerFunc) Trace(event string, keyvals ...any) { f(event, keyvals...) }

// LogTracer emits every event at debug level on a go-kit logger.
func LogTracer(logger log.Logger) Tracer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return logTracer{logger: log.With(logger, "component", "skemac")}
}

type logTracer struct{ logger log.Logger }

func (t logTracer) Trace(event string, keyvals ...any) {
	kv := make([]any, 0, len(keyvals)+2)
	kv = append(kv, "msg", event)
	kv = append(kv, keyvals...)
	_ = level.Debug(t.logger).Log(kv...)
}
