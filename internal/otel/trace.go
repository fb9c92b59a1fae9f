package otel

import (
	"fmt"
	"os"
	"sync/atomic"
)

// traceEnabled is set once at package init. Atomic because the UI goroutine
// reads it while tests write it via setTraceEnabled.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("RAGAWEB_TRACE") != "")
}

// TraceEnabled reports whether RAGAWEB_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// TraceMsg emits a debug-level trace event naming the Go type of msg.
// No-op unless tracing is enabled.
func (l *Logger) TraceMsg(kind EventKind, route string, msg any) {
	if !TraceEnabled() {
		return
	}
	l.Emit(Event{Level: LevelDebug, Kind: kind, Comp: "ui", Route: route, Msg: fmt.Sprintf("%T", msg)})
}

// setTraceEnabled overrides the traceEnabled flag for testing.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
