package otel

import (
	"os"
	"sync/atomic"
)

var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("MINIFEED_TRACE") != "")
}

// TraceEnabled reports whether MINIFEED_TRACE is set. When it is, the UI
// emits one event per Bubble Tea message it receives.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled overrides the flag in tests.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
