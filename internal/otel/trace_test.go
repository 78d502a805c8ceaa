package otel

import "testing"

func TestTraceToggle(t *testing.T) {
	orig := TraceEnabled()
	t.Cleanup(func() { setTraceEnabled(orig) })

	for _, v := range []bool{true, false, true} {
		setTraceEnabled(v)
		if TraceEnabled() != v {
			t.Errorf("TraceEnabled() = %v after set(%v)", TraceEnabled(), v)
		}
	}
}
