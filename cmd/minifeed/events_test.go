package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/abelbrown/minifeed/internal/otel"
)

func journal(t *testing.T, events ...otel.Event) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	for _, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return &buf
}

func TestEventFilter(t *testing.T) {
	ev := otel.Event{Kind: otel.KindFetchError, Level: otel.LevelWarn, Comp: "fetch", ReqID: "r1"}
	tests := []struct {
		name   string
		filter eventFilter
		want   bool
	}{
		{"empty", eventFilter{}, true},
		{"kind prefix", eventFilter{kind: "fetch"}, true},
		{"kind mismatch", eventFilter{kind: "poll"}, false},
		{"level below", eventFilter{level: "info"}, true},
		{"level equal", eventFilter{level: "warn"}, true},
		{"level above", eventFilter{level: "error"}, false},
		{"comp", eventFilter{comp: "fetch"}, true},
		{"comp mismatch", eventFilter{comp: "ui"}, false},
		{"req", eventFilter{req: "r1"}, true},
		{"req mismatch", eventFilter{req: "r2"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.match(ev); got != tt.want {
				t.Errorf("match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadTailLines(t *testing.T) {
	now := time.Now()
	buf := journal(t,
		otel.Event{Time: now, Kind: otel.KindPollTick, Msg: "1"},
		otel.Event{Time: now, Kind: otel.KindFetchStart, Msg: "2"},
		otel.Event{Time: now, Kind: otel.KindPollTick, Msg: "3"},
		otel.Event{Time: now, Kind: otel.KindPollTick, Msg: "4"},
	)
	buf.WriteString("not json\n\n")

	lines := readTailLines(buf, 2, eventFilter{kind: "poll"})
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ev.Msg != "3" || lines[1].ev.Msg != "4" {
		t.Errorf("tail = %q, %q; want 3, 4", lines[0].ev.Msg, lines[1].ev.Msg)
	}
	if !strings.Contains(string(lines[1].raw), `"msg":"4"`) {
		t.Errorf("raw line = %s", lines[1].raw)
	}
}

func TestReadTailLinesZero(t *testing.T) {
	buf := journal(t, otel.Event{Kind: otel.KindPollTick})
	if lines := readTailLines(buf, 0, eventFilter{}); len(lines) != 0 {
		t.Errorf("tail 0 returned %d lines", len(lines))
	}
	if buf.Len() != 0 {
		t.Error("reader should be drained")
	}
}

func TestFormatEvent(t *testing.T) {
	color.NoColor = true
	ev := otel.Event{
		Time:  time.Date(2025, 1, 2, 3, 4, 5, 6e6, time.UTC),
		Level: otel.LevelError,
		Kind:  otel.KindFetchError,
		Comp:  "session",
		ReqID: "0123456789abcdef",
		Scope: "feed:f1",
		Mode:  "poll",
		DurMs: 12.34,
		Err:   "timeout",
	}
	got := formatEvent(ev)
	for _, want := range []string{"03:04:05.006", "ERROR", "[session]", "fetch.error", "scope=feed:f1", "mode=poll", "(12.3ms)", "req=01234567", "err=timeout"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEvent missing %q in %q", want, got)
		}
	}
}

func TestDurPrecision(t *testing.T) {
	tests := []struct {
		ms   float64
		want int
	}{
		{0.5, 2},
		{1, 1},
		{99.9, 1},
		{100, 0},
	}
	for _, tt := range tests {
		if got := durPrecision(tt.ms); got != tt.want {
			t.Errorf("durPrecision(%v) = %d, want %d", tt.ms, got, tt.want)
		}
	}
}

func TestTrimLine(t *testing.T) {
	if got := string(trimLine([]byte("abc\r\n"))); got != "abc" {
		t.Errorf("trimLine = %q", got)
	}
}
