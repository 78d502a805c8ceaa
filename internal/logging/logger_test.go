package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHelpersNoopBeforeInit(t *testing.T) {
	Close()
	Info("nothing")
	Debug("nothing")
	Warn("nothing")
	Error("nothing")
	WithPrefix("x").Info("discarded")
}

func TestInitWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn")
	t.Cleanup(Close)

	Info("hidden")
	Debug("hidden")
	Warn("shown", "feed", "f1")
	Error("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("below-level message written: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "feed=f1") {
		t.Errorf("missing warn line: %s", out)
	}
	if !strings.Contains(out, "also shown") {
		t.Errorf("missing error line: %s", out)
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "chatty")
	t.Cleanup(Close)

	Debug("debug line")
	Info("info line")
	if strings.Contains(buf.String(), "debug line") {
		t.Error("debug should be filtered at info level")
	}
	if !strings.Contains(buf.String(), "info line") {
		t.Error("info line missing")
	}
}

func TestInitCreatesDatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := Init(dir, "debug"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("hello", "n", 1)
	Close()

	data, err := os.ReadFile(filepath.Join(dir, FileName(time.Now())))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file missing message: %s", data)
	}
}

func TestFileName(t *testing.T) {
	day := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	if got := FileName(day); got != "minifeed-2025-03-09.log" {
		t.Errorf("FileName() = %q", got)
	}
}
