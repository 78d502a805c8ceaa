// Package logging is minifeed's human-readable debug log. Output goes to a
// dated file so it never fights the TUI for the terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	mu sync.RWMutex

	// logger is nil until Init or InitWriter; every helper is a no-op before that.
	logger *log.Logger

	logFile *os.File
)

// FileName returns the log file name for the given day.
func FileName(day time.Time) string {
	return fmt.Sprintf("minifeed-%s.log", day.Format("2006-01-02"))
}

// Init opens today's log file under dir and installs a logger at level.
// An unknown level falls back to info.
func Init(dir, level string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, FileName(time.Now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	InitWriter(f, level)

	mu.Lock()
	logFile = f
	mu.Unlock()
	return nil
}

// InitWriter installs a logger writing to w.
func InitWriter(w io.Writer, level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
	})

	mu.Lock()
	logger = l
	mu.Unlock()
}

// Close flushes and closes the log file, if any, and uninstalls the logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = nil
}

func current() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Info logs an info message.
func Info(msg string, keyvals ...any) {
	if l := current(); l != nil {
		l.Info(msg, keyvals...)
	}
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...any) {
	if l := current(); l != nil {
		l.Debug(msg, keyvals...)
	}
}

// Warn logs a warning.
func Warn(msg string, keyvals ...any) {
	if l := current(); l != nil {
		l.Warn(msg, keyvals...)
	}
}

// Error logs an error.
func Error(msg string, keyvals ...any) {
	if l := current(); l != nil {
		l.Error(msg, keyvals...)
	}
}

// WithPrefix returns a child logger tagged with prefix, or a discard logger
// before Init.
func WithPrefix(prefix string) *log.Logger {
	if l := current(); l != nil {
		return l.WithPrefix(prefix)
	}
	return log.New(io.Discard)
}
