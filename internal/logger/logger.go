// Package logger provides structured logging for the forgemine CLI.
// Messages go to stderr as key=value text lines. A harvest can run for
// hours, so every message carries the attributes needed to follow a
// collection's progress after the fact. Verbose mode via the --verbose
// flag lowers the threshold to debug.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu    sync.RWMutex
	level = new(slog.LevelVar)
	log   = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetVerbose lowers the log threshold to debug when enabled.
func SetVerbose(v bool) {
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// IsVerbose returns true if debug messages are emitted.
func IsVerbose() bool {
	return level.Level() <= slog.LevelDebug
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(w)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs a message with key-value attributes in verbose mode only.
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info logs an informational message with key-value attributes.
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn logs a warning with key-value attributes.
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs an error with key-value attributes.
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}
