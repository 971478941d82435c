// Package testutil holds helpers shared by the package test suites.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes through t.Log, so
// output only shows on failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	return NewTestLoggerAt(t, slog.LevelDebug)
}

// NewTestLoggerAt is NewTestLogger with an explicit minimum level, for tests
// that only care about warnings.
func NewTestLoggerAt(t testing.TB, level slog.Level) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(logWriter{t}, &slog.HandlerOptions{
		Level: level,
	}))
}

type logWriter struct {
	t testing.TB
}

// Write trims the handler's trailing newline so test output is not
// double-spaced.
func (w logWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}
