// Package logging provides the five-level sink the scheduling core emits
// events to, plus a log/slog-backed default implementation and context
// plumbing so deeply nested goroutines and worker dispatch code never need
// an explicit logger parameter.
package logging

import (
	"context"
	"log/slog"
	"os"
)

// LevelNotice sits between slog's Info and Warn levels, giving this
// library's five-level contract (Debug/Info/Notice/Warning/Error) a home in
// slog's otherwise four-level scheme.
const LevelNotice = slog.LevelInfo + 2

// Logger is the five-level sink every component in this module emits events
// to. Implementations are not expected to return an error; a logger that
// cannot log has nothing useful to report it to.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Notice(msg string, kv ...any)
	Warning(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// slogLogger adapts a *slog.Logger to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

// NewSlog wraps l as a Logger. Passing nil uses a new slog text handler over
// os.Stderr at Debug level, matching the teacher lineage's habit of a
// permissive default during development.
func NewSlog(l *slog.Logger) Logger {
	if l == nil {
		l = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return &slogLogger{l: l}
}

func (s *slogLogger) Debug(msg string, kv ...any)   { s.l.Debug(msg, kv...) }
func (s *slogLogger) Info(msg string, kv ...any)    { s.l.Info(msg, kv...) }
func (s *slogLogger) Notice(msg string, kv ...any)  { s.l.Log(context.Background(), LevelNotice, msg, kv...) }
func (s *slogLogger) Warning(msg string, kv ...any) { s.l.Warn(msg, kv...) }
func (s *slogLogger) Error(msg string, kv ...any)   { s.l.Error(msg, kv...) }

type contextKey struct{}

var loggerKey = contextKey{}

// WithContext returns a new context carrying logger.
func WithContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the Logger embedded in ctx, or a default NewSlog(nil)
// logger if none was set.
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	return NewSlog(nil)
}
