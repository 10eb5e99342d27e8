// Package logger wraps slog with the text handler used across gtrack.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a slog.Logger writing key=value lines.
type Logger struct {
	*slog.Logger
}

// New returns a Logger writing to stderr at the given level.
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a Logger writing to w at the given level.
func NewLogger(level slog.Level, w io.Writer) *Logger {
	return &Logger{slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

// Err returns err as a log attribute.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	return NewLogger(slog.LevelError+1, io.Discard)
}
