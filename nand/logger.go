package nand

import (
	"context"
	"log/slog"
)

// Logger is an optional logging interface that can be provided to a device
// handle. This allows integration with any logging framework.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// SlogLogger writes to an slog.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a Logger that writes to the given slog.Logger.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) Debug(msg string, kv ...interface{}) {
	l.logger.Log(context.Background(), slog.LevelDebug, msg, kv...)
}

func (l *SlogLogger) Info(msg string, kv ...interface{}) {
	l.logger.Log(context.Background(), slog.LevelInfo, msg, kv...)
}

func (l *SlogLogger) Error(msg string, kv ...interface{}) {
	l.logger.Log(context.Background(), slog.LevelError, msg, kv...)
}
