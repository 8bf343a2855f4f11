package logging

import (
	"context"
)

var (
	// DefaultLogger is the default Logger for all logging, if one hasn't been provided in the context.
	DefaultLogger Logger = &NoOpLogger{}

	contextKey = loggerContextKey{}
)

type loggerContextKey struct{}

// FromContext returns the Logger set in the context with Context(), or the DefaultLogger if no Logger is set in the context.
// If DefaultLogger is nil, it returns a *NoOpLogger so that the return is always valid to call methods on without nil-checking.
func FromContext(ctx context.Context) Logger {
	l := ctx.Value(contextKey)
	if l != nil {
		if logger, ok := l.(Logger); ok {
			return logger
		}
	}
	if DefaultLogger != nil {
		return DefaultLogger
	}
	return &NoOpLogger{}
}

// Context returns a new context built from the provided context with the provided logger in it.
// The Logger added with Context() can be retrieved with FromContext()
func Context(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// Logger is the logging interface used throughout the module.
// Each method logs a message at its level, with optional arguments as a sequence of key/value pairs
// (e.g. InfoContext(ctx, "message", "key1", "val1", "key2", "val2")).
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// DebugContext logs at the DEBUG level, and provides the context for processing as part of log handling.
	// Generally, when a context is present, prefer DebugContext to Debug.
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
	// With returns a Logger with the supplied key/value pair arguments attached to any messages it logs.
	With(args ...any) Logger
}

// NoOpLogger is an implementation of Logger which does nothing when its methods are called
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, args ...any)                             {}
func (n *NoOpLogger) Info(msg string, args ...any)                              {}
func (n *NoOpLogger) Warn(msg string, args ...any)                              {}
func (n *NoOpLogger) Error(msg string, args ...any)                             {}
func (n *NoOpLogger) DebugContext(ctx context.Context, msg string, args ...any) {}
func (n *NoOpLogger) InfoContext(ctx context.Context, msg string, args ...any)  {}
func (n *NoOpLogger) WarnContext(ctx context.Context, msg string, args ...any)  {}
func (n *NoOpLogger) ErrorContext(ctx context.Context, msg string, args ...any) {}
func (n *NoOpLogger) With(...any) Logger {
	return n
}

var _ Logger = &NoOpLogger{}
