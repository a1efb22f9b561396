package stablestore

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with store-specific context.
// This provides structured logging with consistent field names.
//
// Keys are never logged; entries carry the key digest instead.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithDigest adds a digest field to the logger.
func (l *Logger) WithDigest(digest string) *Logger {
	return &Logger{
		Logger: l.Logger.With("digest", digest),
	}
}

// LogPut logs a put operation.
func (l *Logger) LogPut(ctx context.Context, digest string, size int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "put failed",
			"digest", digest,
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "put completed",
			"digest", digest,
			"size", size,
			"elapsed", elapsed,
		)
	}
}

// LogGet logs a read failure. Plain misses are logged at debug level only.
func (l *Logger) LogGet(ctx context.Context, digest string, found bool, err error) {
	if err != nil {
		l.WarnContext(ctx, "get failed, reporting key as absent",
			"digest", digest,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "get completed",
			"digest", digest,
			"found", found,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(ctx context.Context, digest string, removed bool, err error) {
	switch {
	case err != nil && removed:
		l.WarnContext(ctx, "remove completed but directory sync failed",
			"digest", digest,
			"error", err,
		)
	case err != nil:
		l.ErrorContext(ctx, "remove failed",
			"digest", digest,
			"error", err,
		)
	default:
		l.DebugContext(ctx, "remove completed",
			"digest", digest,
			"removed", removed,
		)
	}
}

// LogSweep logs a temp file sweep.
func (l *Logger) LogSweep(ctx context.Context, removed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "temp sweep failed",
			"removed", removed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "temp sweep completed",
			"removed", removed,
		)
	}
}
