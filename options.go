package stablestore

import (
	"log/slog"

	"github.com/hupe1980/stablestore/internal/fs"
	"github.com/hupe1980/stablestore/resource"
)

type options struct {
	fs                 fs.FileSystem
	metricsCollector   MetricsCollector
	logger             *Logger
	keyLocking         bool
	resourceController *resource.Controller
}

// Option configures Store construction.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := stablestore.NewJSONLogger(slog.LevelInfo)
//	st, _ := stablestore.Open("/var/lib/node/stable", stablestore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &stablestore.BasicMetricsCollector{}
//	st, _ := stablestore.Open(dir, stablestore.WithMetricsCollector(metrics))
//	// ... perform operations ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithFileSystem sets the file system used for all IO.
// This is primarily used for testing and fault injection.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithKeyLocking serializes Put and Remove calls on the same key inside the
// process. Without it, callers must not run two mutating operations on one
// key concurrently because both stage through the same temp file.
func WithKeyLocking() Option {
	return func(o *options) {
		o.keyLocking = true
	}
}

// WithResourceController bounds concurrent operations and IO throughput.
// Admission happens before any IO; an operation waiting for admission is the
// only point at which its context is honored.
//
// A Put rejected at admission returns an error matching ctx.Err()
// (context.Canceled or context.DeadlineExceeded). It matches neither ErrIO
// nor ErrInvalidArgument. Get and Remove report absent and false.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resourceController = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		fs:               fs.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
