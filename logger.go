package termcluster

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with termcluster-specific context.
// This provides structured logging with consistent field names.
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
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithWorker adds a worker identifier to the logger.
func (l *Logger) WithWorker(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("worker", id),
	}
}

// WithGroup adds a group key field to the logger.
func (l *Logger) WithGroup(group string) *Logger {
	return &Logger{
		Logger: l.Logger.With("group", group),
	}
}

// LogLoad logs the one-time centroid table load.
func (l *Logger) LogLoad(ctx context.Context, clusters, terms int, fingerprint uint32, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "centroid load failed",
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "centroid table loaded",
			"clusters", clusters,
			"terms", terms,
			"fingerprint", fingerprint,
			"duration", duration,
		)
	}
}

// LogAssign logs a single-group assignment.
func (l *Logger) LogAssign(ctx context.Context, observations, cluster int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "assign failed",
			"observations", observations,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "assign completed",
			"observations", observations,
			"cluster", cluster,
		)
	}
}

// LogRun logs a partitioned run.
func (l *Logger) LogRun(ctx context.Context, rows, partitions, groups int, shape string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"rows", rows,
			"partitions", partitions,
			"shape", shape,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "run completed",
			"rows", rows,
			"partitions", partitions,
			"groups", groups,
			"shape", shape,
			"duration", duration,
		)
	}
}
