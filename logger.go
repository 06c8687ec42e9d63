package geoquad

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with geoquad-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogInsertRejected logs a rejected insert. Rejection is a recoverable
// condition (out-of-bounds point or full leaf at max depth), so it is
// logged at debug, not error.
func (l *Logger) LogInsertRejected(rec Record) {
	l.Debug("insert rejected",
		"key", rec.Key,
		"lat", rec.Point.Lat,
		"lon", rec.Point.Lon,
	)
}

// LogIngest logs the outcome of a bulk ingest.
func (l *Logger) LogIngest(accepted, rejected int) {
	if rejected > 0 {
		l.Warn("ingest completed with rejections",
			"accepted", accepted,
			"rejected", rejected,
		)
	} else {
		l.Info("ingest completed",
			"accepted", accepted,
		)
	}
}

// LogQuery logs a query operation.
func (l *Logger) LogQuery(kind string, results int, took time.Duration) {
	l.Debug("query completed",
		"kind", kind,
		"results", results,
		"took", took,
	)
}

// LogSave logs a snapshot save operation.
func (l *Logger) LogSave(ctx context.Context, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"records", records,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"records", records,
		)
	}
}

// LogLoad logs a snapshot load operation.
func (l *Logger) LogLoad(ctx context.Context, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"records", records,
		)
	}
}
