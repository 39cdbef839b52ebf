package texdedup

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with texdedup-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithRun adds a run id field to the logger.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run", runID),
	}
}

// LogRefine logs the outcome of a refinement run.
func (l *Logger) LogRefine(ctx context.Context, files, classes, bestEffort, skipped int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "refine failed",
			"files", files,
			"error", err,
		)
	case bestEffort > 0 || skipped > 0:
		l.WarnContext(ctx, "refine completed with best-effort results",
			"files", files,
			"classes", classes,
			"best_effort", bestEffort,
			"skipped", skipped,
		)
	default:
		l.InfoContext(ctx, "refine completed",
			"files", files,
			"classes", classes,
		)
	}
}

// LogReconcile logs a reconciliation against the certain ledger.
func (l *Logger) LogReconcile(ctx context.Context, rejected, dropped int) {
	l.InfoContext(ctx, "ledger reconciled",
		"rejected", rejected,
		"dropped", dropped,
	)
}

// LogSave logs persisting a ledger document set.
func (l *Logger) LogSave(ctx context.Context, what string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"document", what,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "saved",
			"document", what,
		)
	}
}

// LogSkip logs a texture left out because it could not be read or decoded.
func (l *Logger) LogSkip(ctx context.Context, id string, err error) {
	l.WarnContext(ctx, "skipping texture",
		"id", id,
		"error", err,
	)
}
