package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// parseLevel maps LOG_LEVEL to a slog level. Unknown values select info so
// a typo never silences the logs.
func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// handlerOptions builds the shared handler options for the given level.
// Source locations are attached only when the level gate is warn or
// stricter, where the extra lookup cost is paid rarely.
func handlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:     level,
		AddSource: level >= slog.LevelWarn,
	}
}

// NewLogger creates the production logger: JSON lines on stdout, level
// gated by LOG_LEVEL (debug, info, warn, error; default info).
func NewLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	return slog.New(slog.NewJSONHandler(os.Stdout, handlerOptions(level)))
}

// NewTextLogger creates a human-readable logger for local runs. Same
// LOG_LEVEL gate as NewLogger.
func NewTextLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	return slog.New(slog.NewTextHandler(os.Stdout, handlerOptions(level)))
}

// WithJobID stamps every line with the scrape job id so one job's output
// can be filtered out of an interleaved sweep. Empty ids pass the logger
// through unchanged.
func WithJobID(logger *slog.Logger, jobID string) *slog.Logger {
	if jobID == "" {
		return logger
	}
	return logger.With("job_id", jobID)
}

// WithFields returns a child logger carrying the given key-value pairs.
func WithFields(logger *slog.Logger, fields map[string]interface{}) *slog.Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return logger.With(args...)
}

type contextKey struct{}

// WithLogger stores logger in ctx for retrieval further down the call
// chain.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or the process
// default when none is present.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
