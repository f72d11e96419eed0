// Package appcontext carries request-scoped values (the logger and the run
// identifier) through the stages of the stress pipeline.
package appcontext

import (
	"context"
	"log/slog"
)

type contextKey struct{}

type runIDKey struct{}

// WithLogger creates a new context with the provided logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// LoggerFromContext retrieves the logger from the context.
// It returns a default logger if no logger is found.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}

	return slog.Default()
}

// WithRunID tags the context with the identifier of the current pipeline run.
// The logger stored in the context, if any, is enriched with the same value.
func WithRunID(ctx context.Context, runID string) context.Context {
	ctx = context.WithValue(ctx, runIDKey{}, runID)
	return WithLogger(ctx, LoggerFromContext(ctx).With("run_id", runID))
}

// RunIDFromContext returns the run identifier, or "" when none was set.
func RunIDFromContext(ctx context.Context) string {
	runID, _ := ctx.Value(runIDKey{}).(string)
	return runID
}
