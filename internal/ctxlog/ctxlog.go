// Package ctxlog provides context keys for safely passing a slog.Logger
// instance and the run correlation id through context.Context.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is an unexported type to prevent collisions with context keys from other packages.
type key int

const (
	loggerKey key = iota
	runIDKey
)

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the slog.Logger from a context. If no logger is
// found, it returns the default global logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithRunID returns a new context carrying the run correlation id. The logger
// already in the context (if any) is rebound so every record carries it.
func WithRunID(ctx context.Context, runID uint32) context.Context {
	ctx = context.WithValue(ctx, runIDKey, runID)
	return WithLogger(ctx, FromContext(ctx).With("run_id", runID))
}

// RunID returns the run correlation id stored in ctx, and whether one was set.
func RunID(ctx context.Context) (uint32, bool) {
	id, ok := ctx.Value(runIDKey).(uint32)
	return id, ok
}
