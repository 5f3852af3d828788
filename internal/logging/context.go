// Bookreco - Concurrent Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookreco

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// batchIDKey is the context key for recommendation batch IDs.
	batchIDKey contextKey = "batch_id"

	// loggerKey is the context key for storing a logger instance.
	loggerKey contextKey = "logger"
)

// GenerateBatchID creates a new batch ID.
// Returns the first 8 characters of a UUID for readability.
func GenerateBatchID() string {
	return uuid.New().String()[:8]
}

// ContextWithBatchID returns a new context carrying the given batch ID.
func ContextWithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchIDKey, id)
}

// ContextWithNewBatchID returns a context with a newly generated batch ID.
func ContextWithNewBatchID(ctx context.Context) context.Context {
	return ContextWithBatchID(ctx, GenerateBatchID())
}

// BatchIDFromContext retrieves the batch ID from context.
// Returns empty string if not present.
func BatchIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(batchIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithLogger stores a logger in the context.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext retrieves a logger from context.
// Returns the global logger if no logger is stored in context.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return Logger()
}

// Ctx returns the context logger with batch_id added when present.
//
//	logging.Ctx(ctx).Info().Msg("scoring users")
//	// Output: {"level":"info","batch_id":"abc12345","message":"scoring users"}
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := CtxWith(ctx).Logger()
	return &logger
}

// CtxWith returns a logger context builder with context values pre-populated.
//
//	logger := logging.CtxWith(ctx).Str("user_id", uid).Logger()
func CtxWith(ctx context.Context) zerolog.Context {
	logger := LoggerFromContext(ctx)
	logCtx := logger.With()

	if batchID := BatchIDFromContext(ctx); batchID != "" {
		logCtx = logCtx.Str("batch_id", batchID)
	}
	return logCtx
}
