// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	rebuildIDKey contextKey = "rebuild_id"
)

// GenerateRequestID returns a new UUID for an HTTP request.
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateRebuildID returns a short ID used to correlate the log lines of one
// engine rebuild.
func GenerateRebuildID() string {
	return uuid.New().String()[:8]
}

// ContextWithRequestID stores a request ID in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRebuildID stores a rebuild ID in ctx.
func ContextWithRebuildID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, rebuildIDKey, id)
}

// RebuildIDFromContext returns the rebuild ID stored in ctx, or "".
func RebuildIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(rebuildIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger enriched with the IDs found in ctx.
//
//	logging.Ctx(ctx).Info().Str("trip_id", id).Msg("Recommendation served")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	if id := RebuildIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("rebuild_id", id)
	}
	l := logCtx.Logger()
	return &l
}
