package util

import (
	"context"
	"time"
)

// Context keys.
type ctxKey string

const (
	ctxKeyRequestID      ctxKey = "request_id"
	ctxKeyStartTime      ctxKey = "start_time"
	ctxKeyRoute          ctxKey = "route"
	ctxKeyHandler        ctxKey = "handler"
	ctxKeyMatchedVersion ctxKey = "matched_version"
	ctxKeyPathParams     ctxKey = "path_params"
)

// ContextWithRequestID adds a request ID to the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// ContextWithStartTime adds the request start time to the context.
func ContextWithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ctxKeyStartTime, t)
}

// StartTimeFromContext extracts the request start time from context.
func StartTimeFromContext(ctx context.Context) time.Time {
	if v, ok := ctx.Value(ctxKeyStartTime).(time.Time); ok {
		return v
	}
	return time.Time{}
}

// ContextWithRoute adds the matched route key to the context.
func ContextWithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, route)
}

// RouteFromContext extracts the matched route key from context.
func RouteFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRoute).(string); ok {
		return v
	}
	return ""
}

// ContextWithHandler adds the resolved handler ID to the context.
func ContextWithHandler(ctx context.Context, handler string) context.Context {
	return context.WithValue(ctx, ctxKeyHandler, handler)
}

// HandlerFromContext extracts the resolved handler ID from context.
func HandlerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyHandler).(string); ok {
		return v
	}
	return ""
}

// ContextWithMatchedVersion adds the declared version that won
// resolution to the context.
func ContextWithMatchedVersion(ctx context.Context, v string) context.Context {
	return context.WithValue(ctx, ctxKeyMatchedVersion, v)
}

// MatchedVersionFromContext extracts the matched declared version.
// Empty for plain mappings.
func MatchedVersionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyMatchedVersion).(string); ok {
		return v
	}
	return ""
}

// ContextWithPathParams adds path parameters to the context.
func ContextWithPathParams(ctx context.Context, params map[string]string) context.Context {
	return context.WithValue(ctx, ctxKeyPathParams, params)
}

// PathParamsFromContext extracts path parameters from context.
func PathParamsFromContext(ctx context.Context) map[string]string {
	if v, ok := ctx.Value(ctxKeyPathParams).(map[string]string); ok {
		return v
	}
	return nil
}

// ElapsedTime returns the time elapsed since the start time in context.
func ElapsedTime(ctx context.Context) time.Duration {
	start := StartTimeFromContext(ctx)
	if start.IsZero() {
		return 0
	}
	return time.Since(start)
}
