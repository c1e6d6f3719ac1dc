package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, RouteFromContext(ctx))
	assert.Empty(t, HandlerFromContext(ctx))
	assert.Empty(t, MatchedVersionFromContext(ctx))
	assert.Nil(t, PathParamsFromContext(ctx))
	assert.True(t, StartTimeFromContext(ctx).IsZero())

	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithRoute(ctx, "GET /users")
	ctx = ContextWithHandler(ctx, "users-v2")
	ctx = ContextWithMatchedVersion(ctx, "2.0")
	ctx = ContextWithPathParams(ctx, map[string]string{"id": "42"})

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "GET /users", RouteFromContext(ctx))
	assert.Equal(t, "users-v2", HandlerFromContext(ctx))
	assert.Equal(t, "2.0", MatchedVersionFromContext(ctx))
	assert.Equal(t, map[string]string{"id": "42"}, PathParamsFromContext(ctx))
}

func TestElapsedTime(t *testing.T) {
	t.Parallel()

	assert.Zero(t, ElapsedTime(context.Background()))

	ctx := ContextWithStartTime(context.Background(), time.Now().Add(-time.Second))
	assert.GreaterOrEqual(t, ElapsedTime(ctx), time.Second)
}
