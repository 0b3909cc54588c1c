package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()

	ctx = WithTraceID(ctx, "trace-123")
	ctx = WithSessionID(ctx, "session-abc")

	assert.Equal(t, "trace-123", GetTraceID(ctx))
	assert.Equal(t, "session-abc", GetSessionID(ctx))

	tc := FromContext(ctx)
	assert.Equal(t, "trace-123", tc.TraceID)
	assert.Equal(t, "session-abc", tc.SessionID)
}

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSessionID(ctx))
}

func TestNewRequestContext(t *testing.T) {
	ctx := NewRequestContext(context.Background())

	assert.NotEmpty(t, GetTraceID(ctx))
}

func TestNewTraceIDUnique(t *testing.T) {
	assert.NotEqual(t, NewTraceID(), NewTraceID())
}
