package ratelimit

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsmill-labs/franc/pkg/types"
)

func newRequest(tool string) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = tool
	return request
}

func TestStopIsIdempotent(t *testing.T) {
	limiter := NewRateLimiter()
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestRateLimiterCreation(t *testing.T) {
	limiter := NewRateLimiter()
	defer limiter.Stop()
	assert.NotNil(t, limiter)
	assert.Equal(t, defaultLimit, limiter.defaultLimit)

	custom := NewRateLimiter(
		WithDefaultLimit(100),
		WithToolLimit("test-tool", 50),
	)
	defer custom.Stop()
	assert.Equal(t, 100, custom.defaultLimit)
	assert.Equal(t, 50, custom.limits["test-tool"])
}

func TestSessionIDResolution(t *testing.T) {
	ctx := SetSessionIDToContext(context.Background(), "session-1")
	assert.Equal(t, "session-1", sessionID(ctx))

	// Without any session information the limiter falls back to a shared key
	assert.Equal(t, "unknown", sessionID(context.Background()))
}

func TestAllowConsumesTokens(t *testing.T) {
	limiter := NewRateLimiter(WithDefaultLimit(2))
	defer limiter.Stop()

	assert.True(t, limiter.Allow("s1", "tool"))
	assert.True(t, limiter.Allow("s1", "tool"))
	assert.False(t, limiter.Allow("s1", "tool"), "third immediate call exceeds the limit")

	// Sessions are tracked independently
	assert.True(t, limiter.Allow("s2", "tool"))

	// Tools are tracked independently within a session
	assert.True(t, limiter.Allow("s1", "other-tool"))
}

func TestMiddlewareDeniesOverLimit(t *testing.T) {
	limiter := NewRateLimiter(WithDefaultLimit(1))
	defer limiter.Stop()

	calls := 0
	handler := limiter.Middleware()(func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		calls++
		return mcp.NewToolResultText("ok"), nil
	})

	ctx := SetSessionIDToContext(context.Background(), "session-1")

	result, err := handler(ctx, newRequest("get_nodes"))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, 1, calls)

	result, err = handler(ctx, newRequest("get_nodes"))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, 1, calls, "denied call must not reach the handler")

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Rate limit exceeded for tool 'get_nodes'")
}

func TestDefaultConfigLimits(t *testing.T) {
	// Reads are allowed more often than writes
	assert.Equal(t, readLimit, DefaultConfig[types.GetNodesToolName])
	assert.Equal(t, readLimit, DefaultConfig[types.GetSchemaToolName])
	assert.Equal(t, writeLimit, DefaultConfig[types.BranchCreateToolName])
	assert.Equal(t, writeLimit, DefaultConfig[types.CreateDatacenterDeploymentToolName])
	assert.Equal(t, writeLimit, DefaultConfig[types.QueryGraphQLToolName])
	assert.Equal(t, defaultLimit, DefaultConfig[DefaultTool])
}

func TestGetDefaultRateLimiter(t *testing.T) {
	limiter := GetDefaultRateLimiter()
	defer limiter.Stop()

	assert.Equal(t, defaultLimit, limiter.defaultLimit)
	assert.Equal(t, readLimit, limiter.limitFor(types.GetNodesToolName))
	assert.Equal(t, writeLimit, limiter.limitFor(types.BranchCreateToolName))
	assert.Equal(t, defaultLimit, limiter.limitFor(types.ToonEncodeToolName))
}
