// Package ratelimit provides a per-session rate limiting middleware for MCP
// tool calls, using a token bucket per session and tool.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	cleanupInterval = 10 * time.Minute
	bucketTimeout   = 30 * time.Minute
)

type sessionIDKey struct{}

// SetSessionIDToContext stores a session ID in the context. Used by the
// timeout middleware, which replaces the request context and would otherwise
// lose the MCP session.
func SetSessionIDToContext(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// RateLimiter limits the number of requests per minute for each tool,
// tracked independently per MCP session
type RateLimiter struct {
	mu           sync.RWMutex
	limits       map[string]int
	defaultLimit int
	buckets      map[string]map[string]*bucket

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopped       bool
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	lastSeen time.Time
}

// Option configures a RateLimiter
type Option func(*RateLimiter)

// WithToolLimit sets the requests-per-minute limit for one tool
func WithToolLimit(toolName string, requestsPerMinute int) Option {
	return func(rl *RateLimiter) {
		rl.limits[toolName] = requestsPerMinute
	}
}

// WithDefaultLimit sets the requests-per-minute limit for tools without a
// specific limit
func WithDefaultLimit(requestsPerMinute int) Option {
	return func(rl *RateLimiter) {
		rl.defaultLimit = requestsPerMinute
	}
}

// NewRateLimiter creates a rate limiter and starts its bucket cleanup loop
func NewRateLimiter(opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		limits:       make(map[string]int),
		defaultLimit: defaultLimit,
		buckets:      make(map[string]map[string]*bucket),
		stopCleanup:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}

	rl.cleanupTicker = time.NewTicker(cleanupInterval)
	go func() {
		for {
			select {
			case <-rl.cleanupTicker.C:
				rl.cleanup()
			case <-rl.stopCleanup:
				return
			}
		}
	}()

	return rl
}

// Stop stops the cleanup loop. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.stopped {
		return
	}
	rl.stopped = true
	if rl.cleanupTicker != nil {
		rl.cleanupTicker.Stop()
		close(rl.stopCleanup)
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for sessionID, toolBuckets := range rl.buckets {
		for tool, b := range toolBuckets {
			b.mu.Lock()
			stale := now.Sub(b.lastSeen) > bucketTimeout
			b.mu.Unlock()
			if stale {
				delete(toolBuckets, tool)
			}
		}
		if len(toolBuckets) == 0 {
			delete(rl.buckets, sessionID)
		}
	}
}

// sessionID resolves the MCP session for a request, falling back to the
// value stashed by the timeout middleware
func sessionID(ctx context.Context) string {
	if session := server.ClientSessionFromContext(ctx); session != nil {
		return session.SessionID()
	}
	if id, ok := ctx.Value(sessionIDKey{}).(string); ok && id != "" {
		return id
	}
	return "unknown"
}

func (rl *RateLimiter) getBucket(session, tool string, limit int) *bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	toolBuckets, ok := rl.buckets[session]
	if !ok {
		toolBuckets = make(map[string]*bucket)
		rl.buckets[session] = toolBuckets
	}
	b, ok := toolBuckets[tool]
	if !ok {
		b = &bucket{
			tokens:   float64(limit),
			lastSeen: time.Now(),
		}
		toolBuckets[tool] = b
	}
	return b
}

func (rl *RateLimiter) limitFor(tool string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	if limit, ok := rl.limits[tool]; ok {
		return limit
	}
	return rl.defaultLimit
}

// Allow reports whether one more call of tool is permitted for the session,
// consuming a token when it is
func (rl *RateLimiter) Allow(session, tool string) bool {
	limit := rl.limitFor(tool)
	b := rl.getBucket(session, tool, limit)

	b.mu.Lock()
	defer b.mu.Unlock()

	// Refill based on time since the last call, then stamp it
	now := time.Now()
	elapsed := now.Sub(b.lastSeen).Seconds()
	b.lastSeen = now
	b.tokens = min(b.tokens+elapsed*float64(limit)/60.0, float64(limit))

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Middleware returns a tool handler middleware enforcing the configured limits
func (rl *RateLimiter) Middleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			tool := request.Params.Name
			if !rl.Allow(sessionID(ctx), tool) {
				return mcp.NewToolResultError(fmt.Sprintf("Rate limit exceeded for tool '%s'. Try again later.", tool)), nil
			}
			return next(ctx, request)
		}
	}
}
