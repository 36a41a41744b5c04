package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/opsmill-labs/franc/pkg/ratelimit"
)

// WithTimeoutContext adds a timeout context to all tool handlers.
// This prevents slow Infrahub queries from being cancelled when the client
// drops the request context early.
func WithTimeoutContext(timeout time.Duration) server.ServerOption {
	return server.WithToolHandlerMiddleware(func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
			// Extract session ID from the original context
			var sessionID string
			if session := server.ClientSessionFromContext(ctx); session != nil {
				sessionID = session.SessionID()
			}

			timeoutCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			// Carry the session ID into the new context so rate limiting
			// still tracks per session
			if sessionID != "" {
				timeoutCtx = ratelimit.SetSessionIDToContext(timeoutCtx, sessionID)
			}

			return next(timeoutCtx, request)
		}
	})
}

// WithRequestLogging logs every tool call with a correlation ID and duration
func WithRequestLogging(logger *zap.Logger) server.ServerOption {
	return server.WithToolHandlerMiddleware(func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			requestID := uuid.NewString()
			start := time.Now()

			logger.Debug("tool call started",
				zap.String("request_id", requestID),
				zap.String("tool", request.Params.Name))

			result, err := next(ctx, request)

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("tool", request.Params.Name),
				zap.Duration("duration", time.Since(start)),
			}
			switch {
			case err != nil:
				logger.Error("tool call failed", append(fields, zap.Error(err))...)
			case result != nil && result.IsError:
				logger.Warn("tool call returned error result", fields...)
			default:
				logger.Debug("tool call completed", fields...)
			}
			return result, err
		}
	})
}
