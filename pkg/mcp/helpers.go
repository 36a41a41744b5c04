package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opsmill-labs/franc/pkg/types"
)

// BoolPtr returns a pointer to the given bool value
func BoolPtr(b bool) *bool {
	return &b
}

// successResult wraps data in the response envelope and renders it as a
// text result
func successResult(data any) *mcp.CallToolResult {
	return envelopeResult(types.Success(data))
}

// errorResult wraps an error message and remediation hint in the response
// envelope. The result is marked as an error so middleware and clients see
// the failure, but the envelope keeps the remediation machine-readable.
func errorResult(message, remediation string) *mcp.CallToolResult {
	result := envelopeResult(types.Error(message, remediation))
	result.IsError = true
	return result
}

func envelopeResult(response types.Response) *mcp.CallToolResult {
	raw, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError("failed to marshal response: " + err.Error())
	}
	return mcp.NewToolResultText(string(raw))
}

// parseObject extracts an object argument as a map, returning nil when the
// argument is absent or not an object
func parseObject(request mcp.CallToolRequest, key string) map[string]any {
	args := request.GetArguments()
	if raw, ok := args[key].(map[string]any); ok {
		return raw
	}
	return nil
}

// argumentValue returns a raw argument of any type and whether it was provided
func argumentValue(request mcp.CallToolRequest, key string) (any, bool) {
	args := request.GetArguments()
	value, ok := args[key]
	return value, ok
}
