package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opsmill-labs/franc/pkg/toon"
	"github.com/opsmill-labs/franc/pkg/types"
)

// NewToonEncodeTool creates a new toon_encode tool
func NewToonEncodeTool() mcp.Tool {
	return mcp.NewTool(types.ToonEncodeToolName,
		mcp.WithDescription("Encode data using the TOON format for token-efficient transmission. "+
			"TOON achieves 30-60% fewer tokens than JSON for typical data structures while preserving full information."),
		mcp.WithObject("data",
			mcp.Description("Data structure to encode (objects, arrays, primitives)"),
			mcp.Required()),
		mcp.WithBoolean("show_stats",
			mcp.Description("Include encoding statistics showing token savings (defaults to true)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Encode data with TOON",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleToonEncode handles the toon_encode tool
func (m *Implementation) HandleToonEncode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, ok := argumentValue(request, "data")
	if !ok {
		return errorResult("data is required", "Provide the data structure to encode."), nil
	}
	showStats := mcp.ParseBoolean(request, "show_stats", true)

	encoded, err := toon.Encode(data)
	if err != nil {
		return errorResult("TOON encoding failed: "+err.Error(),
			"Ensure data is JSON-serializable (objects, arrays, primitives)."), nil
	}

	response := map[string]any{
		"toon_encoded": encoded,
	}
	if showStats {
		stats, err := toon.Analyze(data)
		if err != nil {
			return errorResult("TOON analysis failed: "+err.Error(), "Ensure data is JSON-serializable."), nil
		}
		response["statistics"] = stats
	}
	return successResult(response), nil
}

// NewToonDecodeTool creates a new toon_decode tool
func NewToonDecodeTool() mcp.Tool {
	return mcp.NewTool(types.ToonDecodeToolName,
		mcp.WithDescription("Decode TOON-encoded data back to standard objects"),
		mcp.WithString("toon_string",
			mcp.Description("TOON-encoded string to decode"),
			mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Decode TOON data",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleToonDecode handles the toon_decode tool
func (m *Implementation) HandleToonDecode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	document := mcp.ParseString(request, "toon_string", "")
	if document == "" {
		return errorResult("toon_string is required", "Provide a TOON-encoded string to decode."), nil
	}

	decoded, err := toon.Decode(document)
	if err != nil {
		return errorResult("TOON decoding failed: "+err.Error(),
			"Ensure the input is a valid TOON-encoded string."), nil
	}
	return successResult(map[string]any{"decoded": decoded}), nil
}

// NewToonAnalyzeTool creates a new toon_analyze tool
func NewToonAnalyzeTool() mcp.Tool {
	return mcp.NewTool(types.ToonAnalyzeToolName,
		mcp.WithDescription("Analyze potential token savings from TOON encoding without encoding. "+
			"Savings under 20% are not worth encoding, 20-40% is a good candidate, over 40% an excellent one. "+
			"Compression works best on nested data, lists of similar objects, and repeated patterns."),
		mcp.WithObject("data",
			mcp.Description("Data structure to analyze for potential compression savings"),
			mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Analyze TOON compression savings",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleToonAnalyze handles the toon_analyze tool
func (m *Implementation) HandleToonAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, ok := argumentValue(request, "data")
	if !ok {
		return errorResult("data is required", "Provide the data structure to analyze."), nil
	}

	stats, err := toon.Analyze(data)
	if err != nil {
		return errorResult("TOON analysis failed: "+err.Error(), "Ensure data is JSON-serializable."), nil
	}

	var recommendation string
	switch {
	case stats.SavingsPercent < 20:
		recommendation = "Low savings - consider keeping original format"
	case stats.SavingsPercent < 40:
		recommendation = "Moderate savings - good candidate for toon encoding"
	default:
		recommendation = "Excellent savings - strongly recommend toon encoding"
	}

	return successResult(map[string]any{
		"json_length":     stats.JSONLength,
		"toon_length":     stats.ToonLength,
		"json_tokens":     stats.JSONTokens,
		"toon_tokens":     stats.ToonTokens,
		"savings_percent": stats.SavingsPercent,
		"recommendation":  recommendation,
	}), nil
}
