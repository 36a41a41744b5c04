package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/opsmill-labs/franc/pkg/infrahub"
	"github.com/opsmill-labs/franc/pkg/toon"
	"github.com/opsmill-labs/franc/pkg/types"
)

// NewGetNodesTool creates a new get_nodes tool
func NewGetNodesTool() mcp.Tool {
	return mcp.NewTool(types.GetNodesToolName,
		mcp.WithDescription("Get display labels of all objects of a specific kind from Infrahub. "+
			"Use get_schema_mapping to list available kinds and get_node_filters to list available filters. "+
			"Results with more than 10 items are TOON-compressed; use toon_decode to expand them."),
		mcp.WithString("kind",
			mcp.Description("Kind of the objects to retrieve"),
			mcp.Required()),
		mcp.WithString("branch",
			mcp.Description("Branch to retrieve the objects from (defaults to main)")),
		mcp.WithObject("filters",
			mcp.Description("Dictionary of filters to apply, e.g. {\"name__value\": \"device-01\"}")),
		mcp.WithBoolean("partial_match",
			mcp.Description("Whether to use partial matching for text filters (defaults to false)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List Infrahub nodes",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetNodes handles the get_nodes tool
func (m *Implementation) HandleGetNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := mcp.ParseString(request, "kind", "")
	branch := mcp.ParseString(request, "branch", infrahub.DefaultBranchName)
	filters := parseObject(request, "filters")
	partialMatch := mcp.ParseBoolean(request, "partial_match", false)

	if kind == "" {
		return errorResult("kind is required", schemaMappingRemediation), nil
	}

	m.logger.Info("fetching nodes",
		zap.String("kind", kind),
		zap.String("branch", branch),
		zap.Any("filters", filters))

	labels, err := m.client.NodeLabels(ctx, kind, branch, filters, partialMatch)
	if err != nil {
		switch {
		case errors.Is(err, infrahub.ErrSchemaNotFound):
			return errorResult(fmt.Sprintf("Schema not found for kind: %s.", kind), schemaMappingRemediation), nil
		case errors.Is(err, infrahub.ErrBranchNotFound):
			return errorResult(err.Error(), "Check the branch name or your permissions."), nil
		default:
			remediation := fmt.Sprintf("Check the provided filters or the kind name. "+
				"Use get_node_filters(kind='%s') to see available filter keys. "+
				"Use get_schema(kind='%s') to inspect the schema.", kind, kind)
			return errorResult("Query failed: "+err.Error(), remediation), nil
		}
	}

	// Empty results are not an error, but the agent needs to know exactly
	// what was searched so it can suggest a narrower follow-up.
	if len(labels) == 0 {
		note := fmt.Sprintf("No %s objects exist in branch '%s'.", kind, branch)
		if len(filters) > 0 {
			note = fmt.Sprintf("No objects found for kind=%s with filters=%v in branch '%s'. "+
				"Try: (1) Remove filters to see if any %s objects exist, "+
				"(2) Use get_node_filters(kind='%s') to verify filter keys are correct, "+
				"(3) Use partial_match=True for text filters.", kind, filters, branch, kind, kind)
		}
		return successResult(map[string]any{
			"nodes": []string{},
			"count": 0,
			"kind":  kind,
			"note":  note,
		}), nil
	}

	if len(labels) > toonAutoThreshold {
		return m.compressedNodesResult(labels, kind, "nodes_toon")
	}
	return successResult(labels), nil
}

// compressedNodesResult wraps a large label list in a TOON-compressed payload
func (m *Implementation) compressedNodesResult(labels []string, kind, field string) (*mcp.CallToolResult, error) {
	encoded, err := toon.Encode(labels)
	if err != nil {
		// Compression is best effort
		return successResult(labels), nil
	}
	stats, err := toon.Analyze(labels)
	if err != nil {
		return successResult(labels), nil
	}

	m.logger.Info("auto-compressing result with TOON",
		zap.String("kind", kind),
		zap.Int("count", len(labels)),
		zap.Float64("savings_percent", stats.SavingsPercent))

	return successResult(map[string]any{
		field:               encoded,
		"count":             len(labels),
		"kind":              kind,
		"compression_stats": stats,
		"_note":             "Result auto-compressed with TOON. Use toon_decode to expand if needed.",
	}), nil
}
