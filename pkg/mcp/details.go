package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opsmill-labs/franc/pkg/infrahub"
	"github.com/opsmill-labs/franc/pkg/types"
)

// NewGetObjectDetailsTool creates a new get_object_details tool
func NewGetObjectDetailsTool() mcp.Tool {
	return mcp.NewTool(types.GetObjectDetailsToolName,
		mcp.WithDescription("Get all attribute values and relationship display labels for a single object. "+
			"Relationships of cardinality one return a display label, cardinality many a list of display labels. "+
			"Use get_nodes first to enumerate objects, then this tool for full data."),
		mcp.WithString("kind",
			mcp.Description("Kind of the object to retrieve"),
			mcp.Required()),
		mcp.WithObject("filters",
			mcp.Description("Attribute filters identifying the object, e.g. {\"name__value\": \"DC-1\"}"),
			mcp.Required()),
		mcp.WithString("branch",
			mcp.Description("Branch to retrieve the object from (defaults to main)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Get details of a single object",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetObjectDetails handles the get_object_details tool
func (m *Implementation) HandleGetObjectDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := mcp.ParseString(request, "kind", "")
	branch := mcp.ParseString(request, "branch", infrahub.DefaultBranchName)
	filters := parseObject(request, "filters")

	if kind == "" {
		return errorResult("kind is required", schemaMappingRemediation), nil
	}
	if len(filters) == 0 {
		return errorResult("filters are required to identify the object",
			fmt.Sprintf("Use get_node_filters(kind='%s') to see available filter keys.", kind)), nil
	}

	details, err := m.client.NodeDetails(ctx, kind, branch, filters)
	if err != nil {
		switch {
		case errors.Is(err, infrahub.ErrSchemaNotFound):
			return errorResult(fmt.Sprintf("Schema not found for kind: %s.", kind), schemaMappingRemediation), nil
		case errors.Is(err, infrahub.ErrNodeNotFound):
			return errorResult(fmt.Sprintf("No object found for kind=%s with filters=%v in branch '%s'.", kind, filters, branch),
				"Verify filter keys and values using get_node_filters."), nil
		default:
			return errorResult("Object retrieval failed: "+err.Error(),
				fmt.Sprintf("Use get_node_filters(kind='%s') to verify filter keys.", kind)), nil
		}
	}
	return successResult(details), nil
}
