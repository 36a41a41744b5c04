package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opsmill-labs/franc/pkg/infrahub"
	"github.com/opsmill-labs/franc/pkg/types"
)

// NewGetNodeFiltersTool creates a new get_node_filters tool
func NewGetNodeFiltersTool() mcp.Tool {
	return mcp.NewTool(types.GetNodeFiltersToolName,
		mcp.WithDescription("Retrieve all available filters for a specific schema kind. "+
			"Filter types: attribute__value (single value), attribute__values (OR list), "+
			"relationship__attribute__value and relationship__attribute__values (filter on related objects without fetching them). "+
			"Examples: {\"name__value\": \"device-01\"}, {\"status__values\": [\"active\", \"planned\"]}, "+
			"{\"location__name__value\": \"Paris\"}."),
		mcp.WithString("kind",
			mcp.Description("Kind of the objects to retrieve filters for"),
			mcp.Required()),
		mcp.WithString("branch",
			mcp.Description("Branch to retrieve the filters from (defaults to main)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List available filters for a kind",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetNodeFilters handles the get_node_filters tool
func (m *Implementation) HandleGetNodeFilters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := mcp.ParseString(request, "kind", "")
	branch := mcp.ParseString(request, "branch", infrahub.DefaultBranchName)
	if kind == "" {
		return errorResult("kind is required", schemaMappingRemediation), nil
	}

	filters, err := m.client.NodeFilters(ctx, kind, branch)
	if err != nil {
		if errors.Is(err, infrahub.ErrSchemaNotFound) {
			return errorResult(fmt.Sprintf("Schema not found for kind: %s.", kind), schemaMappingRemediation), nil
		}
		return errorResult("Failed to build filters: "+err.Error(), "Verify the Infrahub server is reachable."), nil
	}
	return successResult(filters), nil
}
