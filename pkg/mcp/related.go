package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opsmill-labs/franc/pkg/infrahub"
	"github.com/opsmill-labs/franc/pkg/types"
)

// NewGetRelatedNodesTool creates a new get_related_nodes tool
func NewGetRelatedNodesTool() mcp.Tool {
	return mcp.NewTool(types.GetRelatedNodesToolName,
		mcp.WithDescription("Retrieve the nodes related to one object through a named relationship. "+
			"Check the schema for the kind to see which relationships exist."),
		mcp.WithString("kind",
			mcp.Description("Kind of the object whose relations to fetch"),
			mcp.Required()),
		mcp.WithString("relation",
			mcp.Description("Name of the relationship to fetch"),
			mcp.Required()),
		mcp.WithObject("filters",
			mcp.Description("Filters identifying the object, e.g. {\"name__value\": \"DC-1\"}"),
			mcp.Required()),
		mcp.WithString("branch",
			mcp.Description("Branch to retrieve the objects from (defaults to main)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Get related nodes",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetRelatedNodes handles the get_related_nodes tool
func (m *Implementation) HandleGetRelatedNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := mcp.ParseString(request, "kind", "")
	relation := mcp.ParseString(request, "relation", "")
	branch := mcp.ParseString(request, "branch", infrahub.DefaultBranchName)
	filters := parseObject(request, "filters")

	if kind == "" {
		return errorResult("kind is required", schemaMappingRemediation), nil
	}
	if relation == "" {
		return errorResult("relation is required",
			fmt.Sprintf("Use get_schema(kind='%s') to see available relationships.", kind)), nil
	}
	if len(filters) == 0 {
		return errorResult("filters are required to identify the object",
			fmt.Sprintf("Use get_node_filters(kind='%s') to see available filter keys.", kind)), nil
	}

	peers, err := m.client.RelatedNodes(ctx, kind, relation, branch, filters)
	if err != nil {
		switch {
		case errors.Is(err, infrahub.ErrSchemaNotFound):
			return errorResult(err.Error(), schemaMappingRemediation), nil
		case errors.Is(err, infrahub.ErrNodeNotFound):
			return errorResult(fmt.Sprintf("No object found for kind=%s with filters=%v in branch '%s'.", kind, filters, branch),
				"Verify filter keys and values using get_node_filters."), nil
		default:
			return errorResult("Related node retrieval failed: "+err.Error(),
				"Check the schema for the kind to confirm the relation exists."), nil
		}
	}
	return successResult(peers), nil
}
