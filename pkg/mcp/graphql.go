package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opsmill-labs/franc/pkg/infrahub"
	"github.com/opsmill-labs/franc/pkg/types"
)

// NewQueryGraphQLTool creates a new query_graphql tool
func NewQueryGraphQLTool() mcp.Tool {
	return mcp.NewTool(types.QueryGraphQLToolName,
		mcp.WithDescription("Execute a raw GraphQL query or mutation against Infrahub. "+
			"Prefer the dedicated tools where they exist; this is the escape hatch for queries they cannot express."),
		mcp.WithString("query",
			mcp.Description("GraphQL document to execute"),
			mcp.Required()),
		mcp.WithString("branch",
			mcp.Description("Branch to execute against (defaults to main)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Execute GraphQL against Infrahub",
			ReadOnlyHint: BoolPtr(false),
		}),
	)
}

// HandleQueryGraphQL handles the query_graphql tool
func (m *Implementation) HandleQueryGraphQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := mcp.ParseString(request, "query", "")
	branch := mcp.ParseString(request, "branch", infrahub.DefaultBranchName)

	if query == "" {
		return errorResult("query is required", "Provide a GraphQL document to execute."), nil
	}

	data, err := m.client.ExecuteGraphQL(ctx, branch, query, nil)
	if err != nil {
		return errorResult("GraphQL execution failed: "+err.Error(),
			"Use get_graphql_schema to inspect the available query surface."), nil
	}
	return successResult(data), nil
}

// NewGetGraphQLSchemaTool creates a new get_graphql_schema tool
func NewGetGraphQLSchemaTool() mcp.Tool {
	return mcp.NewTool(types.GetGraphQLSchemaToolName,
		mcp.WithDescription("Retrieve the GraphQL SDL schema from Infrahub"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Get the Infrahub GraphQL schema",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetGraphQLSchema handles the get_graphql_schema tool
func (m *Implementation) HandleGetGraphQLSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sdl, err := m.client.GraphQLSchema(ctx)
	if err != nil {
		return errorResult("Failed to fetch GraphQL schema: "+err.Error(), "Verify the Infrahub server is reachable."), nil
	}
	return successResult(sdl), nil
}
