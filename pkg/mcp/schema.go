package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opsmill-labs/franc/pkg/infrahub"
	"github.com/opsmill-labs/franc/pkg/types"
)

const schemaMappingRemediation = "Use the `get_schema_mapping` tool to list available kinds."

// NewGetSchemaMappingTool creates a new get_schema_mapping tool
func NewGetSchemaMappingTool() mcp.Tool {
	return mcp.NewTool(types.GetSchemaMappingToolName,
		mcp.WithDescription("List all schema kinds available in Infrahub with their display labels. "+
			"Internal namespaces (Internal, Profile, Template) are filtered out."),
		mcp.WithString("branch",
			mcp.Description("Branch to retrieve the mapping from (defaults to main)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List Infrahub schema kinds",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetSchemaMapping handles the get_schema_mapping tool
func (m *Implementation) HandleGetSchemaMapping(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	branch := mcp.ParseString(request, "branch", "")

	schemas, err := m.client.SchemaAll(ctx, branch)
	if err != nil {
		if errors.Is(err, infrahub.ErrBranchNotFound) {
			return errorResult(err.Error(), "Check the branch name or your permissions."), nil
		}
		return errorResult("Failed to fetch schemas: "+err.Error(), "Verify the Infrahub server is reachable."), nil
	}

	mapping := make(map[string]string, len(schemas))
	for kind, schema := range schemas {
		if schema.IsInternal() {
			continue
		}
		mapping[kind] = schema.Label
	}
	return successResult(mapping), nil
}

// NewGetSchemaTool creates a new get_schema tool
func NewGetSchemaTool() mcp.Tool {
	return mcp.NewTool(types.GetSchemaToolName,
		mcp.WithDescription("Retrieve the full schema for a specific kind, including attributes, relationships, and their types"),
		mcp.WithString("kind",
			mcp.Description("Schema kind to retrieve"),
			mcp.Required()),
		mcp.WithString("branch",
			mcp.Description("Branch to retrieve the schema from (defaults to main)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Get Infrahub schema for a kind",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetSchema handles the get_schema tool
func (m *Implementation) HandleGetSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := mcp.ParseString(request, "kind", "")
	branch := mcp.ParseString(request, "branch", "")
	if kind == "" {
		return errorResult("kind is required", schemaMappingRemediation), nil
	}

	schema, err := m.client.SchemaGet(ctx, kind, branch)
	if err != nil {
		switch {
		case errors.Is(err, infrahub.ErrSchemaNotFound):
			return errorResult(fmt.Sprintf("Schema not found for kind: %s.", kind), schemaMappingRemediation), nil
		case errors.Is(err, infrahub.ErrBranchNotFound):
			return errorResult(err.Error(), "Check the branch name or your permissions."), nil
		default:
			return errorResult("Failed to fetch schema: "+err.Error(), "Verify the Infrahub server is reachable."), nil
		}
	}
	return successResult(schema), nil
}

// NewGetSchemasTool creates a new get_schemas tool
func NewGetSchemasTool() mcp.Tool {
	return mcp.NewTool(types.GetSchemasToolName,
		mcp.WithDescription("Retrieve all schemas from Infrahub, optionally excluding Profiles and Templates"),
		mcp.WithString("branch",
			mcp.Description("Branch to retrieve schemas from (defaults to main)")),
		mcp.WithBoolean("exclude_profiles",
			mcp.Description("Whether to exclude Profile schemas (defaults to true)")),
		mcp.WithBoolean("exclude_templates",
			mcp.Description("Whether to exclude Template schemas (defaults to true)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Get all Infrahub schemas",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetSchemas handles the get_schemas tool
func (m *Implementation) HandleGetSchemas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	branch := mcp.ParseString(request, "branch", "")
	excludeProfiles := mcp.ParseBoolean(request, "exclude_profiles", true)
	excludeTemplates := mcp.ParseBoolean(request, "exclude_templates", true)

	schemas, err := m.client.SchemaAll(ctx, branch)
	if err != nil {
		if errors.Is(err, infrahub.ErrBranchNotFound) {
			return errorResult(err.Error(), "Check the branch name or your permissions."), nil
		}
		return errorResult("Failed to fetch schemas: "+err.Error(), "Verify the Infrahub server is reachable."), nil
	}

	filtered := make(map[string]*infrahub.NodeSchema, len(schemas))
	for kind, schema := range schemas {
		if (excludeProfiles && schema.Namespace == "Profile") ||
			(excludeTemplates && schema.Namespace == "Template") {
			continue
		}
		filtered[kind] = schema
	}
	return successResult(filtered), nil
}

// NewGetRequiredFieldsTool creates a new get_required_fields tool
func NewGetRequiredFieldsTool() mcp.Tool {
	return mcp.NewTool(types.GetRequiredFieldsToolName,
		mcp.WithDescription("List all required fields for a given kind based on the schema definition. "+
			"Use this before creating objects to determine which fields must be provided."),
		mcp.WithString("kind",
			mcp.Description("The object kind (schema node name)"),
			mcp.Required()),
		mcp.WithString("branch",
			mcp.Description("Branch to inspect (defaults to main)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List required fields for a kind",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetRequiredFields handles the get_required_fields tool
func (m *Implementation) HandleGetRequiredFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := mcp.ParseString(request, "kind", "")
	branch := mcp.ParseString(request, "branch", "")
	if kind == "" {
		return errorResult("kind is required", schemaMappingRemediation), nil
	}

	schema, err := m.client.SchemaGet(ctx, kind, branch)
	if err != nil {
		if errors.Is(err, infrahub.ErrSchemaNotFound) {
			return errorResult(fmt.Sprintf("Schema not found for kind: %s.", kind), schemaMappingRemediation), nil
		}
		return errorResult("Failed to fetch schema: "+err.Error(), "Verify the Infrahub server is reachable."), nil
	}

	required := []string{}
	for _, attr := range schema.Attributes {
		if !attr.Optional {
			required = append(required, attr.Name)
		}
	}
	for _, rel := range schema.Relationships {
		if !rel.Optional {
			required = append(required, rel.Name)
		}
	}
	return successResult(required), nil
}
