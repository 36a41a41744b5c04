package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/opsmill-labs/franc/pkg/infrahub"
	"github.com/opsmill-labs/franc/pkg/types"
)

// NewBranchCreateTool creates a new branch_create tool
func NewBranchCreateTool() mcp.Tool {
	return mcp.NewTool(types.BranchCreateToolName,
		mcp.WithDescription("Create a new branch in Infrahub. Branches isolate changes until they are merged."),
		mcp.WithString("name",
			mcp.Description("Name of the branch to create"),
			mcp.Required()),
		mcp.WithBoolean("sync_with_git",
			mcp.Description("Whether to sync the branch with git (defaults to false)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:           "Create an Infrahub branch",
			ReadOnlyHint:    BoolPtr(false),
			IdempotentHint:  BoolPtr(true),
			DestructiveHint: BoolPtr(false),
		}),
	)
}

// HandleBranchCreate handles the branch_create tool
func (m *Implementation) HandleBranchCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := mcp.ParseString(request, "name", "")
	syncWithGit := mcp.ParseBoolean(request, "sync_with_git", false)

	if name == "" {
		return errorResult("name is required", "Ask the user for the branch name instead of inventing one."), nil
	}

	if !m.client.HasToken() {
		m.logger.Warn("INFRAHUB_API_TOKEN not set; proceeding unauthenticated, branch creation may fail with an authorization error")
	}

	branch, err := m.client.BranchCreate(ctx, name, syncWithGit)
	if err != nil {
		return errorResult(err.Error(), infrahub.BranchCreateRemediation(err)), nil
	}

	m.logger.Info("branch created", zap.String("name", branch.Name), zap.String("id", branch.ID))
	return successResult(map[string]any{
		"name": branch.Name,
		"id":   branch.ID,
	}), nil
}

// NewGetBranchesTool creates a new get_branches tool
func NewGetBranchesTool() mcp.Tool {
	return mcp.NewTool(types.GetBranchesToolName,
		mcp.WithDescription("Retrieve all branches from Infrahub"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "List Infrahub branches",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleGetBranches handles the get_branches tool
func (m *Implementation) HandleGetBranches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	branches, err := m.client.Branches(ctx)
	if err != nil {
		return errorResult("Failed to fetch branches: "+err.Error(), "Verify the Infrahub server is reachable."), nil
	}
	return successResult(branches), nil
}
