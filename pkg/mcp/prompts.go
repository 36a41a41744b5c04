package mcp

import (
	"context"
	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
)

// DatacenterDeploymentPromptName is the guided deployment wizard prompt
const DatacenterDeploymentPromptName = "datacenter_deployment"

//go:embed prompts/datacenter_deployment.md
var datacenterDeploymentPrompt string

// NewDatacenterDeploymentPrompt creates the datacenter_deployment prompt
func NewDatacenterDeploymentPrompt() mcp.Prompt {
	return mcp.NewPrompt(DatacenterDeploymentPromptName,
		mcp.WithPromptDescription("Guided multi-phase wizard for deploying a new data center: "+
			"site identity, metro, design pattern, strategy, provider, review and create."),
	)
}

// HandleDatacenterDeploymentPrompt handles the datacenter_deployment prompt
func (m *Implementation) HandleDatacenterDeploymentPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return mcp.NewGetPromptResult(
		"Data center deployment wizard",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(datacenterDeploymentPrompt)),
		},
	), nil
}
