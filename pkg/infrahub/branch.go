package infrahub

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Branch describes an Infrahub branch
type Branch struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SyncWithGit bool   `json:"sync_with_git"`
	IsDefault   bool   `json:"is_default"`
}

const branchCreateMutation = `
mutation BranchCreate($name: String!, $description: String!, $syncWithGit: Boolean!) {
  BranchCreate(data: {name: $name, description: $description, sync_with_git: $syncWithGit}) {
    ok
    object {
      id
      name
      description
      sync_with_git
      is_default
    }
  }
}`

const branchesQuery = `
query Branches {
  Branch {
    id
    name
    description
    sync_with_git
    is_default
  }
}`

// BranchCreate creates a new branch. Branch operations always go through the
// default branch endpoint.
func (c *Client) BranchCreate(ctx context.Context, name string, syncWithGit bool) (*Branch, error) {
	c.logger.Info("creating branch", zap.String("name", name), zap.Bool("sync_with_git", syncWithGit))

	data, err := c.ExecuteGraphQL(ctx, DefaultBranchName, branchCreateMutation, map[string]any{
		"name":        name,
		"description": "",
		"syncWithGit": syncWithGit,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		BranchCreate struct {
			OK     bool    `json:"ok"`
			Object *Branch `json:"object"`
		} `json:"BranchCreate"`
	}
	if err := remarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode branch creation response: %w", err)
	}
	if !payload.BranchCreate.OK || payload.BranchCreate.Object == nil {
		return nil, fmt.Errorf("branch creation for %q was rejected by Infrahub", name)
	}
	return payload.BranchCreate.Object, nil
}

// Branches returns all branches known to Infrahub
func (c *Client) Branches(ctx context.Context) ([]Branch, error) {
	data, err := c.ExecuteGraphQL(ctx, DefaultBranchName, branchesQuery, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Branch []Branch `json:"Branch"`
	}
	if err := remarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode branches response: %w", err)
	}
	return payload.Branch, nil
}

// remarshal decodes a generic GraphQL data map into a typed structure
func remarshal(data map[string]any, target any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
