package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/opsmill-labs/franc/pkg/catalog"
	"github.com/opsmill-labs/franc/pkg/infrahub"
	"github.com/opsmill-labs/franc/pkg/types"
)

// Infrahub kinds the deployment wizard operates on
const (
	TopologyDCKind       = "TopologyDataCenter"
	TopologyDCDesignKind = "TopologyDataCenterDesign"
)

// locationKinds are tried in order when discovering metros. Infrahub
// demo schemas differ in which one they define.
var locationKinds = []string{"LocationBuilding", "BuiltinLocationBuilding", "LocationHosting"}

// NewDiscoverDatacenterOptionsTool creates a new discover_datacenter_options tool
func NewDiscoverDatacenterOptionsTool() mcp.Tool {
	return mcp.NewTool(types.DiscoverDatacenterOptionsToolName,
		mcp.WithDescription("Discover available options for data center deployment: metros, design patterns, "+
			"strategies, providers, and existing deployments. Call this before proposing deployment parameters; "+
			"only values from this list may be offered to the user."),
		mcp.WithString("branch",
			mcp.Description("Branch to discover options on (defaults to main)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Discover data center deployment options",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleDiscoverDatacenterOptions handles the discover_datacenter_options tool
func (m *Implementation) HandleDiscoverDatacenterOptions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	branch := mcp.ParseString(request, "branch", "")

	options := map[string]any{
		"metros":           m.discoverMetros(ctx, branch),
		"designs":          m.discoverDesigns(ctx, branch),
		"strategies":       m.discoverStrategies(ctx, branch),
		"default_strategy": catalog.DefaultStrategy(),
		"providers":        catalog.Providers(),
	}

	deployments, err := m.client.NodesDetails(ctx, TopologyDCKind, branch, nil)
	if err != nil {
		m.logger.Debug("could not list existing deployments", zap.Error(err))
	} else {
		summaries := make([]map[string]any, 0, len(deployments))
		for _, node := range deployments {
			summaries = append(summaries, map[string]any{
				"name":     node["name"],
				"strategy": node["strategy"],
				"status":   node["status"],
			})
		}
		options["existing_deployments"] = summaries
	}

	return successResult(options), nil
}

// discoverMetros queries the first location kind the schema defines.
// An Infrahub without location data yields an empty list; the prompt
// instructs agents to ask the user for a metro in that case.
func (m *Implementation) discoverMetros(ctx context.Context, branch string) []string {
	for _, kind := range locationKinds {
		labels, err := m.client.NodeLabels(ctx, kind, branch, nil, false)
		if err != nil {
			if errors.Is(err, infrahub.ErrSchemaNotFound) {
				continue
			}
			m.logger.Debug("metro discovery failed", zap.String("kind", kind), zap.Error(err))
			continue
		}
		sort.Strings(labels)
		return labels
	}
	return []string{}
}

// discoverDesigns returns design pattern nodes present in Infrahub, falling
// back to the static catalog when the instance has none loaded
func (m *Implementation) discoverDesigns(ctx context.Context, branch string) []string {
	labels, err := m.client.NodeLabels(ctx, TopologyDCDesignKind, branch, nil, false)
	if err != nil || len(labels) == 0 {
		return catalog.Designs()
	}
	sort.Strings(labels)
	return labels
}

// discoverStrategies returns the union of the schema's strategy choices and
// the static catalog, sorted
func (m *Implementation) discoverStrategies(ctx context.Context, branch string) []string {
	seen := make(map[string]bool)
	for _, strategy := range catalog.Strategies() {
		seen[strategy] = true
	}
	if schema, err := m.client.SchemaGet(ctx, TopologyDCKind, branch); err == nil {
		for _, choice := range schema.ChoiceNames("strategy") {
			seen[choice] = true
		}
	}
	strategies := make([]string, 0, len(seen))
	for strategy := range seen {
		strategies = append(strategies, strategy)
	}
	sort.Strings(strategies)
	return strategies
}

// NewCreateDatacenterDeploymentTool creates a new create_datacenter_deployment tool
func NewCreateDatacenterDeploymentTool() mcp.Tool {
	return mcp.NewTool(types.CreateDatacenterDeploymentToolName,
		mcp.WithDescription("Create a new data center deployment on its own branch. All parameters must come "+
			"from the user or from discover_datacenter_options; never invent values. Requires prior user confirmation."),
		mcp.WithString("site_name",
			mcp.Description("Name of the new data center site (minimum 2 characters)"),
			mcp.Required()),
		mcp.WithString("metro_location",
			mcp.Description("Metro location of the site, as discovered or confirmed by the user"),
			mcp.Required()),
		mcp.WithString("design",
			mcp.Description("Design pattern name, exactly as listed by discover_datacenter_options"),
			mcp.Required()),
		mcp.WithString("strategy",
			mcp.Description("Routing strategy (default ebgp-ibgp unless the user asked for EVPN)"),
			mcp.Required()),
		mcp.WithString("provider",
			mcp.Description("Provider for the deployment"),
			mcp.Required()),
		mcp.WithString("branch_name",
			mcp.Description("Branch to create the deployment on (auto-generated when omitted)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:           "Create a data center deployment",
			ReadOnlyHint:    BoolPtr(false),
			DestructiveHint: BoolPtr(false),
			IdempotentHint:  BoolPtr(false),
		}),
	)
}

// HandleCreateDatacenterDeployment handles the create_datacenter_deployment tool
func (m *Implementation) HandleCreateDatacenterDeployment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	siteName := strings.TrimSpace(mcp.ParseString(request, "site_name", ""))
	metro := strings.TrimSpace(mcp.ParseString(request, "metro_location", ""))
	design := strings.TrimSpace(mcp.ParseString(request, "design", ""))
	strategy := strings.TrimSpace(mcp.ParseString(request, "strategy", ""))
	provider := strings.TrimSpace(mcp.ParseString(request, "provider", ""))
	branchName := strings.TrimSpace(mcp.ParseString(request, "branch_name", ""))

	for param, value := range map[string]string{
		"site_name":      siteName,
		"metro_location": metro,
		"design":         design,
		"strategy":       strategy,
		"provider":       provider,
	} {
		if value == "" {
			return errorResult(param+" is required",
				"Ask the user for "+param+" instead of inventing a value."), nil
		}
	}
	if len(siteName) < 2 {
		return errorResult("site_name must be at least 2 characters",
			"Ask the user for a longer site name."), nil
	}

	validStrategies := m.discoverStrategies(ctx, "")
	if !contains(validStrategies, strategy) {
		return errorResult(fmt.Sprintf("invalid strategy %q", strategy),
			"Valid strategies: "+strings.Join(validStrategies, ", ")), nil
	}
	validDesigns := m.discoverDesigns(ctx, "")
	if !contains(validDesigns, design) {
		return errorResult(fmt.Sprintf("invalid design %q", design),
			"Valid designs: "+strings.Join(validDesigns, ", ")), nil
	}

	if branchName == "" {
		branchName = deploymentBranchName(siteName, time.Now().UTC())
	}

	if !m.client.HasToken() {
		m.logger.Warn("INFRAHUB_API_TOKEN not set; proceeding unauthenticated, deployment may fail with an authorization error")
	}

	branch, err := m.client.BranchCreate(ctx, branchName, false)
	if err != nil {
		return errorResult("Failed to create branch "+branchName+": "+err.Error(),
			infrahub.BranchCreateRemediation(err)), nil
	}

	schema, err := m.client.SchemaGet(ctx, TopologyDCKind, branch.Name)
	if err != nil {
		return errorResult("Failed to load "+TopologyDCKind+" schema: "+err.Error(),
			"Verify the Infrahub instance has the data center topology schema loaded."), nil
	}

	payload := map[string]any{
		"name":                   siteName,
		"strategy":               strategy,
		"status":                 "provisioning",
		"fully_managed":          true,
		"underlay":               false,
		"amount_of_super_spines": schema.AttributeDefault("amount_of_super_spines", 2),
	}
	if schema.Attribute("fabric_interface_sorting_method") != nil {
		payload["fabric_interface_sorting_method"] = schema.AttributeDefault("fabric_interface_sorting_method", "bottom_up")
	}
	if schema.Attribute("spine_interface_sorting_method") != nil {
		payload["spine_interface_sorting_method"] = schema.AttributeDefault("spine_interface_sorting_method", "bottom_up")
	}

	if schema.Relationship("design_pattern") != nil {
		designID, err := m.designPatternID(ctx, branch.Name, design)
		if err != nil {
			m.logger.Debug("design pattern lookup failed, creating without link",
				zap.String("design", design), zap.Error(err))
		} else {
			payload["design_pattern"] = map[string]any{"id": designID}
		}
	}

	topologyID, err := m.client.NodeCreate(ctx, TopologyDCKind, branch.Name, payload)
	if err != nil {
		return errorResult("Failed to create deployment: "+err.Error(),
			"Use get_required_fields on "+TopologyDCKind+" to check for missing attributes, then retry."), nil
	}

	m.logger.Info("data center deployment created",
		zap.String("site", siteName),
		zap.String("branch", branch.Name),
		zap.String("id", topologyID))

	return successResult(map[string]any{
		"branch": branch.Name,
		"topology": map[string]any{
			"id":             topologyID,
			"name":           siteName,
			"metro_location": metro,
			"design":         design,
			"strategy":       strategy,
			"provider":       provider,
		},
		"status": "created",
	}), nil
}

// designPatternID resolves a design pattern name to its node ID
func (m *Implementation) designPatternID(ctx context.Context, branch, design string) (string, error) {
	nodes, err := m.client.NodesDetails(ctx, TopologyDCDesignKind, branch, map[string]any{"name__value": design})
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", fmt.Errorf("design pattern %q not found on branch %q", design, branch)
	}
	id, ok := nodes[0]["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("design pattern %q has no id", design)
	}
	return id, nil
}

// deploymentBranchName derives the auto-generated branch for a deployment
func deploymentBranchName(siteName string, now time.Time) string {
	site := strings.ToLower(strings.ReplaceAll(siteName, " ", "-"))
	return fmt.Sprintf("dc-deploy-%s-%s", site, now.Format("20060102150405"))
}

// NewValidateDatacenterDeploymentTool creates a new validate_datacenter_deployment tool
func NewValidateDatacenterDeploymentTool() mcp.Tool {
	return mcp.NewTool(types.ValidateDatacenterDeploymentToolName,
		mcp.WithDescription("Validate that a data center deployment exists on a branch and summarize its attributes"),
		mcp.WithString("branch",
			mcp.Description("Branch the deployment was created on"),
			mcp.Required()),
		mcp.WithString("site_name",
			mcp.Description("Name of the deployed site"),
			mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			Title:        "Validate a data center deployment",
			ReadOnlyHint: BoolPtr(true),
		}),
	)
}

// HandleValidateDatacenterDeployment handles the validate_datacenter_deployment tool
func (m *Implementation) HandleValidateDatacenterDeployment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	branch := mcp.ParseString(request, "branch", "")
	siteName := mcp.ParseString(request, "site_name", "")
	if branch == "" {
		return errorResult("branch is required", "Provide the branch returned by create_datacenter_deployment."), nil
	}
	if siteName == "" {
		return errorResult("site_name is required", "Provide the site name used when creating the deployment."), nil
	}

	nodes, err := m.client.NodesDetails(ctx, TopologyDCKind, branch, map[string]any{"name__value": siteName})
	if err != nil {
		if errors.Is(err, infrahub.ErrBranchNotFound) {
			return errorResult("Branch "+branch+" not found",
				"Verify the branch name with get_branches."), nil
		}
		return errorResult("Failed to query deployment: "+err.Error(),
			"Verify the Infrahub server is reachable and the branch exists."), nil
	}
	if len(nodes) == 0 {
		return errorResult(fmt.Sprintf("No %s named %q found on branch %q", TopologyDCKind, siteName, branch),
			"Check the site name and branch, or re-run create_datacenter_deployment."), nil
	}

	node := nodes[0]
	summary := map[string]any{
		"id":       node["id"],
		"name":     node["name"],
		"strategy": node["strategy"],
		"status":   node["status"],
	}
	for _, field := range []string{
		"fully_managed", "underlay", "amount_of_super_spines",
		"fabric_interface_sorting_method", "spine_interface_sorting_method",
		"design_pattern",
	} {
		if value, ok := node[field]; ok {
			summary[field] = value
		}
	}

	return successResult(map[string]any{
		"deployment_valid": true,
		"branch":           branch,
		"summary":          summary,
	}), nil
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
