// Package types contains common type definitions and constants used across the MCP implementation
package types

// Tool names exposed by the server. Kept as constants so the rate limiter,
// middleware, and tests reference the same strings as the tool definitions.
const (
	GetSchemaMappingToolName  = "get_schema_mapping"
	GetSchemaToolName         = "get_schema"
	GetSchemasToolName        = "get_schemas"
	GetRequiredFieldsToolName = "get_required_fields"

	GetNodesToolName         = "get_nodes"
	GetNodeFiltersToolName   = "get_node_filters"
	GetObjectDetailsToolName = "get_object_details"
	GetRelatedNodesToolName  = "get_related_nodes"

	BranchCreateToolName = "branch_create"
	GetBranchesToolName  = "get_branches"

	QueryGraphQLToolName     = "query_graphql"
	GetGraphQLSchemaToolName = "get_graphql_schema"

	ToonEncodeToolName  = "toon_encode"
	ToonDecodeToolName  = "toon_decode"
	ToonAnalyzeToolName = "toon_analyze"

	DiscoverDatacenterOptionsToolName    = "discover_datacenter_options"
	CreateDatacenterDeploymentToolName   = "create_datacenter_deployment"
	ValidateDatacenterDeploymentToolName = "validate_datacenter_deployment"
)

// AllToolNames returns every tool name the server registers
func AllToolNames() []string {
	return []string{
		GetSchemaMappingToolName,
		GetSchemaToolName,
		GetSchemasToolName,
		GetRequiredFieldsToolName,
		GetNodesToolName,
		GetNodeFiltersToolName,
		GetObjectDetailsToolName,
		GetRelatedNodesToolName,
		BranchCreateToolName,
		GetBranchesToolName,
		QueryGraphQLToolName,
		GetGraphQLSchemaToolName,
		ToonEncodeToolName,
		ToonDecodeToolName,
		ToonAnalyzeToolName,
		DiscoverDatacenterOptionsToolName,
		CreateDatacenterDeploymentToolName,
		ValidateDatacenterDeploymentToolName,
	}
}

// ToolStatus is the outcome of a tool call as reported in the response envelope
type ToolStatus string

const (
	// StatusSuccess indicates the tool completed and Data is populated
	StatusSuccess ToolStatus = "success"
	// StatusError indicates the tool failed; Error and usually Remediation are populated
	StatusError ToolStatus = "error"
)

// Response is the envelope returned by every tool. User-correctable failures
// are reported through this envelope rather than as protocol errors, so the
// calling agent always receives a remediation hint it can act on.
type Response struct {
	Status      ToolStatus `json:"status"`
	Data        any        `json:"data,omitempty"`
	Error       string     `json:"error,omitempty"`
	Remediation string     `json:"remediation,omitempty"`
}

// Success returns a success envelope wrapping data
func Success(data any) Response {
	return Response{Status: StatusSuccess, Data: data}
}

// Error returns an error envelope with a remediation hint
func Error(message, remediation string) Response {
	return Response{Status: StatusError, Error: message, Remediation: remediation}
}
