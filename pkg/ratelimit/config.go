package ratelimit

import "github.com/opsmill-labs/franc/pkg/types"

const (
	defaultLimit = 60
	readLimit    = 120 // 120 requests per minute (2 per second)
	writeLimit   = 30  // 30 requests per minute (0.5 per second)

	// DefaultTool keys the fallback limit in DefaultConfig
	DefaultTool = "default"
)

// DefaultConfig defines the default rate limits per tool. Read-only tools
// get higher limits than tools that mutate Infrahub state.
var DefaultConfig = map[string]int{
	// Schema and node reads
	types.GetSchemaMappingToolName:  readLimit,
	types.GetSchemaToolName:         readLimit,
	types.GetSchemasToolName:        readLimit,
	types.GetRequiredFieldsToolName: readLimit,
	types.GetNodesToolName:          readLimit,
	types.GetNodeFiltersToolName:    readLimit,
	types.GetObjectDetailsToolName:  readLimit,
	types.GetRelatedNodesToolName:   readLimit,
	types.GetBranchesToolName:       readLimit,

	// Write operations
	types.BranchCreateToolName:               writeLimit,
	types.CreateDatacenterDeploymentToolName: writeLimit,
	types.QueryGraphQLToolName:               writeLimit,

	DefaultTool: defaultLimit,
}

// GetDefaultRateLimiter returns a RateLimiter with the default configuration
func GetDefaultRateLimiter() *RateLimiter {
	options := []Option{
		WithDefaultLimit(DefaultConfig[DefaultTool]),
	}
	for tool, limit := range DefaultConfig {
		if tool != DefaultTool {
			options = append(options, WithToolLimit(tool, limit))
		}
	}
	return NewRateLimiter(options...)
}
