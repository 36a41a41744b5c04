package mcp

import (
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/opsmill-labs/franc/pkg/infrahub"
	"github.com/opsmill-labs/franc/pkg/otel"
	"github.com/opsmill-labs/franc/pkg/ratelimit"
	"github.com/opsmill-labs/franc/pkg/types"
)

// ServerName and ServerVersion identify this server to MCP clients
const (
	ServerName    = "franc"
	ServerVersion = "0.1.0"
)

// Config holds configuration options for the MCP server
type Config struct {
	// ServeSeeds determines whether the bundled demo seed datasets are
	// exposed as MCP resources. Disabling reduces the resource listing
	// for clients that only need live Infrahub access.
	ServeSeeds bool
	// EnableRateLimiting applies per-session token buckets to tool calls
	EnableRateLimiting bool
	// ToolTimeout bounds the execution of a single tool call
	ToolTimeout time.Duration
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServeSeeds:         true,
		EnableRateLimiting: true,
		ToolTimeout:        2 * time.Minute,
	}
}

// activeLimiter is the rate limiter of the running server, kept so
// StopServer can stop its cleanup goroutine
var activeLimiter *ratelimit.RateLimiter

// CreateServer creates a new MCP server wrapping an Infrahub client
func CreateServer(client *infrahub.Client, config *Config, logger *zap.Logger) *server.MCPServer {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Only one server's middleware stack is active per process. Release the
	// previous limiter before installing a new one so its cleanup goroutine
	// does not leak.
	StopServer()

	impl := NewImplementation(client, logger)

	opts := []server.ServerOption{
		server.WithResourceCapabilities(false, true),
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
		WithTimeoutContext(config.ToolTimeout),
		WithRequestLogging(logger),
	}
	if config.EnableRateLimiting {
		activeLimiter = ratelimit.GetDefaultRateLimiter()
		opts = append(opts, server.WithToolHandlerMiddleware(activeLimiter.Middleware()))
	}
	if otel.DefaultConfig().Enabled {
		opts = append(opts, server.WithToolHandlerMiddleware(otel.Middleware()))
	}

	mcpServer := server.NewMCPServer(ServerName, ServerVersion, opts...)

	// Schema introspection
	mcpServer.AddTool(NewGetSchemaMappingTool(), impl.HandleGetSchemaMapping)
	mcpServer.AddTool(NewGetSchemaTool(), impl.HandleGetSchema)
	mcpServer.AddTool(NewGetSchemasTool(), impl.HandleGetSchemas)
	mcpServer.AddTool(NewGetRequiredFieldsTool(), impl.HandleGetRequiredFields)

	// Node access
	mcpServer.AddTool(NewGetNodesTool(), impl.HandleGetNodes)
	mcpServer.AddTool(NewGetNodeFiltersTool(), impl.HandleGetNodeFilters)
	mcpServer.AddTool(NewGetObjectDetailsTool(), impl.HandleGetObjectDetails)
	mcpServer.AddTool(NewGetRelatedNodesTool(), impl.HandleGetRelatedNodes)

	// Branches
	mcpServer.AddTool(NewBranchCreateTool(), impl.HandleBranchCreate)
	mcpServer.AddTool(NewGetBranchesTool(), impl.HandleGetBranches)

	// GraphQL escape hatch
	mcpServer.AddTool(NewQueryGraphQLTool(), impl.HandleQueryGraphQL)
	mcpServer.AddTool(NewGetGraphQLSchemaTool(), impl.HandleGetGraphQLSchema)

	// TOON codec
	mcpServer.AddTool(NewToonEncodeTool(), impl.HandleToonEncode)
	mcpServer.AddTool(NewToonDecodeTool(), impl.HandleToonDecode)
	mcpServer.AddTool(NewToonAnalyzeTool(), impl.HandleToonAnalyze)

	// Deployment wizard
	mcpServer.AddTool(NewDiscoverDatacenterOptionsTool(), impl.HandleDiscoverDatacenterOptions)
	mcpServer.AddTool(NewCreateDatacenterDeploymentTool(), impl.HandleCreateDatacenterDeployment)
	mcpServer.AddTool(NewValidateDatacenterDeploymentTool(), impl.HandleValidateDatacenterDeployment)

	// Static catalog resources
	for _, resource := range CatalogResources() {
		mcpServer.AddResource(resource, impl.HandleCatalogResource)
	}
	if config.ServeSeeds {
		for _, resource := range SeedResources() {
			mcpServer.AddResource(resource, impl.HandleSeedResource)
		}
	}

	// Guided deployment prompt
	mcpServer.AddPrompt(NewDatacenterDeploymentPrompt(), impl.HandleDatacenterDeploymentPrompt)

	logger.Info("MCP server configured",
		zap.Bool("serve_seeds", config.ServeSeeds),
		zap.Bool("rate_limiting", config.EnableRateLimiting),
		zap.Int("tools", len(types.AllToolNames())))

	return mcpServer
}

// StopServer stops background resources of the running server
func StopServer() {
	if activeLimiter != nil {
		activeLimiter.Stop()
		activeLimiter = nil
	}
}

// CreateSSEServer creates a new SSE server for the MCP server
func CreateSSEServer(mcpServer *server.MCPServer) *server.SSEServer {
	return server.NewSSEServer(mcpServer)
}

// CreateStreamableHTTPServer creates a new streamable-http server for the MCP server
func CreateStreamableHTTPServer(mcpServer *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(mcpServer)
}
