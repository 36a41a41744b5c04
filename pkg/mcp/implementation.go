package mcp

import (
	"go.uber.org/zap"

	"github.com/opsmill-labs/franc/pkg/infrahub"
)

// toonAutoThreshold is the result size above which listing tools compress
// their payload with TOON
const toonAutoThreshold = 10

// Implementation implements the MCP protocol on top of the Infrahub client
type Implementation struct {
	client *infrahub.Client
	logger *zap.Logger
}

// NewImplementation creates a new MCP implementation
func NewImplementation(client *infrahub.Client, logger *zap.Logger) *Implementation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Implementation{
		client: client,
		logger: logger,
	}
}
