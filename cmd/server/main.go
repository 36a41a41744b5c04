// Package main provides the entry point for the franc server, an MCP
// server exposing Infrahub to LLM agents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opsmill-labs/franc/pkg/infrahub"
	"github.com/opsmill-labs/franc/pkg/mcp"
	"github.com/opsmill-labs/franc/pkg/otel"
)

// Transport types
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

var version = "dev"

type options struct {
	address               string
	addr                  string
	transport             string
	schemaRefreshInterval time.Duration
	enableRateLimiting    bool
	serveSeeds            bool
	debug                 bool
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "franc",
		Short: "MCP server for Infrahub data center deployments",
		Long: `franc exposes Infrahub schema introspection, node access, branch
management, and a guided data center deployment wizard as MCP tools.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&opts.address, "address", getDefaultInfrahubAddress(),
		"Infrahub server address. Can also be set via INFRAHUB_ADDRESS")
	rootCmd.Flags().StringVar(&opts.addr, "addr", getDefaultListenAddress(),
		"Address to listen on for network transports. Port can also be set via MCP_PORT")
	rootCmd.Flags().StringVar(&opts.transport, "transport", getDefaultTransport(),
		"Transport protocol: 'stdio', 'sse' or 'streamable-http'. Can also be set via MCP_TRANSPORT")
	rootCmd.Flags().DurationVar(&opts.schemaRefreshInterval, "schema-refresh-interval", 0,
		"Interval to periodically re-fetch cached Infrahub schemas (e.g., 5m). If 0, no refresh is performed")
	rootCmd.Flags().BoolVar(&opts.enableRateLimiting, "enable-rate-limiting", true,
		"Whether to rate limit tool calls per session")
	rootCmd.Flags().BoolVar(&opts.serveSeeds, "serve-seeds", true,
		"Whether to expose the bundled demo seed datasets as MCP resources")
	rootCmd.Flags().BoolVar(&opts.debug, "debug", false,
		"Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	logger, err := newLogger(opts.debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	otelProvider, err := otel.NewProvider(ctx, otel.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error shutting down OpenTelemetry", zap.Error(err))
		}
	}()

	clientOpts := []infrahub.Option{infrahub.WithLogger(logger)}
	if token := os.Getenv("INFRAHUB_API_TOKEN"); token != "" {
		clientOpts = append(clientOpts, infrahub.WithToken(token))
	} else {
		logger.Warn("INFRAHUB_API_TOKEN not set; write operations will likely be rejected")
	}
	client, err := infrahub.NewClient(opts.address, clientOpts...)
	if err != nil {
		return fmt.Errorf("failed to create Infrahub client: %w", err)
	}

	if opts.schemaRefreshInterval > 0 {
		logger.Info("starting periodic schema refresh", zap.Duration("interval", opts.schemaRefreshInterval))
		if err := client.StartPeriodicRefresh(opts.schemaRefreshInterval); err != nil {
			return fmt.Errorf("failed to start periodic schema refresh: %w", err)
		}
		defer func() {
			if err := client.StopPeriodicRefresh(); err != nil {
				logger.Warn("error stopping periodic schema refresh", zap.Error(err))
			}
		}()
	}

	config := mcp.DefaultConfig()
	config.ServeSeeds = opts.serveSeeds
	config.EnableRateLimiting = opts.enableRateLimiting

	mcpServer := mcp.CreateServer(client, config, logger)
	defer mcp.StopServer()

	transport := strings.ToLower(opts.transport)
	if transport == transportStdio {
		logger.Info("serving on stdio", zap.String("infrahub", opts.address))
		return mcpserver.ServeStdio(mcpServer)
	}

	var transportServer interface {
		Start(string) error
		Shutdown(context.Context) error
	}
	switch transport {
	case transportSSE:
		transportServer = mcp.CreateSSEServer(mcpServer)
	case transportStreamableHTTP:
		transportServer = mcp.CreateStreamableHTTPServer(mcpServer)
	default:
		return fmt.Errorf("invalid transport %q: must be 'stdio', 'sse' or 'streamable-http'", opts.transport)
	}

	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info("starting MCP server",
			zap.String("addr", opts.addr),
			zap.String("transport", transport),
			zap.String("infrahub", opts.address))
		if err := transportServer.Start(opts.addr); err != nil {
			serverErrCh <- err
		}
	}()

	select {
	case err := <-serverErrCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := transportServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error during shutdown", zap.Error(err))
		return err
	}
	logger.Info("server shutdown complete")
	return nil
}

// newLogger builds the process logger. On stdio transport logs must stay
// off stdout, which carries the MCP protocol stream; zap writes to stderr
// by default so both configs are safe.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	return config.Build()
}

// getDefaultInfrahubAddress returns the Infrahub address from
// INFRAHUB_ADDRESS, or the local default
func getDefaultInfrahubAddress() string {
	if address := os.Getenv("INFRAHUB_ADDRESS"); address != "" {
		return address
	}
	return infrahub.DefaultAddress
}

// getDefaultListenAddress returns the address to listen on based on the
// MCP_PORT environment variable. If unset or invalid, returns ":8080".
func getDefaultListenAddress() string {
	defaultPort := ":8080"

	portEnv := os.Getenv("MCP_PORT")
	if portEnv == "" {
		return defaultPort
	}
	port, err := strconv.Atoi(portEnv)
	if err != nil || port < 1 || port > 65535 {
		fmt.Fprintf(os.Stderr, "Invalid MCP_PORT %q, using default port 8080\n", portEnv)
		return defaultPort
	}
	return fmt.Sprintf(":%d", port)
}

// getDefaultTransport returns the transport from MCP_TRANSPORT, defaulting
// to stdio
func getDefaultTransport() string {
	transport := strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	switch transport {
	case transportStdio, transportSSE, transportStreamableHTTP:
		return transport
	case "":
		return transportStdio
	default:
		fmt.Fprintf(os.Stderr, "Invalid MCP_TRANSPORT %q, using default: %s\n", transport, transportStdio)
		return transportStdio
	}
}
