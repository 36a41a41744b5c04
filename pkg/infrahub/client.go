// Package infrahub provides a client for the Infrahub API: schema discovery,
// GraphQL queries and mutations, branch management, and node access.
package infrahub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	graphql "github.com/hasura/go-graphql-client"
	"go.uber.org/zap"
)

const (
	// DefaultAddress is the address used when none is configured
	DefaultAddress = "http://localhost:8000"
	// DefaultBranchName is the branch queried when a tool omits the branch
	DefaultBranchName = "main"

	apiTokenHeader = "X-INFRAHUB-KEY"
)

// Client is an Infrahub API client with a per-branch schema cache
type Client struct {
	address    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.RWMutex
	schemaCache map[string]map[string]*NodeSchema

	refreshMu     sync.Mutex
	refreshTicker *time.Ticker
	refreshStop   chan struct{}
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the API token sent with every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets the underlying HTTP client. Used by tests to point the
// client at an httptest server.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Infrahub client for the given address
func NewClient(address string, opts ...Option) (*Client, error) {
	if address == "" {
		address = DefaultAddress
	}
	parsed, err := url.Parse(address)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid Infrahub address %q", address)
	}

	client := &Client{
		address:     strings.TrimRight(address, "/"),
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		logger:      zap.NewNop(),
		schemaCache: make(map[string]map[string]*NodeSchema),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Address returns the configured Infrahub address
func (c *Client) Address() string {
	return c.address
}

// HasToken reports whether an API token is configured. Write operations
// against Infrahub typically fail without one.
func (c *Client) HasToken() bool {
	return c.token != ""
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.token != "" {
		req.Header.Set(apiTokenHeader, c.token)
	}
}

// graphqlClient builds a GraphQL client bound to a branch-scoped endpoint.
// Infrahub serves each branch at /graphql/{branch}.
func (c *Client) graphqlClient(branch string) *graphql.Client {
	endpoint := c.address + "/graphql/" + url.PathEscape(defaultBranch(branch))
	gc := graphql.NewClient(endpoint, c.httpClient)
	if c.token != "" {
		gc = gc.WithRequestModifier(func(req *http.Request) {
			req.Header.Set(apiTokenHeader, c.token)
		})
	}
	return gc
}

// ExecuteGraphQL runs a raw GraphQL document against a branch and returns the
// decoded data object
func (c *Client) ExecuteGraphQL(ctx context.Context, branch, query string, variables map[string]any) (map[string]any, error) {
	c.logger.Debug("executing GraphQL",
		zap.String("branch", defaultBranch(branch)),
		zap.Int("query_length", len(query)))

	raw, err := c.graphqlClient(branch).ExecRaw(ctx, query, variables)
	if err != nil {
		return nil, fmt.Errorf("GraphQL execution failed: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode GraphQL response: %w", err)
	}
	return data, nil
}

func defaultBranch(branch string) string {
	if branch == "" {
		return DefaultBranchName
	}
	return branch
}
