package infrahub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Namespaces that hold Infrahub-internal kinds. These are filtered out of
// schema mappings presented to agents.
var InternalNamespaces = []string{"Internal", "Profile", "Template"}

// attributeTypeNames maps Infrahub attribute kinds to the GraphQL scalar
// names used in filter descriptions
var attributeTypeNames = map[string]string{
	"Text":     "String",
	"String":   "String",
	"Integer":  "Int",
	"Float":    "Float",
	"Boolean":  "Boolean",
	"DateTime": "DateTime",
}

// AttributeTypeName returns the GraphQL scalar name for an Infrahub attribute kind.
// Unknown kinds map to String.
func AttributeTypeName(kind string) string {
	if name, ok := attributeTypeNames[kind]; ok {
		return name
	}
	return "String"
}

// AttributeChoice is one allowed value of a choice attribute
type AttributeChoice struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
}

// AttributeSchema describes a single attribute of a node schema
type AttributeSchema struct {
	Name         string            `json:"name"`
	Kind         string            `json:"kind"`
	Optional     bool              `json:"optional"`
	DefaultValue any               `json:"default_value,omitempty"`
	Choices      []AttributeChoice `json:"choices,omitempty"`
}

// RelationshipSchema describes a relationship of a node schema
type RelationshipSchema struct {
	Name        string `json:"name"`
	Peer        string `json:"peer"`
	Cardinality string `json:"cardinality"`
	Optional    bool   `json:"optional"`
}

// NodeSchema is the schema of one Infrahub kind
type NodeSchema struct {
	Name          string               `json:"name"`
	Namespace     string               `json:"namespace"`
	Label         string               `json:"label,omitempty"`
	Attributes    []AttributeSchema    `json:"attributes,omitempty"`
	Relationships []RelationshipSchema `json:"relationships,omitempty"`
}

// Kind returns the fully qualified kind name (namespace + name)
func (s *NodeSchema) Kind() string {
	return s.Namespace + s.Name
}

// Attribute returns the attribute schema with the given name, or nil
func (s *NodeSchema) Attribute(name string) *AttributeSchema {
	for i := range s.Attributes {
		if s.Attributes[i].Name == name {
			return &s.Attributes[i]
		}
	}
	return nil
}

// Relationship returns the relationship schema with the given name, or nil
func (s *NodeSchema) Relationship(name string) *RelationshipSchema {
	for i := range s.Relationships {
		if s.Relationships[i].Name == name {
			return &s.Relationships[i]
		}
	}
	return nil
}

// AttributeNames returns the names of all attributes in schema order
func (s *NodeSchema) AttributeNames() []string {
	names := make([]string, 0, len(s.Attributes))
	for _, attr := range s.Attributes {
		names = append(names, attr.Name)
	}
	return names
}

// RelationshipNames returns the names of all relationships in schema order
func (s *NodeSchema) RelationshipNames() []string {
	names := make([]string, 0, len(s.Relationships))
	for _, rel := range s.Relationships {
		names = append(names, rel.Name)
	}
	return names
}

// AttributeDefault returns the schema default for an attribute, or fallback
// when the attribute is missing or carries no default
func (s *NodeSchema) AttributeDefault(name string, fallback any) any {
	attr := s.Attribute(name)
	if attr == nil || attr.DefaultValue == nil {
		return fallback
	}
	return attr.DefaultValue
}

// ChoiceNames returns the allowed values of a choice attribute
func (s *NodeSchema) ChoiceNames(name string) []string {
	attr := s.Attribute(name)
	if attr == nil {
		return nil
	}
	choices := make([]string, 0, len(attr.Choices))
	for _, choice := range attr.Choices {
		if choice.Name != "" {
			choices = append(choices, choice.Name)
		}
	}
	return choices
}

// IsInternal reports whether the schema belongs to an Infrahub-internal namespace
func (s *NodeSchema) IsInternal() bool {
	for _, ns := range InternalNamespaces {
		if s.Namespace == ns {
			return true
		}
	}
	return false
}

// schemaEnvelope matches the payload of GET /api/schema
type schemaEnvelope struct {
	Nodes    []*NodeSchema `json:"nodes"`
	Generics []*NodeSchema `json:"generics"`
}

// SchemaAll returns all node and generic schemas for a branch, keyed by kind.
// Results are cached per branch until InvalidateSchemaCache or a periodic
// refresh replaces them.
func (c *Client) SchemaAll(ctx context.Context, branch string) (map[string]*NodeSchema, error) {
	branch = defaultBranch(branch)

	c.mu.RLock()
	if cached, ok := c.schemaCache[branch]; ok {
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	return c.fetchSchemas(ctx, branch)
}

// SchemaGet returns the schema for a single kind on a branch
func (c *Client) SchemaGet(ctx context.Context, kind, branch string) (*NodeSchema, error) {
	schemas, err := c.SchemaAll(ctx, branch)
	if err != nil {
		return nil, err
	}
	schema, ok := schemas[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, kind)
	}
	return schema, nil
}

// InvalidateSchemaCache drops all cached schemas, forcing the next read to
// hit the API again
func (c *Client) InvalidateSchemaCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schemaCache = make(map[string]map[string]*NodeSchema)
}

func (c *Client) fetchSchemas(ctx context.Context, branch string) (map[string]*NodeSchema, error) {
	endpoint := fmt.Sprintf("%s/api/schema?branch=%s", c.address, url.QueryEscape(branch))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema request: %w", err)
	}
	c.setAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, branch)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schema request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var envelope schemaEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode schema response: %w", err)
	}

	schemas := make(map[string]*NodeSchema, len(envelope.Nodes)+len(envelope.Generics))
	for _, node := range envelope.Nodes {
		schemas[node.Kind()] = node
	}
	for _, generic := range envelope.Generics {
		schemas[generic.Kind()] = generic
	}

	c.mu.Lock()
	c.schemaCache[branch] = schemas
	c.mu.Unlock()

	return schemas, nil
}

// GraphQLSchema retrieves the GraphQL SDL document from the Infrahub server
func (c *Client) GraphQLSchema(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.address+"/schema.graphql", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	c.setAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch GraphQL schema: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read GraphQL schema: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GraphQL schema request failed with status %d", resp.StatusCode)
	}
	return string(body), nil
}
