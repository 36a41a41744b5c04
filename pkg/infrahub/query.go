package infrahub

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// fieldKeyPattern matches GraphQL field identifiers, covering the filter
// grammar (attr__value, rel__attr__values) and mutation data keys. Keys are
// interpolated into GraphQL documents, so anything else is rejected before a
// query is built.
var fieldKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func validateFieldKeys(fields map[string]any) error {
	for key := range fields {
		if !fieldKeyPattern.MatchString(key) {
			return fmt.Errorf("invalid field key %q", key)
		}
	}
	return nil
}

// NodeFilters returns the filter key grammar for a kind. Each attribute
// produces attr__value and attr__values keys; each relationship produces the
// same keys for every attribute of its peer, prefixed with the relationship
// name. Relationships whose peer schema cannot be resolved are skipped.
func (c *Client) NodeFilters(ctx context.Context, kind, branch string) (map[string]string, error) {
	schema, err := c.SchemaGet(ctx, kind, branch)
	if err != nil {
		return nil, err
	}

	filters := make(map[string]string)
	for _, attr := range schema.Attributes {
		typeName := AttributeTypeName(attr.Kind)
		filters[attr.Name+"__value"] = typeName
		filters[attr.Name+"__values"] = "List[" + typeName + "]"
	}
	for _, rel := range schema.Relationships {
		peerSchema, err := c.SchemaGet(ctx, rel.Peer, branch)
		if err != nil {
			c.logger.Debug("skipping relationship filters, peer schema missing",
				zap.String("relationship", rel.Name), zap.String("peer", rel.Peer))
			continue
		}
		for _, attr := range peerSchema.Attributes {
			typeName := AttributeTypeName(attr.Kind)
			filters[rel.Name+"__"+attr.Name+"__value"] = typeName
			filters[rel.Name+"__"+attr.Name+"__values"] = "List[" + typeName + "]"
		}
	}
	return filters, nil
}

// NodeLabels returns display labels for all nodes of a kind matching the
// given filters
func (c *Client) NodeLabels(ctx context.Context, kind, branch string, filters map[string]any, partialMatch bool) ([]string, error) {
	if err := validateFieldKeys(filters); err != nil {
		return nil, err
	}
	schema, err := c.SchemaGet(ctx, kind, branch)
	if err != nil {
		return nil, err
	}

	query := buildNodeQuery(schema, filters, partialMatch, queryFields{displayLabel: true})
	data, err := c.ExecuteGraphQL(ctx, branch, query, nil)
	if err != nil {
		return nil, err
	}

	nodes := extractEdges(data, schema.Kind())
	labels := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if label, ok := node["display_label"].(string); ok && label != "" {
			labels = append(labels, label)
		}
	}
	return labels, nil
}

// NodesDetails returns all nodes of a kind matching the filters, flattened
// to attribute values and relationship display labels. Relationships of
// cardinality one flatten to a string, many to a list of strings.
func (c *Client) NodesDetails(ctx context.Context, kind, branch string, filters map[string]any) ([]map[string]any, error) {
	if err := validateFieldKeys(filters); err != nil {
		return nil, err
	}
	schema, err := c.SchemaGet(ctx, kind, branch)
	if err != nil {
		return nil, err
	}

	query := buildNodeQuery(schema, filters, false, queryFields{
		displayLabel:  true,
		attributes:    true,
		relationships: true,
	})
	data, err := c.ExecuteGraphQL(ctx, branch, query, nil)
	if err != nil {
		return nil, err
	}

	nodes := extractEdges(data, schema.Kind())
	flattened := make([]map[string]any, 0, len(nodes))
	for _, node := range nodes {
		flattened = append(flattened, flattenNode(node))
	}
	return flattened, nil
}

// NodeDetails returns the single node matching the filters, flattened
func (c *Client) NodeDetails(ctx context.Context, kind, branch string, filters map[string]any) (map[string]any, error) {
	nodes, err := c.NodesDetails(ctx, kind, branch, filters)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: kind=%s filters=%v", ErrNodeNotFound, kind, filters)
	}
	return nodes[0], nil
}

// RelatedNodes returns the flattened peers of one relationship of a node
// identified by filters
func (c *Client) RelatedNodes(ctx context.Context, kind, relation, branch string, filters map[string]any) ([]map[string]any, error) {
	if err := validateFieldKeys(filters); err != nil {
		return nil, err
	}
	schema, err := c.SchemaGet(ctx, kind, branch)
	if err != nil {
		return nil, err
	}
	rel := schema.Relationship(relation)
	if rel == nil {
		return nil, fmt.Errorf("relation %q not found in kind %q", relation, kind)
	}
	peerSchema, err := c.SchemaGet(ctx, rel.Peer, branch)
	if err != nil {
		return nil, err
	}

	var builder strings.Builder
	builder.WriteString("query {\n  ")
	builder.WriteString(schema.Kind())
	writeFilterArgs(&builder, filters, false)
	builder.WriteString(" {\n    edges {\n      node {\n        id\n        display_label\n        ")
	builder.WriteString(relation)
	builder.WriteString(" {\n          edges {\n            node {\n")
	builder.WriteString(nodeSelection(peerSchema, queryFields{displayLabel: true, attributes: true}, "              "))
	builder.WriteString("            }\n          }\n        }\n      }\n    }\n  }\n}")

	data, err := c.ExecuteGraphQL(ctx, branch, builder.String(), nil)
	if err != nil {
		return nil, err
	}

	nodes := extractEdges(data, schema.Kind())
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: kind=%s filters=%v", ErrNodeNotFound, kind, filters)
	}

	relField, ok := nodes[0][relation].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("relation %q missing in query result for kind %q", relation, kind)
	}
	peers := make([]map[string]any, 0)
	edges, _ := relField["edges"].([]any)
	for _, edge := range edges {
		edgeMap, ok := edge.(map[string]any)
		if !ok {
			continue
		}
		if peer, ok := edgeMap["node"].(map[string]any); ok {
			peers = append(peers, flattenNode(peer))
		}
	}
	return peers, nil
}

// NodeCreate creates a node of the given kind on a branch and returns its ID.
// Map values carrying an "id" key are rendered as relationship links; all
// other values are wrapped as attribute values.
func (c *Client) NodeCreate(ctx context.Context, kind, branch string, data map[string]any) (string, error) {
	if err := validateFieldKeys(data); err != nil {
		return "", err
	}
	schema, err := c.SchemaGet(ctx, kind, branch)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("mutation {\n  ")
	builder.WriteString(schema.Kind())
	builder.WriteString("Create(data: {")
	keys := sortedKeys(data)
	for i, key := range keys {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(key)
		builder.WriteString(": ")
		if link, ok := data[key].(map[string]any); ok {
			if id, ok := link["id"]; ok {
				builder.WriteString("{id: ")
				builder.WriteString(renderGraphQLValue(id))
				builder.WriteString("}")
				continue
			}
		}
		builder.WriteString("{value: ")
		builder.WriteString(renderGraphQLValue(data[key]))
		builder.WriteString("}")
	}
	builder.WriteString("}) {\n    ok\n    object {\n      id\n    }\n  }\n}")

	result, err := c.ExecuteGraphQL(ctx, branch, builder.String(), nil)
	if err != nil {
		return "", err
	}

	var payload map[string]struct {
		OK     bool `json:"ok"`
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	}
	if err := remarshal(result, &payload); err != nil {
		return "", fmt.Errorf("failed to decode creation response: %w", err)
	}
	created, ok := payload[schema.Kind()+"Create"]
	if !ok || !created.OK {
		return "", fmt.Errorf("creation of %s was rejected by Infrahub", kind)
	}
	return created.Object.ID, nil
}

// queryFields selects which parts of a node to request
type queryFields struct {
	displayLabel  bool
	attributes    bool
	relationships bool
}

// buildNodeQuery constructs a GraphQL query for one kind using its schema
func buildNodeQuery(schema *NodeSchema, filters map[string]any, partialMatch bool, fields queryFields) string {
	var builder strings.Builder
	builder.WriteString("query {\n  ")
	builder.WriteString(schema.Kind())
	writeFilterArgs(&builder, filters, partialMatch)
	builder.WriteString(" {\n    count\n    edges {\n      node {\n")
	builder.WriteString(nodeSelection(schema, fields, "        "))
	builder.WriteString("      }\n    }\n  }\n}")
	return builder.String()
}

func nodeSelection(schema *NodeSchema, fields queryFields, indent string) string {
	var builder strings.Builder
	builder.WriteString(indent + "id\n")
	if fields.displayLabel {
		builder.WriteString(indent + "display_label\n")
	}
	if fields.attributes {
		for _, attr := range schema.Attributes {
			builder.WriteString(indent + attr.Name + " { value }\n")
		}
	}
	if fields.relationships {
		for _, rel := range schema.Relationships {
			if rel.Cardinality == "many" {
				builder.WriteString(indent + rel.Name + " { edges { node { display_label } } }\n")
			} else {
				builder.WriteString(indent + rel.Name + " { node { display_label } }\n")
			}
		}
	}
	return builder.String()
}

func writeFilterArgs(builder *strings.Builder, filters map[string]any, partialMatch bool) {
	if len(filters) == 0 && !partialMatch {
		return
	}
	builder.WriteString("(")
	first := true
	for _, key := range sortedKeys(filters) {
		if !first {
			builder.WriteString(", ")
		}
		first = false
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(renderGraphQLValue(filters[key]))
	}
	if partialMatch {
		if !first {
			builder.WriteString(", ")
		}
		builder.WriteString("partial_match: true")
	}
	builder.WriteString(")")
}

// renderGraphQLValue renders a Go value as a GraphQL literal
func renderGraphQLValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, renderGraphQLValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, strconv.Quote(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// extractEdges pulls the node maps out of a {Kind: {edges: [{node: ...}]}} payload
func extractEdges(data map[string]any, kind string) []map[string]any {
	kindData, ok := data[kind].(map[string]any)
	if !ok {
		return nil
	}
	edges, ok := kindData["edges"].([]any)
	if !ok {
		return nil
	}
	nodes := make([]map[string]any, 0, len(edges))
	for _, edge := range edges {
		edgeMap, ok := edge.(map[string]any)
		if !ok {
			continue
		}
		if node, ok := edgeMap["node"].(map[string]any); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// flattenNode collapses a raw GraphQL node into plain values: attribute
// wrappers become their value, single relationships become the peer display
// label, many relationships become a list of display labels
func flattenNode(node map[string]any) map[string]any {
	flattened := make(map[string]any, len(node))
	for key, value := range node {
		flattened[key] = extractValue(value)
	}
	return flattened
}

func extractValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		if node, ok := v["node"]; ok {
			if nodeMap, ok := node.(map[string]any); ok {
				return nodeMap["display_label"]
			}
			return nil
		}
		if edges, ok := v["edges"].([]any); ok {
			labels := make([]any, 0, len(edges))
			for _, edge := range edges {
				edgeMap, ok := edge.(map[string]any)
				if !ok {
					continue
				}
				if nodeMap, ok := edgeMap["node"].(map[string]any); ok {
					labels = append(labels, nodeMap["display_label"])
				}
			}
			return labels
		}
		if len(v) == 1 {
			if inner, ok := v["value"]; ok {
				return inner
			}
		}
		nested := make(map[string]any, len(v))
		for key, inner := range v {
			nested[key] = extractValue(inner)
		}
		return nested
	case []any:
		items := make([]any, 0, len(v))
		for _, item := range v {
			items = append(items, extractValue(item))
		}
		return items
	default:
		return value
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
