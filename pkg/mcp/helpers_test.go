package mcp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opsmill-labs/franc/pkg/infrahub"
	"github.com/opsmill-labs/franc/pkg/types"
)

// newTestImplementation builds an Implementation backed by an httptest server
func newTestImplementation(t *testing.T, handler http.HandlerFunc) *Implementation {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := infrahub.NewClient(server.URL,
		infrahub.WithHTTPClient(server.Client()),
		infrahub.WithToken("test-token"))
	require.NoError(t, err)
	return NewImplementation(client, zap.NewNop())
}

// toolRequest builds a tool call request with the given arguments
func toolRequest(tool string, args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = tool
	request.Params.Arguments = args
	return request
}

// decodeEnvelope parses the response envelope out of a tool result
func decodeEnvelope(t *testing.T, result *mcp.CallToolResult) types.Response {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "tool results must be text content")

	var response types.Response
	require.NoError(t, json.Unmarshal([]byte(text.Text), &response))
	return response
}

// dataMap returns the envelope data as a map
func dataMap(t *testing.T, response types.Response) map[string]any {
	t.Helper()
	data, ok := response.Data.(map[string]any)
	require.True(t, ok, "envelope data must be an object, got %T", response.Data)
	return data
}

// writeJSON writes v as a JSON response body
func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// writeGraphQL wraps data in a GraphQL success response
func writeGraphQL(t *testing.T, w http.ResponseWriter, data map[string]any) {
	t.Helper()
	writeJSON(t, w, map[string]any{"data": data})
}

// graphqlQuery extracts the query string from a GraphQL request
func graphqlQuery(t *testing.T, r *http.Request) string {
	t.Helper()
	var body struct {
		Query string `json:"query"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body.Query
}

// deploymentSchema is the schema payload used by the wizard tests
func deploymentSchema() map[string]any {
	return map[string]any{
		"nodes": []map[string]any{
			{
				"namespace": "Topology",
				"name":      "DataCenter",
				"label":     "Data Center",
				"attributes": []map[string]any{
					{"name": "name", "kind": "Text", "optional": false},
					{"name": "strategy", "kind": "Text", "optional": false, "choices": []map[string]any{
						{"name": "ebgp-ibgp"}, {"name": "ebgp-evpn"}, {"name": "isis-ibgp"}, {"name": "ospf-ibgp"},
					}},
					{"name": "status", "kind": "Text", "optional": false},
					{"name": "fully_managed", "kind": "Boolean", "optional": true},
					{"name": "underlay", "kind": "Boolean", "optional": true},
					{"name": "amount_of_super_spines", "kind": "Integer", "optional": true, "default_value": 2},
					{"name": "fabric_interface_sorting_method", "kind": "Text", "optional": true, "default_value": "bottom_up"},
					{"name": "spine_interface_sorting_method", "kind": "Text", "optional": true, "default_value": "bottom_up"},
				},
				"relationships": []map[string]any{
					{"name": "design_pattern", "peer": "TopologyDataCenterDesign", "cardinality": "one", "optional": true},
				},
			},
			{
				"namespace": "Topology",
				"name":      "DataCenterDesign",
				"label":     "Data Center Design",
				"attributes": []map[string]any{
					{"name": "name", "kind": "Text", "optional": false},
				},
			},
			{
				"namespace": "Profile",
				"name":      "DataCenter",
				"attributes": []map[string]any{
					{"name": "profile_name", "kind": "Text", "optional": false},
				},
			},
		},
		"generics": []map[string]any{},
	}
}
