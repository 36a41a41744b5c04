package infrahub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client pointed at an httptest server
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, append(opts, WithHTTPClient(server.Client()))...)
	require.NoError(t, err)
	return client
}

// writeGraphQLData writes a GraphQL success response
func writeGraphQLData(t *testing.T, w http.ResponseWriter, data map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{"data": data})
	require.NoError(t, err)
}

// readGraphQLQuery extracts the query string from a GraphQL request body
func readGraphQLQuery(t *testing.T, r *http.Request) string {
	t.Helper()
	var body struct {
		Query string `json:"query"`
	}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body.Query
}

// testSchemaEnvelope is a minimal schema payload with one regular kind, one
// peer kind, and one internal kind
func testSchemaEnvelope() map[string]any {
	return map[string]any{
		"nodes": []map[string]any{
			{
				"namespace": "Topology",
				"name":      "DataCenter",
				"label":     "Data Center",
				"attributes": []map[string]any{
					{"name": "name", "kind": "Text", "optional": false},
					{"name": "strategy", "kind": "Text", "optional": false, "choices": []map[string]any{
						{"name": "ebgp-ibgp"}, {"name": "ebgp-evpn"},
					}},
					{"name": "amount_of_super_spines", "kind": "Integer", "optional": true, "default_value": 2},
				},
				"relationships": []map[string]any{
					{"name": "design_pattern", "peer": "TopologyDataCenterDesign", "cardinality": "one", "optional": true},
					{"name": "devices", "peer": "InfraDevice", "cardinality": "many", "optional": true},
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
				"namespace": "Internal",
				"name":      "AccountToken",
				"attributes": []map[string]any{
					{"name": "token", "kind": "Text", "optional": false},
				},
			},
		},
		"generics": []map[string]any{
			{
				"namespace": "Location",
				"name":      "Generic",
				"attributes": []map[string]any{
					{"name": "name", "kind": "Text", "optional": false},
				},
			},
		},
	}
}

func writeSchema(t *testing.T, w http.ResponseWriter) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(testSchemaEnvelope()))
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("http://infrahub.example.com:8000/")
	require.NoError(t, err)
	assert.Equal(t, "http://infrahub.example.com:8000", client.Address())
	assert.False(t, client.HasToken())

	client, err = NewClient("", WithToken("abc"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAddress, client.Address())
	assert.True(t, client.HasToken())

	_, err = NewClient("not a url")
	assert.Error(t, err)

	_, err = NewClient("/path/only")
	assert.Error(t, err)
}

func TestExecuteGraphQLSendsToken(t *testing.T) {
	var gotToken string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-INFRAHUB-KEY")
		assert.Equal(t, "/graphql/main", r.URL.Path)
		writeGraphQLData(t, w, map[string]any{"ok": true})
	}, WithToken("secret-token"))

	data, err := client.ExecuteGraphQL(context.Background(), "", "query { ok }", nil)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", gotToken)
	assert.Equal(t, true, data["ok"])
}

func TestExecuteGraphQLBranchEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql/feature-x", r.URL.Path)
		assert.Empty(t, r.Header.Get("X-INFRAHUB-KEY"))
		writeGraphQLData(t, w, map[string]any{})
	})

	_, err := client.ExecuteGraphQL(context.Background(), "feature-x", "query { ok }", nil)
	require.NoError(t, err)
}

func TestExecuteGraphQLError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": null, "errors": [{"message": "permission denied"}]}`))
	})

	_, err := client.ExecuteGraphQL(context.Background(), "", "query { ok }", nil)
	require.Error(t, err)
	assert.True(t, IsPermissionError(err))
}

func TestGraphQLSchema(t *testing.T) {
	const sdl = "type Query { ok: Boolean }"
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schema.graphql", r.URL.Path)
		_, _ = w.Write([]byte(sdl))
	})

	got, err := client.GraphQLSchema(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sdl, got)
}

func TestGraphQLSchemaServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GraphQLSchema(context.Background())
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "500"))
}
