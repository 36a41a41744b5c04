package mcp

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsmill-labs/franc/pkg/toon"
	"github.com/opsmill-labs/franc/pkg/types"
)

// nodesImplementation serves the deployment schema and a fixed label set
func nodesImplementation(t *testing.T, labels []string) *Implementation {
	t.Helper()
	return newTestImplementation(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/schema" {
			writeJSON(t, w, deploymentSchema())
			return
		}
		edges := make([]map[string]any, 0, len(labels))
		for i, label := range labels {
			edges = append(edges, map[string]any{
				"node": map[string]any{"id": fmt.Sprintf("n%d", i), "display_label": label},
			})
		}
		writeGraphQL(t, w, map[string]any{
			"TopologyDataCenter": map[string]any{"count": len(labels), "edges": edges},
		})
	})
}

func TestHandleGetNodes(t *testing.T) {
	impl := nodesImplementation(t, []string{"dc-fra-01", "dc-ams-01"})

	result, err := impl.HandleGetNodes(context.Background(),
		toolRequest(types.GetNodesToolName, map[string]any{"kind": "TopologyDataCenter"}))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	require.Equal(t, types.StatusSuccess, response.Status)
	assert.Equal(t, []any{"dc-fra-01", "dc-ams-01"}, response.Data)
}

func TestHandleGetNodesMissingKind(t *testing.T) {
	impl := nodesImplementation(t, nil)

	result, err := impl.HandleGetNodes(context.Background(),
		toolRequest(types.GetNodesToolName, nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGetNodesEmptyResult(t *testing.T) {
	impl := nodesImplementation(t, nil)

	result, err := impl.HandleGetNodes(context.Background(),
		toolRequest(types.GetNodesToolName, map[string]any{
			"kind":    "TopologyDataCenter",
			"filters": map[string]any{"name__value": "missing"},
		}))
	require.NoError(t, err)

	// Empty results are a success with search context, not an error
	response := decodeEnvelope(t, result)
	require.Equal(t, types.StatusSuccess, response.Status)

	data := dataMap(t, response)
	assert.Equal(t, float64(0), data["count"])
	assert.Equal(t, "TopologyDataCenter", data["kind"])
	note, _ := data["note"].(string)
	assert.Contains(t, note, "name__value")
	assert.Contains(t, note, "partial_match")
}

func TestHandleGetNodesCompressesLargeResults(t *testing.T) {
	labels := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		labels = append(labels, fmt.Sprintf("dc-site-%02d", i))
	}
	impl := nodesImplementation(t, labels)

	result, err := impl.HandleGetNodes(context.Background(),
		toolRequest(types.GetNodesToolName, map[string]any{"kind": "TopologyDataCenter"}))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	require.Equal(t, types.StatusSuccess, response.Status)

	data := dataMap(t, response)
	assert.Equal(t, float64(25), data["count"])
	assert.Contains(t, data, "compression_stats")

	// The compressed payload round-trips back to the original labels
	encoded, ok := data["nodes_toon"].(string)
	require.True(t, ok)
	decoded, err := toon.Decode(encoded)
	require.NoError(t, err)
	expected := make([]any, 0, len(labels))
	for _, label := range labels {
		expected = append(expected, label)
	}
	assert.Equal(t, expected, decoded)
}

func TestHandleGetNodeFilters(t *testing.T) {
	impl := nodesImplementation(t, nil)

	result, err := impl.HandleGetNodeFilters(context.Background(),
		toolRequest(types.GetNodeFiltersToolName, map[string]any{"kind": "TopologyDataCenter"}))
	require.NoError(t, err)

	filters := dataMap(t, decodeEnvelope(t, result))
	assert.Equal(t, "String", filters["name__value"])
	assert.Equal(t, "List[String]", filters["strategy__values"])
	assert.Equal(t, "Int", filters["amount_of_super_spines__value"])
	assert.Equal(t, "String", filters["design_pattern__name__value"])
}

func TestHandleGetObjectDetailsRequiresFilters(t *testing.T) {
	impl := nodesImplementation(t, nil)

	result, err := impl.HandleGetObjectDetails(context.Background(),
		toolRequest(types.GetObjectDetailsToolName, map[string]any{"kind": "TopologyDataCenter"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	response := decodeEnvelope(t, result)
	assert.Contains(t, response.Error, "filters are required")
	assert.Contains(t, response.Remediation, "get_node_filters")
}

func TestHandleGetObjectDetailsNotFound(t *testing.T) {
	impl := nodesImplementation(t, nil)

	result, err := impl.HandleGetObjectDetails(context.Background(),
		toolRequest(types.GetObjectDetailsToolName, map[string]any{
			"kind":    "TopologyDataCenter",
			"filters": map[string]any{"name__value": "missing"},
		}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	response := decodeEnvelope(t, result)
	assert.Contains(t, response.Error, "No object found")
	assert.Contains(t, response.Error, "missing")
}

func TestHandleGetRelatedNodesValidation(t *testing.T) {
	impl := nodesImplementation(t, nil)

	result, err := impl.HandleGetRelatedNodes(context.Background(),
		toolRequest(types.GetRelatedNodesToolName, map[string]any{"kind": "TopologyDataCenter"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, decodeEnvelope(t, result).Error, "relation is required")

	result, err = impl.HandleGetRelatedNodes(context.Background(),
		toolRequest(types.GetRelatedNodesToolName, map[string]any{
			"kind":     "TopologyDataCenter",
			"relation": "design_pattern",
		}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, decodeEnvelope(t, result).Error, "filters are required")
}
