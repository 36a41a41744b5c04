package mcp

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsmill-labs/franc/pkg/types"
)

func schemaOnlyImplementation(t *testing.T) *Implementation {
	t.Helper()
	return newTestImplementation(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/schema", r.URL.Path)
		writeJSON(t, w, deploymentSchema())
	})
}

func TestHandleGetSchemaMapping(t *testing.T) {
	impl := schemaOnlyImplementation(t)

	result, err := impl.HandleGetSchemaMapping(context.Background(),
		toolRequest(types.GetSchemaMappingToolName, nil))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	assert.Equal(t, types.StatusSuccess, response.Status)

	mapping := dataMap(t, response)
	assert.Equal(t, "Data Center", mapping["TopologyDataCenter"])
	assert.Equal(t, "Data Center Design", mapping["TopologyDataCenterDesign"])
	assert.NotContains(t, mapping, "ProfileDataCenter", "internal namespaces are filtered")
}

func TestHandleGetSchema(t *testing.T) {
	impl := schemaOnlyImplementation(t)

	result, err := impl.HandleGetSchema(context.Background(),
		toolRequest(types.GetSchemaToolName, map[string]any{"kind": "TopologyDataCenter"}))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	require.Equal(t, types.StatusSuccess, response.Status)
	schema := dataMap(t, response)
	assert.Equal(t, "DataCenter", schema["name"])
	assert.Equal(t, "Topology", schema["namespace"])
}

func TestHandleGetSchemaMissingKind(t *testing.T) {
	impl := schemaOnlyImplementation(t)

	result, err := impl.HandleGetSchema(context.Background(),
		toolRequest(types.GetSchemaToolName, nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	response := decodeEnvelope(t, result)
	assert.Equal(t, types.StatusError, response.Status)
	assert.Equal(t, "kind is required", response.Error)
	assert.Contains(t, response.Remediation, "get_schema_mapping")
}

func TestHandleGetSchemaUnknownKind(t *testing.T) {
	impl := schemaOnlyImplementation(t)

	result, err := impl.HandleGetSchema(context.Background(),
		toolRequest(types.GetSchemaToolName, map[string]any{"kind": "NoSuchKind"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	response := decodeEnvelope(t, result)
	assert.Contains(t, response.Error, "NoSuchKind")
	assert.Contains(t, response.Remediation, "get_schema_mapping")
}

func TestHandleGetSchemasExcludesProfiles(t *testing.T) {
	impl := schemaOnlyImplementation(t)

	result, err := impl.HandleGetSchemas(context.Background(),
		toolRequest(types.GetSchemasToolName, nil))
	require.NoError(t, err)

	schemas := dataMap(t, decodeEnvelope(t, result))
	assert.Contains(t, schemas, "TopologyDataCenter")
	assert.NotContains(t, schemas, "ProfileDataCenter")

	// Profiles come back when exclusion is disabled
	result, err = impl.HandleGetSchemas(context.Background(),
		toolRequest(types.GetSchemasToolName, map[string]any{"exclude_profiles": false}))
	require.NoError(t, err)
	schemas = dataMap(t, decodeEnvelope(t, result))
	assert.Contains(t, schemas, "ProfileDataCenter")
}

func TestHandleGetRequiredFields(t *testing.T) {
	impl := schemaOnlyImplementation(t)

	result, err := impl.HandleGetRequiredFields(context.Background(),
		toolRequest(types.GetRequiredFieldsToolName, map[string]any{"kind": "TopologyDataCenter"}))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	require.Equal(t, types.StatusSuccess, response.Status)

	required, ok := response.Data.([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"name", "strategy", "status"}, required,
		"optional attributes and relationships are not required")
}
