package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resourceRequest(uri string) mcp.ReadResourceRequest {
	request := mcp.ReadResourceRequest{}
	request.Params.URI = uri
	return request
}

// readTextResource serves a resource and returns its text body
func readTextResource(t *testing.T, contents []mcp.ResourceContents, wantMIME string) string {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, wantMIME, text.MIMEType)
	return text.Text
}

func TestCatalogResources(t *testing.T) {
	resources := CatalogResources()
	require.Len(t, resources, 5)

	uris := make([]string, 0, len(resources))
	for _, resource := range resources {
		uris = append(uris, resource.URI)
		assert.Equal(t, "application/json", resource.MIMEType)
	}
	assert.Contains(t, uris, "infrahub://catalog/design-patterns")
	assert.Contains(t, uris, "infrahub://catalog/strategies")
	assert.Contains(t, uris, "infrahub://catalog/asn-ranges")
}

func TestHandleCatalogResource(t *testing.T) {
	impl := newTestImplementation(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("catalog resources must not call Infrahub")
	})

	contents, err := impl.HandleCatalogResource(context.Background(),
		resourceRequest("infrahub://catalog/design-patterns"))
	require.NoError(t, err)

	var designs []string
	require.NoError(t, json.Unmarshal([]byte(readTextResource(t, contents, "application/json")), &designs))
	assert.Len(t, designs, 12)
	assert.Contains(t, designs, "S-Standard")

	contents, err = impl.HandleCatalogResource(context.Background(),
		resourceRequest("infrahub://catalog/strategies"))
	require.NoError(t, err)

	var strategies struct {
		Available []string `json:"available"`
		Default   string   `json:"default"`
	}
	require.NoError(t, json.Unmarshal([]byte(readTextResource(t, contents, "application/json")), &strategies))
	assert.Len(t, strategies.Available, 4)
	assert.Equal(t, "ebgp-ibgp", strategies.Default)
}

func TestHandleCatalogResourceUnknown(t *testing.T) {
	impl := newTestImplementation(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("catalog resources must not call Infrahub")
	})

	_, err := impl.HandleCatalogResource(context.Background(),
		resourceRequest("infrahub://catalog/no-such-dataset"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-dataset")
}

func TestSeedResources(t *testing.T) {
	resources := SeedResources()
	require.Len(t, resources, 18)

	assert.Equal(t, "infrahub://seeds/dc1/00_topology.yml", resources[0].URI)
	assert.Equal(t, "infrahub://seeds/dc1/01_suites.yml", resources[1].URI)
	assert.Equal(t, "infrahub://seeds/dc1/02_racks.yml", resources[2].URI)
	for _, resource := range resources {
		assert.Equal(t, "application/yaml", resource.MIMEType)
	}
}

func TestHandleSeedResource(t *testing.T) {
	impl := newTestImplementation(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("seed resources must not call Infrahub")
	})

	contents, err := impl.HandleSeedResource(context.Background(),
		resourceRequest("infrahub://seeds/dc1/00_topology.yml"))
	require.NoError(t, err)
	assert.NotEmpty(t, readTextResource(t, contents, "application/yaml"))
}

func TestHandleSeedResourceInvalidURI(t *testing.T) {
	impl := newTestImplementation(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("seed resources must not call Infrahub")
	})

	_, err := impl.HandleSeedResource(context.Background(),
		resourceRequest("infrahub://seeds/dc1"))
	require.Error(t, err)

	_, err = impl.HandleSeedResource(context.Background(),
		resourceRequest("infrahub://seeds/dc1/99_missing.yml"))
	require.Error(t, err)
}
