package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opsmill-labs/franc/pkg/catalog"
)

// catalogResources maps resource names to the dataset they expose
var catalogResources = []struct {
	name        string
	description string
	data        func() any
}{
	{"design-patterns", "Named topology design patterns (size x redundancy)", func() any { return catalog.Designs() }},
	{"strategies", "Routing strategies and the default", func() any {
		return map[string]any{"available": catalog.Strategies(), "default": catalog.DefaultStrategy()}
	}},
	{"providers", "Known providers", func() any { return catalog.Providers() }},
	{"address-pools", "Named address pools", func() any { return catalog.Pools() }},
	{"asn-ranges", "Named ASN ranges", func() any { return catalog.ASNRanges() }},
}

// CatalogResources returns one MCP resource per static catalog dataset
func CatalogResources() []mcp.Resource {
	resources := make([]mcp.Resource, 0, len(catalogResources))
	for _, entry := range catalogResources {
		resources = append(resources, mcp.NewResource(
			"infrahub://catalog/"+entry.name,
			"Catalog: "+entry.name,
			mcp.WithResourceDescription(entry.description),
			mcp.WithMIMEType("application/json"),
		))
	}
	return resources
}

// HandleCatalogResource serves an infrahub://catalog/{name} resource
func (m *Implementation) HandleCatalogResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name := strings.TrimPrefix(request.Params.URI, "infrahub://catalog/")
	for _, entry := range catalogResources {
		if entry.name != name {
			continue
		}
		raw, err := json.Marshal(entry.data())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal catalog %s: %w", name, err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(raw),
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown catalog resource %q", name)
}

// SeedResources returns one MCP resource per demo seed file, in load order
func SeedResources() []mcp.Resource {
	var resources []mcp.Resource
	for _, demo := range catalog.Demos() {
		for _, file := range catalog.SeedFileNames() {
			resources = append(resources, mcp.NewResource(
				fmt.Sprintf("infrahub://seeds/%s/%s", demo, file),
				fmt.Sprintf("Seed %s/%s", demo, file),
				mcp.WithResourceDescription(fmt.Sprintf("Demo dataset %s, file %s", demo, file)),
				mcp.WithMIMEType("application/yaml"),
			))
		}
	}
	return resources
}

// HandleSeedResource serves an infrahub://seeds/{demo}/{file} resource
func (m *Implementation) HandleSeedResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	path := strings.TrimPrefix(request.Params.URI, "infrahub://seeds/")
	demo, file, ok := strings.Cut(path, "/")
	if !ok {
		return nil, fmt.Errorf("invalid seed resource URI %q", request.Params.URI)
	}
	content, err := catalog.SeedDocument(demo, file)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/yaml",
			Text:     content,
		},
	}, nil
}
