package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Resource URIs
const (
	ResourcePresetCatalog = "presets://catalog"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         ResourcePresetCatalog,
		Name:        "job-presets",
		Description: "Every job preset with its typical load weight (g) and squatting time (min/day)",
		MIMEType:    "application/json",
	}, s.readPresetCatalog)
}

func (s *Server) readPresetCatalog(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := s.presetCatalogJSON()
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      ResourcePresetCatalog,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}

func (s *Server) presetCatalogJSON() ([]byte, error) {
	data, err := json.MarshalIndent(SearchPresetsResult{
		Presets: s.services.Presets.All(),
		Meta:    s.services.Presets.Meta(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode preset catalog: %w", err)
	}
	return data, nil
}
