package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/heart-risk-mcp-server/internal/presets"
)

const uriScheme = "heart-risk://"

// registerResources registers the read-only resources
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "model",
		Name:        "model",
		Description: "Status of the loaded model artifacts",
		MIMEType:    "application/json",
	}, s.handleModelResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "presets",
		Name:        "presets",
		Description: "Built-in example patients",
		MIMEType:    "application/json",
	}, s.handlePresetsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "presets/{presetId}",
		Name:        "preset",
		Description: "A single example patient record",
		MIMEType:    "application/json",
	}, s.handlePresetResource)
}

func (s *Server) handleModelResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, modelStatusOutput(s.predictor.Status()))
}

func (s *Server) handlePresetsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, presets.All())
}

func (s *Server) handlePresetResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractPresetID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	preset, ok := presets.Lookup(id)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, preset)
}

// extractPresetID extracts the preset ID from heart-risk://presets/{id}
func extractPresetID(uri string) string {
	prefix := uriScheme + "presets/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
