package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/dbtguard/internal/domain"
)

// registerResources registers all dbtguard MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. dbtguard://config - resolved governance configuration
	s.AddResource(
		mcplib.NewResource(
			"dbtguard://config",
			"Governance Config",
			mcplib.WithResourceDescription("The resolved governance configuration for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(projectPath),
	)

	// 2. dbtguard://rule-types - supported rule types
	s.AddResource(
		mcplib.NewResource(
			"dbtguard://rule-types",
			"Rule Types",
			mcplib.WithResourceDescription("The governance rule types dbtguard can evaluate"),
			mcplib.WithMIMEType("application/json"),
		),
		handleRuleTypesResource(),
	)
}

func handleConfigResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := projectConfig(projectPath, "")
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return jsonResource(request.Params.URI, cfg)
	}
}

func handleRuleTypesResource() server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		return jsonResource(request.Params.URI, domain.ValidRuleTypes)
	}
}

func jsonResource(uri string, v interface{}) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
