package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	configAdapter "github.com/abdidvp/dbtguard/internal/adapters/outbound/config"
	"github.com/abdidvp/dbtguard/internal/adapters/outbound/datahub"
	"github.com/abdidvp/dbtguard/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/dbtguard/internal/application"
	"github.com/abdidvp/dbtguard/internal/domain"
)

// registerTools registers all dbtguard MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. dbtguard_validate
	s.AddTool(
		mcplib.NewTool("dbtguard_validate",
			mcplib.WithDescription("Validate the project's dbt manifest against its governance rules and return the full result as JSON"),
			mcplib.WithString("manifest", mcplib.Description("Path to manifest.json (default target/manifest.json)")),
			mcplib.WithString("config", mcplib.Description("Path to the governance config (default governance.yaml)")),
			mcplib.WithString("fail_on", mcplib.Description("Severity threshold override: error, warning or never")),
			mcplib.WithBoolean("offline", mcplib.Description("Skip catalog lookups; treat every dataset as unregistered")),
		),
		handleValidate(projectPath),
	)

	// 2. dbtguard_list_rules
	s.AddTool(
		mcplib.NewTool("dbtguard_list_rules",
			mcplib.WithDescription("Returns the project's configured governance rules as JSON"),
			mcplib.WithString("config", mcplib.Description("Path to the governance config (default governance.yaml)")),
		),
		handleListRules(projectPath),
	)

	// 3. dbtguard_config_example
	s.AddTool(
		mcplib.NewTool("dbtguard_config_example",
			mcplib.WithDescription("Returns an example governance.yaml (basic or full)"),
			mcplib.WithString("variant", mcplib.Description("Example variant: basic or full (default: basic)")),
		),
		handleConfigExample(),
	)
}

// projectConfig mirrors the CLI's config resolution: an on-disk
// governance.yaml wins, otherwise the built-in default rule set applies.
func projectConfig(projectPath, configPath string) (domain.GovernanceConfig, error) {
	loader := configAdapter.New()
	if configPath != "" {
		return loader.Load(configPath)
	}
	candidate := filepath.Join(projectPath, "governance.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return loader.Load(candidate)
	}
	return domain.DefaultConfig(), nil
}

func handleValidate(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		args := request.GetArguments()
		configPath, _ := args["config"].(string)
		cfg, err := projectConfig(projectPath, configPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}
		if failOn, _ := args["fail_on"].(string); failOn != "" {
			cfg.FailOn = domain.FailOn(failOn)
		}
		if offline, _ := args["offline"].(bool); offline {
			cfg.Catalog.Server = ""
		}
		if cfg.Catalog.Server != "" && cfg.Catalog.Token == "" {
			cfg.Catalog.Token = os.Getenv("DATAHUB_TOKEN")
		}

		manifestPath, _ := args["manifest"].(string)
		if manifestPath == "" {
			manifestPath = filepath.Join(projectPath, "target", "manifest.json")
		}
		artifact, err := os.ReadFile(manifestPath)
		if err != nil {
			return errorResult(fmt.Sprintf("reading manifest: %v", err)), nil
		}

		var fetcher domain.ContextFetcher = datahub.Offline{}
		if cfg.Catalog.Server != "" {
			fetcher = datahub.NewFetcher(datahub.NewClient(cfg.Catalog))
		}

		svc := application.NewValidateService(fetcher, gitinfo.New())
		result, err := svc.Run(ctx, artifact, cfg, projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("validation failed: %v", err)), nil
		}
		return jsonResult(result)
	}
}

func handleListRules(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		configPath, _ := request.GetArguments()["config"].(string)
		cfg, err := projectConfig(projectPath, configPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}
		return jsonResult(cfg.Rules)
	}
}

func handleConfigExample() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		variant, _ := request.GetArguments()["variant"].(string)
		if variant == "" {
			variant = "basic"
		}
		data, err := configAdapter.RenderExample(variant)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(string(data)), nil
	}
}

// jsonResult marshals v as indented JSON into a tool result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result flagged as an error.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
