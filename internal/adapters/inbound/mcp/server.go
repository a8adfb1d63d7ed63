package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewGuardMCPServer creates a new MCP server with all dbtguard tools and
// resources registered. The projectPath is the root directory of the dbt
// project to validate.
func NewGuardMCPServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"dbtguard",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}
