// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/handlers"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(ws *crm.Workspace, version string) error {
	log.Info("starting immo MCP server", "version", version)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "immo",
		Version: version,
	}, nil)
	handlers.Register(server, ws)

	return server.Run(context.Background(), &mcp.StdioTransport{})
}
