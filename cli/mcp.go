// ABOUTME: MCP server subcommand
// ABOUTME: Starts the lead tools MCP server on stdio for desktop assistants
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/smscrm/api"
	"github.com/harperreed/smscrm/handlers"
)

// MCPCommand starts the MCP server on stdio. Logs must not go to stdout,
// which carries the protocol.
func MCPCommand(ctx context.Context, svc api.LeadService, logger *log.Logger, version string) error {
	logger.Info("starting MCP server", "version", version)

	server := handlers.NewServer(svc, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
