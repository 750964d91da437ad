package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	flakegenmcp "github.com/gorewood/flakegen/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run flakegen as a Model Context Protocol (MCP) server over stdio.

Agents can browse the template catalogue and compose flakes without
touching the file system; the compose tool returns the generated flake.nix
text for the agent to review and write.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "flakegen": {
        "command": "flakegen",
        "args": ["serve"]
      }
    }
  }

Available tools: list_templates, show_template, compose_flake`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			a.logger.Debug("serving MCP over stdio", "templates", a.templates.Len())
			server := flakegenmcp.NewServer(buildVersion(), a.templates.Registry, a.formatter())
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
