// Package mcp provides a Model Context Protocol server for flakegen.
// It exposes the template catalogue and flake composition as MCP tools so
// agents can generate flake.nix files without shelling out to the CLI.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/flakegen/internal/format"
	"github.com/gorewood/flakegen/internal/registry"
)

// NewServer creates an MCP server with all flakegen tools registered.
// A nil formatter disables formatting in compose_flake.
func NewServer(version string, reg *registry.Registry, formatter *format.Formatter) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "flakegen",
		Version: version,
	}, nil)
	registerTools(server, reg, formatter)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// registerTools adds all flakegen tools to the server. None of them write
// files: compose_flake returns the document for the client to place.
func registerTools(server *mcp.Server, reg *registry.Registry, formatter *format.Formatter) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_templates",
		Description: "List the language templates available for flake generation, with their descriptions and where each was loaded from.",
		Annotations: readOnlyAnnotations(),
	}, handleListTemplates(reg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "show_template",
		Description: "Show one template's inputs, overlays, packages, environment variables, supported systems and shell hook.",
		Annotations: readOnlyAnnotations(),
	}, handleShowTemplate(reg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "compose_flake",
		Description: "Compose one or more templates into a flake.nix document. Templates are merged in the given order; conflicting inputs or overlays are reported as errors and overridden environment variables as warnings.",
		Annotations: readOnlyAnnotations(),
	}, handleComposeFlake(reg, formatter))
}
