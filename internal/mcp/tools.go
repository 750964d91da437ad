package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/flakegen/internal/flake"
	"github.com/gorewood/flakegen/internal/format"
	"github.com/gorewood/flakegen/internal/registry"
)

// --- List tool ---

// ListInput is the input for the list_templates tool (no parameters needed).
type ListInput struct{}

// ListOutput is the output for the list_templates tool.
type ListOutput struct {
	Count     int             `json:"count"     jsonschema:"number of templates"`
	Templates []registry.Info `json:"templates" jsonschema:"templates in registration order"`
}

func handleListTemplates(reg *registry.Registry) mcp.ToolHandlerFor[ListInput, ListOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
		out := ListOutput{Templates: make([]registry.Info, 0, reg.Len())}
		for info := range reg.List() {
			out.Templates = append(out.Templates, info)
		}
		out.Count = len(out.Templates)
		return nil, out, nil
	}
}

// --- Show tool ---

// ShowInput is the input for the show_template tool.
type ShowInput struct {
	ID string `json:"id" jsonschema:"template identifier, e.g. rust"`
}

// ShowOutput is the output for the show_template tool.
type ShowOutput struct {
	Template registry.Template `json:"template" jsonschema:"the template definition"`
	Source   string            `json:"source"   jsonschema:"where the template was loaded from"`
	Systems  []string          `json:"systems"  jsonschema:"supported systems, defaults applied"`
}

func handleShowTemplate(reg *registry.Registry) mcp.ToolHandlerFor[ShowInput, ShowOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ShowInput) (*mcp.CallToolResult, ShowOutput, error) {
		if input.ID == "" {
			return nil, ShowOutput{}, errors.New("id is required")
		}
		tmpl, err := reg.Get(input.ID)
		if err != nil {
			return nil, ShowOutput{}, unknownTemplate(reg, err)
		}
		info, _ := reg.Info(input.ID)
		return nil, ShowOutput{Template: tmpl, Source: info.Source, Systems: tmpl.SupportedSystems()}, nil
	}
}

// --- Compose tool ---

// ComposeInput is the input for the compose_flake tool.
type ComposeInput struct {
	Templates []string `json:"templates"          jsonschema:"template identifiers in merge order; duplicates are ignored"`
	NoFormat  bool     `json:"no_format,omitempty" jsonschema:"skip the external formatter pass"`
}

// ComposeOutput is the output for the compose_flake tool.
type ComposeOutput struct {
	Flake       string                 `json:"flake"              jsonschema:"the generated flake.nix document"`
	Description string                 `json:"description"        jsonschema:"description of the generated flake"`
	Templates   []string               `json:"templates"          jsonschema:"templates composed, in order"`
	Systems     []string               `json:"systems"            jsonschema:"systems the flake supports"`
	Warnings    []flake.EnvVarOverride `json:"warnings,omitempty" jsonschema:"environment variables overridden by later templates"`
	Format      format.Result          `json:"format"             jsonschema:"outcome of the formatter pass"`
}

func handleComposeFlake(reg *registry.Registry, formatter *format.Formatter) mcp.ToolHandlerFor[ComposeInput, ComposeOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ComposeInput) (*mcp.CallToolResult, ComposeOutput, error) {
		req, err := flake.ParseRequest(input.Templates...)
		if err != nil {
			return nil, ComposeOutput{}, err
		}

		templates, err := reg.Resolve(req.IDs()...)
		if err != nil {
			return nil, ComposeOutput{}, unknownTemplate(reg, err)
		}

		composed, err := flake.Compose(templates...)
		if err != nil {
			return nil, ComposeOutput{}, fmt.Errorf("composing %s: %w", req, err)
		}

		text := flake.Render(composed)
		result := format.Disabled()
		if !input.NoFormat && formatter != nil {
			text, result = formatter.Format(ctx, text)
		}

		return nil, ComposeOutput{
			Flake:       text,
			Description: composed.Description,
			Templates:   composed.Templates,
			Systems:     composed.Systems,
			Warnings:    composed.Warnings,
			Format:      result,
		}, nil
	}
}

// unknownTemplate adds the available identifiers to a not-found error so
// the agent can correct itself.
func unknownTemplate(reg *registry.Registry, err error) error {
	var notFound *registry.NotFoundError
	if !errors.As(err, &notFound) {
		return err
	}
	return fmt.Errorf("%w; available templates: %v", err, reg.IDs())
}
