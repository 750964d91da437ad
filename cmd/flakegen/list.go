package main

import (
	"cmp"
	"slices"

	"github.com/spf13/cobra"

	"github.com/gorewood/flakegen/internal/output"
	"github.com/gorewood/flakegen/internal/registry"
)

// skippedJSON is a template file that failed to load.
type skippedJSON struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available templates",
		Long: `List every template flakegen can compose, sorted by identifier.

The SOURCE column shows where a template was loaded from: project
(.flakegen/templates), global (the config directory), a configured
templates directory, or built-in. A user template with the same identifier
as a lower-priority one shadows it.

Examples:
  flakegen list          # Table of templates
  flakegen list --json   # Machine-readable catalogue`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
}

// runList executes the list command.
func runList(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	infos := slices.SortedFunc(a.templates.List(), func(x, y registry.Info) int {
		return cmp.Compare(x.ID, y.ID)
	})

	if a.printer.IsJSON() {
		skipped := make([]skippedJSON, 0, len(a.templates.Skipped))
		for _, s := range a.templates.Skipped {
			skipped = append(skipped, skippedJSON{Path: s.Path, Error: s.Err.Error()})
		}
		return a.printer.WriteJSON(map[string]any{
			"count":     len(infos),
			"templates": infos,
			"skipped":   skipped,
		})
	}

	outputListHuman(a.printer, infos, a.templates.Skipped)
	return nil
}

func outputListHuman(printer *output.Printer, infos []registry.Info, skipped []registry.SkippedTemplate) {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		source := info.Source
		if info.Overrides != "" {
			source += " (overrides " + info.Overrides + ")"
		}
		rows = append(rows, []string{info.ID, source, info.Description})
	}
	printer.Table([]string{"ID", "SOURCE", "DESCRIPTION"}, rows)

	for _, s := range skipped {
		printer.Warn("skipped %s: %v", s.Path, s.Err)
	}
}
