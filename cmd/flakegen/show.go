package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/flakegen/internal/output"
	"github.com/gorewood/flakegen/internal/registry"
)

// newShowCmd creates the show command.
func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <lang>",
		Short: "Show what a template contributes to a flake",
		Long: `Show a template's inputs, overlays, packages, environment, supported
systems and shell hook.

Examples:
  flakegen show rust          # Human-readable summary
  flakegen show go --json     # Full template as JSON`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
}

// runShow executes the show command.
func runShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	id := strings.TrimSpace(args[0])
	tmpl, err := a.templates.Get(id)
	if err != nil {
		exitErr := toExitError(err)
		a.printer.Error(exitErr)
		return exitErr
	}
	info, _ := a.templates.Info(id)

	if a.printer.IsJSON() {
		return a.printer.WriteJSON(map[string]any{
			"template":  tmpl,
			"source":    info.Source,
			"overrides": info.Overrides,
			"systems":   tmpl.SupportedSystems(),
		})
	}

	outputShowHuman(a.printer, tmpl, info)
	return nil
}

func outputShowHuman(printer *output.Printer, tmpl registry.Template, info registry.Info) {
	styles := printer.Styles()
	printer.Println(styles.Title.Render(tmpl.ID) + " " + styles.Dim.Render("("+info.Source+")"))
	printer.Println(tmpl.Description)
	if info.Overrides != "" {
		printer.Println(styles.Dim.Render("overrides the " + info.Overrides + " template"))
	}

	printer.Section("Inputs")
	for _, in := range tmpl.Inputs {
		value := in.URL
		if in.FollowsNixpkgs {
			value += styles.Dim.Render(" (follows nixpkgs)")
		}
		printer.KeyValue(in.Name, value)
	}

	if len(tmpl.Overlays) > 0 {
		printer.Section("Overlays")
		for _, o := range tmpl.Overlays {
			value := "from " + o.SourceInput
			if o.Value != "" {
				value += ": " + firstLine(o.Value)
			}
			printer.KeyValue(o.Name, value)
		}
	}

	if len(tmpl.Packages) > 0 {
		printer.Section("Packages")
		printer.Println(strings.Join(tmpl.PackageNames(), " "))
	}

	if len(tmpl.EnvVars) > 0 {
		printer.Section("Environment")
		for _, env := range tmpl.EnvVars {
			printer.KeyValue(env.Key, env.Value)
		}
	}

	printer.Section("Systems")
	printer.Println(strings.Join(tmpl.SupportedSystems(), " "))

	if tmpl.AllowUnfree {
		printer.Println(styles.Warning.Render("Requires unfree packages (config.allowUnfree)"))
	}

	if hook := strings.TrimSpace(tmpl.ShellHook); hook != "" {
		printer.Section("Shell hook")
		for line := range strings.SplitSeq(hook, "\n") {
			printer.Println("  " + line)
		}
	}
}

// firstLine returns the first line of s, marking elided lines.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	head, rest, found := strings.Cut(s, "\n")
	if !found {
		return head
	}
	return fmt.Sprintf("%s ... (%d more lines)", head, strings.Count(rest, "\n")+1)
}
