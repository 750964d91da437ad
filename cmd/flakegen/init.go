package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gorewood/flakegen/internal/flake"
	"github.com/gorewood/flakegen/internal/format"
	"github.com/gorewood/flakegen/internal/output"
)

// flakeFile is the name of the generated document.
const flakeFile = "flake.nix"

// initFlags holds the command-line flags for the init command.
type initFlags struct {
	path     string
	force    bool
	dryRun   bool
	diff     bool
	noFormat bool
	gitAdd   bool
}

// initPlan is everything init decided before touching the file system.
type initPlan struct {
	dir      string
	target   string
	composed *flake.ComposedFlake
	text     string
	format   format.Result
	existing string
	exists   bool
}

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init <lang>[,<lang>...] [<lang>...]",
		Short: "Generate a flake.nix for one or more languages",
		Long: `Generate a flake.nix development environment from language templates.

Several languages can be combined, either comma separated or as separate
arguments. Templates are merged in the order given. Conflicting inputs or
overlays abort generation; environment variables set by more than one
template take the last value and are reported as warnings.

The generated file is passed through the configured formatter (nixfmt by
default) when it is installed. An existing flake.nix is only replaced with
--force. Nix flakes only see files tracked by git; --git-add stages the new
file for you.

Examples:
  flakegen init rust                   # Rust environment in the current directory
  flakegen init rust,go node           # Merge Rust, Go and Node.js
  flakegen init python --path ./api    # Write ./api/flake.nix
  flakegen init go --dry-run           # Print the flake instead of writing it
  flakegen init go,node --diff         # Compare with the existing flake.nix
  flakegen init zig --force --git-add  # Overwrite and stage the file`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.path, "path", "p", "", "Directory to write flake.nix into (default from config, else .)")
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite an existing flake.nix")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the generated flake without writing it")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "Show a diff against the existing flake.nix without writing it")
	cmd.Flags().BoolVar(&flags.noFormat, "no-format", false, "Skip the formatter pass")
	cmd.Flags().BoolVar(&flags.gitAdd, "git-add", false, "Stage flake.nix when the directory is in a git work tree")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "diff")

	return cmd
}

// runInit executes the init command.
func runInit(cmd *cobra.Command, flags *initFlags, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	plan, err := planInit(cmd.Context(), a, flags, args)
	if err != nil {
		exitErr := toExitError(err)
		a.printer.Error(exitErr)
		return exitErr
	}
	for _, w := range plan.composed.Warnings {
		a.logger.Debug("env override", "key", w.Key, "from", w.From, "to", w.To)
	}

	switch {
	case flags.dryRun:
		return outputInitDryRun(a.printer, plan)
	case flags.diff:
		return outputInitDiff(a.printer, plan)
	}

	if plan.exists && !flags.force {
		err := output.NewConflictError(fmt.Sprintf("%s already exists. Use --force to overwrite or --diff to compare", plan.target))
		a.printer.Error(err)
		return err
	}

	if err := writeFlake(plan.target, plan.text); err != nil {
		exitErr := output.NewSystemErrorWithCause(fmt.Sprintf("writing %s: %v", plan.target, err), err)
		a.printer.Error(exitErr)
		return exitErr
	}
	a.logger.Debug("wrote flake", "path", plan.target, "bytes", len(plan.text))

	stage := stageResult{}
	if flags.gitAdd {
		stage, err = stageFlake(cmd.Context(), plan.dir)
		if err != nil {
			a.printer.Error(err)
			return err
		}
	}

	return outputInitResult(a.printer, plan, stage)
}

// planInit resolves, composes, renders and formats the flake, and reads
// any existing flake.nix at the target.
func planInit(ctx context.Context, a *app, flags *initFlags, args []string) (*initPlan, error) {
	req, err := flake.ParseRequest(args...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("composing", "templates", req.String())

	templates, err := a.templates.Resolve(req.IDs()...)
	if err != nil {
		return nil, err
	}
	composed, err := flake.Compose(templates...)
	if err != nil {
		return nil, err
	}

	dir := flags.path
	if dir == "" {
		dir = a.cfg.Path
	}
	plan := &initPlan{
		dir:      dir,
		target:   filepath.Join(dir, flakeFile),
		composed: composed,
		text:     flake.Render(composed),
		format:   format.Disabled(),
	}

	if formatter := a.formatter(); formatter != nil && !flags.noFormat {
		plan.text, plan.format = formatter.Format(ctx, plan.text)
		a.logger.Debug("formatter", "status", plan.format.Status, "reason", plan.format.Reason)
	}

	existing, err := os.ReadFile(plan.target)
	switch {
	case err == nil:
		plan.existing, plan.exists = string(existing), true
	case !errors.Is(err, fs.ErrNotExist):
		return nil, output.NewSystemErrorWithCause(fmt.Sprintf("reading %s: %v", plan.target, err), err)
	}
	return plan, nil
}
