package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gorewood/flakegen/internal/config"
	"github.com/gorewood/flakegen/internal/flake"
	"github.com/gorewood/flakegen/internal/format"
	"github.com/gorewood/flakegen/internal/output"
	"github.com/gorewood/flakegen/internal/registry"
)

// app bundles what a command needs once flags and config are resolved.
type app struct {
	printer    *output.Printer
	logger     *slog.Logger
	cfg        config.Config
	configFile string
	templates  *registry.LoadResult
}

// newPrinter builds the printer for cmd from --json and --color.
func newPrinter(cmd *cobra.Command) (*output.Printer, error) {
	out := cmd.OutOrStdout()
	jsonMode := isJSONMode(cmd)

	colorFlag, _ := cmd.Flags().GetString("color")
	mode, err := output.ParseColorMode(colorFlag)
	if err != nil {
		printer := output.NewPrinter(out, jsonMode, false).WithStderr(cmd.ErrOrStderr())
		return printer, output.NewUserErrorWithCause(err.Error(), err)
	}
	return output.NewPrinter(out, jsonMode, mode.Enabled(output.IsTTY(out))).WithStderr(cmd.ErrOrStderr()), nil
}

// newLogger returns a text logger on w. --verbose lowers the level to debug.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadApp resolves the printer, logger, config and template registry. On
// failure the error has already been printed.
func loadApp(cmd *cobra.Command) (*app, error) {
	printer, err := newPrinter(cmd)
	if err != nil {
		printer.Error(err)
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	configFlag, _ := cmd.Flags().GetString("config")
	cfg, file, err := config.Load(configFlag)
	if err != nil {
		exitErr := output.NewUserErrorWithCause(err.Error(), err)
		printer.Error(exitErr)
		return nil, exitErr
	}
	if file != "" {
		logger.Debug("loaded config", "file", file)
	}

	cwd, err := os.Getwd()
	if err != nil {
		exitErr := output.NewSystemErrorWithCause("cannot determine working directory", err)
		printer.Error(exitErr)
		return nil, exitErr
	}

	templates, err := registry.Load(registry.LoadOptions{
		ProjectDir: config.ProjectTemplatesDir(cwd),
		GlobalDir:  config.GlobalTemplatesDir(),
		ExtraDirs:  cfg.Templates.Dirs,
		Logger:     logger,
	})
	if err != nil {
		exitErr := output.NewSystemErrorWithCause(fmt.Sprintf("loading templates: %v", err), err)
		printer.Error(exitErr)
		return nil, exitErr
	}
	logger.Debug("templates loaded", "count", templates.Len(), "skipped", len(templates.Skipped))

	return &app{
		printer:    printer,
		logger:     logger,
		cfg:        cfg,
		configFile: file,
		templates:  templates,
	}, nil
}

// formatter returns the configured formatter, or nil when disabled.
func (a *app) formatter() *format.Formatter {
	if !a.cfg.Formatter.Enabled {
		return nil
	}
	return format.New(a.cfg.Formatter.Command, a.cfg.Formatter.Args, a.cfg.Formatter.Timeout)
}

// toExitError maps domain errors to exit codes: unknown templates and empty
// requests are user errors, merge conflicts are conflicts, anything else is
// a system error.
func toExitError(err error) *output.ExitError {
	var exitErr *output.ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	var (
		notFound        *registry.NotFoundError
		inputConflict   *flake.InputConflictError
		overlayConflict *flake.OverlayConflictError
	)
	switch {
	case errors.As(err, &notFound):
		return output.NewUserErrorWithCause(
			fmt.Sprintf("unknown template %q. Run 'flakegen list' to see available templates", notFound.ID), err)
	case errors.Is(err, flake.ErrEmptyRequest):
		return output.NewUserErrorWithCause("no templates given. Usage: flakegen init <lang>[,<lang>...]", err)
	case errors.As(err, &inputConflict), errors.As(err, &overlayConflict), errors.Is(err, flake.ErrNoCommonSystems):
		return output.NewConflictErrorWithCause(err.Error(), err)
	default:
		return output.NewSystemErrorWithCause(err.Error(), err)
	}
}
