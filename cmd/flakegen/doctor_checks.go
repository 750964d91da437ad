package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gorewood/flakegen/internal/format"
	"github.com/gorewood/flakegen/internal/git"
	"github.com/gorewood/flakegen/internal/registry"
)

// probeTimeout bounds each external tool probe.
const probeTimeout = 5 * time.Second

// runToolChecks probes nix, the formatter and git concurrently. Results keep
// a fixed order regardless of which probe finishes first.
func runToolChecks(ctx context.Context, a *app) []checkResult {
	probes := []func(context.Context) checkResult{
		checkNix,
		func(ctx context.Context) checkResult { return checkFormatter(ctx, a) },
		checkGit,
	}

	checks := make([]checkResult, len(probes))
	g, ctx := errgroup.WithContext(ctx)
	for i, probe := range probes {
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			checks[i] = probe(probeCtx)
			return nil
		})
	}
	_ = g.Wait()
	return checks
}

// checkNix checks that nix is installed.
func checkNix(ctx context.Context) checkResult {
	path, err := exec.LookPath("nix")
	if err != nil {
		return checkResult{
			Name:    "Nix",
			Status:  checkWarn,
			Message: "nix not found in PATH",
			Hint:    "Install Nix to use the generated flake: https://nixos.org/download",
		}
	}

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return checkResult{
			Name:    "Nix",
			Status:  checkWarn,
			Message: "nix --version failed: " + err.Error(),
		}
	}
	return checkResult{
		Name:    "Nix",
		Status:  checkPass,
		Message: strings.TrimSpace(string(out)),
	}
}

// checkFormatter checks that the configured formatter can run.
func checkFormatter(ctx context.Context, a *app) checkResult {
	if !a.cfg.Formatter.Enabled {
		return checkResult{
			Name:    "Formatter",
			Status:  checkPass,
			Message: "disabled in config",
		}
	}

	formatter := format.New(a.cfg.Formatter.Command, a.cfg.Formatter.Args, a.cfg.Formatter.Timeout)
	version, err := formatter.Probe(ctx)
	if err != nil {
		return checkResult{
			Name:    "Formatter",
			Status:  checkWarn,
			Message: err.Error() + "; flakes are written unformatted",
			Hint:    fmt.Sprintf("Install %s or set formatter.enabled: false", formatter.Command),
		}
	}
	return checkResult{
		Name:    "Formatter",
		Status:  checkPass,
		Message: version,
	}
}

// checkGit checks that git is installed. Nix flakes only see tracked files.
func checkGit(ctx context.Context) checkResult {
	if !git.Available() {
		return checkResult{
			Name:    "Git",
			Status:  checkWarn,
			Message: "git not found in PATH",
			Hint:    "Install git; nix ignores untracked files in a flake",
		}
	}

	version, err := git.Version(ctx)
	if err != nil {
		return checkResult{
			Name:    "Git",
			Status:  checkWarn,
			Message: err.Error(),
		}
	}
	return checkResult{
		Name:    "Git",
		Status:  checkPass,
		Message: version,
	}
}

// runTemplateChecks reports on configuration and the template catalogue.
func runTemplateChecks(a *app) []checkResult {
	checks := make([]checkResult, 0, 3)
	checks = append(checks, checkConfig(a))
	checks = append(checks, checkCatalogue(a.templates))
	checks = append(checks, checkTemplateDirs(a))
	return checks
}

// checkConfig reports which config file is in effect.
func checkConfig(a *app) checkResult {
	if a.configFile == "" {
		return checkResult{
			Name:    "Config",
			Status:  checkPass,
			Message: "no config file, using defaults",
		}
	}
	return checkResult{
		Name:    "Config",
		Status:  checkPass,
		Message: a.configFile,
	}
}

// checkCatalogue reports the template count and any skipped files.
func checkCatalogue(templates *registry.LoadResult) checkResult {
	user := 0
	for info := range templates.List() {
		if info.Source != registry.SourceBuiltin {
			user++
		}
	}
	message := strconv.Itoa(templates.Len()) + " templates"
	if user > 0 {
		message += " (" + strconv.Itoa(user) + " user)"
	}

	if len(templates.Skipped) == 0 {
		return checkResult{
			Name:    "Catalogue",
			Status:  checkPass,
			Message: message,
		}
	}

	paths := make([]string, 0, len(templates.Skipped))
	for _, s := range templates.Skipped {
		paths = append(paths, s.Path)
	}
	return checkResult{
		Name:    "Catalogue",
		Status:  checkWarn,
		Message: fmt.Sprintf("%s, %d skipped: %s", message, len(paths), strings.Join(paths, ", ")),
		Hint:    "Run 'flakegen list' to see why each file was skipped",
	}
}

// checkTemplateDirs checks that configured template directories exist.
func checkTemplateDirs(a *app) checkResult {
	var missing []string
	for _, dir := range a.cfg.Templates.Dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			missing = append(missing, dir)
		}
	}

	if len(missing) > 0 {
		return checkResult{
			Name:    "Template Dirs",
			Status:  checkWarn,
			Message: "not found: " + strings.Join(missing, ", "),
			Hint:    "Fix templates.dirs in " + configName(a),
		}
	}
	return checkResult{
		Name:    "Template Dirs",
		Status:  checkPass,
		Message: strconv.Itoa(len(a.cfg.Templates.Dirs)) + " configured",
	}
}

func configName(a *app) string {
	if a.configFile == "" {
		return "the config file"
	}
	return a.configFile
}

// runProjectChecks inspects flake.nix in the configured output directory.
func runProjectChecks(ctx context.Context, a *app) []checkResult {
	return []checkResult{checkFlakeFile(ctx, a.cfg.Path)}
}

// checkFlakeFile checks that flake.nix exists and is visible to nix.
func checkFlakeFile(ctx context.Context, dir string) checkResult {
	target := filepath.Join(dir, flakeFile)
	_, err := os.Stat(target)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return checkResult{
			Name:    "Flake",
			Status:  checkPass,
			Message: target + " not generated yet",
			Hint:    "Run 'flakegen init <lang>' to create one",
		}
	case err != nil:
		return checkResult{
			Name:    "Flake",
			Status:  checkFail,
			Message: "cannot read " + target + ": " + err.Error(),
		}
	}

	if !git.Available() {
		return checkResult{
			Name:    "Flake",
			Status:  checkPass,
			Message: target + " exists",
		}
	}
	inside, err := git.IsWorkTree(ctx, dir)
	if err != nil || !inside {
		return checkResult{
			Name:    "Flake",
			Status:  checkPass,
			Message: target + " exists (not in a git work tree)",
		}
	}
	if !git.IsTracked(ctx, dir, flakeFile) {
		return checkResult{
			Name:    "Flake",
			Status:  checkWarn,
			Message: target + " is not tracked by git; nix will not see it",
			Hint:    "Run 'git add " + target + "' or 'flakegen init --force --git-add'",
		}
	}
	return checkResult{
		Name:    "Flake",
		Status:  checkPass,
		Message: target + " exists and is tracked",
	}
}
