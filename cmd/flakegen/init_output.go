package main

import (
	"fmt"
	"strings"

	"github.com/gorewood/flakegen/internal/diff"
	"github.com/gorewood/flakegen/internal/flake"
	"github.com/gorewood/flakegen/internal/format"
	"github.com/gorewood/flakegen/internal/output"
)

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 3

// initSummary is the JSON shape shared by every init outcome.
type initSummary struct {
	Status      string                 `json:"status"`
	Path        string                 `json:"path"`
	Templates   []string               `json:"templates"`
	Description string                 `json:"description"`
	Systems     []string               `json:"systems"`
	Warnings    []flake.EnvVarOverride `json:"warnings"`
	Format      format.Result          `json:"format"`
	Flake       string                 `json:"flake,omitempty"`
	Diff        *initDiff              `json:"diff,omitempty"`
	Git         *stageResult           `json:"git,omitempty"`
}

// initDiff summarizes --diff output.
type initDiff struct {
	Exists   bool   `json:"exists"`
	Changed  bool   `json:"changed"`
	Inserted int    `json:"inserted"`
	Deleted  int    `json:"deleted"`
	Unified  string `json:"unified,omitempty"`
}

func newInitSummary(status string, plan *initPlan) initSummary {
	warnings := plan.composed.Warnings
	if warnings == nil {
		warnings = []flake.EnvVarOverride{}
	}
	return initSummary{
		Status:      status,
		Path:        plan.target,
		Templates:   plan.composed.Templates,
		Description: plan.composed.Description,
		Systems:     plan.composed.Systems,
		Warnings:    warnings,
		Format:      plan.format,
	}
}

// initMessage is the one-line human summary of a generated flake.
func initMessage(plan *initPlan) string {
	ids := plan.composed.Templates
	if len(ids) == 1 {
		return fmt.Sprintf("Initialized %s template in %s", ids[0], plan.dir)
	}
	return fmt.Sprintf("Initialized multi-language template (%s) in %s", strings.Join(ids, ","), plan.dir)
}

// outputInitResult reports a written flake.
func outputInitResult(printer *output.Printer, plan *initPlan, stage stageResult) error {
	if printer.IsJSON() {
		summary := newInitSummary("ok", plan)
		summary.Git = &stage
		return printer.WriteJSON(summary)
	}

	styles := printer.Styles()
	printer.Println(styles.Success.Render(initMessage(plan)))
	printInitWarnings(printer, plan)
	printFormatStatus(printer, plan.format)
	switch {
	case stage.Staged:
		printer.Println(styles.Dim.Render("Staged " + plan.target))
	case stage.Hint != "":
		printer.Stderr("%s %s\n", styles.Warning.Render("Hint:"), stage.Hint)
	}
	return nil
}

// outputInitDryRun prints the generated document instead of writing it.
func outputInitDryRun(printer *output.Printer, plan *initPlan) error {
	if printer.IsJSON() {
		summary := newInitSummary("dry_run", plan)
		summary.Flake = plan.text
		return printer.WriteJSON(summary)
	}

	printer.Print("%s", plan.text)
	printInitWarnings(printer, plan)
	printer.Stderr("%s\n", printer.Styles().Dim.Render("Dry run: "+plan.target+" not written"))
	return nil
}

// outputInitDiff prints a unified diff between the existing file and the
// generated document.
func outputInitDiff(printer *output.Printer, plan *initPlan) error {
	lines := diff.Lines(plan.existing, plan.text)
	inserted, deleted := diff.Stats(lines)
	unified := diff.Unified(plan.target, plan.target+" (generated)", plan.existing, plan.text, diffContext)

	if printer.IsJSON() {
		summary := newInitSummary("diff", plan)
		summary.Diff = &initDiff{
			Exists:   plan.exists,
			Changed:  diff.Changed(lines),
			Inserted: inserted,
			Deleted:  deleted,
			Unified:  unified,
		}
		return printer.WriteJSON(summary)
	}

	styles := printer.Styles()
	if unified == "" {
		printer.Println(styles.Dim.Render(plan.target + " is up to date"))
		return nil
	}
	if !plan.exists {
		printer.Println(styles.Dim.Render(plan.target + " does not exist yet"))
	}
	for _, line := range strings.SplitAfter(unified, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "+++"), strings.HasPrefix(text, "---"):
			printer.Println(styles.Bold.Render(text))
		case strings.HasPrefix(text, "@@"):
			printer.Println(styles.Accent.Render(text))
		case strings.HasPrefix(text, "+"):
			printer.Println(styles.Added.Render(text))
		case strings.HasPrefix(text, "-"):
			printer.Println(styles.Removed.Render(text))
		default:
			printer.Println(text)
		}
	}
	printer.Println(styles.Dim.Render(fmt.Sprintf("%d insertions(+), %d deletions(-)", inserted, deleted)))
	printInitWarnings(printer, plan)
	return nil
}

func printInitWarnings(printer *output.Printer, plan *initPlan) {
	for _, w := range plan.composed.Warnings {
		printer.Warn("env %s", w)
	}
}

func printFormatStatus(printer *output.Printer, result format.Result) {
	styles := printer.Styles()
	if result.Applied() {
		printer.Println(styles.Dim.Render("Formatted with " + result.Command))
		return
	}
	printer.Println(styles.Dim.Render("Formatter skipped: " + result.Reason))
}
