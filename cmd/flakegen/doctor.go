package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/flakegen/internal/output"
)

// checkStatus represents the result of a health check.
type checkStatus string

const (
	checkPass checkStatus = "pass"
	checkWarn checkStatus = "warn"
	checkFail checkStatus = "fail"
)

// checkResult holds the result of a single health check.
type checkResult struct {
	Name    string      `json:"name"`
	Status  checkStatus `json:"status"`
	Message string      `json:"message"`
	Hint    string      `json:"hint,omitempty"`
}

// doctorResult holds all check results organized by category.
type doctorResult struct {
	Version   string         `json:"version"`
	Tools     []checkResult  `json:"tools"`
	Templates []checkResult  `json:"templates"`
	Project   []checkResult  `json:"project"`
	Summary   *doctorSummary `json:"summary"`
}

// doctorSummary holds the counts of check results.
type doctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Failed   int `json:"failed"`
}

// doctorFlags holds the command-line flags for the doctor command.
type doctorFlags struct {
	quiet bool
}

// newDoctorCmd creates the doctor command.
func newDoctorCmd() *cobra.Command {
	flags := &doctorFlags{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment flakegen depends on",
		Long: `Check that the tools and templates flakegen relies on are usable.

Runs a series of health checks across three categories:
  TOOLS     - nix, the formatter and git on PATH
  TEMPLATES - configuration and template catalogue
  PROJECT   - the flake.nix in the output directory

Each check reports:
  Pass    - Check passed successfully
  Warning - Non-critical issue found
  Fail    - Critical issue that needs attention

Examples:
  flakegen doctor              # Run all health checks
  flakegen doctor --quiet      # Only show failures and warnings
  flakegen doctor --json       # Output results as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.quiet, "quiet", false, "Only show failures and warnings")

	return cmd
}

// runDoctor executes the doctor command.
func runDoctor(cmd *cobra.Command, flags *doctorFlags) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	result := gatherDoctorChecks(cmd, a)

	if a.printer.IsJSON() {
		return a.printer.WriteJSON(result)
	}

	outputDoctorHuman(a.printer, result, flags.quiet)
	return nil
}

// gatherDoctorChecks runs all health checks and returns results.
func gatherDoctorChecks(cmd *cobra.Command, a *app) *doctorResult {
	result := &doctorResult{
		Version:   buildVersion(),
		Tools:     runToolChecks(cmd.Context(), a),
		Templates: runTemplateChecks(a),
		Project:   runProjectChecks(cmd.Context(), a),
		Summary:   &doctorSummary{},
	}

	allChecks := append(append(append([]checkResult{}, result.Tools...), result.Templates...), result.Project...)
	for _, check := range allChecks {
		switch check.Status {
		case checkPass:
			result.Summary.Passed++
		case checkWarn:
			result.Summary.Warnings++
		case checkFail:
			result.Summary.Failed++
		}
	}

	return result
}

// outputDoctorHuman outputs the doctor result in human-readable format.
func outputDoctorHuman(printer *output.Printer, result *doctorResult, quiet bool) {
	printer.Println()
	printer.Print("flakegen doctor %s\n", result.Version)

	printCheckSection(printer, "TOOLS", result.Tools, quiet)
	printCheckSection(printer, "TEMPLATES", result.Templates, quiet)
	printCheckSection(printer, "PROJECT", result.Project, quiet)

	printer.Println()
	printer.Print("%s %d passed  %s %d warnings  %s %d failed\n",
		statusIcon(checkPass), result.Summary.Passed,
		statusIcon(checkWarn), result.Summary.Warnings,
		statusIcon(checkFail), result.Summary.Failed,
	)
}

// printCheckSection prints a section of checks.
func printCheckSection(printer *output.Printer, title string, checks []checkResult, quiet bool) {
	if quiet && !hasProblems(checks) {
		return
	}

	printer.Println()
	printer.Println(printer.Styles().Bold.Render(title))

	for _, check := range checks {
		if quiet && check.Status == checkPass {
			continue
		}

		printer.Print("  %s  %s %s\n", styledIcon(printer, check.Status), check.Name, check.Message)
		if check.Hint != "" {
			printer.Print("     %s %s\n", hintPrefix(), check.Hint)
		}
	}
}

func hasProblems(checks []checkResult) bool {
	for _, check := range checks {
		if check.Status != checkPass {
			return true
		}
	}
	return false
}

// statusIcon returns the icon for a check status.
func statusIcon(status checkStatus) string {
	switch status {
	case checkPass:
		return "ok"
	case checkWarn:
		return "!!"
	case checkFail:
		return "XX"
	default:
		return "??"
	}
}

func styledIcon(printer *output.Printer, status checkStatus) string {
	styles := printer.Styles()
	switch status {
	case checkPass:
		return styles.Success.Render(statusIcon(status))
	case checkWarn:
		return styles.Warning.Render(statusIcon(status))
	default:
		return styles.Error.Render(statusIcon(status))
	}
}

// hintPrefix returns the prefix for hint lines.
func hintPrefix() string {
	return "->"
}
