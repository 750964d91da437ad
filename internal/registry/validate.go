package registry

import (
	"fmt"
	"strings"
)

// ValidationError is returned when a template document is malformed.
type ValidationError struct {
	Template string
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid template %q: %s", e.Template, strings.Join(e.Problems, "; "))
}

// Validate checks the structural rules every template must satisfy:
// identifiers and descriptions present, unique input, overlay, package and
// env names, overlays referencing declared inputs, a nixpkgs input, and only
// known systems.
func (t Template) Validate() error {
	var problems []string
	if t.ID == "" {
		problems = append(problems, "id is required")
	}
	if t.Description == "" {
		problems = append(problems, "description is required")
	}

	problems = t.validateInputs(problems)
	problems = t.validateOverlays(problems)
	problems = t.validatePackages(problems)
	problems = t.validateEnv(problems)
	problems = t.validateSystems(problems)

	if len(problems) > 0 {
		return &ValidationError{Template: t.ID, Problems: problems}
	}
	return nil
}

func (t Template) validateInputs(problems []string) []string {
	seen := make(map[string]bool, len(t.Inputs))
	for i, in := range t.Inputs {
		switch {
		case in.Name == "":
			problems = append(problems, fmt.Sprintf("inputs[%d]: name is required", i))
		case seen[in.Name]:
			problems = append(problems, fmt.Sprintf("input %q declared twice", in.Name))
		}
		if in.URL == "" {
			problems = append(problems, fmt.Sprintf("input %q: url is required", in.Name))
		}
		if in.Name == NixpkgsInput && in.FollowsNixpkgs {
			problems = append(problems, "input nixpkgs cannot follow itself")
		}
		seen[in.Name] = true
	}
	if !seen[NixpkgsInput] {
		problems = append(problems, "a nixpkgs input is required")
	}
	return problems
}

func (t Template) validateOverlays(problems []string) []string {
	seen := make(map[string]bool, len(t.Overlays))
	for i, ov := range t.Overlays {
		switch {
		case ov.Name == "":
			problems = append(problems, fmt.Sprintf("overlays[%d]: name is required", i))
		case seen[ov.Name]:
			problems = append(problems, fmt.Sprintf("overlay %q declared twice", ov.Name))
		}
		seen[ov.Name] = true
		if _, ok := t.Input(ov.SourceInput); !ok {
			problems = append(problems, fmt.Sprintf("overlay %q references unknown input %q", ov.Name, ov.SourceInput))
		}
	}
	return problems
}

func (t Template) validatePackages(problems []string) []string {
	seen := make(map[string]bool, len(t.Packages))
	for i, pkg := range t.Packages {
		switch {
		case pkg.Name == "":
			problems = append(problems, fmt.Sprintf("packages[%d]: name is required", i))
		case seen[pkg.Name]:
			problems = append(problems, fmt.Sprintf("package %q listed twice", pkg.Name))
		}
		seen[pkg.Name] = true
	}
	return problems
}

func (t Template) validateEnv(problems []string) []string {
	seen := make(map[string]bool, len(t.EnvVars))
	for _, v := range t.EnvVars {
		if v.Key == "" {
			problems = append(problems, "env key is required")
			continue
		}
		if seen[v.Key] {
			problems = append(problems, fmt.Sprintf("env %q declared twice", v.Key))
		}
		seen[v.Key] = true
	}
	return problems
}

func (t Template) validateSystems(problems []string) []string {
	seen := make(map[string]bool, len(t.Systems))
	for _, s := range t.Systems {
		if !KnownSystem(s) {
			problems = append(problems, fmt.Sprintf("unknown system %q (want one of %s)", s, strings.Join(sortedKnownSystems(), ", ")))
		}
		if seen[s] {
			problems = append(problems, fmt.Sprintf("system %q listed twice", s))
		}
		seen[s] = true
	}
	return problems
}
