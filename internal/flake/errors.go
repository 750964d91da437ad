package flake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gorewood/flakegen/internal/registry"
)

// ErrNoCommonSystems is matched by errors.Is when the requested templates
// share no platform.
var ErrNoCommonSystems = errors.New("templates share no common system")

// ErrNoTemplates is returned by Compose when called without templates.
var ErrNoTemplates = errors.New("nothing to compose")

// InputConflictError reports two templates declaring the same input
// differently.
type InputConflictError struct {
	Name      string
	URLA      string
	URLB      string
	TemplateA string
	TemplateB string
	// FollowsA and FollowsB disambiguate conflicts where the urls match.
	FollowsA bool
	FollowsB bool
}

// Error implements the error interface.
func (e *InputConflictError) Error() string {
	return fmt.Sprintf("input %q conflicts: %s declares %s, %s declares %s",
		e.Name, e.TemplateA, describeInput(e.URLA, e.FollowsA), e.TemplateB, describeInput(e.URLB, e.FollowsB))
}

func describeInput(url string, follows bool) string {
	if follows {
		return url + " (follows nixpkgs)"
	}
	return url
}

// OverlayConflictError reports two templates declaring the same overlay
// with a different source input or value.
type OverlayConflictError struct {
	Name      string
	A         registry.OverlayRef
	B         registry.OverlayRef
	TemplateA string
	TemplateB string
}

// Error implements the error interface.
func (e *OverlayConflictError) Error() string {
	return fmt.Sprintf("overlay %q conflicts: %s declares %s, %s declares %s",
		e.Name, e.TemplateA, describeOverlay(e.A), e.TemplateB, describeOverlay(e.B))
}

func describeOverlay(ref registry.OverlayRef) string {
	if ref.Value == "" {
		return "inputs." + ref.SourceInput + ".overlays.default"
	}
	value := ref.Value
	if first, _, multi := strings.Cut(value, "\n"); multi {
		value = first + " ..."
	}
	return fmt.Sprintf("%q", value)
}

// NoCommonSystemsError lists the templates whose platforms do not intersect.
type NoCommonSystemsError struct {
	Templates []string
}

// Error implements the error interface.
func (e *NoCommonSystemsError) Error() string {
	return fmt.Sprintf("templates %s share no common system", strings.Join(e.Templates, ", "))
}

// Is lets errors.Is match ErrNoCommonSystems.
func (e *NoCommonSystemsError) Is(target error) bool {
	return target == ErrNoCommonSystems
}

// EnvVarOverride is an advisory recorded when a later template replaces an
// environment variable set by an earlier one.
type EnvVarOverride struct {
	Key      string `json:"key"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// String describes the override for human output.
func (o EnvVarOverride) String() string {
	return fmt.Sprintf("%s from %s (%q) overridden by %s (%q)", o.Key, o.From, o.OldValue, o.To, o.NewValue)
}
