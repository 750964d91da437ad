package registry

import (
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Supported platform identifiers.
const (
	SystemX86_64Linux   = "x86_64-linux"
	SystemAarch64Linux  = "aarch64-linux"
	SystemX86_64Darwin  = "x86_64-darwin"
	SystemAarch64Darwin = "aarch64-darwin"
)

// AllSystems returns the platforms a template supports when it does not
// declare any, in canonical order.
func AllSystems() []string {
	return []string{SystemX86_64Linux, SystemAarch64Linux, SystemX86_64Darwin, SystemAarch64Darwin}
}

// NixpkgsInput is the input every template builds its package set from.
const NixpkgsInput = "nixpkgs"

// Template is one language's declarative contribution to a flake.
type Template struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Inputs      []FlakeInput   `json:"inputs"`
	Overlays    []OverlayRef   `json:"overlays,omitempty"`
	Packages    []PackageEntry `json:"packages,omitempty"`
	EnvVars     EnvVars        `json:"env,omitempty"`
	// Systems is empty when the template supports every platform.
	Systems     []string `json:"systems,omitempty"`
	ShellHook   string   `json:"shell_hook,omitempty"`
	AllowUnfree bool     `json:"allow_unfree,omitempty"`
}

// FlakeInput is a named external dependency of the generated flake.
type FlakeInput struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url"  json:"url"`
	// FollowsNixpkgs pins the input's own nixpkgs to the flake's nixpkgs.
	FollowsNixpkgs bool `yaml:"follows_nixpkgs,omitempty" json:"follows_nixpkgs,omitempty"`
}

// OverlayRef is a named transformation applied to the package set.
//
// Without a Value it applies SourceInput's overlays.default. With a Value it
// defines the attribute Name = Value inside the flake's own overlay, where
// Value is a Nix expression over final and prev.
type OverlayRef struct {
	Name        string `yaml:"name"            json:"name"`
	SourceInput string `yaml:"source_input"    json:"source_input"`
	Value       string `yaml:"value,omitempty" json:"value,omitempty"`
}

// PackageEntry is one package installed in the development shell. Group is
// the identifier of the template that contributed it.
type PackageEntry struct {
	Name  string `json:"name"`
	Group string `json:"group"`
}

// EnvVar is one environment variable exported by the development shell. Value
// is the body of a Nix double-quoted string; ${...} interpolation is kept.
type EnvVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EnvVars is an ordered mapping of environment variables.
type EnvVars []EnvVar

// Get returns the value for key.
func (e EnvVars) Get(key string) (string, bool) {
	for _, v := range e {
		if v.Key == key {
			return v.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in declaration order.
func (e EnvVars) Keys() []string {
	keys := make([]string, len(e))
	for i, v := range e {
		keys[i] = v.Key
	}
	return keys
}

// Map returns the variables as an unordered map.
func (e EnvVars) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, v := range e {
		m[v.Key] = v.Value
	}
	return m
}

// UnmarshalYAML decodes a YAML mapping while keeping key order.
func (e *EnvVars) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: env must be a mapping", node.Line)
	}

	vars := make(EnvVars, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if valueNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: env %q must be a scalar value", valueNode.Line, keyNode.Value)
		}
		if seen[keyNode.Value] {
			return fmt.Errorf("line %d: env %q declared twice", keyNode.Line, keyNode.Value)
		}
		seen[keyNode.Value] = true
		vars = append(vars, EnvVar{Key: keyNode.Value, Value: valueNode.Value})
	}

	*e = vars
	return nil
}

// SupportedSystems returns the template's systems, defaulting to AllSystems.
func (t Template) SupportedSystems() []string {
	if len(t.Systems) == 0 {
		return AllSystems()
	}
	return slices.Clone(t.Systems)
}

// Input returns the input with the given name.
func (t Template) Input(name string) (FlakeInput, bool) {
	for _, in := range t.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return FlakeInput{}, false
}

// Clone returns a deep copy so callers cannot mutate registry state.
func (t Template) Clone() Template {
	t.Inputs = slices.Clone(t.Inputs)
	t.Overlays = slices.Clone(t.Overlays)
	t.Packages = slices.Clone(t.Packages)
	t.EnvVars = slices.Clone(t.EnvVars)
	t.Systems = slices.Clone(t.Systems)
	return t
}

// PackageNames returns the package names in declaration order.
func (t Template) PackageNames() []string {
	names := make([]string, len(t.Packages))
	for i, p := range t.Packages {
		names[i] = p.Name
	}
	return names
}

// knownSystems is the set of platforms a template may declare.
var knownSystems = func() map[string]bool {
	m := make(map[string]bool)
	for _, s := range AllSystems() {
		m[s] = true
	}
	return m
}()

// KnownSystem reports whether s is a supported platform identifier.
func KnownSystem(s string) bool {
	return knownSystems[s]
}

// sortedKnownSystems lists the known systems for error messages.
func sortedKnownSystems() []string {
	return slices.Sorted(maps.Keys(knownSystems))
}
