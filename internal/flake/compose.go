package flake

import (
	"slices"
	"strings"

	"github.com/gorewood/flakegen/internal/registry"
)

// multiDescription prefixes the description of a multi-template flake.
const multiDescription = "Multi-language development environment"

// ShellHook is one template's shell snippet.
type ShellHook struct {
	Template string `json:"template"`
	Script   string `json:"script"`
}

// ComposedFlake is the merged result of one composition.
type ComposedFlake struct {
	Description string                  `json:"description"`
	Inputs      []registry.FlakeInput   `json:"inputs"`
	Overlays    []registry.OverlayRef   `json:"overlays"`
	Packages    []registry.PackageEntry `json:"packages"`
	EnvVars     registry.EnvVars        `json:"env"`
	Systems     []string                `json:"systems"`
	ShellHooks  []ShellHook             `json:"shell_hooks,omitempty"`
	AllowUnfree bool                    `json:"allow_unfree"`
	Templates   []string                `json:"templates"`
	Warnings    []EnvVarOverride        `json:"warnings,omitempty"`
}

// Compose merges templates in order. Templates with a repeated identifier
// are collapsed to their first occurrence.
//
// It fails with *InputConflictError, *OverlayConflictError or
// *NoCommonSystemsError. Environment variable conflicts resolve to the last
// value and are reported in Warnings.
func Compose(templates ...registry.Template) (*ComposedFlake, error) {
	templates = uniqueTemplates(templates)
	if len(templates) == 0 {
		return nil, ErrNoTemplates
	}

	c := newComposer()
	for _, tmpl := range templates {
		if err := c.add(tmpl); err != nil {
			return nil, err
		}
	}
	return c.finish()
}

func uniqueTemplates(templates []registry.Template) []registry.Template {
	seen := make(map[string]bool, len(templates))
	out := make([]registry.Template, 0, len(templates))
	for _, tmpl := range templates {
		if seen[tmpl.ID] {
			continue
		}
		seen[tmpl.ID] = true
		out = append(out, tmpl)
	}
	return out
}

// composer accumulates one composition. The owner maps record which template
// contributed each name.
type composer struct {
	flake            ComposedFlake
	firstDescription string
	inputOwner       map[string]string
	overlayOwner     map[string]string
	packages         map[string]bool
	envOwner         map[string]string
	hooks            map[string]bool
	systems          map[string]int
}

func newComposer() *composer {
	return &composer{
		inputOwner:   make(map[string]string),
		overlayOwner: make(map[string]string),
		packages:     make(map[string]bool),
		envOwner:     make(map[string]string),
		hooks:        make(map[string]bool),
		systems:      make(map[string]int),
	}
}

func (c *composer) add(tmpl registry.Template) error {
	if len(c.flake.Templates) == 0 {
		c.firstDescription = tmpl.Description
	}
	c.flake.Templates = append(c.flake.Templates, tmpl.ID)

	if err := c.addInputs(tmpl); err != nil {
		return err
	}
	if err := c.addOverlays(tmpl); err != nil {
		return err
	}
	c.addPackages(tmpl)
	c.addEnv(tmpl)

	for _, s := range slices.Compact(slices.Sorted(slices.Values(tmpl.SupportedSystems()))) {
		c.systems[s]++
	}
	if hook := strings.TrimSpace(tmpl.ShellHook); hook != "" && !c.hooks[hook] {
		c.hooks[hook] = true
		c.flake.ShellHooks = append(c.flake.ShellHooks, ShellHook{Template: tmpl.ID, Script: tmpl.ShellHook})
	}
	c.flake.AllowUnfree = c.flake.AllowUnfree || tmpl.AllowUnfree
	return nil
}

func (c *composer) addInputs(tmpl registry.Template) error {
	for _, in := range tmpl.Inputs {
		owner, seen := c.inputOwner[in.Name]
		if !seen {
			c.inputOwner[in.Name] = tmpl.ID
			c.flake.Inputs = append(c.flake.Inputs, in)
			continue
		}
		existing := c.flake.Inputs[slices.IndexFunc(c.flake.Inputs, func(f registry.FlakeInput) bool {
			return f.Name == in.Name
		})]
		if existing != in {
			return &InputConflictError{
				Name:      in.Name,
				URLA:      existing.URL,
				URLB:      in.URL,
				FollowsA:  existing.FollowsNixpkgs,
				FollowsB:  in.FollowsNixpkgs,
				TemplateA: owner,
				TemplateB: tmpl.ID,
			}
		}
	}
	return nil
}

func (c *composer) addOverlays(tmpl registry.Template) error {
	for _, ov := range tmpl.Overlays {
		owner, seen := c.overlayOwner[ov.Name]
		if !seen {
			c.overlayOwner[ov.Name] = tmpl.ID
			c.flake.Overlays = append(c.flake.Overlays, ov)
			continue
		}
		existing := c.flake.Overlays[slices.IndexFunc(c.flake.Overlays, func(r registry.OverlayRef) bool {
			return r.Name == ov.Name
		})]
		if existing != ov {
			return &OverlayConflictError{
				Name:      ov.Name,
				A:         existing,
				B:         ov,
				TemplateA: owner,
				TemplateB: tmpl.ID,
			}
		}
	}
	return nil
}

func (c *composer) addPackages(tmpl registry.Template) {
	for _, pkg := range tmpl.Packages {
		if c.packages[pkg.Name] {
			continue
		}
		c.packages[pkg.Name] = true
		c.flake.Packages = append(c.flake.Packages, registry.PackageEntry{Name: pkg.Name, Group: tmpl.ID})
	}
}

// addEnv keeps each key at its first position; a differing later value
// replaces it in place and records an override.
func (c *composer) addEnv(tmpl registry.Template) {
	for _, v := range tmpl.EnvVars {
		owner, seen := c.envOwner[v.Key]
		if !seen {
			c.envOwner[v.Key] = tmpl.ID
			c.flake.EnvVars = append(c.flake.EnvVars, v)
			continue
		}
		i := slices.IndexFunc(c.flake.EnvVars, func(e registry.EnvVar) bool { return e.Key == v.Key })
		if c.flake.EnvVars[i].Value == v.Value {
			continue
		}
		c.flake.Warnings = append(c.flake.Warnings, EnvVarOverride{
			Key:      v.Key,
			OldValue: c.flake.EnvVars[i].Value,
			NewValue: v.Value,
			From:     owner,
			To:       tmpl.ID,
		})
		c.flake.EnvVars[i].Value = v.Value
		c.envOwner[v.Key] = tmpl.ID
	}
}

func (c *composer) finish() (*ComposedFlake, error) {
	n := len(c.flake.Templates)
	for _, s := range registry.AllSystems() {
		if c.systems[s] == n {
			c.flake.Systems = append(c.flake.Systems, s)
		}
	}
	if len(c.flake.Systems) == 0 {
		return nil, &NoCommonSystemsError{Templates: slices.Clone(c.flake.Templates)}
	}

	if n == 1 {
		c.flake.Description = c.firstDescription
	} else {
		c.flake.Description = multiDescription + " (" + strings.Join(c.flake.Templates, ", ") + ")"
	}
	return &c.flake, nil
}
