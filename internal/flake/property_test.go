package flake

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/gorewood/flakegen/internal/registry"
)

var (
	inputPool   = []string{"alpha", "beta", "gamma"}
	overlayPool = []string{"tool", "lib"}
	packagePool = []string{"git", "jq", "curl", "pkg-config", "gnumake", "openssl"}
	envPool     = []string{"A", "B", "C"}
)

// subset draws an order-preserving subset of pool.
func subset(t *rapid.T, pool []string, label string) []string {
	var out []string
	for _, item := range pool {
		if rapid.Bool().Draw(t, label+":"+item) {
			out = append(out, item)
		}
	}
	return out
}

// compatibleTemplate draws a template whose inputs and overlays never
// conflict with another drawn by this generator.
func compatibleTemplate(t *rapid.T, id string) registry.Template {
	tmpl := registry.Template{
		ID:          id,
		Description: id + " environment",
		Inputs:      []registry.FlakeInput{{Name: registry.NixpkgsInput, URL: nixpkgsURL}},
	}
	for _, name := range subset(t, inputPool, id+":input") {
		tmpl.Inputs = append(tmpl.Inputs, registry.FlakeInput{Name: name, URL: "github:example/" + name})
	}
	for _, name := range subset(t, overlayPool, id+":overlay") {
		tmpl.Overlays = append(tmpl.Overlays, registry.OverlayRef{Name: name, SourceInput: registry.NixpkgsInput, Value: "prev." + name})
	}
	for _, name := range subset(t, packagePool, id+":package") {
		tmpl.Packages = append(tmpl.Packages, registry.PackageEntry{Name: name, Group: id})
	}
	for _, key := range subset(t, envPool, id+":env") {
		value := rapid.SampledFrom([]string{"1", "2"}).Draw(t, id+":env:"+key)
		tmpl.EnvVars = append(tmpl.EnvVars, registry.EnvVar{Key: key, Value: value})
	}
	tmpl.Systems = subset(t, registry.AllSystems(), id+":system")
	return tmpl
}

func drawTemplates(t *rapid.T) []registry.Template {
	n := rapid.IntRange(1, 4).Draw(t, "templates")
	templates := make([]registry.Template, n)
	for i := range templates {
		templates[i] = compatibleTemplate(t, string(rune('a'+i)))
	}
	return templates
}

// shuffle returns a drawn permutation of templates.
func shuffle(t *rapid.T, templates []registry.Template) []registry.Template {
	out := slices.Clone(templates)
	for i := len(out) - 1; i > 0; i-- {
		j := rapid.IntRange(0, i).Draw(t, "swap")
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = name(item)
	}
	return out
}

func sortedNames[T any](items []T, name func(T) string) []string {
	return slices.Sorted(slices.Values(names(items, name)))
}

func inputName(in registry.FlakeInput) string    { return in.Name }
func overlayName(ov registry.OverlayRef) string  { return ov.Name }
func packageName(p registry.PackageEntry) string { return p.Name }

func TestProperty_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		templates := drawTemplates(rt)

		once, errOnce := Compose(templates...)
		twice, errTwice := Compose(append(slices.Clone(templates), templates...)...)
		if errOnce != nil {
			require.Error(rt, errTwice)
			return
		}
		require.NoError(rt, errTwice)
		require.Equal(rt, Render(once), Render(twice))
	})
}

func TestProperty_UnionAndIntersection(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		templates := drawTemplates(rt)

		wantInputs := map[string]bool{}
		wantPackages := map[string]bool{}
		wantOverlays := map[string]bool{}
		for _, tmpl := range templates {
			for _, in := range tmpl.Inputs {
				wantInputs[in.Name] = true
			}
			for _, p := range tmpl.Packages {
				wantPackages[p.Name] = true
			}
			for _, ov := range tmpl.Overlays {
				wantOverlays[ov.Name] = true
			}
		}

		var wantSystems []string
		for _, s := range registry.AllSystems() {
			all := true
			for _, tmpl := range templates {
				all = all && slices.Contains(tmpl.SupportedSystems(), s)
			}
			if all {
				wantSystems = append(wantSystems, s)
			}
		}

		f, err := Compose(templates...)
		if len(wantSystems) == 0 {
			require.ErrorIs(rt, err, ErrNoCommonSystems)
			return
		}
		require.NoError(rt, err)

		require.Len(rt, f.Inputs, len(wantInputs))
		require.Len(rt, f.Packages, len(wantPackages))
		require.Len(rt, f.Overlays, len(wantOverlays))
		for _, in := range f.Inputs {
			require.True(rt, wantInputs[in.Name])
		}
		for _, p := range f.Packages {
			require.True(rt, wantPackages[p.Name])
		}
		require.Equal(rt, wantSystems, f.Systems)

		// Every overlay's source input is part of the flake.
		for _, ov := range f.Overlays {
			require.Contains(rt, names(f.Inputs, inputName), ov.SourceInput)
		}
	})
}

func TestProperty_OrderIndependentNames(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		templates := drawTemplates(rt)
		shuffled := shuffle(rt, templates)

		a, errA := Compose(templates...)
		b, errB := Compose(shuffled...)
		if errA != nil {
			require.Error(rt, errB)
			return
		}
		require.NoError(rt, errB)

		require.Equal(rt, sortedNames(a.Inputs, inputName), sortedNames(b.Inputs, inputName))
		require.Equal(rt, sortedNames(a.Overlays, overlayName), sortedNames(b.Overlays, overlayName))
		require.Equal(rt, sortedNames(a.Packages, packageName), sortedNames(b.Packages, packageName))
		require.ElementsMatch(rt, a.EnvVars.Keys(), b.EnvVars.Keys())
		require.Equal(rt, a.Systems, b.Systems)
	})
}

func TestProperty_LastEnvValueWins(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		templates := drawTemplates(rt)
		for i := range templates {
			templates[i].Systems = nil
		}

		f, err := Compose(templates...)
		require.NoError(rt, err)

		want := map[string]string{}
		for _, tmpl := range templates {
			for _, v := range tmpl.EnvVars {
				want[v.Key] = v.Value
			}
		}
		require.Equal(rt, want, f.EnvVars.Map())

		overrides := 0
		current := map[string]string{}
		for _, tmpl := range templates {
			for _, v := range tmpl.EnvVars {
				if old, ok := current[v.Key]; ok && old != v.Value {
					overrides++
				}
				current[v.Key] = v.Value
			}
		}
		require.Len(rt, f.Warnings, overrides)
	})
}

func TestProperty_InputConflictDetected(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		templates := drawTemplates(rt)
		for i := range templates {
			templates[i].Systems = nil
		}
		victim := rapid.IntRange(0, len(templates)-1).Draw(rt, "victim")
		name := rapid.SampledFrom(inputPool).Draw(rt, "input")

		other := synthetic("z")
		other.Inputs = append(other.Inputs, registry.FlakeInput{Name: name, URL: "github:elsewhere/" + name})
		templates[victim].Inputs = append(slices.Clone(templates[victim].Inputs[:1]), registry.FlakeInput{Name: name, URL: "github:example/" + name})
		templates = append(templates, other)

		_, err := Compose(templates...)
		var conflict *InputConflictError
		require.ErrorAs(rt, err, &conflict)
		require.Equal(rt, name, conflict.Name)
		require.Equal(rt, "z", conflict.TemplateB)
	})
}
