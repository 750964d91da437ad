package flake

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorewood/flakegen/internal/registry"
)

const nixpkgsURL = "github:NixOS/nixpkgs/nixos-unstable"

func builtin(t *testing.T, ids ...string) []registry.Template {
	t.Helper()
	reg, err := registry.Builtin()
	require.NoError(t, err)
	templates, err := reg.Resolve(ids...)
	require.NoError(t, err)
	return templates
}

func synthetic(id string) registry.Template {
	return registry.Template{
		ID:          id,
		Description: id + " environment",
		Inputs:      []registry.FlakeInput{{Name: registry.NixpkgsInput, URL: nixpkgsURL}},
		Packages:    []registry.PackageEntry{{Name: id, Group: id}},
	}
}

func TestCompose_SingleTemplate(t *testing.T) {
	rust := builtin(t, "rust")[0]

	f, err := Compose(rust)
	require.NoError(t, err)

	assert.Equal(t, "Rust development environment", f.Description)
	assert.Equal(t, rust.Inputs, f.Inputs)
	assert.Equal(t, rust.Overlays, f.Overlays)
	assert.Equal(t, rust.Packages, f.Packages)
	assert.Equal(t, rust.EnvVars, f.EnvVars)
	assert.Equal(t, registry.AllSystems(), f.Systems)
	assert.Equal(t, []string{"rust"}, f.Templates)
	assert.Empty(t, f.Warnings)
	assert.False(t, f.AllowUnfree)
}

func TestCompose_RustGoNode(t *testing.T) {
	f, err := Compose(builtin(t, "rust", "go", "node")...)
	require.NoError(t, err)

	assert.Equal(t, "Multi-language development environment (rust, go, node)", f.Description)

	var inputs []string
	for _, in := range f.Inputs {
		inputs = append(inputs, in.Name)
	}
	assert.Equal(t, []string{"nixpkgs", "rust-overlay"}, inputs)

	var overlays []string
	for _, ov := range f.Overlays {
		overlays = append(overlays, ov.Name)
	}
	assert.Equal(t, []string{"rust-overlay", "rustToolchain", "go", "nodejs", "yarn"}, overlays)

	count := 0
	for _, pkg := range f.Packages {
		if pkg.Name == "pkg-config" {
			count++
			assert.Equal(t, "rust", pkg.Group)
		}
	}
	assert.Equal(t, 1, count, "shared build helper should appear once")

	assert.Equal(t, []string{"RUST_SRC_PATH", "GOTOOLCHAIN"}, f.EnvVars.Keys())
	assert.Empty(t, f.Warnings)
}

func TestCompose_DuplicateTemplateCollapses(t *testing.T) {
	rust := builtin(t, "rust")[0]

	once, err := Compose(rust)
	require.NoError(t, err)
	twice, err := Compose(rust, rust)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, Render(once), Render(twice))
}

func TestCompose_InputConflict(t *testing.T) {
	a := synthetic("a")
	a.Inputs = append(a.Inputs, registry.FlakeInput{Name: "x", URL: "github:one/x"})
	b := synthetic("b")
	b.Inputs = append(b.Inputs, registry.FlakeInput{Name: "x", URL: "github:two/x"})

	_, err := Compose(a, b)
	var conflict *InputConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "x", conflict.Name)
	assert.Equal(t, "github:one/x", conflict.URLA)
	assert.Equal(t, "github:two/x", conflict.URLB)
	assert.Equal(t, "a", conflict.TemplateA)
	assert.Equal(t, "b", conflict.TemplateB)
	assert.Equal(t, `input "x" conflicts: a declares github:one/x, b declares github:two/x`, err.Error())
}

func TestCompose_InputFollowsConflict(t *testing.T) {
	a := synthetic("a")
	a.Inputs = append(a.Inputs, registry.FlakeInput{Name: "x", URL: "github:one/x"})
	b := synthetic("b")
	b.Inputs = append(b.Inputs, registry.FlakeInput{Name: "x", URL: "github:one/x", FollowsNixpkgs: true})

	_, err := Compose(a, b)
	var conflict *InputConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, err.Error(), "(follows nixpkgs)")
}

func TestCompose_IdenticalInputsMerge(t *testing.T) {
	a := synthetic("a")
	a.Inputs = append(a.Inputs, registry.FlakeInput{Name: "x", URL: "github:one/x", FollowsNixpkgs: true})
	b := synthetic("b")
	b.Inputs = append(b.Inputs, registry.FlakeInput{Name: "x", URL: "github:one/x", FollowsNixpkgs: true})

	f, err := Compose(a, b)
	require.NoError(t, err)
	assert.Len(t, f.Inputs, 2)
}

func TestCompose_OverlayConflict(t *testing.T) {
	tests := []struct {
		name string
		a, b registry.OverlayRef
	}{
		{
			name: "different source",
			a:    registry.OverlayRef{Name: "o", SourceInput: "nixpkgs"},
			b:    registry.OverlayRef{Name: "o", SourceInput: "extra"},
		},
		{
			name: "different value",
			a:    registry.OverlayRef{Name: "o", SourceInput: "nixpkgs", Value: "prev.jdk21"},
			b:    registry.OverlayRef{Name: "o", SourceInput: "nixpkgs", Value: "prev.jdk17"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := synthetic("a")
			a.Overlays = []registry.OverlayRef{tt.a}
			b := synthetic("b")
			b.Inputs = append(b.Inputs, registry.FlakeInput{Name: "extra", URL: "github:extra/extra"})
			b.Overlays = []registry.OverlayRef{tt.b}

			_, err := Compose(a, b)
			var conflict *OverlayConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, "o", conflict.Name)
			assert.Equal(t, tt.a, conflict.A)
			assert.Equal(t, tt.b, conflict.B)
			assert.Equal(t, "a", conflict.TemplateA)
			assert.Equal(t, "b", conflict.TemplateB)
		})
	}
}

func TestCompose_BuiltinOverlayConflict(t *testing.T) {
	_, err := Compose(builtin(t, "rust", "rust-toolchain")...)
	var conflict *OverlayConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "rustToolchain", conflict.Name)
}

func TestCompose_SharedJDKOverlays(t *testing.T) {
	f, err := Compose(builtin(t, "java", "kotlin", "scala")...)
	require.NoError(t, err)

	names := make(map[string]int)
	for _, ov := range f.Overlays {
		names[ov.Name]++
	}
	assert.Equal(t, 1, names["jdk"])
	assert.Equal(t, 1, names["gradle"])
	assert.Empty(t, f.Warnings)
}

func TestCompose_EnvOverride(t *testing.T) {
	a := synthetic("a")
	a.EnvVars = registry.EnvVars{{Key: "SHARED", Value: "a"}, {Key: "ONLY_A", Value: "1"}}
	b := synthetic("b")
	b.EnvVars = registry.EnvVars{{Key: "ONLY_B", Value: "2"}, {Key: "SHARED", Value: "b"}}
	c := synthetic("c")
	c.EnvVars = registry.EnvVars{{Key: "SHARED", Value: "b"}, {Key: "ONLY_A", Value: "3"}}

	f, err := Compose(a, b, c)
	require.NoError(t, err)

	assert.Equal(t, registry.EnvVars{
		{Key: "SHARED", Value: "b"},
		{Key: "ONLY_A", Value: "3"},
		{Key: "ONLY_B", Value: "2"},
	}, f.EnvVars)
	assert.Equal(t, []EnvVarOverride{
		{Key: "SHARED", OldValue: "a", NewValue: "b", From: "a", To: "b"},
		{Key: "ONLY_A", OldValue: "1", NewValue: "3", From: "a", To: "c"},
	}, f.Warnings)
	assert.Equal(t, `SHARED from a ("a") overridden by b ("b")`, f.Warnings[0].String())
}

func TestCompose_Systems(t *testing.T) {
	a := synthetic("a")
	a.Systems = []string{registry.SystemAarch64Darwin, registry.SystemX86_64Linux}
	b := synthetic("b")
	c := synthetic("c")
	c.Systems = []string{registry.SystemX86_64Linux, registry.SystemAarch64Linux, registry.SystemAarch64Darwin}

	f, err := Compose(a, b, c)
	require.NoError(t, err)
	assert.Equal(t, []string{registry.SystemX86_64Linux, registry.SystemAarch64Darwin}, f.Systems)
}

func TestCompose_RepeatedSystemCountsOnce(t *testing.T) {
	a := synthetic("a")
	a.Systems = []string{registry.SystemX86_64Darwin, registry.SystemX86_64Darwin, registry.SystemX86_64Linux}
	b := synthetic("b")
	b.Systems = []string{registry.SystemX86_64Linux}

	f, err := Compose(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{registry.SystemX86_64Linux}, f.Systems)

	c := synthetic("c")
	c.Systems = []string{registry.SystemAarch64Linux}
	_, err = Compose(a, c)
	assert.ErrorIs(t, err, ErrNoCommonSystems)
}

func TestCompose_NoCommonSystems(t *testing.T) {
	a := synthetic("a")
	a.Systems = []string{registry.SystemX86_64Linux}
	b := synthetic("b")
	b.Systems = []string{registry.SystemAarch64Darwin}

	_, err := Compose(a, b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCommonSystems))

	var nce *NoCommonSystemsError
	require.ErrorAs(t, err, &nce)
	assert.Equal(t, []string{"a", "b"}, nce.Templates)
}

func TestCompose_ShellHooksAndUnfree(t *testing.T) {
	a := synthetic("a")
	a.ShellHook = "echo shared"
	b := synthetic("b")
	b.ShellHook = "echo shared"
	b.AllowUnfree = true
	c := synthetic("c")
	c.ShellHook = "echo c"

	f, err := Compose(a, b, c)
	require.NoError(t, err)
	assert.Equal(t, []ShellHook{{Template: "a", Script: "echo shared"}, {Template: "c", Script: "echo c"}}, f.ShellHooks)
	assert.True(t, f.AllowUnfree)
}

func TestCompose_NoTemplates(t *testing.T) {
	_, err := Compose()
	assert.ErrorIs(t, err, ErrNoTemplates)
}

func TestCompose_DoesNotMutateInput(t *testing.T) {
	a := synthetic("a")
	a.EnvVars = registry.EnvVars{{Key: "K", Value: "a"}}
	b := synthetic("b")
	b.EnvVars = registry.EnvVars{{Key: "K", Value: "b"}}

	_, err := Compose(a, b)
	require.NoError(t, err)
	assert.Equal(t, "a", a.EnvVars[0].Value)
}
