package flake

import (
	"regexp"
	"strings"

	"github.com/gorewood/flakegen/internal/registry"
)

// Render serializes a composed flake as flake.nix text. The output is
// deterministic and ends with a newline.
func Render(f *ComposedFlake) string {
	w := &nixWriter{}

	w.line("{")
	w.indent(func() {
		w.line("description = %s;", quote(f.Description))
		w.blank()
		renderInputs(w, f.Inputs)
		w.blank()
		renderOutputs(w, f)
	})
	w.line("}")
	return w.String()
}

func renderInputs(w *nixWriter, inputs []registry.FlakeInput) {
	w.line("inputs = {")
	w.indent(func() {
		for _, in := range inputs {
			if !in.FollowsNixpkgs {
				w.line("%s.url = %s;", attrName(in.Name), quote(in.URL))
				continue
			}
			w.line("%s = {", attrName(in.Name))
			w.indent(func() {
				w.line("url = %s;", quote(in.URL))
				w.line(`inputs.nixpkgs.follows = "nixpkgs";`)
			})
			w.line("};")
		}
	})
	w.line("};")
}

func renderOutputs(w *nixWriter, f *ComposedFlake) {
	applied, defined := splitOverlays(f.Overlays)

	w.line("outputs =")
	w.indent(func() {
		w.line("{ self, nixpkgs, ... }@inputs:")
		w.line("let")
		w.indent(func() {
			w.line("supportedSystems = [")
			w.indent(func() {
				for _, s := range f.Systems {
					w.line("%s", quote(s))
				}
			})
			w.line("];")
			renderForEach(w, f, applied, len(defined) > 0)
		})
		w.line("in")
		w.line("{")
		w.indent(func() {
			if len(defined) > 0 {
				renderOverlay(w, defined)
				w.blank()
			}
			renderDevShell(w, f)
		})
		w.line("};")
	})
}

// splitOverlays separates refs that apply an input's default overlay from
// refs that define attributes in the flake's own overlay. Applied inputs are
// listed once each.
func splitOverlays(refs []registry.OverlayRef) (applied []string, defined []registry.OverlayRef) {
	seen := make(map[string]bool)
	for _, ref := range refs {
		if ref.Value != "" {
			defined = append(defined, ref)
			continue
		}
		if !seen[ref.SourceInput] {
			seen[ref.SourceInput] = true
			applied = append(applied, ref.SourceInput)
		}
	}
	return applied, defined
}

func renderForEach(w *nixWriter, f *ComposedFlake, applied []string, ownOverlay bool) {
	w.line("forEachSupportedSystem =")
	w.indent(func() {
		w.line("f:")
		w.line("nixpkgs.lib.genAttrs supportedSystems (")
		w.indent(func() {
			w.line("system:")
			w.line("f {")
			w.indent(func() {
				w.line("pkgs = import nixpkgs {")
				w.indent(func() {
					w.line("inherit system;")
					if len(applied) > 0 || ownOverlay {
						w.line("overlays = [")
						w.indent(func() {
							for _, input := range applied {
								w.line("inputs.%s.overlays.default", attrName(input))
							}
							if ownOverlay {
								w.line("self.overlays.default")
							}
						})
						w.line("];")
					}
					if f.AllowUnfree {
						w.line("config.allowUnfree = true;")
					}
				})
				w.line("};")
			})
			w.line("}")
		})
		w.line(");")
	})
}

func renderOverlay(w *nixWriter, defined []registry.OverlayRef) {
	w.line("overlays.default = final: prev: {")
	w.indent(func() {
		for _, ref := range defined {
			lines := strings.Split(ref.Value, "\n")
			if len(lines) == 1 {
				w.line("%s = %s;", attrName(ref.Name), ref.Value)
				continue
			}
			w.line("%s =", attrName(ref.Name))
			w.indent(func() {
				for i, l := range lines {
					if i == len(lines)-1 {
						l += ";"
					}
					w.raw(l)
				}
			})
		}
	})
	w.line("};")
}

func renderDevShell(w *nixWriter, f *ComposedFlake) {
	w.line("devShells = forEachSupportedSystem (")
	w.indent(func() {
		w.line("{ pkgs }:")
		w.line("{")
		w.indent(func() {
			w.line("default = pkgs.mkShell {")
			w.indent(func() {
				renderPackages(w, f.Packages)
				if len(f.EnvVars) > 0 {
					w.blank()
					renderEnv(w, f.EnvVars)
				}
				if len(f.ShellHooks) > 0 {
					w.blank()
					renderShellHook(w, f.ShellHooks)
				}
			})
			w.line("};")
		})
		w.line("}")
	})
	w.line(");")
}

// renderPackages writes one "# group" header per run of packages sharing a
// group.
func renderPackages(w *nixWriter, packages []registry.PackageEntry) {
	if len(packages) == 0 {
		w.line("packages = [ ];")
		return
	}
	w.line("packages = with pkgs; [")
	w.indent(func() {
		group := ""
		for i, pkg := range packages {
			if i == 0 || pkg.Group != group {
				group = pkg.Group
				w.line("# %s", group)
			}
			w.line("%s", packageExpr(pkg.Name))
		}
	})
	w.line("];")
}

func renderEnv(w *nixWriter, vars registry.EnvVars) {
	w.line("env = {")
	w.indent(func() {
		for _, v := range vars {
			w.line("%s = %s;", attrName(v.Key), quote(v.Value))
		}
	})
	w.line("};")
}

func renderShellHook(w *nixWriter, hooks []ShellHook) {
	w.line("shellHook = ''")
	w.indent(func() {
		for i, hook := range hooks {
			if i > 0 {
				w.blank()
			}
			w.line("# %s", hook.Template)
			for _, l := range strings.Split(strings.TrimRight(hook.Script, "\n"), "\n") {
				w.raw(escapeIndented(l))
			}
		}
	})
	w.line("'';")
}

var (
	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_'-]*$`)
	attrPath   = regexp.MustCompile(`^(?:[A-Za-z_][A-Za-z0-9_'-]*|"[^"\\]*")(?:\.(?:[A-Za-z_][A-Za-z0-9_'-]*|"[^"\\]*"))*$`)
)

// packageExpr returns a package list element. Anything other than an
// attribute path, such as a function application, is parenthesized so it
// stays one element.
func packageExpr(name string) string {
	name = strings.TrimSpace(name)
	if attrPath.MatchString(name) {
		return name
	}
	return "(" + name + ")"
}

// attrName returns name as a Nix attribute name, quoting it when it is not a
// plain identifier.
func attrName(name string) string {
	if identifier.MatchString(name) {
		return name
	}
	return quote(name)
}

// quote returns s as a Nix double-quoted string. ${...} interpolation is
// left intact.
func quote(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)

// escapeIndented escapes text for a Nix indented string so that shell
// syntax such as ${VAR} reaches the shell verbatim.
func escapeIndented(s string) string {
	s = strings.ReplaceAll(s, "''", "'''")
	return strings.ReplaceAll(s, "${", "''${")
}
