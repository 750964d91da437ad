package main

import (
	"strings"
	"testing"

	"github.com/gorewood/flakegen/internal/output"
)

func TestShowCommand(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantContains []string
	}{
		{
			name: "rust",
			args: []string{"show", "rust"},
			wantContains: []string{
				"Rust development environment",
				"Inputs",
				"github:oxalica/rust-overlay",
				"(follows nixpkgs)",
				"Overlays",
				"rustToolchain",
				"more lines",
				"RUST_SRC_PATH",
				"x86_64-linux",
			},
		},
		{
			name:         "shell hook",
			args:         []string{"show", "python"},
			wantContains: []string{"Shell hook", "requirements.txt"},
		},
		{
			name:         "unfree",
			args:         []string{"show", "hashi"},
			wantContains: []string{"unfree"},
		},
		{
			name:         "restricted systems",
			args:         []string{"show", "swift"},
			wantContains: []string{"x86_64-linux aarch64-linux"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupWorkspace(t)

			stdout, _, err := runCommand(t, tt.args...)
			if err != nil {
				t.Fatalf("show failed: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(stdout, want) {
					t.Errorf("output should contain %q:\n%s", want, stdout)
				}
			}
		})
	}
}

func TestShowCommand_JSON(t *testing.T) {
	setupWorkspace(t)

	stdout, _, err := runCommand(t, "show", "go", "--json")
	if err != nil {
		t.Fatalf("show --json failed: %v", err)
	}

	result := decodeJSON(t, stdout)
	tmpl, _ := result["template"].(map[string]any)
	if tmpl["id"] != "go" {
		t.Errorf("template.id = %v, want go", tmpl["id"])
	}
	if result["source"] != "built-in" {
		t.Errorf("source = %v, want built-in", result["source"])
	}
	systems, _ := result["systems"].([]any)
	if len(systems) != 4 {
		t.Errorf("systems = %v, want all four", systems)
	}
	env, _ := tmpl["env"].([]any)
	if len(env) != 1 {
		t.Errorf("env = %v, want GOTOOLCHAIN only", env)
	}
}

func TestShowCommand_Unknown(t *testing.T) {
	setupWorkspace(t)

	_, stderr, err := runCommand(t, "show", "cobol")
	if got := output.GetExitCode(err); got != output.ExitUserError {
		t.Fatalf("exit code = %d, want %d", got, output.ExitUserError)
	}
	if !strings.Contains(stderr, "flakegen list") {
		t.Errorf("error should point at list: %q", stderr)
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"prev.jdk21", "prev.jdk21"},
		{"  final.go_1_24\n", "final.go_1_24"},
		{"let\n  a = 1;\nin\na", "let ... (3 more lines)"},
	}

	for _, tt := range tests {
		if got := firstLine(tt.in); got != tt.want {
			t.Errorf("firstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
