package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorewood/flakegen/internal/output"
)

// initRepo creates an empty repository in a temp dir.
// Skips the test if git is not installed.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	if _, err := RunIn(context.Background(), dir, "init", "--quiet"); err != nil {
		t.Fatalf("git init: %v", err)
	}
	return dir
}

func TestRunContext(t *testing.T) {
	if !Available() {
		t.Skip("git not installed")
	}

	tests := []struct {
		name          string
		args          []string
		wantErr       bool
		wantErrMsg    string
		checkExitCode int
	}{
		{
			name: "git version succeeds",
			args: []string{"version"},
		},
		{
			name:          "invalid git command",
			args:          []string{"invalid-command-that-does-not-exist"},
			wantErr:       true,
			wantErrMsg:    "git command failed",
			checkExitCode: output.ExitSystemError,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			out, runErr := RunContext(context.Background(), testCase.args...)
			if !testCase.wantErr {
				if runErr != nil {
					t.Fatalf("RunContext() unexpected error: %v", runErr)
				}
				if out == "" {
					t.Error("RunContext() expected non-empty output for 'git version'")
				}
				return
			}

			var exitErr *output.ExitError
			if !errors.As(runErr, &exitErr) {
				t.Fatalf("RunContext() error should be *output.ExitError, got %T", runErr)
			}
			if exitErr.Code != testCase.checkExitCode {
				t.Errorf("RunContext() exit code = %d, want %d", exitErr.Code, testCase.checkExitCode)
			}
			if !strings.Contains(exitErr.Message, testCase.wantErrMsg) {
				t.Errorf("RunContext() message = %q, want substring %q", exitErr.Message, testCase.wantErrMsg)
			}
		})
	}
}

func TestRunContext_Cancelled(t *testing.T) {
	if !Available() {
		t.Skip("git not installed")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunContext(ctx, "version"); err == nil {
		t.Error("RunContext() with cancelled context should fail")
	}
}

func TestIsWorkTree(t *testing.T) {
	repo := initRepo(t)
	ctx := context.Background()

	sub := filepath.Join(repo, "nested", "dir")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{repo, sub} {
		ok, err := IsWorkTree(ctx, dir)
		if err != nil {
			t.Fatalf("IsWorkTree(%s) error: %v", dir, err)
		}
		if !ok {
			t.Errorf("IsWorkTree(%s) = false, want true", dir)
		}
	}

	outside := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(outside))
	ok, err := IsWorkTree(ctx, outside)
	if err != nil {
		t.Fatalf("IsWorkTree(outside) error: %v", err)
	}
	if ok {
		t.Error("IsWorkTree(outside) = true, want false")
	}
}

func TestAdd(t *testing.T) {
	repo := initRepo(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(repo, "flake.nix"), []byte("{ }\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if IsTracked(ctx, repo, "flake.nix") {
		t.Fatal("flake.nix should not be tracked before Add")
	}

	if err := Add(ctx, repo, "flake.nix"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if !IsTracked(ctx, repo, "flake.nix") {
		t.Error("flake.nix should be tracked after Add")
	}

	if err := Add(ctx, repo); err != nil {
		t.Errorf("Add() with no paths should be a no-op, got %v", err)
	}
}

func TestAdd_MissingFile(t *testing.T) {
	repo := initRepo(t)

	err := Add(context.Background(), repo, "missing.nix")
	if output.GetExitCode(err) != output.ExitSystemError {
		t.Errorf("Add(missing) exit code = %d, want %d", output.GetExitCode(err), output.ExitSystemError)
	}
}
