package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/gorewood/flakegen/internal/output"
)

// RunContext executes a git command with the given context and arguments.
// It captures stdout and returns it as a trimmed string.
// Returns an *output.ExitError on failure with appropriate exit code.
func RunContext(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", output.NewSystemError("git not found: ensure git is installed and in PATH")
		}

		// Git command failed - include stderr in message
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", output.NewSystemErrorWithCause("git command failed: "+errMsg, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// RunIn executes a git command as if started in dir.
func RunIn(ctx context.Context, dir string, args ...string) (string, error) {
	return RunContext(ctx, append([]string{"-C", dir}, args...)...)
}

// Available reports whether a git executable is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Version returns the output of `git --version`.
func Version(ctx context.Context) (string, error) {
	return RunContext(ctx, "--version")
}

// IsWorkTree reports whether dir is inside a git work tree. A directory
// outside any repository is not an error; a missing git executable is.
func IsWorkTree(ctx context.Context, dir string) (bool, error) {
	if !Available() {
		return false, output.NewSystemError("git not found: ensure git is installed and in PATH")
	}
	out, err := RunIn(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, nil
	}
	return out == "true", nil
}

// Add stages paths, relative to dir, in dir's repository.
func Add(ctx context.Context, dir string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	if _, err := RunIn(ctx, dir, args...); err != nil {
		return err
	}
	return nil
}

// IsTracked reports whether path, relative to dir, is in the index.
func IsTracked(ctx context.Context, dir, path string) bool {
	out, err := RunIn(ctx, dir, "ls-files", "--", path)
	return err == nil && out != ""
}
