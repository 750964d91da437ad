package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorewood/flakegen/internal/git"
)

// writeFlake writes text to path using write-to-temp-then-rename, creating
// the parent directory when needed.
func writeFlake(path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".flake-*.nix")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmpFile.WriteString(text); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write data: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// stageResult reports what --git-add did.
type stageResult struct {
	Staged bool   `json:"staged"`
	Hint   string `json:"hint,omitempty"`
}

// stageFlake stages flake.nix in dir's repository. A directory outside any
// work tree is not an error; the result carries a hint instead.
func stageFlake(ctx context.Context, dir string) (stageResult, error) {
	inside, err := git.IsWorkTree(ctx, dir)
	if err != nil {
		return stageResult{}, err
	}
	if !inside {
		return stageResult{Hint: dir + " is not inside a git work tree; nix will only see flake.nix once it is tracked"}, nil
	}
	if err := git.Add(ctx, dir, flakeFile); err != nil {
		return stageResult{}, err
	}
	return stageResult{Staged: true}, nil
}
