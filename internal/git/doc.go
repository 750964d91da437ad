// Package git provides the few Git operations flakegen needs, via exec.
//
// Nix flakes only see files tracked by Git, so a freshly written flake.nix
// has to be staged before `nix develop` can evaluate it:
//
//	ok, err := git.IsWorkTree(ctx, dir)
//	if ok {
//	    err = git.Add(ctx, dir, "flake.nix")
//	}
//
// # Running Git Commands
//
// For other commands use RunContext, or RunIn to run inside a directory:
//
//	version, err := git.RunContext(ctx, "version")
//	top, err := git.RunIn(ctx, dir, "rev-parse", "--show-toplevel")
//
// # Error Handling
//
// All functions return *output.ExitError values with ExitSystemError (2),
// whether git is missing or the command fails.
package git
