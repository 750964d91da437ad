// Package registry holds the catalogue of language templates that flakegen
// composes into a flake.nix.
//
// A Template is one language's contribution: flake inputs, overlays, packages,
// environment variables, supported systems, an optional shell hook and
// whether unfree packages are required. Templates are plain YAML documents:
//
//	description: A Nix-flake-based Go development environment
//	inputs:
//	  - name: nixpkgs
//	    url: github:NixOS/nixpkgs/nixos-unstable
//	overlays:
//	  - name: go
//	    source_input: nixpkgs
//	    value: final.go_1_24
//	packages: [go, gotools, golangci-lint]
//	env:
//	  GOTOOLCHAIN: local
//
// # Sources
//
// Built-in templates are embedded in the binary and exposed through Builtin.
// Load layers user templates on top, resolving each identifier in order:
//  1. .flakegen/templates/ (project-local)
//  2. ~/.config/flakegen/templates/ (user global)
//  3. directories listed under templates.dirs in the config file
//  4. built-in templates
//
// User templates may be written as .yaml, .yml, .json or .jsonc files and are
// discovered recursively.
//
// # Immutability
//
// A Registry is never mutated after construction. Get returns deep copies, so
// a Registry can be shared by concurrent callers without locking.
package registry
