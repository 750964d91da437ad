// Package flake merges language templates into one flake and renders it as
// a flake.nix document.
//
// Composition is pure and order-based: templates are processed in request
// order, and within a template in declaration order. The first template to
// contribute an input, overlay or package owns it. Conflicting inputs or
// overlays abort the composition; conflicting environment variables resolve
// to the last value and are reported as EnvVarOverride advisories.
package flake
