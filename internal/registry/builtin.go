package registry

import (
	"cmp"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sync"
)

//go:embed templates/*.yaml
var builtinFS embed.FS

// Builtin returns the registry of templates embedded in the binary, parsed
// once per process. Templates are registered in identifier order.
var Builtin = sync.OnceValues(loadBuiltin)

func loadBuiltin() (*Registry, error) {
	templates, err := builtinTemplates()
	if err != nil {
		return nil, err
	}
	return New(templates...)
}

// builtinTemplates parses every embedded template document, sorted by
// identifier.
func builtinTemplates() ([]Template, error) {
	entries, err := fs.ReadDir(builtinFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("reading builtin templates: %w", err)
	}

	templates := make([]Template, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsTemplateFile(entry.Name()) {
			continue
		}
		name := path.Join("templates", entry.Name())
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading builtin template %s: %w", name, err)
		}
		tmpl, err := ParseFile(entry.Name(), data)
		if err != nil {
			return nil, fmt.Errorf("builtin template %s: %w", entry.Name(), err)
		}
		templates = append(templates, tmpl)
	}
	slices.SortFunc(templates, func(a, b Template) int { return cmp.Compare(a.ID, b.ID) })
	return templates, nil
}
