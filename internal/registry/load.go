package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// templateGlob matches template documents at any depth.
const templateGlob = "**/*.{yaml,yml,json,jsonc}"

// LoadOptions selects the user template directories layered over the
// built-in templates. Empty directories are ignored.
type LoadOptions struct {
	ProjectDir string
	GlobalDir  string
	ExtraDirs  []string
	Logger     *slog.Logger
}

// SkippedTemplate records a user template file that could not be loaded.
type SkippedTemplate struct {
	Path string
	Err  error
}

// LoadResult is the outcome of Load: the registry plus any user template
// files that were skipped.
type LoadResult struct {
	*Registry
	Skipped []SkippedTemplate
}

// Load builds a registry from user template directories and the built-in
// templates. The first source to define an identifier wins. Missing
// directories are ignored; invalid files are skipped and reported.
func Load(opts LoadOptions) (*LoadResult, error) {
	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	type source struct{ name, dir string }
	sources := []source{{SourceProject, opts.ProjectDir}, {SourceGlobal, opts.GlobalDir}}
	for _, dir := range opts.ExtraDirs {
		sources = append(sources, source{dir, dir})
	}

	b := newBuilder()
	result := &LoadResult{}
	for _, src := range sources {
		if src.dir == "" {
			continue
		}
		templates, skipped, err := loadDir(src.dir)
		if err != nil {
			return nil, err
		}
		for _, s := range skipped {
			logger.Warn("skipping template", "path", s.Path, "error", s.Err)
		}
		result.Skipped = append(result.Skipped, skipped...)

		for _, tmpl := range templates {
			if b.has(tmpl.ID) {
				logger.Debug("template shadowed", "id", tmpl.ID, "source", src.name)
				b.markOverride(tmpl.ID, src.name)
				continue
			}
			logger.Debug("loaded template", "id", tmpl.ID, "source", src.name)
			b.add(tmpl, src.name)
		}
	}

	for _, id := range builtin.order {
		if b.has(id) {
			b.markOverride(id, SourceBuiltin)
			continue
		}
		b.add(builtin.byID[id].tmpl, SourceBuiltin)
	}

	result.Registry = b.build()
	return result, nil
}

// loadDir parses every template document below dir. Identifiers repeated
// within one directory keep the first file in lexical path order.
func loadDir(dir string) ([]Template, []SkippedTemplate, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading template directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("template directory %s is not a directory", dir)
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, templateGlob)
	if err != nil {
		return nil, nil, fmt.Errorf("scanning template directory %s: %w", dir, err)
	}
	slices.Sort(matches)

	var (
		templates []Template
		skipped   []SkippedTemplate
		seen      = make(map[string]string)
	)
	for _, match := range matches {
		path := filepath.Join(dir, filepath.FromSlash(match))
		data, err := fs.ReadFile(fsys, match)
		if err != nil {
			skipped = append(skipped, SkippedTemplate{Path: path, Err: err})
			continue
		}
		tmpl, err := ParseFile(match, data)
		if err != nil {
			skipped = append(skipped, SkippedTemplate{Path: path, Err: err})
			continue
		}
		if first, dup := seen[tmpl.ID]; dup {
			skipped = append(skipped, SkippedTemplate{
				Path: path,
				Err:  fmt.Errorf("template %q already defined by %s", tmpl.ID, first),
			})
			continue
		}
		seen[tmpl.ID] = path
		templates = append(templates, tmpl)
	}
	return templates, skipped, nil
}
