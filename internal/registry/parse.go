package registry

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a template.
type document struct {
	ID          string       `yaml:"id"`
	Description string       `yaml:"description"`
	Inputs      []FlakeInput `yaml:"inputs"`
	Overlays    []OverlayRef `yaml:"overlays"`
	Packages    []string     `yaml:"packages"`
	Env         EnvVars      `yaml:"env"`
	Systems     []string     `yaml:"systems"`
	ShellHook   string       `yaml:"shell_hook"`
	AllowUnfree bool         `yaml:"allow_unfree"`
}

// templateExtensions lists the file extensions Parse accepts.
var templateExtensions = []string{".yaml", ".yml", ".json", ".jsonc"}

// IsTemplateFile reports whether name has a template file extension.
func IsTemplateFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range templateExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

// ParseFile parses a template file's content. The identifier defaults to the
// file's base name when the document does not declare one. JSON and JSONC
// files have comments and trailing commas stripped before decoding.
func ParseFile(name string, data []byte) (Template, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".json" || ext == ".jsonc" {
		data = jsonc.ToJSON(data)
	}
	return Parse(data, strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
}

// Parse decodes a YAML (or JSON) template document and validates it.
// defaultID is used when the document has no id field.
func Parse(data []byte, defaultID string) (Template, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Template{}, errors.New("empty template document")
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Template{}, fmt.Errorf("parsing template %s: %w", defaultID, err)
	}

	id := strings.TrimSpace(doc.ID)
	if id == "" {
		id = defaultID
	}

	tmpl := Template{
		ID:          id,
		Description: strings.TrimSpace(doc.Description),
		Inputs:      doc.Inputs,
		Overlays:    trimOverlayValues(doc.Overlays),
		Packages:    make([]PackageEntry, 0, len(doc.Packages)),
		EnvVars:     doc.Env,
		Systems:     doc.Systems,
		ShellHook:   strings.TrimRight(doc.ShellHook, "\n"),
		AllowUnfree: doc.AllowUnfree,
	}
	for _, name := range doc.Packages {
		tmpl.Packages = append(tmpl.Packages, PackageEntry{Name: strings.TrimSpace(name), Group: id})
	}

	if err := tmpl.Validate(); err != nil {
		return Template{}, err
	}
	return tmpl, nil
}

// trimOverlayValues drops the trailing newline YAML block scalars leave on
// multi-line overlay values.
func trimOverlayValues(refs []OverlayRef) []OverlayRef {
	for i := range refs {
		refs[i].Value = strings.TrimRight(refs[i].Value, "\n")
	}
	return refs
}
