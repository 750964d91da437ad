package registry

import (
	"errors"
	"fmt"
	"iter"
)

// Template sources reported by List.
const (
	SourceBuiltin = "built-in"
	SourceGlobal  = "global"
	SourceProject = "project"
)

// ErrTemplateNotFound is matched by errors.Is for unknown identifiers.
var ErrTemplateNotFound = errors.New("template not found")

// NotFoundError reports an identifier missing from the registry.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template %q not found", e.ID)
}

// Is lets errors.Is match ErrTemplateNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrTemplateNotFound
}

// Info describes a registered template for listings.
type Info struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Source      string `json:"source"`
	// Overrides names the lower-priority source whose template of the same
	// identifier this one shadows.
	Overrides string `json:"overrides,omitempty"`
}

type registered struct {
	tmpl Template
	info Info
}

// Registry is an immutable catalogue of templates keyed by identifier.
type Registry struct {
	order []string
	byID  map[string]registered
}

// New builds a registry from validated templates in registration order.
// Duplicate identifiers are rejected.
func New(templates ...Template) (*Registry, error) {
	b := newBuilder()
	for _, tmpl := range templates {
		if err := tmpl.Validate(); err != nil {
			return nil, err
		}
		if b.has(tmpl.ID) {
			return nil, fmt.Errorf("template %q registered twice", tmpl.ID)
		}
		b.add(tmpl, SourceBuiltin)
	}
	return b.build(), nil
}

// Get returns a copy of the template registered under id.
func (r *Registry) Get(id string) (Template, error) {
	entry, ok := r.byID[id]
	if !ok {
		return Template{}, &NotFoundError{ID: id}
	}
	return entry.tmpl.Clone(), nil
}

// Info returns listing metadata for id.
func (r *Registry) Info(id string) (Info, bool) {
	entry, ok := r.byID[id]
	return entry.info, ok
}

// Resolve returns the templates for ids in the given order. It fails on the
// first unknown identifier.
func (r *Registry) Resolve(ids ...string) ([]Template, error) {
	templates := make([]Template, 0, len(ids))
	for _, id := range ids {
		tmpl, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

// List yields every registered template in registration order.
func (r *Registry) List() iter.Seq[Info] {
	return func(yield func(Info) bool) {
		for _, id := range r.order {
			if !yield(r.byID[id].info) {
				return
			}
		}
	}
}

// IDs returns the registered identifiers in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.order)
}

// builder accumulates templates before a Registry is frozen.
type builder struct {
	order []string
	byID  map[string]registered
}

func newBuilder() *builder {
	return &builder{byID: make(map[string]registered)}
}

func (b *builder) has(id string) bool {
	_, ok := b.byID[id]
	return ok
}

func (b *builder) add(tmpl Template, source string) {
	b.order = append(b.order, tmpl.ID)
	b.byID[tmpl.ID] = registered{
		tmpl: tmpl.Clone(),
		info: Info{ID: tmpl.ID, Description: tmpl.Description, Source: source},
	}
}

// markOverride records that the template registered under id shadows one
// from source.
func (b *builder) markOverride(id, source string) {
	entry := b.byID[id]
	if entry.info.Overrides == "" {
		entry.info.Overrides = source
		b.byID[id] = entry
	}
}

func (b *builder) build() *Registry {
	return &Registry{order: b.order, byID: b.byID}
}
