package flake

import (
	"errors"
	"strings"
)

// ErrEmptyRequest is returned when no template identifiers were given.
var ErrEmptyRequest = errors.New("no templates requested")

// Request is an ordered list of template identifiers with duplicates
// collapsed to their first occurrence.
type Request struct {
	ids []string
}

// NewRequest builds a request from identifiers, dropping blanks and repeats.
func NewRequest(ids ...string) Request {
	seen := make(map[string]bool, len(ids))
	req := Request{ids: make([]string, 0, len(ids))}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		req.ids = append(req.ids, id)
	}
	return req
}

// ParseRequest splits command-line arguments on commas, so "rust,go node"
// and "rust go node" are equivalent.
func ParseRequest(args ...string) (Request, error) {
	var ids []string
	for _, arg := range args {
		ids = append(ids, strings.Split(arg, ",")...)
	}
	req := NewRequest(ids...)
	if req.Len() == 0 {
		return Request{}, ErrEmptyRequest
	}
	return req, nil
}

// IDs returns a copy of the identifiers in request order.
func (r Request) IDs() []string {
	return append([]string(nil), r.ids...)
}

// Len returns the number of distinct identifiers.
func (r Request) Len() int {
	return len(r.ids)
}

// String joins the identifiers with commas.
func (r Request) String() string {
	return strings.Join(r.ids, ",")
}
