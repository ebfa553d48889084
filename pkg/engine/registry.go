package engine

import (
	"slices"

	"github.com/getmockd/httpmock/pkg/mock"
)

// Registry is the ordered collection of entries of one session.
// It is not safe for concurrent use; Engine guards it with its mutex.
type Registry struct {
	entries []*mock.Entry
	next    int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends e and assigns its registration index.
func (r *Registry) Add(e *mock.Entry) *mock.Entry {
	e.Index = r.next
	r.next++
	r.entries = append(r.entries, e)
	return e
}

// All returns the entries in registration order.
func (r *Registry) All() []*mock.Entry {
	return slices.Clone(r.entries)
}

// Snapshot copies the entries for diagnostics.
func (r *Registry) Snapshot() []mock.Entry {
	out := make([]mock.Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Snapshot()
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Clear removes every entry and restarts indexing.
func (r *Registry) Clear() {
	r.entries = nil
	r.next = 0
}
