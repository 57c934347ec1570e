// Package workspace holds the driver-owned set of live concepts: an ordered
// name-to-concept map passed into algebra operations and display calls. The
// core has no process-wide singleton; a workspace is an explicit value.
package workspace

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nvandessel/engram/internal/concept"
)

// Workspace is an insertion-ordered registry of concepts by name. Not safe
// for concurrent use; drivers sharing one across goroutines must serialize
// access themselves.
type Workspace struct {
	byName map[string]*concept.Concept
	order  []string
}

// New creates an empty workspace.
func New() *Workspace {
	return &Workspace{byName: make(map[string]*concept.Concept)}
}

// Add registers a concept under its name, replacing any existing concept
// with that name while keeping its original position.
func (w *Workspace) Add(c *concept.Concept) {
	if _, exists := w.byName[c.Name]; !exists {
		w.order = append(w.order, c.Name)
	}
	w.byName[c.Name] = c
}

// Get returns the concept registered under name, or false.
func (w *Workspace) Get(name string) (*concept.Concept, bool) {
	c, ok := w.byName[name]
	return c, ok
}

// ByIndex returns the i-th concept in insertion order. An out-of-range index
// is a lookup failure, never a silently wrong concept.
func (w *Workspace) ByIndex(i int) (*concept.Concept, error) {
	if i < 0 || i >= len(w.order) {
		return nil, fmt.Errorf("concept index %d out of range [0, %d)", i, len(w.order))
	}
	return w.byName[w.order[i]], nil
}

// Remove discards the concept under name. Relationship edges in other
// concepts that reference it are left as-is: they are weak references and
// dereferencing them later just resolves to nothing.
func (w *Workspace) Remove(name string) bool {
	if _, ok := w.byName[name]; !ok {
		return false
	}
	delete(w.byName, name)
	for i, n := range w.order {
		if n == name {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// Names returns all concept names in insertion order.
func (w *Workspace) Names() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// Concepts returns all concepts in insertion order.
func (w *Workspace) Concepts() []*concept.Concept {
	out := make([]*concept.Concept, 0, len(w.order))
	for _, n := range w.order {
		out = append(out, w.byName[n])
	}
	return out
}

// Len returns the number of registered concepts.
func (w *Workspace) Len() int { return len(w.order) }

// Labels returns a concept-id to display-name map for graph rendering.
func (w *Workspace) Labels() map[uuid.UUID]string {
	labels := make(map[uuid.UUID]string, len(w.byName))
	for _, c := range w.byName {
		labels[c.ID] = c.Name
	}
	return labels
}

// Resolve maps a concept id back to its concept, scanning the workspace.
// A dangling id resolves to false, not an error.
func (w *Workspace) Resolve(id uuid.UUID) (*concept.Concept, bool) {
	for _, c := range w.byName {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}
