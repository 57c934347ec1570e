package concept

import (
	"sort"

	"github.com/google/uuid"
)

// RelationshipEdge is a typed, directed, weakly-referenced link from one
// concept to another. Edges do not own their target; a dangling target id
// means "not currently resolvable", never an error.
type RelationshipEdge struct {
	RelationType    string    `json:"type"`
	TargetConceptID uuid.UUID `json:"target_concept_id"`
	Description     string    `json:"description"`
}

// RelationTuple is the comparable form of an edge used for diffing. The
// target id is carried as a string so tuples order lexicographically.
type RelationTuple struct {
	Type        string
	Target      string
	Description string
}

// Tuple converts an edge to its comparable form.
func (e RelationshipEdge) Tuple() RelationTuple {
	return RelationTuple{
		Type:        e.RelationType,
		Target:      e.TargetConceptID.String(),
		Description: e.Description,
	}
}

// Delta is the outcome of diffing two relation lists. Both slices are sorted
// lexicographically by (type, target, description).
type Delta struct {
	Added   []RelationTuple `json:"added"`
	Removed []RelationTuple `json:"removed"`
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// ListRelations returns the concept's edges as comparable tuples, in edge
// order.
func ListRelations(c *Concept) []RelationTuple {
	out := make([]RelationTuple, 0, len(c.Relationships))
	for _, e := range c.Relationships {
		out = append(out, e.Tuple())
	}
	return out
}

// DiffRelations computes the set difference between two relation lists.
// Equality is exact-tuple: a changed description on an otherwise identical
// edge is one removal plus one addition.
func DiffRelations(before, after []RelationTuple) Delta {
	beforeSet := make(map[RelationTuple]bool, len(before))
	for _, t := range before {
		beforeSet[t] = true
	}
	afterSet := make(map[RelationTuple]bool, len(after))
	for _, t := range after {
		afterSet[t] = true
	}

	var d Delta
	for t := range afterSet {
		if !beforeSet[t] {
			d.Added = append(d.Added, t)
		}
	}
	for t := range beforeSet {
		if !afterSet[t] {
			d.Removed = append(d.Removed, t)
		}
	}
	sortTuples(d.Added)
	sortTuples(d.Removed)
	return d
}

func sortTuples(ts []RelationTuple) {
	sort.Slice(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Description < b.Description
	})
}
