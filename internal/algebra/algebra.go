// Package algebra implements set-algebra operations over pairs of concepts:
// compare, merge, intersect, subtract and bind-relation. Every operation
// returns (optional result concept, relationship delta, human-readable note).
// Only bind-relation mutates an input; the rest leave their inputs untouched.
package algebra

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/nvandessel/engram/internal/concept"
	"github.com/nvandessel/engram/internal/vecmath"
)

// Result is the common outcome of every algebra operation. Concept is nil
// for compare.
type Result struct {
	Concept *concept.Concept
	Delta   concept.Delta
	Notes   string
}

// copyShallow copies a concept's parameters and metadata into a fresh
// concept without ensembles or relationships.
func copyShallow(src *concept.Concept, newName string) *concept.Concept {
	c := concept.New(newName, fmt.Sprintf("Derived from %s", src.Name))
	c.InhibitionGain = src.InhibitionGain
	c.ActivationThreshold = src.ActivationThreshold
	c.Metadata = make(map[string]any, len(src.Metadata))
	for k, v := range src.Metadata {
		c.Metadata[k] = v
	}
	return c
}

func copyVector(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// copyEnsemble clones an ensemble's definition (name override, modality,
// vector, description) under a fresh identity with no links and no
// activation.
func copyEnsemble(e *concept.FeatureEnsemble, name string) *concept.FeatureEnsemble {
	ne := concept.NewFeatureEnsemble(name, e.Modality, copyVector(e.Vector))
	ne.Description = e.Description
	return ne
}

// Compare computes structural metrics between two concepts: ensemble-name
// Jaccard, mean cosine of vectors for ensembles shared by name (0 if none),
// and the absolute difference in average per-ensemble link count. No concept
// is created and no relationships change.
func Compare(a, b *concept.Concept) Result {
	namesA := a.EnsembleNames()
	namesB := b.EnsembleNames()

	var interCount, unionCount int
	for n := range namesA {
		unionCount++
		if namesB[n] {
			interCount++
		}
	}
	for n := range namesB {
		if !namesA[n] {
			unionCount++
		}
	}
	jaccard := 1.0
	if unionCount > 0 {
		jaccard = float64(interCount) / float64(unionCount)
	}

	var cosSum float64
	var cosN int
	for _, ea := range a.Ensembles() {
		if !namesB[ea.Name] {
			continue
		}
		eb := b.Ensemble(ea.Name)
		cosSum += vecmath.Cosine(ea.Vector, eb.Vector)
		cosN++
	}
	meanCos := 0.0
	if cosN > 0 {
		meanCos = cosSum / float64(cosN)
	}

	densityDiff := math.Abs(avgLinkDensity(a) - avgLinkDensity(b))

	return Result{
		Notes: fmt.Sprintf("Compare: jaccard=%.3f, mean_vector_cosine=%.3f, link_density_diff=%.3f",
			jaccard, meanCos, densityDiff),
	}
}

func avgLinkDensity(c *concept.Concept) float64 {
	if c.Len() == 0 {
		return 0.0
	}
	var sum float64
	for _, e := range c.Ensembles() {
		sum += float64(len(e.Links))
	}
	return sum / float64(c.Len())
}

// Merge unions the ensembles and intra-block links of two concepts into a
// fresh concept. B's ensembles take a "__B" name suffix only when they
// collide with an already-copied name. Each copied ensemble's assigned name
// is recorded at insertion, and links are remapped through a name-to-id
// table built after all ensembles are inserted, so cross references resolve
// regardless of insertion order and every intra-block link survives under
// its endpoints' assigned names; no links are invented between the A block
// and the B block. The result gains two MERGED_FROM edges back to its
// sources.
func Merge(a, b *concept.Concept, newName string) Result {
	c := copyShallow(a, newName)

	assigned := make(map[uuid.UUID]string, a.Len()+b.Len())
	for _, ea := range a.Ensembles() {
		c.AddEnsemble(copyEnsemble(ea, ea.Name))
		assigned[ea.ID] = ea.Name
	}
	for _, eb := range b.Ensembles() {
		name := eb.Name
		if c.Ensemble(name) != nil {
			name = name + "__B"
		}
		c.AddEnsemble(copyEnsemble(eb, name))
		assigned[eb.ID] = name
	}

	nameToID := make(map[string]uuid.UUID, c.Len())
	for _, e := range c.Ensembles() {
		nameToID[e.Name] = e.ID
	}

	copyLinks := func(src *concept.Concept) {
		for _, e := range src.Ensembles() {
			sid, ok := nameToID[assigned[e.ID]]
			if !ok {
				continue
			}
			se := c.EnsembleByID(sid)
			for tid, w := range e.Links {
				target := src.EnsembleByID(tid)
				if target == nil {
					continue
				}
				if tid2, ok := nameToID[assigned[target.ID]]; ok {
					se.Links[tid2] = w
				}
			}
		}
	}
	copyLinks(a)
	copyLinks(b)

	c.AddRelationship("MERGED_FROM", a.ID, fmt.Sprintf("source:%s", a.Name))
	c.AddRelationship("MERGED_FROM", b.ID, fmt.Sprintf("source:%s", b.Name))

	return Result{
		Concept: c,
		Delta:   concept.Delta{Added: sortedRelations(c)},
		Notes:   fmt.Sprintf("Merged %s and %s into %s; added MERGED_FROM edges.", a.Name, b.Name, c.Name),
	}
}

// Intersect keeps only ensembles whose name occurs in both concepts, copying
// vector and modality from A. Links survive only between two surviving
// endpoints. Relationship edges are kept when both inputs carry an edge with
// the identical (type, target) pair, description ignored; kept edges get a
// fixed provenance description.
func Intersect(a, b *concept.Concept, newName string) Result {
	c := copyShallow(a, newName)
	namesB := b.EnsembleNames()

	nameToNewID := make(map[string]uuid.UUID)
	for _, ea := range a.Ensembles() {
		if !namesB[ea.Name] {
			continue
		}
		ne := copyEnsemble(ea, ea.Name)
		c.AddEnsemble(ne)
		nameToNewID[ea.Name] = ne.ID
	}

	for _, ea := range a.Ensembles() {
		se := c.Ensemble(ea.Name)
		if se == nil {
			continue
		}
		for tid, w := range ea.Links {
			target := a.EnsembleByID(tid)
			if target == nil {
				continue
			}
			if newID, ok := nameToNewID[target.Name]; ok {
				se.Links[newID] = w
			}
		}
	}

	type pair struct {
		typ    string
		target uuid.UUID
	}
	pairsB := make(map[pair]bool, len(b.Relationships))
	for _, r := range b.Relationships {
		pairsB[pair{r.RelationType, r.TargetConceptID}] = true
	}
	seen := make(map[pair]bool)
	sharedRels := 0
	for _, r := range a.Relationships {
		p := pair{r.RelationType, r.TargetConceptID}
		if pairsB[p] && !seen[p] {
			seen[p] = true
			sharedRels++
			c.AddRelationship(r.RelationType, r.TargetConceptID, "shared relation")
		}
	}

	return Result{
		Concept: c,
		Delta:   concept.Delta{Added: sortedRelations(c)},
		Notes: fmt.Sprintf("Intersection created. Shared ensembles: %d. Shared relations added: %d.",
			c.Len(), sharedRels),
	}
}

// Subtract keeps A's ensembles whose name does not appear in B, with links
// retained only between two survivors. The derived concept starts
// relationship-free and the delta is empty.
func Subtract(a, b *concept.Concept, newName string) Result {
	c := copyShallow(a, newName)
	namesB := b.EnsembleNames()

	nameToNewID := make(map[string]uuid.UUID)
	for _, ea := range a.Ensembles() {
		if namesB[ea.Name] {
			continue
		}
		ne := copyEnsemble(ea, ea.Name)
		c.AddEnsemble(ne)
		nameToNewID[ea.Name] = ne.ID
	}

	for _, ea := range a.Ensembles() {
		se := c.Ensemble(ea.Name)
		if se == nil || namesB[ea.Name] {
			continue
		}
		for tid, w := range ea.Links {
			target := a.EnsembleByID(tid)
			if target == nil {
				continue
			}
			if newID, ok := nameToNewID[target.Name]; ok {
				se.Links[newID] = w
			}
		}
	}

	return Result{
		Concept: c,
		Notes:   "Subtraction created. Relations unchanged (derived concept has none by default).",
	}
}

// BindRelation appends one typed edge from A to B, mutating A in place. The
// delta is the before/after edge-list diff rather than the full list.
func BindRelation(a, b *concept.Concept, relationType, description string) Result {
	before := concept.ListRelations(a)
	a.AddRelationship(relationType, b.ID, description)
	after := concept.ListRelations(a)
	return Result{
		Concept: a,
		Delta:   concept.DiffRelations(before, after),
		Notes:   fmt.Sprintf("Added relation %s from %s to %s.", relationType, a.Name, b.Name),
	}
}

// sortedRelations is the "everything added" delta payload: the concept's
// full edge list as sorted tuples.
func sortedRelations(c *concept.Concept) []concept.RelationTuple {
	return concept.DiffRelations(nil, concept.ListRelations(c)).Added
}
