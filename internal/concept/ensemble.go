// Package concept implements the structural cell-assembly model: feature
// ensembles with activation and weighted intra-assembly links, concepts that
// coordinate them through stimulation, lateral inhibition and Hebbian
// learning, typed relationship edges between concepts, and engram
// (de)serialization.
package concept

import (
	"github.com/google/uuid"

	"github.com/nvandessel/engram/internal/vecmath"
)

// FeatureEnsemble is a feature-level activation unit owned by exactly one
// Concept. It holds a feature vector, a mutable scalar activation, and
// weighted links to sibling ensembles within the same concept, keyed by
// ensemble identity.
type FeatureEnsemble struct {
	ID          uuid.UUID
	Name        string
	Modality    string
	Description string

	// Vector is the similarity basis used for direct cue activation.
	Vector []float64

	// Activation is the current excitation level. Unbounded, but lateral
	// inhibition keeps it practically small.
	Activation float64

	// Links maps sibling ensemble IDs to weights. A link to an ID that is
	// not present in the owning concept is a dangling reference; readers
	// treat it as absent.
	Links map[uuid.UUID]float64
}

// NewFeatureEnsemble creates an ensemble with a fresh identity and freshly
// allocated containers. The vector slice is used as given.
func NewFeatureEnsemble(name, modality string, vector []float64) *FeatureEnsemble {
	return &FeatureEnsemble{
		ID:       uuid.New(),
		Name:     name,
		Modality: modality,
		Vector:   vector,
		Links:    make(map[uuid.UUID]float64),
	}
}

// Similarity returns the cosine similarity between the ensemble's vector and
// a cue vector. Incompatible or empty vectors yield 0.0, never an error.
func (e *FeatureEnsemble) Similarity(cue []float64) float64 {
	return vecmath.Cosine(e.Vector, cue)
}

// AddLink creates or increments a link to another ensemble. Weights
// accumulate additively.
func (e *FeatureEnsemble) AddLink(target uuid.UUID, weight float64) {
	e.Links[target] += weight
}

// Decay leaks activation by fraction, clamped to [0, 1]. Composing decays is
// order-independent: decay(f1) then decay(f2) multiplies activation by
// (1-f1)*(1-f2).
func (e *FeatureEnsemble) Decay(fraction float64) {
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}
	e.Activation *= 1.0 - fraction
}

// Hebbian strengthens links toward every co-active ensemble except self by
// rate * own activation. Weights here are deliberately uncapped, unlike the
// runtime ensemble's plasticity.
func (e *FeatureEnsemble) Hebbian(coactive []uuid.UUID, rate float64) {
	for _, id := range coactive {
		if id == e.ID {
			continue
		}
		e.Links[id] += rate * e.Activation
	}
}
