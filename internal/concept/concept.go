package concept

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Default dynamics parameters for new concepts.
const (
	DefaultInhibitionGain      = 0.25
	DefaultActivationThreshold = 0.15
)

// Concept is a structural cell assembly: a named bundle of feature ensembles
// plus typed, directed relationship edges to other concepts. The engine is a
// single-threaded step-driven state machine; a Concept is exclusively owned
// by whatever driver holds it.
type Concept struct {
	ID          uuid.UUID
	Name        string
	Description string
	Metadata    map[string]any

	// Relationships are ordered; duplicates are permitted.
	Relationships []RelationshipEdge

	// Dynamics parameters.
	InhibitionGain      float64
	ActivationThreshold float64

	// ensembles and byName always agree: every name maps to a present
	// ensemble and every ensemble is reachable through exactly the index
	// entries pointing at it. order preserves insertion order so snapshots
	// and recall ties are deterministic.
	ensembles map[uuid.UUID]*FeatureEnsemble
	byName    map[string]uuid.UUID
	order     []uuid.UUID
}

// New creates a concept with fresh identity, freshly allocated containers,
// and default dynamics parameters.
func New(name, description string) *Concept {
	return &Concept{
		ID:                  uuid.New(),
		Name:                name,
		Description:         description,
		Metadata:            map[string]any{"version": "3.0"},
		InhibitionGain:      DefaultInhibitionGain,
		ActivationThreshold: DefaultActivationThreshold,
		ensembles:           make(map[uuid.UUID]*FeatureEnsemble),
		byName:              make(map[string]uuid.UUID),
	}
}

// AddEnsemble registers an ensemble with this concept. Names are unique
// within a concept; on collision the new ensemble wins the name index
// (last write wins) and the shadowed ensemble is dropped entirely so the
// identity map and name index stay in agreement.
func (c *Concept) AddEnsemble(e *FeatureEnsemble) {
	if prev, ok := c.byName[e.Name]; ok && prev != e.ID {
		delete(c.ensembles, prev)
		for i, id := range c.order {
			if id == prev {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	if _, exists := c.ensembles[e.ID]; !exists {
		c.order = append(c.order, e.ID)
	}
	c.ensembles[e.ID] = e
	c.byName[e.Name] = e.ID
}

// Ensemble returns the ensemble registered under name, or nil.
func (c *Concept) Ensemble(name string) *FeatureEnsemble {
	id, ok := c.byName[name]
	if !ok {
		return nil
	}
	return c.ensembles[id]
}

// EnsembleByID returns the ensemble with the given identity, or nil.
func (c *Concept) EnsembleByID(id uuid.UUID) *FeatureEnsemble {
	return c.ensembles[id]
}

// Ensembles returns all ensembles in insertion order.
func (c *Concept) Ensembles() []*FeatureEnsemble {
	out := make([]*FeatureEnsemble, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.ensembles[id])
	}
	return out
}

// EnsembleNames returns the set of ensemble names.
func (c *Concept) EnsembleNames() map[string]bool {
	names := make(map[string]bool, len(c.byName))
	for n := range c.byName {
		names[n] = true
	}
	return names
}

// Len returns the number of ensembles.
func (c *Concept) Len() int {
	return len(c.ensembles)
}

// AddRelationship appends a typed, directed edge to another concept. The
// target is a weak reference: it is never dereferenced by the core.
func (c *Concept) AddRelationship(relationType string, target uuid.UUID, description string) {
	c.Relationships = append(c.Relationships, RelationshipEdge{
		RelationType:    relationType,
		TargetConceptID: target,
		Description:     description,
	})
}

// Stimulate performs one activation step from partial cues:
//
//  1. Direct activation: each named cue adds gain * cosine similarity to the
//     ensemble carrying that name. Unknown cue names are skipped.
//  2. One-hop spread: every positively activated source pushes
//     activation * weight along each link. Deltas are accumulated against a
//     snapshot and applied afterwards, so the update is synchronous and
//     order-independent. Dangling link targets are ignored.
//  3. Lateral inhibition: divisive normalization across all ensembles.
//
// Returns a name -> activation snapshot rounded to 4 decimal digits.
func (c *Concept) Stimulate(cues map[string][]float64, gain float64) map[string]float64 {
	// 1) Direct activation from cues.
	for name, vec := range cues {
		if e := c.Ensemble(name); e != nil {
			e.Activation += gain * e.Similarity(vec)
		}
	}

	// 2) Synchronous one-hop spread.
	delta := make(map[uuid.UUID]float64, len(c.ensembles))
	for _, src := range c.ensembles {
		if src.Activation <= 0.0 {
			continue
		}
		for target, w := range src.Links {
			if _, ok := c.ensembles[target]; !ok {
				continue
			}
			delta[target] += src.Activation * w
		}
	}
	for target, d := range delta {
		c.ensembles[target].Activation += d
	}

	// 3) Normalize.
	c.lateralInhibition()

	return c.snapshot()
}

// lateralInhibition applies divisive normalization: every activation is
// divided by 1 + gain * total positive activation. Near-zero totals are a
// no-op so the division stays well-conditioned.
func (c *Concept) lateralInhibition() {
	var total float64
	for _, e := range c.ensembles {
		if e.Activation > 0 {
			total += e.Activation
		}
	}
	if total <= 1e-9 {
		return
	}
	denom := 1.0 + c.InhibitionGain*total
	for _, e := range c.ensembles {
		e.Activation /= denom
	}
}

// DecayAll applies activation decay to every ensemble. Callers choose when
// to invoke it (e.g., once per oscillation phase).
func (c *Concept) DecayAll(fraction float64) {
	for _, e := range c.ensembles {
		e.Decay(fraction)
	}
}

// LearnHebbian strengthens links among ensembles whose activation meets the
// concept's activation threshold.
func (c *Concept) LearnHebbian(rate float64) {
	c.LearnHebbianThreshold(rate, c.ActivationThreshold)
}

// LearnHebbianThreshold is LearnHebbian with an explicit minimum activation.
// The co-active set is every ensemble at or above the threshold; each member
// updates its own links toward the whole set. Ensembles below the threshold
// are untouched, even toward active peers.
func (c *Concept) LearnHebbianThreshold(rate, threshold float64) {
	coactive := make([]uuid.UUID, 0, len(c.order))
	for _, id := range c.order {
		if c.ensembles[id].Activation >= threshold {
			coactive = append(coactive, id)
		}
	}
	for _, id := range coactive {
		c.ensembles[id].Hebbian(coactive, rate)
	}
}

// Recall pairs an ensemble name with its activation level.
type Recall struct {
	Name       string  `json:"name"`
	Activation float64 `json:"activation"`
}

// RecallPartial returns the topK most active ensembles, descending by
// activation. Ties keep insertion order (stable sort).
func (c *Concept) RecallPartial(topK int) []Recall {
	items := make([]Recall, 0, len(c.order))
	for _, id := range c.order {
		e := c.ensembles[id]
		items = append(items, Recall{Name: e.Name, Activation: e.Activation})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Activation > items[j].Activation
	})
	if topK < len(items) {
		items = items[:topK]
	}
	return items
}

// snapshot returns name -> activation for display, rounded to 4 digits.
func (c *Concept) snapshot() map[string]float64 {
	out := make(map[string]float64, len(c.order))
	for _, id := range c.order {
		e := c.ensembles[id]
		out[e.Name] = math.Round(e.Activation*10000) / 10000
	}
	return out
}

// Activations returns the unrounded name -> activation map.
func (c *Concept) Activations() map[string]float64 {
	out := make(map[string]float64, len(c.order))
	for _, id := range c.order {
		e := c.ensembles[id]
		out[e.Name] = e.Activation
	}
	return out
}
