package concept

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Engram is the JSON snapshot of a concept's full structural state. Identity
// strings are preserved exactly across a round trip; loading never mints new
// ids.
type Engram struct {
	ConceptID     string              `json:"concept_id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Ensembles     []EngramEnsemble    `json:"ensembles"`
	Relationships []EngramRelation    `json:"relationships"`
	Params        EngramParams        `json:"params"`
	Metadata      map[string]any      `json:"metadata"`
}

// EngramEnsemble is the serialized form of one feature ensemble. Links are
// keyed by target ensemble id string.
type EngramEnsemble struct {
	EnsembleID string             `json:"ensemble_id"`
	Name       string             `json:"name"`
	Modality   string             `json:"modality"`
	Vector     []float64          `json:"vector"`
	Links      map[string]float64 `json:"links"`
}

// EngramRelation is the serialized form of one relationship edge.
type EngramRelation struct {
	Type            string `json:"type"`
	TargetConceptID string `json:"target_concept_id"`
	Description     string `json:"description"`
}

// EngramParams carries the concept's dynamics parameters.
type EngramParams struct {
	InhibitionGain      float64 `json:"inhibition_gain"`
	ActivationThreshold float64 `json:"activation_threshold"`
}

// ToEngram snapshots a concept. Ensembles appear in insertion order and
// activations are intentionally not serialized: an engram is structure, not
// transient state.
func ToEngram(c *Concept) *Engram {
	eng := &Engram{
		ConceptID:   c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		Params: EngramParams{
			InhibitionGain:      c.InhibitionGain,
			ActivationThreshold: c.ActivationThreshold,
		},
		Metadata:      c.Metadata,
		Ensembles:     make([]EngramEnsemble, 0, len(c.order)),
		Relationships: make([]EngramRelation, 0, len(c.Relationships)),
	}

	for _, id := range c.order {
		e := c.ensembles[id]
		links := make(map[string]float64, len(e.Links))
		for target, w := range e.Links {
			links[target.String()] = w
		}
		eng.Ensembles = append(eng.Ensembles, EngramEnsemble{
			EnsembleID: e.ID.String(),
			Name:       e.Name,
			Modality:   e.Modality,
			Vector:     e.Vector,
			Links:      links,
		})
	}

	for _, r := range c.Relationships {
		eng.Relationships = append(eng.Relationships, EngramRelation{
			Type:            r.RelationType,
			TargetConceptID: r.TargetConceptID.String(),
			Description:     r.Description,
		})
	}

	return eng
}

// FromEngram reconstructs a concept from a snapshot. Identities are parsed,
// never regenerated, so cross-references (links, relationship targets)
// survive exactly. Malformed ids surface as errors naming the offending
// field.
func FromEngram(eng *Engram) (*Concept, error) {
	if eng.ConceptID == "" {
		return nil, fmt.Errorf("engram missing concept_id")
	}
	conceptID, err := uuid.Parse(eng.ConceptID)
	if err != nil {
		return nil, fmt.Errorf("engram concept_id %q: %w", eng.ConceptID, err)
	}

	c := New(eng.Name, eng.Description)
	c.ID = conceptID
	c.InhibitionGain = eng.Params.InhibitionGain
	c.ActivationThreshold = eng.Params.ActivationThreshold
	if eng.Metadata != nil {
		c.Metadata = eng.Metadata
	}

	for i, se := range eng.Ensembles {
		if se.EnsembleID == "" {
			return nil, fmt.Errorf("engram ensemble %d (%q) missing ensemble_id", i, se.Name)
		}
		id, err := uuid.Parse(se.EnsembleID)
		if err != nil {
			return nil, fmt.Errorf("engram ensemble %q ensemble_id: %w", se.Name, err)
		}
		e := &FeatureEnsemble{
			ID:       id,
			Name:     se.Name,
			Modality: se.Modality,
			Vector:   se.Vector,
			Links:    make(map[uuid.UUID]float64, len(se.Links)),
		}
		for targetStr, w := range se.Links {
			target, err := uuid.Parse(targetStr)
			if err != nil {
				return nil, fmt.Errorf("engram ensemble %q link target %q: %w", se.Name, targetStr, err)
			}
			e.Links[target] = w
		}
		c.AddEnsemble(e)
	}

	for i, sr := range eng.Relationships {
		target, err := uuid.Parse(sr.TargetConceptID)
		if err != nil {
			return nil, fmt.Errorf("engram relationship %d target_concept_id %q: %w", i, sr.TargetConceptID, err)
		}
		c.AddRelationship(sr.Type, target, sr.Description)
	}

	return c, nil
}

// MarshalEngram serializes a concept's engram as indented JSON.
func MarshalEngram(c *Concept) ([]byte, error) {
	return json.MarshalIndent(ToEngram(c), "", "  ")
}

// UnmarshalEngram parses engram JSON and reconstructs the concept.
func UnmarshalEngram(data []byte) (*Concept, error) {
	var eng Engram
	if err := json.Unmarshal(data, &eng); err != nil {
		return nil, fmt.Errorf("parse engram: %w", err)
	}
	return FromEngram(&eng)
}
