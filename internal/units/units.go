// Package units defines FeatureUnit, a functional feature token with an
// optional embedding vector, and UnitStore, a registry providing lookup and
// cosine similarity between stored units.
package units

import (
	"github.com/nvandessel/engram/internal/vecmath"
)

// FeatureUnit is a reusable, modality-tagged feature token. Units are
// immutable once stored; replacing a unit means re-adding it under the same
// key.
type FeatureUnit struct {
	// Key uniquely identifies the unit (e.g., "dog.shape_canine").
	Key string `json:"key"`

	// Modality tags the unit's channel (e.g., "vision", "language", "audio").
	Modality string `json:"modality"`

	// Vector is the optional embedding used for similarity. Nil means the
	// unit has no vector; similarity against it is 0.
	Vector []float64 `json:"vector,omitempty"`

	// Attributes holds arbitrary string metadata.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// UnitStore maps unit keys to FeatureUnits. It is a plain in-memory registry
// with no teardown; Add replaces any existing unit under the same key.
type UnitStore struct {
	units map[string]FeatureUnit
}

// NewUnitStore creates an empty registry.
func NewUnitStore() *UnitStore {
	return &UnitStore{units: make(map[string]FeatureUnit)}
}

// Add inserts or replaces a unit.
func (s *UnitStore) Add(unit FeatureUnit) {
	s.units[unit.Key] = unit
}

// Get returns the unit for key, or false if absent.
func (s *UnitStore) Get(key string) (FeatureUnit, bool) {
	u, ok := s.units[key]
	return u, ok
}

// Keys returns all registered unit keys in unspecified order.
func (s *UnitStore) Keys() []string {
	keys := make([]string, 0, len(s.units))
	for k := range s.units {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of registered units.
func (s *UnitStore) Len() int {
	return len(s.units)
}

// Cosine returns the cosine similarity between the vectors of two units.
// Returns 0.0 when either unit is missing, either vector is absent, or the
// vectors are incompatible.
func (s *UnitStore) Cosine(a, b string) float64 {
	ua, okA := s.units[a]
	ub, okB := s.units[b]
	if !okA || !okB || ua.Vector == nil || ub.Vector == nil {
		return 0.0
	}
	return vecmath.Cosine(ua.Vector, ub.Vector)
}
