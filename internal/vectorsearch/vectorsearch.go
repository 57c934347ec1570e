// Package vectorsearch defines the vector similarity backend contract and an
// in-memory brute-force implementation used for recall over unit embeddings.
package vectorsearch

import (
	"sort"

	"github.com/nvandessel/engram/internal/vecmath"
)

// Match pairs a stored key with its cosine score against a query.
type Match struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// Backend is the vector similarity contract. Search returns at most k
// matches in descending cosine order; stored vectors whose shape does not
// match the query are skipped silently, never erroring.
type Backend interface {
	Add(key string, vector []float64)
	Get(key string) ([]float64, bool)
	Search(query []float64, k int) []Match
}

// InMemoryBackend is the simplest possible backend: a map plus brute-force
// cosine scan. Deterministic: ties sort by key.
type InMemoryBackend struct {
	store map[string][]float64
}

// NewInMemory creates an empty backend.
func NewInMemory() *InMemoryBackend {
	return &InMemoryBackend{store: make(map[string][]float64)}
}

// Add inserts or replaces a vector under key.
func (b *InMemoryBackend) Add(key string, vector []float64) {
	b.store[key] = vector
}

// Get returns the stored vector for key.
func (b *InMemoryBackend) Get(key string) ([]float64, bool) {
	v, ok := b.store[key]
	return v, ok
}

// Len returns the number of stored vectors.
func (b *InMemoryBackend) Len() int { return len(b.store) }

// Search scores every compatible stored vector against the query and
// returns the top k, descending by score. Shape-mismatched vectors are
// skipped. An empty query matches nothing.
func (b *InMemoryBackend) Search(query []float64, k int) []Match {
	if len(query) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(b.store))
	for key, v := range b.store {
		if len(v) != len(query) {
			continue
		}
		matches = append(matches, Match{Key: key, Score: vecmath.Cosine(query, v)})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Key < matches[j].Key
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches
}
