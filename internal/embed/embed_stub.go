//go:build !llamacpp

// Package embed provides local GGUF embeddings for feature-unit vectors.
// This stub is compiled when the llamacpp build tag is absent; every
// operation reports the feature unavailable.
package embed

import (
	"context"
	"fmt"
)

// Embedder is a stub that always reports local embeddings unavailable.
// Build with -tags llamacpp for the real implementation.
type Embedder struct{}

// Config configures the local embedder.
type Config struct {
	// LibPath is the directory containing yzma shared libraries (.so/.dylib).
	// Falls back to YZMA_LIB env var at runtime.
	LibPath string

	// ModelPath is the path to the GGUF embedding model file.
	ModelPath string

	// GPULayers is the number of layers to offload to GPU (0 = CPU only).
	GPULayers int

	// ContextSize is the context window size in tokens.
	ContextSize int
}

// New creates a stub Embedder.
func New(cfg Config) *Embedder {
	return &Embedder{}
}

// Available always returns false in the stub build.
func (e *Embedder) Available() bool {
	return false
}

// Embed always returns an error in the stub build.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return nil, fmt.Errorf("local embeddings not available: build with -tags llamacpp")
}

// Close is a no-op in the stub build.
func (e *Embedder) Close() error {
	return nil
}
