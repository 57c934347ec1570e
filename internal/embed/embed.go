//go:build llamacpp

// Package embed provides local GGUF embeddings for feature-unit vectors via
// hybridgroup/yzma (purego llama.cpp bindings). Built only with the llamacpp
// tag; the default build ships a stub that reports the feature unavailable.
package embed

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/hybridgroup/yzma/pkg/llama"

	"github.com/nvandessel/engram/internal/vecmath"
)

// Package-level library initialization. llama.Load() and llama.Init() are
// process-global operations that must only happen once.
var (
	libOnce    sync.Once
	libLoadErr error
)

func loadLib(libPath string) error {
	libOnce.Do(func() {
		if err := llama.Load(libPath); err != nil {
			libLoadErr = fmt.Errorf("loading yzma shared library from %q: %w", libPath, err)
			return
		}
		llama.LogSet(llama.LogSilent())
		llama.Init()
	})
	return libLoadErr
}

// Embedder produces unit vectors from text using a local GGUF model.
// Thread-safe: all model access is serialized via mutex. Contexts are
// created per Embed() call and freed immediately.
type Embedder struct {
	libPath     string
	modelPath   string
	gpuLayers   int
	contextSize int

	mu      sync.Mutex
	model   llama.Model
	vocab   llama.Vocab
	nEmbd   int32
	loaded  bool
	loadErr error
	once    sync.Once
}

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

// New creates an Embedder. The model is not loaded until first use.
func New(cfg Config) *Embedder {
	ctxSize := cfg.ContextSize
	if ctxSize <= 0 {
		ctxSize = 512
	}
	libPath := cfg.LibPath
	if libPath == "" {
		libPath = os.Getenv("YZMA_LIB")
	}
	return &Embedder{
		libPath:     libPath,
		modelPath:   cfg.ModelPath,
		gpuLayers:   cfg.GPULayers,
		contextSize: ctxSize,
	}
}

// resolveLibPath returns the effective library path, falling back to YZMA_LIB.
func (e *Embedder) resolveLibPath() string {
	if e.libPath != "" {
		return e.libPath
	}
	return os.Getenv("YZMA_LIB")
}

// loadModel lazy-loads the embedding model on first use.
func (e *Embedder) loadModel() error {
	e.once.Do(func() {
		if e.modelPath == "" {
			e.loadErr = fmt.Errorf("no model path configured")
			return
		}

		libPath := e.resolveLibPath()
		if libPath == "" {
			e.loadErr = fmt.Errorf("no library path configured (set Config.LibPath or YZMA_LIB)")
			return
		}

		if err := loadLib(libPath); err != nil {
			e.loadErr = err
			return
		}

		modelParams := llama.ModelDefaultParams()
		gpuLayers := e.gpuLayers
		if gpuLayers > math.MaxInt32 {
			gpuLayers = math.MaxInt32
		}
		modelParams.NGpuLayers = int32(gpuLayers)

		model, err := llama.ModelLoadFromFile(e.modelPath, modelParams)
		if err != nil {
			e.loadErr = fmt.Errorf("loading model %s: %w", e.modelPath, err)
			return
		}
		if model == 0 {
			e.loadErr = fmt.Errorf("loading model %s: returned null handle", e.modelPath)
			return
		}

		e.model = model
		e.vocab = llama.ModelGetVocab(model)
		e.nEmbd = int32(llama.ModelNEmbd(model))
		e.loaded = true
	})
	return e.loadErr
}

// Available returns true if both the library directory and model file exist
// on disk. Cheap check; does not load the model or library.
func (e *Embedder) Available() bool {
	libPath := e.resolveLibPath()
	if libPath == "" || e.modelPath == "" {
		return false
	}
	if info, err := os.Stat(libPath); err != nil || !info.IsDir() {
		return false
	}
	_, err := os.Stat(e.modelPath)
	return err == nil
}

// Embed returns an L2-normalized dense vector for the given text.
// Creates a fresh llama context per call and frees it immediately.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := e.loadModel(); err != nil {
		return nil, fmt.Errorf("local embed: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	tokens := llama.Tokenize(e.vocab, text, true, true)

	ctxParams := llama.ContextDefaultParams()
	nTokens := len(tokens) + 64
	if nTokens > math.MaxUint32 {
		nTokens = math.MaxUint32
	}
	ctxParams.NCtx = uint32(nTokens)

	lctx, err := llama.InitFromModel(e.model, ctxParams)
	if err != nil {
		return nil, fmt.Errorf("creating embedding context: %w", err)
	}
	defer func() { _ = llama.Free(lctx) }()

	llama.SetEmbeddings(lctx, true)

	batch := llama.BatchGetOne(tokens)
	if _, err := llama.Decode(lctx, batch); err != nil {
		return nil, fmt.Errorf("decoding tokens: %w", err)
	}

	rawVec, err := llama.GetEmbeddingsSeq(lctx, 0, e.nEmbd)
	if err != nil {
		return nil, fmt.Errorf("getting embeddings: %w", err)
	}

	// Copy out of context-owned memory, widen, and L2 normalize.
	vec := make([]float64, len(rawVec))
	for i, v := range rawVec {
		vec[i] = float64(v)
	}
	vecmath.Normalize(vec)

	return vec, nil
}

// Close releases the model resources. Safe to call multiple times.
// Does NOT call llama.Close() — that's process-global.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		_ = llama.ModelFree(e.model)
		e.model = 0
		e.vocab = 0
		e.nEmbd = 0
		e.loaded = false
		e.once = sync.Once{} // allow reloading after close
	}
	return nil
}
