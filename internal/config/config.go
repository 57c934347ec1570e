// Package config provides unified configuration loading for engram.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EngramConfig contains all engram configuration settings.
type EngramConfig struct {
	// Dynamics configures the structural concept model.
	Dynamics DynamicsConfig `json:"dynamics" yaml:"dynamics"`

	// Runtime configures the time-driven ensemble plasticity.
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`

	// Oscillation configures the default theta/gamma phase generator.
	Oscillation OscillationConfig `json:"oscillation" yaml:"oscillation"`

	// Embedding configures the optional local embedding model.
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// DynamicsConfig configures the structural concept activation cycle.
type DynamicsConfig struct {
	// Gain scales direct cue activation in stimulate calls.
	Gain float64 `json:"gain" yaml:"gain"`

	// InhibitionGain scales divisive normalization for new concepts.
	InhibitionGain float64 `json:"inhibition_gain" yaml:"inhibition_gain"`

	// ActivationThreshold gates Hebbian learning for new concepts.
	ActivationThreshold float64 `json:"activation_threshold" yaml:"activation_threshold"`

	// LearningRate is the default Hebbian rate for learn commands.
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
}

// RuntimeConfig configures CellEnsembleRT plasticity.
type RuntimeConfig struct {
	// EtaHebb is the base pairwise Hebbian rate.
	EtaHebb float64 `json:"eta_hebb" yaml:"eta_hebb"`

	// Decay is the per-step multiplicative weight decay, in (0,1].
	Decay float64 `json:"decay" yaml:"decay"`

	// MaxWeight caps Hebbian increments.
	MaxWeight float64 `json:"max_weight" yaml:"max_weight"`

	// DefaultStep is the dt used when a step size is not given.
	DefaultStep float64 `json:"default_step" yaml:"default_step"`
}

// OscillationConfig configures the default phase generator parameters.
type OscillationConfig struct {
	// ThetaHz is the theta cycle frequency.
	ThetaHz float64 `json:"theta_hz" yaml:"theta_hz"`

	// GammaPerTheta is the number of gamma packets per theta cycle.
	GammaPerTheta int `json:"gamma_per_theta" yaml:"gamma_per_theta"`

	// TotalTime is the default run length in seconds.
	TotalTime float64 `json:"total_time" yaml:"total_time"`
}

// EmbeddingConfig configures local GGUF embeddings for unit vectors.
// Requires building with -tags llamacpp; without the tag, embedding commands
// report the feature as unavailable.
type EmbeddingConfig struct {
	// ModelPath is the path to a GGUF embedding model file.
	ModelPath string `json:"model_path,omitempty" yaml:"model_path,omitempty"`

	// GPULayers is the number of model layers to offload to GPU (0 = CPU only).
	GPULayers int `json:"gpu_layers,omitempty" yaml:"gpu_layers,omitempty"`

	// ContextSize is the context window size in tokens. Defaults to 512.
	ContextSize int `json:"context_size,omitempty" yaml:"context_size,omitempty"`
}

// LoggingConfig configures engram's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables operation logging to .engram/operations.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns an EngramConfig with sensible defaults.
func Default() *EngramConfig {
	return &EngramConfig{
		Dynamics: DynamicsConfig{
			Gain:                1.0,
			InhibitionGain:      0.25,
			ActivationThreshold: 0.15,
			LearningRate:        0.05,
		},
		Runtime: RuntimeConfig{
			EtaHebb:     0.02,
			Decay:       0.999,
			MaxWeight:   1.0,
			DefaultStep: 0.01,
		},
		Oscillation: OscillationConfig{
			ThetaHz:       5.0,
			GammaPerTheta: 4,
			TotalTime:     1.0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.engram/config.yaml -> environment variables
func Load() (*EngramConfig, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".engram", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*EngramConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in the model path
	config.Embedding.ModelPath = expandEnvVars(config.Embedding.ModelPath)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *EngramConfig) Validate() error {
	if c.Dynamics.InhibitionGain < 0 {
		return fmt.Errorf("inhibition_gain must be non-negative, got %f", c.Dynamics.InhibitionGain)
	}
	if c.Dynamics.ActivationThreshold < 0 {
		return fmt.Errorf("activation_threshold must be non-negative, got %f", c.Dynamics.ActivationThreshold)
	}

	if c.Runtime.Decay <= 0 || c.Runtime.Decay > 1 {
		return fmt.Errorf("decay must be in (0, 1], got %f", c.Runtime.Decay)
	}
	if c.Runtime.EtaHebb < 0 {
		return fmt.Errorf("eta_hebb must be non-negative, got %f", c.Runtime.EtaHebb)
	}
	if c.Runtime.DefaultStep <= 0 {
		return fmt.Errorf("default_step must be positive, got %f", c.Runtime.DefaultStep)
	}

	if c.Oscillation.ThetaHz < 0 {
		return fmt.Errorf("theta_hz must be non-negative, got %f", c.Oscillation.ThetaHz)
	}
	if c.Oscillation.GammaPerTheta < 0 {
		return fmt.Errorf("gamma_per_theta must be non-negative, got %d", c.Oscillation.GammaPerTheta)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *EngramConfig) {
	if v := os.Getenv("ENGRAM_GAIN"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Dynamics.Gain = f
		}
	}
	if v := os.Getenv("ENGRAM_INHIBITION_GAIN"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Dynamics.InhibitionGain = f
		}
	}
	if v := os.Getenv("ENGRAM_ACTIVATION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Dynamics.ActivationThreshold = f
		}
	}
	if v := os.Getenv("ENGRAM_LEARNING_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Dynamics.LearningRate = f
		}
	}

	if v := os.Getenv("ENGRAM_ETA_HEBB"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Runtime.EtaHebb = f
		}
	}
	if v := os.Getenv("ENGRAM_DECAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Runtime.Decay = f
		}
	}

	if v := os.Getenv("ENGRAM_MODEL_PATH"); v != "" {
		config.Embedding.ModelPath = v
	}
	if v := os.Getenv("ENGRAM_GPU_LAYERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Embedding.GPULayers = n
		}
	}
	if v := os.Getenv("ENGRAM_CONTEXT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Embedding.ContextSize = n
		}
	}

	if v := os.Getenv("ENGRAM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
