package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Dynamics.Gain != 1.0 {
		t.Errorf("expected Gain 1.0, got %f", config.Dynamics.Gain)
	}
	if config.Dynamics.InhibitionGain != 0.25 {
		t.Errorf("expected InhibitionGain 0.25, got %f", config.Dynamics.InhibitionGain)
	}
	if config.Dynamics.ActivationThreshold != 0.15 {
		t.Errorf("expected ActivationThreshold 0.15, got %f", config.Dynamics.ActivationThreshold)
	}

	if config.Runtime.EtaHebb != 0.02 {
		t.Errorf("expected EtaHebb 0.02, got %f", config.Runtime.EtaHebb)
	}
	if config.Runtime.Decay != 0.999 {
		t.Errorf("expected Decay 0.999, got %f", config.Runtime.Decay)
	}
	if config.Runtime.MaxWeight != 1.0 {
		t.Errorf("expected MaxWeight 1.0, got %f", config.Runtime.MaxWeight)
	}

	if config.Oscillation.ThetaHz != 5.0 || config.Oscillation.GammaPerTheta != 4 {
		t.Errorf("expected 5 Hz theta with 4 gammas, got %f/%d",
			config.Oscillation.ThetaHz, config.Oscillation.GammaPerTheta)
	}

	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
dynamics:
  gain: 2.0
  inhibition_gain: 0.5
  activation_threshold: 0.3

runtime:
  eta_hebb: 0.04
  decay: 0.99

oscillation:
  theta_hz: 8
  gamma_per_theta: 7
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Dynamics.Gain != 2.0 {
		t.Errorf("expected Gain 2.0, got %f", config.Dynamics.Gain)
	}
	if config.Dynamics.InhibitionGain != 0.5 {
		t.Errorf("expected InhibitionGain 0.5, got %f", config.Dynamics.InhibitionGain)
	}
	if config.Runtime.EtaHebb != 0.04 {
		t.Errorf("expected EtaHebb 0.04, got %f", config.Runtime.EtaHebb)
	}
	if config.Oscillation.ThetaHz != 8 || config.Oscillation.GammaPerTheta != 7 {
		t.Errorf("oscillation = %f/%d, want 8/7", config.Oscillation.ThetaHz, config.Oscillation.GammaPerTheta)
	}
	// Unset keys keep their defaults.
	if config.Runtime.MaxWeight != 1.0 {
		t.Errorf("expected default MaxWeight 1.0, got %f", config.Runtime.MaxWeight)
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
embedding:
  model_path: ${TEST_MODEL_DIR}/embed.gguf
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	os.Setenv("TEST_MODEL_DIR", "/models")
	defer os.Unsetenv("TEST_MODEL_DIR")

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Embedding.ModelPath != "/models/embed.gguf" {
		t.Errorf("expected ModelPath '/models/embed.gguf', got '%s'", config.Embedding.ModelPath)
	}
}

func TestEnvOverrides(t *testing.T) {
	vars := []string{"ENGRAM_GAIN", "ENGRAM_ETA_HEBB", "ENGRAM_MODEL_PATH", "ENGRAM_LOG_LEVEL"}
	orig := make(map[string]string, len(vars))
	for _, v := range vars {
		orig[v] = os.Getenv(v)
	}
	defer func() {
		for _, v := range vars {
			os.Setenv(v, orig[v])
		}
	}()

	os.Setenv("ENGRAM_GAIN", "3.5")
	os.Setenv("ENGRAM_ETA_HEBB", "0.1")
	os.Setenv("ENGRAM_MODEL_PATH", "/tmp/model.gguf")
	os.Setenv("ENGRAM_LOG_LEVEL", "debug")

	config := Default()
	applyEnvOverrides(config)

	if config.Dynamics.Gain != 3.5 {
		t.Errorf("expected Gain 3.5, got %f", config.Dynamics.Gain)
	}
	if config.Runtime.EtaHebb != 0.1 {
		t.Errorf("expected EtaHebb 0.1, got %f", config.Runtime.EtaHebb)
	}
	if config.Embedding.ModelPath != "/tmp/model.gguf" {
		t.Errorf("expected ModelPath '/tmp/model.gguf', got '%s'", config.Embedding.ModelPath)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
}

func TestValidate_Valid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngramConfig)
	}{
		{"negative inhibition gain", func(c *EngramConfig) { c.Dynamics.InhibitionGain = -0.1 }},
		{"negative threshold", func(c *EngramConfig) { c.Dynamics.ActivationThreshold = -1 }},
		{"zero decay", func(c *EngramConfig) { c.Runtime.Decay = 0 }},
		{"decay above one", func(c *EngramConfig) { c.Runtime.Decay = 1.5 }},
		{"negative eta", func(c *EngramConfig) { c.Runtime.EtaHebb = -0.01 }},
		{"zero step", func(c *EngramConfig) { c.Runtime.DefaultStep = 0 }},
		{"negative theta", func(c *EngramConfig) { c.Oscillation.ThetaHz = -5 }},
		{"bad log level", func(c *EngramConfig) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	for _, level := range []string{"", "info", "debug", "trace"} {
		t.Run(level, func(t *testing.T) {
			config := Default()
			config.Logging.Level = level
			if err := config.Validate(); err != nil {
				t.Errorf("expected log level '%s' to be valid, got error: %v", level, err)
			}
		})
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
dynamics:
  gain: [invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
