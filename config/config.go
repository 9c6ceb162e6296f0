// Package config loads and validates run configuration for the recallbench
// CLI. Configuration is YAML on disk with flag overrides applied by the
// command layer.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full run configuration.
type Config struct {
	// Provider selects the generation backend: "anthropic", "openai".
	Provider string `yaml:"provider"`
	// ModelID overrides the provider's default model.
	ModelID string `yaml:"model_id"`
	// AnswerModelID optionally selects a different model for recall
	// answering and grading; empty reuses ModelID.
	AnswerModelID string `yaml:"answer_model_id"`

	// Workers bounds concurrent pipeline invocations.
	Workers int `yaml:"workers"`
	// TargetPerPersona is the number of accepted items wanted per
	// (category, persona) collection.
	TargetPerPersona int `yaml:"target_per_persona"`
	// UseCaseFactor scales how many use cases are proposed per missing
	// item, absorbing rejections and abandonments.
	UseCaseFactor int `yaml:"use_case_factor"`
	// MaxPlacementRetries bounds conversation regeneration per core.
	MaxPlacementRetries int `yaml:"max_placement_retries"`
	// MaxModelCalls caps generator calls for the whole run (0 = unlimited).
	MaxModelCalls int `yaml:"max_model_calls"`
	// RequestsPerSecond rate-limits the generator boundary (0 = unlimited).
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// OutputDir is where accepted item collections are persisted.
	OutputDir string `yaml:"output_dir"`
	// PersonasPath points at the personas YAML file.
	PersonasPath string `yaml:"personas_path"`
	// Categories restricts the run to the named scenario categories;
	// empty means all registered categories.
	Categories []string `yaml:"categories"`

	// Short shrinks persona and use-case counts for diagnostic runs.
	Short bool `yaml:"short"`
}

// Default returns a configuration with workable local defaults.
func Default() Config {
	return Config{
		Provider:            "anthropic",
		Workers:             4,
		TargetPerPersona:    5,
		UseCaseFactor:       2,
		MaxPlacementRetries: 3,
		OutputDir:           "data/evidence",
		PersonasPath:        "data/personas.yaml",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot drive a run.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.TargetPerPersona < 1 {
		return fmt.Errorf("target_per_persona must be at least 1, got %d", c.TargetPerPersona)
	}
	if c.UseCaseFactor < 1 {
		return fmt.Errorf("use_case_factor must be at least 1, got %d", c.UseCaseFactor)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must be set")
	}
	return nil
}
