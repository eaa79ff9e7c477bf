package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default locations used when flags and config files say nothing.
const (
	DefaultInputDir  = "perfis"
	DefaultOutputDir = "resultados"
	DefaultCachePath = "classificacoes.db"
)

// Config holds the runtime settings for a classification run. Values are
// resolved in order: defaults, config file, environment, then CLI flags.
type Config struct {
	// InputDir is the directory scanned for researcher profiles.
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the exported lists and reports.
	OutputDir string `yaml:"output_dir"`

	// Model is the backend model identifier. Must exist in the catalog.
	Model string `yaml:"model"`

	// BatchSize is the number of profiles per classification request.
	BatchSize int `yaml:"batch_size"`

	// Conservative doubles the pause between batches. Forced on for
	// models the catalog marks as rate-limited.
	Conservative bool `yaml:"conservative"`

	// CachePath is the SQLite file holding prior classifications.
	// Empty disables caching.
	CachePath string `yaml:"cache_path"`

	// APIKey is read from ANTHROPIC_API_KEY, never from the config file.
	APIKey string `yaml:"-"`
}

// Load resolves the configuration, reading .env if present and the YAML
// config file at path (when non-empty).
func Load(path string) (*Config, error) {
	// Missing .env is fine; environment may already be set.
	_ = godotenv.Load()

	cfg := &Config{
		InputDir:  DefaultInputDir,
		OutputDir: DefaultOutputDir,
		Model:     DefaultModel().Name,
		BatchSize: 4,
		CachePath: DefaultCachePath,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("PROSPECT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PROSPECT_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")

	return cfg, nil
}

// ResolveModel validates cfg.Model against the catalog and applies the
// model's rate-limit posture.
func (cfg *Config) ResolveModel() (ModelConfig, error) {
	m, err := LoadModel(cfg.Model)
	if err != nil {
		return ModelConfig{}, err
	}
	if m.Conservative {
		cfg.Conservative = true
	}
	return m, nil
}

// RequireAPIKey returns an error when no API key is available.
func (cfg *Config) RequireAPIKey() error {
	if cfg.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY não definida (configure no ambiente ou em um arquivo .env)")
	}
	return nil
}
