package config

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed configs/models.yaml
var modelFS embed.FS

// ModelConfig describes one supported backend model.
type ModelConfig struct {
	// Name is the API model identifier.
	Name string `yaml:"name"`

	// Display is the human-readable name shown in reports.
	Display string `yaml:"display"`

	// Description explains when to pick this model.
	Description string `yaml:"description"`

	// Temperature and MaxTokens are the generation parameters used for
	// classification requests.
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`

	// Conservative selects the longer inter-batch delay for models with
	// tighter rate limits.
	Conservative bool `yaml:"conservative"`
}

type modelCatalog struct {
	Default string        `yaml:"default"`
	Models  []ModelConfig `yaml:"models"`
}

var (
	catalog      = map[string]ModelConfig{}
	defaultModel string
)

func init() {
	data, err := modelFS.ReadFile("configs/models.yaml")
	if err != nil {
		return
	}

	var c modelCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return
	}

	for _, m := range c.Models {
		catalog[m.Name] = m
	}
	defaultModel = c.Default
}

// LoadModel looks up a model configuration by name.
func LoadModel(name string) (ModelConfig, error) {
	if m, ok := catalog[name]; ok {
		return m, nil
	}
	return ModelConfig{}, fmt.Errorf("unknown model %q (available: %v)", name, AvailableModels())
}

// DefaultModel returns the catalog's default model.
func DefaultModel() ModelConfig {
	return catalog[defaultModel]
}

// AvailableModels returns the names of all supported models, sorted.
func AvailableModels() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
