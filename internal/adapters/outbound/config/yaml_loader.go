package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/abdidvp/dbtguard/internal/domain"
)

// YAMLLoader implements domain.ConfigLoader by reading a governance.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads and validates a governance configuration file. An unsupported
// extension or a config that fails validation is a configuration error and
// surfaces before any evaluation.
func (l *YAMLLoader) Load(path string) (domain.GovernanceConfig, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
	default:
		return domain.GovernanceConfig{}, fmt.Errorf("unsupported config format %q (supported: .yaml, .yml)", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.GovernanceConfig{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data, path)
}

// Parse unmarshals and validates raw YAML configuration bytes.
func Parse(data []byte, source string) (domain.GovernanceConfig, error) {
	var cfg domain.GovernanceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.GovernanceConfig{}, fmt.Errorf("parsing %s: %w", source, err)
	}
	// Validate before use so typos surface with the offending field, not
	// halfway through a run.
	if err := cfg.Validate(); err != nil {
		return domain.GovernanceConfig{}, fmt.Errorf("invalid %s: %w", source, err)
	}
	return cfg, nil
}
