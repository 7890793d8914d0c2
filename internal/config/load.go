package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays a YAML file on top of base. Keys missing from the file
// keep the value from base. base is not modified.
func LoadFile(path string, base *Operator) (*Operator, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	return &cfg, nil
}

// Load resolves defaults, environment and the optional file at path, then
// validates the result.
func Load(path string) (*Operator, error) {
	cfg := LoadEnv()

	if path != "" {
		fromFile, err := LoadFile(path, cfg)
		if err != nil {
			return nil, err
		}
		cfg = fromFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
