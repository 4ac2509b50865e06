package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultConfigFile is looked up in the working directory when --config is
// not given. Absence is not an error.
const defaultConfigFile = ".pinset.yaml"

// Config holds tool defaults loaded from .pinset.yaml. Flags always win
// over config values.
type Config struct {
	// Manifest is the default manifest path for commands that accept one.
	Manifest string `yaml:"manifest"`

	// Database is the default snapshot store path.
	Database string `yaml:"database"`

	// PolicyDir is the default policy directory.
	PolicyDir string `yaml:"policy_dir"`
}

// LoadConfig reads the config file at path, or the default config file if
// path is empty. A missing default file yields an empty config; a missing
// explicit file is an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// firstNonEmpty returns the first non-empty string, used to resolve
// flag-over-config precedence.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
