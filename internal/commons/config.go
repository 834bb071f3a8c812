package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"palantir/internal/config"
)

// LoadConfig reads configuration from a yaml file. Search thresholds not
// present in the file keep their production defaults.
func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := config.Config{Search: config.DefaultSearchConfig()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}
