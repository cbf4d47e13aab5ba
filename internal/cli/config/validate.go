package config

import (
	"fmt"
	"os"
)

// Validate checks that the configuration is internally consistent. File
// existence is checked separately so help output works without a dbt
// project present.
func (c *Config) Validate() error {
	if c.ManifestPath == "" {
		return fmt.Errorf("manifest is required")
	}
	if c.CatalogPath == "" {
		return fmt.Errorf("catalog is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

// ValidateInputs checks that the dbt artifacts exist.
func (c *Config) ValidateInputs() error {
	if _, err := os.Stat(c.ManifestPath); os.IsNotExist(err) {
		return fmt.Errorf("manifest does not exist: %s\nHint: run 'dbt docs generate' or use --manifest to specify a different path", c.ManifestPath)
	}
	if _, err := os.Stat(c.CatalogPath); os.IsNotExist(err) {
		return fmt.Errorf("catalog does not exist: %s\nHint: run 'dbt docs generate' or use --catalog to specify a different path", c.CatalogPath)
	}
	return nil
}
