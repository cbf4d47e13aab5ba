package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lookgen/internal/cli/config"
	"github.com/leapstack-labs/lookgen/internal/dbt"
	"github.com/leapstack-labs/lookgen/internal/lookml"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext creates a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		ManifestPath: config.DefaultManifestPath,
		CatalogPath:  config.DefaultCatalogPath,
		OutputDir:    config.DefaultOutputDir,
		Workers:      config.DefaultWorkers,
	}
}

// LoadModels parses the dbt artifacts named by the configuration and
// returns the selected models.
func (c *CommandContext) LoadModels() ([]lookml.Model, error) {
	if err := c.Cfg.ValidateInputs(); err != nil {
		return nil, err
	}

	manifest, err := dbt.LoadManifest(c.Cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	catalog, err := dbt.LoadCatalog(c.Cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	p := dbt.NewParser(manifest, catalog, c.Logger)
	models := p.Models(dbt.Filter{
		Select:      c.Cfg.Select,
		Tags:        c.Cfg.Tags,
		ExposedOnly: c.Cfg.ExposedOnly,
	})
	return models, nil
}
