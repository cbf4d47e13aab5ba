// Package cli provides the command-line interface for lookgen.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lookgen/internal/cli/commands"
	"github.com/leapstack-labs/lookgen/internal/cli/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lookgen",
		Short: "lookgen - LookML generator for dbt BigQuery projects",
		Long: `lookgen converts a dbt project's compiled manifest and catalog into
LookML view and explore definitions.

Nested BigQuery STRUCT and ARRAY columns become joined nested views,
time columns become dimension groups, and dbt meta blocks drive
measures and dimension overrides. Output is deterministic so generated
files diff cleanly in version control.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
LookML generator for dbt BigQuery projects
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./lookgen.yaml)")
	rootCmd.PersistentFlags().String("manifest", "", "Path to dbt manifest.json")
	rootCmd.PersistentFlags().String("catalog", "", "Path to dbt catalog.json")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory generated LookML is written to")
	rootCmd.PersistentFlags().String("view-prefix", "", "Prefix for generated view and explore names")
	rootCmd.PersistentFlags().Int("workers", 0, "Number of models to process concurrently (0 = number of CPUs)")
	rootCmd.PersistentFlags().Bool("skip-explores", false, "Generate views only, no explores")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewModelsCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return &config.Config{
		ManifestPath: config.DefaultManifestPath,
		CatalogPath:  config.DefaultCatalogPath,
		OutputDir:    config.DefaultOutputDir,
		Workers:      config.DefaultWorkers,
	}
}
