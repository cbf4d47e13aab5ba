package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/lookgen/internal/cli/config"
	"github.com/leapstack-labs/lookgen/internal/generator"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate LookML views and explores from dbt artifacts",
		Long: `Generate LookML view files from a dbt manifest and catalog.

Each selected model becomes one .view.lkml file under the output
directory, grouped by schema. Nested BigQuery STRUCT/ARRAY columns
become additional views joined into the model's explore.`,
		Example: `  # Generate from the default target/ artifacts
  lookgen generate

  # Only models carrying a tag, without writing files
  lookgen generate --tag looker --dry-run

  # Regenerate whenever the artifacts change
  lookgen generate --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch {
				return runWatch(cmd)
			}
			return runGenerate(cmd)
		},
	}

	cmd.Flags().StringSlice("select", nil, "Generate only the named models")
	cmd.Flags().StringSlice("tag", nil, "Generate only models carrying one of these dbt tags")
	cmd.Flags().Bool("exposures-only", false, "Generate only models referenced by a dbt exposure")
	cmd.Flags().Bool("dry-run", false, "Report what would be generated without writing files")
	cmd.Flags().BoolVar(&watch, "watch", false, "Watch the dbt artifacts and regenerate on change")

	return cmd
}

func runGenerate(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	// Command-local flags override the resolved configuration.
	if cmd.Flags().Changed("select") {
		cfg.Select, _ = cmd.Flags().GetStringSlice("select")
	}
	if cmd.Flags().Changed("tag") {
		cfg.Tags, _ = cmd.Flags().GetStringSlice("tag")
	}
	if cmd.Flags().Changed("exposures-only") {
		cfg.ExposedOnly, _ = cmd.Flags().GetBool("exposures-only")
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.DryRun, _ = cmd.Flags().GetBool("dry-run")
	}

	models, err := cmdCtx.LoadModels()
	if err != nil {
		return err
	}

	gen := generator.New(generator.Config{
		OutputDir:    cfg.OutputDir,
		ViewPrefix:   cfg.ViewPrefix,
		SkipExplores: cfg.SkipExplores,
		Workers:      cfg.Workers,
		DryRun:       cfg.DryRun,
		JoinSQL:      cfg.JoinSQL,
		ArraySQL:     cfg.ArraySQL,
		Logger:       cmdCtx.Logger,
	})

	start := time.Now()
	result, err := gen.Generate(cmd.Context(), models)
	if err != nil {
		return err
	}

	printSummary(cmd, cfg.DryRun, result, time.Since(start))
	return nil
}

// printSummary renders the per-model outcome table and run totals.
func printSummary(cmd *cobra.Command, dryRun bool, result *generator.RunResult, elapsed time.Duration) {
	out := cmd.OutOrStdout()

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Model", "Views", "File"})
	for _, o := range result.Outputs {
		t.AppendRow(table.Row{o.Model, o.Views, o.Path})
	}
	for _, s := range result.Skipped {
		t.AppendRow(table.Row{s.Model, "-", fmt.Sprintf("skipped: %s", s.Reason)})
	}
	t.Render()

	for _, d := range result.Diags {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", d.Severity, d.Model, d.Message)
	}

	verb := "generated"
	if dryRun {
		verb = "would generate"
	}
	fmt.Fprintf(out, "\n%s %d file(s), %d explore(s), %d skipped in %s\n",
		verb, len(result.Outputs), result.Explores, len(result.Skipped), elapsed.Round(time.Millisecond))
}

// runWatch regenerates whenever the manifest or catalog changes on disk.
func runWatch(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	if err := runGenerate(cmd); err != nil {
		cmdCtx.Logger.Error("initial generation failed", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the artifact directories rather than the files: dbt replaces
	// manifest.json and catalog.json atomically, which drops file-level
	// watches.
	dirs := map[string]bool{
		filepath.Dir(cfg.ManifestPath): true,
		filepath.Dir(cfg.CatalogPath):  true,
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	cmdCtx.Logger.Info("watching for artifact changes",
		"manifest", cfg.ManifestPath, "catalog", cfg.CatalogPath)

	return watchLoop(cmd.Context(), cmd, watcher, cfg.ManifestPath, cfg.CatalogPath)
}

func watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher, paths ...string) error {
	watched := make(map[string]bool, len(paths))
	for _, p := range paths {
		watched[filepath.Clean(p)] = true
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(200*time.Millisecond, func() {
				logger := config.GetLogger(cmd.Context())
				logger.Info("change detected", "file", filepath.Base(event.Name))
				if err := runGenerate(cmd); err != nil {
					logger.Error("generation failed", "error", err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			config.GetLogger(cmd.Context()).Error("watch error", "error", err)
		}
	}
}
