// Package generator orchestrates the per-model LookML pipeline: build the
// column tree, synthesize views, apply meta, emit, and write output files.
// Models are independent, so the pipeline fans out over a bounded worker
// pool with no shared mutable state; each worker owns its model's tree and
// views and writes a disjoint output file.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/lookgen/internal/lookml"
)

// ErrNoModels is returned when there is nothing to generate; an empty run
// is treated as run-fatal rather than silently succeeding.
var ErrNoModels = errors.New("no models to generate")

// Config configures a generation run.
type Config struct {
	OutputDir    string
	ViewPrefix   string
	SkipExplores bool
	// Workers bounds pipeline concurrency; 0 means GOMAXPROCS.
	Workers int
	// DryRun transforms and reports without writing files.
	DryRun bool
	// Types substitutes the BigQuery type mapping; zero value means the
	// default mapping.
	Types lookml.TypeMap
	// JoinSQL and ArraySQL override the SQL templates used for UNNEST
	// joins and repeated-scalar dimensions.
	JoinSQL  string
	ArraySQL string
	Logger   *slog.Logger
}

// Generator runs the transformation pipeline over a set of models.
type Generator struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Generator. A nil logger discards.
func New(cfg Config) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{cfg: cfg, logger: logger}
}

// ModelOutput is one generated LookML file.
type ModelOutput struct {
	Model    string
	Path     string
	Contents string
	// Views is the number of view definitions in the file (root + nested).
	Views int
}

// SkippedModel records a model whose output was skipped and why.
type SkippedModel struct {
	Model  string
	Kind   lookml.ErrorKind
	Reason string
}

// RunResult summarizes one generation run.
type RunResult struct {
	RunID    string
	Outputs  []ModelOutput
	Skipped  []SkippedModel
	Diags    []lookml.Diagnostic
	Explores int
}

// Generate transforms every model and writes its LookML file. Model-fatal
// errors skip that model and continue; only environmental failures (output
// writing) or context cancellation abort the run, leaving already-written
// files intact.
func (g *Generator) Generate(ctx context.Context, models []lookml.Model) (*RunResult, error) {
	if len(models) == 0 {
		return nil, ErrNoModels
	}

	runID := uuid.NewString()
	workers := g.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.logger.Info("starting generation", "run_id", runID, "models", len(models), "workers", workers)

	// Per-index result slots: workers never touch each other's entries.
	outputs := make([]*ModelOutput, len(models))
	skipped := make([]*SkippedModel, len(models))
	diags := make([][]lookml.Diagnostic, len(models))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i := range models {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			model := &models[i]

			out, modelDiags, err := g.transform(model)
			diags[i] = modelDiags
			if err != nil {
				var merr *lookml.ModelError
				if errors.As(err, &merr) {
					g.logger.Warn("model skipped", "run_id", runID, "model", model.Name,
						"kind", string(merr.Kind), "error", merr.Err.Error())
					skipped[i] = &SkippedModel{Model: model.Name, Kind: merr.Kind, Reason: merr.Err.Error()}
					return nil
				}
				return fmt.Errorf("model %s: %w", model.Name, err)
			}

			if !g.cfg.DryRun {
				if err := writeOutput(out); err != nil {
					return err
				}
			}
			g.logger.Debug("model generated", "run_id", runID, "model", model.Name,
				"views", out.Views, "path", out.Path)
			outputs[i] = out
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := &RunResult{RunID: runID}
	for i := range models {
		if outputs[i] != nil {
			result.Outputs = append(result.Outputs, *outputs[i])
			if !g.cfg.SkipExplores {
				result.Explores++
			}
		}
		if skipped[i] != nil {
			result.Skipped = append(result.Skipped, *skipped[i])
		}
		result.Diags = append(result.Diags, diags[i]...)
	}

	g.logger.Info("generation finished", "run_id", runID,
		"generated", len(result.Outputs), "skipped", len(result.Skipped),
		"diagnostics", len(result.Diags))
	return result, nil
}

// transform runs the pure pipeline for one model.
func (g *Generator) transform(model *lookml.Model) (*ModelOutput, []lookml.Diagnostic, error) {
	tree, err := lookml.BuildTree(model.Name, model.Columns)
	if err != nil {
		return nil, nil, err
	}

	res, err := lookml.Synthesize(tree, model, lookml.Options{
		ViewPrefix: g.cfg.ViewPrefix,
		Types:      g.cfg.Types,
		JoinSQL:    g.cfg.JoinSQL,
		ArraySQL:   g.cfg.ArraySQL,
	})
	if err != nil {
		return nil, tree.Diags, err
	}

	if err := lookml.ApplyMeta(res, model); err != nil {
		return nil, append(tree.Diags, res.Diags...), err
	}

	explore := res.Explore
	if g.cfg.SkipExplores {
		explore = nil
	}

	out := &ModelOutput{
		Model:    model.Name,
		Path:     g.outputPath(model),
		Contents: lookml.EmitFile(res.Views, explore),
		Views:    len(res.Views),
	}
	return out, append(tree.Diags, res.Diags...), nil
}

// outputPath places each model's file under its dbt schema, mirroring the
// warehouse layout so generated files diff cleanly in version control.
func (g *Generator) outputPath(model *lookml.Model) string {
	name := model.Name + ".view.lkml"
	if model.Schema != "" {
		return filepath.Join(g.cfg.OutputDir, model.Schema, name)
	}
	return filepath.Join(g.cfg.OutputDir, name)
}
