package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/lookgen/internal/lookml"
	"github.com/leapstack-labs/lookgen/internal/testutil"
)

func testModels() []lookml.Model {
	return []lookml.Model{
		{
			Name:         "orders",
			RelationName: "proj.shop.orders",
			Schema:       "shop",
			Columns: []lookml.Column{
				{Name: "id", Type: "INT64", PrimaryKey: true},
				{Name: "created_at", Type: "TIMESTAMP"},
				{Name: "items", Type: "STRUCT", Repeated: true, Struct: true},
				{Name: "items.sku", Type: "STRING"},
			},
		},
		{
			Name:         "users",
			RelationName: "proj.shop.users",
			Schema:       "shop",
			Columns: []lookml.Column{
				{Name: "id", Type: "INT64"},
				{Name: "email", Type: "STRING"},
			},
		},
	}
}

func TestGenerate_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	g := New(Config{OutputDir: dir, Logger: testutil.NewTestLogger(t)})

	result, err := g.Generate(context.Background(), testModels())
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)
	require.Len(t, result.Outputs, 2)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, 2, result.Explores)

	ordersPath := filepath.Join(dir, "shop", "orders.view.lkml")
	assert.Equal(t, ordersPath, result.Outputs[0].Path)
	assert.Equal(t, 2, result.Outputs[0].Views)

	data, err := os.ReadFile(ordersPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "explore: orders {")
	assert.Contains(t, content, "view: orders {")
	assert.Contains(t, content, "view: orders__items {")
	assert.Equal(t, content, result.Outputs[0].Contents)

	_, err = os.Stat(filepath.Join(dir, "shop", "users.view.lkml"))
	assert.NoError(t, err)
}

func TestGenerate_NoModels(t *testing.T) {
	g := New(Config{OutputDir: t.TempDir()})
	_, err := g.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoModels)
}

func TestGenerate_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	g := New(Config{OutputDir: dir, DryRun: true})

	result, err := g.Generate(context.Background(), testModels())
	require.NoError(t, err)
	require.Len(t, result.Outputs, 2)
	assert.NotEmpty(t, result.Outputs[0].Contents)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_ModelErrorSkipsOnlyThatModel(t *testing.T) {
	dir := t.TempDir()
	models := testModels()
	// An empty path segment is model-fatal.
	models[0].Columns = append(models[0].Columns, lookml.Column{Name: "bad..path", Type: "STRING"})

	g := New(Config{OutputDir: dir})
	result, err := g.Generate(context.Background(), models)
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "orders", result.Skipped[0].Model)
	assert.Equal(t, lookml.KindMalformedColumnPath, result.Skipped[0].Kind)

	require.Len(t, result.Outputs, 1)
	assert.Equal(t, "users", result.Outputs[0].Model)

	_, err = os.Stat(filepath.Join(dir, "shop", "orders.view.lkml"))
	assert.True(t, os.IsNotExist(err), "skipped model leaves no file")
	_, err = os.Stat(filepath.Join(dir, "shop", "users.view.lkml"))
	assert.NoError(t, err)
}

func TestGenerate_SkipExplores(t *testing.T) {
	dir := t.TempDir()
	g := New(Config{OutputDir: dir, SkipExplores: true})

	result, err := g.Generate(context.Background(), testModels())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Explores)
	assert.NotContains(t, result.Outputs[0].Contents, "explore:")
	assert.Contains(t, result.Outputs[0].Contents, "view: orders {")
}

func TestGenerate_ViewPrefix(t *testing.T) {
	g := New(Config{OutputDir: t.TempDir(), ViewPrefix: "stg"})

	result, err := g.Generate(context.Background(), testModels())
	require.NoError(t, err)
	assert.Contains(t, result.Outputs[0].Contents, "view: stg_orders {")
	assert.Contains(t, result.Outputs[0].Contents, "explore: stg_orders {")
}

func TestGenerate_ManyModelsWithWorkers(t *testing.T) {
	dir := t.TempDir()
	var models []lookml.Model
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		models = append(models, lookml.Model{
			Name:         "model_" + name,
			RelationName: "p.s.model_" + name,
			Schema:       "s",
			Columns:      []lookml.Column{{Name: "id", Type: "INT64"}},
		})
	}

	g := New(Config{OutputDir: dir, Workers: 3})
	result, err := g.Generate(context.Background(), models)
	require.NoError(t, err)
	require.Len(t, result.Outputs, len(models))

	// Output order matches input order regardless of worker scheduling.
	for i, m := range models {
		assert.Equal(t, m.Name, result.Outputs[i].Model)
	}
}

func TestGenerate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := New(Config{OutputDir: t.TempDir()})
	_, err := g.Generate(ctx, testModels())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_DiagnosticsCollected(t *testing.T) {
	models := []lookml.Model{{
		Name:         "m",
		RelationName: "p.s.m",
		Columns:      []lookml.Column{{Name: "span", Type: "INTERVAL"}},
	}}

	g := New(Config{OutputDir: t.TempDir()})
	result, err := g.Generate(context.Background(), models)
	require.NoError(t, err)

	require.NotEmpty(t, result.Diags)
	assert.Contains(t, result.Diags[0].Message, "INTERVAL")
}

func TestOutputPath_NoSchema(t *testing.T) {
	g := New(Config{OutputDir: "out"})
	m := &lookml.Model{Name: "m"}
	assert.Equal(t, filepath.Join("out", "m.view.lkml"), g.outputPath(m))
}

func TestGenerate_CustomTemplates(t *testing.T) {
	g := New(Config{
		OutputDir: t.TempDir(),
		JoinSQL:   "CROSS JOIN UNNEST({{.ParentRef}}) {{.Alias}}",
	})

	result, err := g.Generate(context.Background(), testModels())
	require.NoError(t, err)
	assert.True(t, strings.Contains(result.Outputs[0].Contents,
		"CROSS JOIN UNNEST(${orders.items}) orders__items"))
}

func TestGenerate_InvalidTemplateFailsRun(t *testing.T) {
	g := New(Config{OutputDir: t.TempDir(), JoinSQL: "{{.Broken"})
	_, err := g.Generate(context.Background(), testModels())
	require.Error(t, err)
}
