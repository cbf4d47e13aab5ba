package dbt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixtures(t *testing.T) (*Manifest, *Catalog) {
	t.Helper()
	manifest, err := LoadManifest(filepath.Join("testdata", "manifest.json"))
	require.NoError(t, err)
	catalog, err := LoadCatalog(filepath.Join("testdata", "catalog.json"))
	require.NoError(t, err)
	return manifest, catalog
}

func TestLoadManifest(t *testing.T) {
	manifest, _ := loadFixtures(t)
	assert.Equal(t, "bigquery", manifest.Metadata.AdapterType)
	assert.Len(t, manifest.Nodes, 4)
	assert.Len(t, manifest.Exposures, 1)
}

func TestLoadManifest_UnsupportedAdapter(t *testing.T) {
	_, err := LoadManifest(filepath.Join("testdata", "manifest_postgres.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedAdapter)
	assert.Contains(t, err.Error(), "postgres")
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join("testdata", "nope.json"))
	require.Error(t, err)
}

func TestParser_Models(t *testing.T) {
	manifest, catalog := loadFixtures(t)
	p := NewParser(manifest, catalog, nil)

	models := p.Models(Filter{})
	// "stale" has no catalog entry, "country_codes" is a seed.
	require.Len(t, models, 2)
	assert.Equal(t, "orders", models[0].Name)
	assert.Equal(t, "users", models[1].Name)
}

func TestParser_BuildModel(t *testing.T) {
	manifest, catalog := loadFixtures(t)
	p := NewParser(manifest, catalog, nil)

	models := p.Models(Filter{Select: []string{"orders"}})
	require.Len(t, models, 1)
	m := models[0]

	assert.Equal(t, "proj.shop.orders", m.RelationName, "backticks are stripped")
	assert.Equal(t, "shop", m.Schema)
	assert.Equal(t, "One row per order", m.Description)
	assert.Equal(t, []string{"looker", "core"}, m.Tags)

	// Model meta is the looker block only.
	assert.Equal(t, "Customer Orders", m.Meta["label"])
	assert.NotContains(t, m.Meta, "owner")

	require.Len(t, m.Columns, 6)
	// Catalog index order.
	names := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "amount", "created_at", "items", "items.sku", "items.qty"}, names)

	id := m.Columns[0]
	assert.Equal(t, "INT64", id.Type)
	assert.True(t, id.PrimaryKey, "primary_key constraint carries over")
	assert.Equal(t, "Order id", id.Description, "manifest description wins")

	amount := m.Columns[1]
	assert.Equal(t, "NUMERIC", amount.Type)
	assert.Equal(t, "order total", amount.Description, "catalog comment fills in")
	assert.Equal(t, "usd", amount.Meta["value_format_name"])

	items := m.Columns[3]
	assert.Equal(t, "STRUCT", items.Type)
	assert.True(t, items.Repeated)
	assert.True(t, items.Struct)
}

func TestParser_ColumnNamesLowerCased(t *testing.T) {
	manifest, catalog := loadFixtures(t)
	p := NewParser(manifest, catalog, nil)

	models := p.Models(Filter{Select: []string{"users"}})
	require.Len(t, models, 1)
	assert.Equal(t, "id", models[0].Columns[0].Name)
}

func TestParser_FilterSelect(t *testing.T) {
	manifest, catalog := loadFixtures(t)
	p := NewParser(manifest, catalog, nil)

	models := p.Models(Filter{Select: []string{"Users"}})
	require.Len(t, models, 1, "select matches case-insensitively")
	assert.Equal(t, "users", models[0].Name)

	assert.Empty(t, p.Models(Filter{Select: []string{"missing"}}))
}

func TestParser_FilterTags(t *testing.T) {
	manifest, catalog := loadFixtures(t)
	p := NewParser(manifest, catalog, nil)

	models := p.Models(Filter{Tags: []string{"looker"}})
	require.Len(t, models, 1)
	assert.Equal(t, "orders", models[0].Name)

	assert.Empty(t, p.Models(Filter{Tags: []string{"nope"}}))
}

func TestParser_FilterExposedOnly(t *testing.T) {
	manifest, catalog := loadFixtures(t)
	p := NewParser(manifest, catalog, nil)

	models := p.Models(Filter{ExposedOnly: true})
	require.Len(t, models, 1)
	assert.Equal(t, "orders", models[0].Name)
}
