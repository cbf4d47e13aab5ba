package dbt

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/leapstack-labs/lookgen/internal/lookml"
)

// ErrUnsupportedAdapter is returned when the manifest was compiled for a
// warehouse other than BigQuery.
var ErrUnsupportedAdapter = errors.New("unsupported dbt adapter")

// SupportedAdapter is the only adapter type lookgen generates LookML for.
const SupportedAdapter = "bigquery"

// LoadManifest reads and decodes a dbt manifest.json.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if m.Metadata.AdapterType != SupportedAdapter {
		return nil, fmt.Errorf("%w: %q (only %q is supported)",
			ErrUnsupportedAdapter, m.Metadata.AdapterType, SupportedAdapter)
	}
	return &m, nil
}

// LoadCatalog reads and decodes a dbt catalog.json.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return &c, nil
}

// Filter narrows which manifest models are generated.
type Filter struct {
	// Select keeps only the named models.
	Select []string
	// Tags keeps only models carrying at least one of the tags.
	Tags []string
	// ExposedOnly keeps only models referenced by a dbt exposure.
	ExposedOnly bool
}

// Parser merges manifest and catalog data into pipeline models.
type Parser struct {
	manifest *Manifest
	catalog  *Catalog
	logger   *slog.Logger
}

// NewParser returns a parser over loaded artifacts. A nil logger discards.
func NewParser(manifest *Manifest, catalog *Catalog, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{manifest: manifest, catalog: catalog, logger: logger}
}

// Models returns the filtered models of the manifest in deterministic
// (unique id) order, with catalog column types merged in. Models missing
// from the catalog are skipped with a warning: dbt has not run against the
// warehouse for them.
func (p *Parser) Models(f Filter) []lookml.Model {
	exposed := p.exposedModels()

	ids := make([]string, 0, len(p.manifest.Nodes))
	for id, node := range p.manifest.Nodes {
		if node.ResourceType == "model" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var models []lookml.Model
	for _, id := range ids {
		node := p.manifest.Nodes[id]
		if !p.keep(&node, f, exposed) {
			continue
		}

		catNode, ok := p.catalog.Nodes[id]
		if !ok {
			p.logger.Warn("model not present in catalog; skipping", "model", node.Name)
			continue
		}

		models = append(models, p.buildModel(&node, &catNode))
	}
	return models
}

func (p *Parser) keep(node *ManifestNode, f Filter, exposed map[string]bool) bool {
	if len(f.Select) > 0 {
		found := false
		for _, name := range f.Select {
			if strings.EqualFold(name, node.Name) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Tags) > 0 {
		found := false
		for _, want := range f.Tags {
			for _, tag := range node.Tags {
				if strings.EqualFold(want, tag) {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	if f.ExposedOnly && !exposed[strings.ToLower(node.Name)] {
		return false
	}
	return true
}

// exposedModels collects the lower-cased names of models referenced by any
// exposure.
func (p *Parser) exposedModels() map[string]bool {
	exposed := make(map[string]bool)
	for _, exp := range p.manifest.Exposures {
		for _, ref := range exp.Refs {
			exposed[strings.ToLower(ref.Name)] = true
		}
	}
	return exposed
}

// buildModel merges one manifest node with its catalog entry. Catalog
// columns define the ordered column list (BigQuery reports nested fields
// as dotted entries); manifest columns contribute descriptions, meta and
// constraints, matched case-insensitively.
func (p *Parser) buildModel(node *ManifestNode, catNode *CatalogNode) lookml.Model {
	manifestCols := make(map[string]*ManifestColumn, len(node.Columns))
	for key := range node.Columns {
		col := node.Columns[key]
		manifestCols[strings.ToLower(col.Name)] = &col
	}

	ordered := make([]CatalogColumn, 0, len(catNode.Columns))
	for _, col := range catNode.Columns {
		ordered = append(ordered, col)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Index != ordered[j].Index {
			return ordered[i].Index < ordered[j].Index
		}
		return ordered[i].Name < ordered[j].Name
	})

	columns := make([]lookml.Column, 0, len(ordered))
	for _, cat := range ordered {
		name := strings.ToLower(cat.Name)
		pt := ParseType(cat.Type)

		col := lookml.Column{
			Name:        name,
			Type:        pt.Type,
			Repeated:    pt.Repeated,
			Struct:      pt.Struct,
			InnerTypes:  pt.Inner,
			Description: cat.Comment,
		}
		if mc, ok := manifestCols[name]; ok {
			if mc.Description != "" {
				col.Description = mc.Description
			}
			col.Meta = lookerMeta(mc.Meta)
			for _, c := range mc.Constraints {
				if c.Type == "primary_key" {
					col.PrimaryKey = true
				}
			}
		}
		columns = append(columns, col)
	}

	return lookml.Model{
		Name:         strings.ToLower(node.Name),
		RelationName: strings.Trim(node.RelationName, "`"),
		Schema:       node.Schema,
		Description:  node.Description,
		Tags:         node.Tags,
		Columns:      columns,
		Meta:         lookerMeta(node.Meta),
	}
}

// lookerMeta extracts the looker block from a dbt meta mapping.
func lookerMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	if block, ok := meta["looker"].(map[string]any); ok {
		return block
	}
	return nil
}
