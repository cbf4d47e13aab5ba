// Package dbt reads the compiled artifacts of a dbt project (manifest.json
// and catalog.json) and merges them into the in-memory model structures the
// transformation pipeline consumes. Only the subset of dbt's schema the
// generator needs is decoded.
package dbt

// Manifest is a dbt manifest (the fields lookgen uses).
type Manifest struct {
	Metadata  ManifestMetadata        `json:"metadata"`
	Nodes     map[string]ManifestNode `json:"nodes"`
	Exposures map[string]Exposure     `json:"exposures"`
}

// ManifestMetadata carries manifest-level metadata.
type ManifestMetadata struct {
	AdapterType string `json:"adapter_type"`
}

// ManifestNode is one node of the manifest; models are the only resource
// type the generator acts on.
type ManifestNode struct {
	Name         string                    `json:"name"`
	ResourceType string                    `json:"resource_type"`
	RelationName string                    `json:"relation_name"`
	Schema       string                    `json:"schema"`
	Description  string                    `json:"description"`
	Path         string                    `json:"path"`
	Tags         []string                  `json:"tags"`
	Columns      map[string]ManifestColumn `json:"columns"`
	Meta         map[string]any            `json:"meta"`
}

// ManifestColumn is the author-maintained column entry of a model schema.
type ManifestColumn struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	DataType    string         `json:"data_type"`
	Meta        map[string]any `json:"meta"`
	Constraints []Constraint   `json:"constraints"`
}

// Constraint is a dbt column constraint.
type Constraint struct {
	Type string `json:"type"`
}

// Exposure is a dbt exposure; used to filter generation down to models a
// BI surface actually depends on.
type Exposure struct {
	Name string        `json:"name"`
	Refs []ExposureRef `json:"refs"`
}

// ExposureRef names a model an exposure depends on.
type ExposureRef struct {
	Name string `json:"name"`
}

// Catalog is a dbt catalog: the warehouse's view of each relation,
// including the flattened nested column list BigQuery reports.
type Catalog struct {
	Nodes map[string]CatalogNode `json:"nodes"`
}

// CatalogNode is one cataloged relation.
type CatalogNode struct {
	Metadata CatalogMetadata          `json:"metadata"`
	Columns  map[string]CatalogColumn `json:"columns"`
}

// CatalogMetadata identifies the cataloged relation.
type CatalogMetadata struct {
	Type   string `json:"type"`
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

// CatalogColumn is one column as reported by BigQuery. Nested STRUCT fields
// appear as separate entries with dotted names; Index preserves the
// table's column order.
type CatalogColumn struct {
	Type    string `json:"type"`
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Comment string `json:"comment"`
}
