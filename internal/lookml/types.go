// Package lookml transforms parsed dbt model metadata into LookML view and
// explore definitions. The package is pure: it performs no I/O and holds no
// process-wide state, so models can be transformed concurrently.
package lookml

// Column is one column of a dbt model after manifest and catalog data have
// been merged. Name is the dotted path within the model ("order.items.sku").
// Columns are immutable once parsed.
type Column struct {
	// Name is the dotted column path, lower-cased.
	Name string
	// Type is the normalized outer BigQuery type (INT64, STRING, STRUCT, ...).
	Type string
	// Repeated marks ARRAY columns (of scalars or structs).
	Repeated bool
	// Struct marks columns whose element type is STRUCT/RECORD.
	Struct bool
	// InnerTypes holds the parsed element types for composite columns.
	// For ARRAY<scalar> it contains exactly one unnamed entry.
	InnerTypes []string
	// PrimaryKey is set when the dbt column carries a primary_key constraint.
	PrimaryKey bool
	// Description is the dbt column description.
	Description string
	// Meta is the raw looker meta block attached by the dbt author.
	Meta map[string]any
}

// Scalar reports whether the column is a plain leaf value (not a struct).
func (c Column) Scalar() bool { return !c.Struct }

// Model is the in-memory input to the transformation pipeline: one dbt model
// with its ordered column list and model-level meta block.
type Model struct {
	Name         string
	RelationName string
	Schema       string
	Description  string
	Tags         []string
	// Columns in manifest order. Order is preserved through the whole
	// pipeline so output is deterministic.
	Columns []Column
	// Meta is the raw model-level looker meta block.
	Meta map[string]any
}

// Attrs holds free-form LookML parameters for a field. Keys are emitted in
// deterministic order by the emitter; values are emitted verbatim except
// quoted strings, which are escaped exactly once at emit time.
type Attrs map[string]string

// clone returns a copy so enrichment never aliases shared state.
func (a Attrs) clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Dimension is a LookML dimension.
type Dimension struct {
	Name string
	// Type may be empty for typeless dimensions.
	Type string
	SQL  string
	// ColumnPath is the dotted path of the source column, used to resolve
	// measure references. Not emitted.
	ColumnPath string
	Attrs      Attrs
}

// DimensionGroup is a LookML dimension_group for time-typed columns.
type DimensionGroup struct {
	Name       string
	Type       string
	SQL        string
	Timeframes []string
	ColumnPath string
	Attrs      Attrs
}

// Measure is a LookML measure.
type Measure struct {
	Name  string
	Type  string
	SQL   string
	Attrs Attrs
}

// JoinSpec describes how a nested view joins back to its parent. It exists
// only for non-root views and is never mutated after synthesis.
type JoinSpec struct {
	ChildView    string
	ParentView   string
	Relationship string
	// Type is the LookML join type; always left_outer for UNNEST joins.
	Type string
	SQL  string
	// RequiredJoins lists intermediate views that must be joined first when
	// the nested view sits more than one repeated boundary deep.
	RequiredJoins []string
}

// ViewDef is one LookML view: the root view of a model or one nested view
// per repeated struct boundary.
type ViewDef struct {
	Name  string
	Label string
	// SQLTableName is set on the root view only.
	SQLTableName    string
	Dimensions      []Dimension
	DimensionGroups []DimensionGroup
	Measures        []Measure
	// Join is nil for the root view.
	Join *JoinSpec
}

// Root reports whether this is the model's base view.
func (v *ViewDef) Root() bool { return v.Join == nil }

// ExploreDef is the LookML explore joining a model's root view to every
// nested view, in view creation order.
type ExploreDef struct {
	Name        string
	Label       string
	GroupLabel  string
	Description string
	Hidden      string
	Joins       []JoinSpec
}
