package lookml

// FieldKind says whether a mapped type becomes a dimension or a
// dimension_group.
type FieldKind int

const (
	KindDimension FieldKind = iota
	KindDimensionGroup
)

// MappedType is the result of mapping one BigQuery type to LookML.
type MappedType struct {
	Kind FieldKind
	// Type is the LookML type (number, string, yesno, time).
	Type string
	// Timeframes is set for dimension groups, in emit order.
	Timeframes []string
	// Attrs holds default LookML parameters for the mapped type, e.g.
	// hidden for GEOGRAPHY or convert_tz/datatype for time types.
	Attrs Attrs
	// Unmapped is set when the input type was not recognized and the
	// mapping degraded to string.
	Unmapped bool
}

// TypeMap maps BigQuery column types to LookML field descriptors. It is an
// immutable value passed into the synthesizer, so tests can substitute
// custom mappings. The zero value maps nothing; use DefaultTypeMap.
type TypeMap struct {
	entries map[string]MappedType
}

// NewTypeMap builds a TypeMap from an explicit mapping table. The table is
// copied; the caller's map is not retained.
func NewTypeMap(entries map[string]MappedType) TypeMap {
	m := make(map[string]MappedType, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return TypeMap{entries: m}
}

// Timeframe lists for time-typed columns.
var (
	dateTimeframes = []string{"date", "week", "month", "quarter", "year"}
	timeTimeframes = []string{"raw", "time", "date", "week", "month", "quarter", "year"}
)

// DefaultTypeMap returns the standard BigQuery to LookML mapping.
func DefaultTypeMap() TypeMap {
	number := MappedType{Kind: KindDimension, Type: "number"}
	str := MappedType{Kind: KindDimension, Type: "string"}
	yesno := MappedType{Kind: KindDimension, Type: "yesno"}
	hiddenStr := MappedType{Kind: KindDimension, Type: "string", Attrs: Attrs{"hidden": "yes"}}

	return NewTypeMap(map[string]MappedType{
		"INT64":      number,
		"INTEGER":    number,
		"FLOAT":      number,
		"FLOAT64":    number,
		"NUMERIC":    number,
		"BIGNUMERIC": number,
		"STRING":     str,
		"TIME":       str,
		"BOOL":       yesno,
		"BOOLEAN":    yesno,
		"GEOGRAPHY":  hiddenStr,
		"BYTES":      hiddenStr,
		"DATE": {
			Kind:       KindDimensionGroup,
			Type:       "time",
			Timeframes: dateTimeframes,
			Attrs:      Attrs{"convert_tz": "no", "datatype": "date"},
		},
		"TIMESTAMP": {
			Kind:       KindDimensionGroup,
			Type:       "time",
			Timeframes: timeTimeframes,
			Attrs:      Attrs{"convert_tz": "yes", "datatype": "timestamp"},
		},
		"DATETIME": {
			Kind:       KindDimensionGroup,
			Type:       "time",
			Timeframes: timeTimeframes,
			Attrs:      Attrs{"convert_tz": "yes", "datatype": "datetime"},
		},
	})
}

// Map resolves a BigQuery type to its LookML descriptor. It is total: an
// unrecognized type degrades to a string dimension with Unmapped set rather
// than failing, so generation is never blocked by new BigQuery types.
func (t TypeMap) Map(bigqueryType string) MappedType {
	if mt, ok := t.entries[bigqueryType]; ok {
		return mt
	}
	return MappedType{Kind: KindDimension, Type: "string", Unmapped: true}
}

// Known reports whether the type has an explicit mapping.
func (t TypeMap) Known(bigqueryType string) bool {
	_, ok := t.entries[bigqueryType]
	return ok
}
