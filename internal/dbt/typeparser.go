package dbt

import (
	"regexp"
	"strings"
)

// BigQuery type strings arrive in forms like "INT64", "NUMERIC(10, 2)",
// "ARRAY<STRING>" or "ARRAY<STRUCT<sku STRING, qty INT64>>". ParseType
// reduces them to the classification the column tree needs.

var numericPrecision = regexp.MustCompile(`NUMERIC\(\d+,\s*\d+\)`)

// ParsedType is the breakdown of one BigQuery column type string.
type ParsedType struct {
	// Type is the normalized element type: the scalar type, or STRUCT for
	// composite columns. For arrays this describes the element, not the
	// array itself.
	Type string
	// Repeated is set for ARRAY<...> columns.
	Repeated bool
	// Struct is set when the element type is STRUCT.
	Struct bool
	// Inner lists the immediate fields of a STRUCT element as
	// "name TYPE" strings, or the single element type for ARRAY<scalar>.
	Inner []string
}

// NormalizeType maps BigQuery type aliases to their canonical form and
// strips parameterization: "INTEGER" becomes "INT64", "NUMERIC(10, 2)"
// becomes "NUMERIC", "ARRAY<...>" becomes "ARRAY".
func NormalizeType(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if i := strings.IndexByte(s, '<'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	switch s {
	case "INTEGER":
		return "INT64"
	case "FLOAT":
		return "FLOAT64"
	case "BOOL":
		return "BOOLEAN"
	}
	return s
}

// ParseType classifies a raw BigQuery type string.
func ParseType(raw string) ParsedType {
	s := numericPrecision.ReplaceAllString(strings.TrimSpace(raw), "NUMERIC")

	var pt ParsedType
	core := s
	if strings.HasPrefix(strings.ToUpper(s), "ARRAY<") {
		pt.Repeated = true
		core = innerContent(s)
	}

	if strings.HasPrefix(strings.ToUpper(core), "STRUCT<") {
		pt.Struct = true
		pt.Type = "STRUCT"
		for _, field := range splitTopLevel(innerContent(core)) {
			name, typ, ok := strings.Cut(field, " ")
			if !ok {
				continue
			}
			pt.Inner = append(pt.Inner, strings.ToLower(name)+" "+NormalizeType(typ))
		}
		return pt
	}

	pt.Type = NormalizeType(core)
	if pt.Repeated {
		pt.Inner = []string{pt.Type}
	}
	return pt
}

// innerContent extracts the content within the outermost angle brackets.
func innerContent(s string) string {
	open := strings.IndexByte(s, '<')
	close_ := strings.LastIndexByte(s, '>')
	if open < 0 || close_ <= open {
		return s
	}
	return s[open+1 : close_]
}

// splitTopLevel splits struct field definitions on commas that are not
// inside nested angle brackets.
func splitTopLevel(s string) []string {
	var (
		fields  []string
		current strings.Builder
		depth   int
	)
	for _, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				if f := strings.TrimSpace(current.String()); f != "" {
					fields = append(fields, f)
				}
				current.Reset()
				continue
			}
		}
		current.WriteRune(r)
	}
	if f := strings.TrimSpace(current.String()); f != "" {
		fields = append(fields, f)
	}
	return fields
}
