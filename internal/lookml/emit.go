package lookml

import (
	"sort"
	"strings"
)

// The emitter serializes views and explores into LookML text. Output is
// byte-identical for identical input: block parameters are written as name,
// then SQL-bearing parameters, then type, then everything else
// alphabetically. Values are stored unescaped and escaped exactly once
// here, so re-emitting never double-escapes.

// quotedParams are LookML parameters whose values are quoted strings.
var quotedParams = map[string]bool{
	"description": true,
	"label":       true,
	"group_label": true,
}

const indent = "  "

// EmitViews serializes a model's views, root first, separated by blank
// lines.
func EmitViews(views []ViewDef) string {
	var b strings.Builder
	for i := range views {
		if i > 0 {
			b.WriteString("\n")
		}
		emitView(&b, &views[i])
	}
	return b.String()
}

// EmitExplore serializes the explore definition for a model.
func EmitExplore(e *ExploreDef) string {
	var b strings.Builder
	emitExplore(&b, e)
	return b.String()
}

// EmitFile serializes one model's complete LookML file: the explore (when
// present) followed by every view.
func EmitFile(views []ViewDef, explore *ExploreDef) string {
	var b strings.Builder
	if explore != nil {
		emitExplore(&b, explore)
		b.WriteString("\n")
	}
	for i := range views {
		if i > 0 || explore != nil {
			b.WriteString("\n")
		}
		emitView(&b, &views[i])
	}
	return b.String()
}

func emitView(b *strings.Builder, v *ViewDef) {
	b.WriteString("view: " + v.Name + " {\n")
	if v.SQLTableName != "" {
		b.WriteString(indent + "sql_table_name: `" + v.SQLTableName + "` ;;\n")
	}
	if v.Label != "" {
		writeParam(b, 1, "label", v.Label)
	}

	for i := range v.Dimensions {
		b.WriteString("\n")
		emitField(b, "dimension", v.Dimensions[i].Name, v.Dimensions[i].SQL,
			v.Dimensions[i].Type, nil, v.Dimensions[i].Attrs)
	}
	for i := range v.DimensionGroups {
		g := &v.DimensionGroups[i]
		b.WriteString("\n")
		emitField(b, "dimension_group", g.Name, g.SQL, g.Type, g.Timeframes, g.Attrs)
	}
	for i := range v.Measures {
		b.WriteString("\n")
		emitField(b, "measure", v.Measures[i].Name, v.Measures[i].SQL,
			v.Measures[i].Type, nil, v.Measures[i].Attrs)
	}
	b.WriteString("}\n")
}

// emitField writes one dimension/dimension_group/measure block.
func emitField(b *strings.Builder, kind, name, sql, typ string, timeframes []string, attrs Attrs) {
	b.WriteString(indent + kind + ": " + name + " {\n")
	if sql != "" {
		b.WriteString(indent + indent + "sql: " + sql + " ;;\n")
	}
	if typ != "" {
		b.WriteString(indent + indent + "type: " + typ + "\n")
	}

	keys := make([]string, 0, len(attrs)+1)
	for k := range attrs {
		keys = append(keys, k)
	}
	if len(timeframes) > 0 {
		keys = append(keys, "timeframes")
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "timeframes" && len(timeframes) > 0 {
			// Timeframes stay an ordered list; order is meaningful.
			b.WriteString(indent + indent + "timeframes: [" + strings.Join(timeframes, ", ") + "]\n")
			continue
		}
		writeParam(b, 2, k, attrs[k])
	}
	b.WriteString(indent + "}\n")
}

func emitExplore(b *strings.Builder, e *ExploreDef) {
	b.WriteString("explore: " + e.Name + " {\n")
	if e.Description != "" {
		writeParam(b, 1, "description", e.Description)
	}
	if e.GroupLabel != "" {
		writeParam(b, 1, "group_label", e.GroupLabel)
	}
	if e.Hidden != "" {
		b.WriteString(indent + "hidden: " + e.Hidden + "\n")
	}
	if e.Label != "" {
		writeParam(b, 1, "label", e.Label)
	}

	for i := range e.Joins {
		b.WriteString("\n")
		emitJoin(b, &e.Joins[i])
	}
	b.WriteString("}\n")
}

func emitJoin(b *strings.Builder, j *JoinSpec) {
	b.WriteString(indent + "join: " + j.ChildView + " {\n")
	b.WriteString(indent + indent + "sql: " + j.SQL + " ;;\n")
	if j.Type != "" {
		b.WriteString(indent + indent + "type: " + j.Type + "\n")
	}
	b.WriteString(indent + indent + "relationship: " + j.Relationship + "\n")
	if len(j.RequiredJoins) > 0 {
		b.WriteString(indent + indent + "required_joins: [" + strings.Join(j.RequiredJoins, ", ") + "]\n")
	}
	b.WriteString(indent + "}\n")
}

// writeParam writes "key: value", quoting and escaping string-valued
// parameters.
func writeParam(b *strings.Builder, depth int, key, value string) {
	b.WriteString(strings.Repeat(indent, depth) + key + ": ")
	if quotedParams[key] {
		b.WriteString(`"` + escape(value) + `"`)
	} else {
		b.WriteString(value)
	}
	b.WriteString("\n")
}

// escape protects quotes and backslashes in quoted LookML strings.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
