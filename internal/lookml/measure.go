package lookml

import (
	"fmt"
	"regexp"
	"strings"
)

// lookmlRef matches ${...} references inside a LookML SQL expression.
var lookmlRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// ApplyMeta enriches the synthesized views with the dbt author's meta
// annotations: dimension overrides (hidden, label, group label, value
// format), explore-level attributes, and measures. Measures are appended
// after all dimensions and dimension groups, in declaration order.
//
// A measure whose SQL references a column living in a different view scope
// than the measure itself is a configuration error (MeasureScopeMismatch)
// and fails the model; everything else degrades to diagnostics.
func ApplyMeta(res *Result, model *Model) error {
	a := &applier{res: res, model: model}

	if err := a.applyModelMeta(model.Meta); err != nil {
		return err
	}
	for i := range model.Columns {
		if err := a.applyColumnMeta(&model.Columns[i]); err != nil {
			return err
		}
	}
	return nil
}

type applier struct {
	res   *Result
	model *Model
}

func (a *applier) diag(column, msg string) {
	a.res.Diags = append(a.res.Diags, Diagnostic{
		Severity: SeverityWarning,
		Model:    a.model.Name,
		Column:   column,
		Message:  msg,
	})
}

// applyModelMeta handles the model-level looker block: explore and root
// view attributes plus model-level measures, which attach to the root view.
func (a *applier) applyModelMeta(raw map[string]any) error {
	var meta ModelMeta
	if err := decodeMeta(raw, &meta); err != nil {
		a.diag("", err.Error())
		return nil
	}
	for _, k := range unknownKeys(meta.Unknown) {
		a.diag("", fmt.Sprintf("unknown meta key %q ignored", k))
	}

	root := &a.res.Views[0]
	explore := a.res.Explore

	if meta.Label != "" {
		root.Label = meta.Label
		explore.Label = meta.Label
	}
	if meta.GroupLabel != "" {
		explore.GroupLabel = meta.GroupLabel
	}
	if meta.Description != "" {
		explore.Description = meta.Description
	}
	if v, ok := yesNo(meta.Hidden); ok {
		explore.Hidden = v
	}

	for i := range meta.Measures {
		if err := a.addMeasure(0, "", nil, &meta.Measures[i]); err != nil {
			return err
		}
	}
	return nil
}

// applyColumnMeta handles one column's looker block: attribute overrides on
// the generated dimension or dimension group, and column-level measures.
func (a *applier) applyColumnMeta(col *Column) error {
	if len(col.Meta) == 0 {
		return nil
	}
	var meta ColumnMeta
	if err := decodeMeta(col.Meta, &meta); err != nil {
		a.diag(col.Name, err.Error())
		return nil
	}
	for _, k := range unknownKeys(meta.Unknown) {
		a.diag(col.Name, fmt.Sprintf("unknown meta key %q ignored", k))
	}

	ref, ok := a.res.fields[col.Name]
	if !ok {
		// Struct columns have no field of their own; their meta (other
		// than measures) has nothing to attach to.
		if len(meta.Measures) > 0 {
			a.diag(col.Name, "measures declared on a column with no generated dimension")
		}
		return nil
	}

	attrs := a.fieldAttrs(ref)
	if attrs != nil {
		if v, yok := yesNo(meta.Hidden); yok {
			attrs["hidden"] = v
		}
		if meta.Label != "" {
			attrs["label"] = meta.Label
		}
		if meta.GroupLabel != "" {
			attrs["group_label"] = meta.GroupLabel
		}
		if meta.ValueFormatName != "" {
			attrs["value_format_name"] = meta.ValueFormatName
		}
	}

	for i := range meta.Measures {
		if err := a.addMeasure(ref.view, ref.name, &meta, &meta.Measures[i]); err != nil {
			return err
		}
	}
	return nil
}

// fieldAttrs returns the attribute map of the field a column mapped to.
// Every ISO helper dimension shares the column's path, so overrides land on
// the dimension group itself, matched by name.
func (a *applier) fieldAttrs(ref fieldRef) Attrs {
	view := &a.res.Views[ref.view]
	if ref.group {
		for i := range view.DimensionGroups {
			if view.DimensionGroups[i].Name == ref.name {
				return view.DimensionGroups[i].Attrs
			}
		}
		return nil
	}
	for i := range view.Dimensions {
		if view.Dimensions[i].Name == ref.name {
			return view.Dimensions[i].Attrs
		}
	}
	return nil
}

// addMeasure appends one declared measure to the view at viewIdx. fieldName
// is the dimension the measure was declared on ("" for model-level
// measures); colMeta carries the column's own meta for value format
// inheritance.
func (a *applier) addMeasure(viewIdx int, fieldName string, colMeta *ColumnMeta, m *MeasureMeta) error {
	for _, k := range unknownKeys(m.Unknown) {
		a.diag(fieldName, fmt.Sprintf("unknown measure key %q ignored", k))
	}

	if !measureTypes[m.Type] {
		a.diag(fieldName, fmt.Sprintf("unsupported measure type %q; measure skipped", m.Type))
		return nil
	}

	name := m.Name
	if name == "" {
		if fieldName == "" {
			a.diag(fieldName, "model-level measure with no name skipped")
			return nil
		}
		name = fmt.Sprintf("m_%s_%s", m.Type, fieldName)
	}

	sql := m.SQL
	if sql == "" {
		if fieldName != "" {
			sql = "${" + fieldName + "}"
		}
	} else {
		if err := a.checkMeasureScope(viewIdx, name, sql); err != nil {
			return err
		}
		if !strings.Contains(sql, "${") {
			a.diag(fieldName, fmt.Sprintf("measure %q SQL has no ${...} reference", name))
		}
	}

	attrs := Attrs{}
	if m.Label != "" {
		attrs["label"] = m.Label
	}
	if m.GroupLabel != "" {
		attrs["group_label"] = m.GroupLabel
	}
	switch {
	case m.ValueFormatName != "":
		attrs["value_format_name"] = m.ValueFormatName
	case colMeta != nil && colMeta.ValueFormatName != "":
		attrs["value_format_name"] = colMeta.ValueFormatName
	}
	if v, ok := yesNo(m.Hidden); ok {
		attrs["hidden"] = v
	}
	if m.Description != "" {
		attrs["description"] = m.Description
	} else if fieldName != "" {
		attrs["description"] = fmt.Sprintf("%s of %s", m.Type, fieldName)
	}

	view := &a.res.Views[viewIdx]
	view.Measures = append(view.Measures, Measure{
		Name:  name,
		Type:  m.Type,
		SQL:   sql,
		Attrs: attrs,
	})
	return nil
}

// checkMeasureScope verifies that every column path referenced by a
// measure's SQL resolves to a field in the same view the measure attaches
// to. References that are not known column paths (view-qualified fields,
// raw SQL) pass through untouched.
func (a *applier) checkMeasureScope(viewIdx int, measure, sql string) error {
	for _, match := range lookmlRef.FindAllStringSubmatch(sql, -1) {
		path := strings.ToLower(strings.TrimSpace(match[1]))
		ref, ok := a.res.fields[path]
		if !ok {
			continue
		}
		if ref.view != viewIdx {
			return NewModelError(a.model.Name, KindMeasureScopeMismatch,
				fmt.Errorf("measure %q references %q in view %q but is declared in view %q",
					measure, path, a.res.Views[ref.view].Name, a.res.Views[viewIdx].Name))
		}
	}
	return nil
}
