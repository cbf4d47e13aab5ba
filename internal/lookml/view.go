package lookml

import (
	"fmt"
	"strings"
	"text/template"
)

// Default SQL templates. BigQuery dialect specifics live here rather than in
// the traversal logic so they can be swapped without touching the
// transformation (and so tests can substitute their own).
const (
	// DefaultJoinSQL is the UNNEST join condition for nested views.
	DefaultJoinSQL = "LEFT JOIN UNNEST({{.ParentRef}}) AS {{.Alias}}"
	// DefaultArraySQL renders a repeated scalar column as a single value.
	DefaultArraySQL = "(SELECT STRING_AGG(CAST(item AS STRING), ', ') FROM UNNEST({{.Ref}}) AS item)"
)

// joinSQLData is the payload for the join SQL template.
type joinSQLData struct {
	// ParentRef is the LookML reference to the repeated field in the
	// enclosing view, e.g. "${orders.items}".
	ParentRef string
	// Alias is the nested view name.
	Alias string
}

// arraySQLData is the payload for the repeated-scalar SQL template.
type arraySQLData struct {
	// Ref is the SQL reference to the array column, e.g. "${TABLE}.tags".
	Ref string
}

// maxNameSuffix bounds deterministic collision resolution.
const maxNameSuffix = 1000

// Options configures view synthesis.
type Options struct {
	// ViewPrefix, when set, is prepended to generated view and explore
	// names as "<prefix>_<model>".
	ViewPrefix string
	// Types is the BigQuery to LookML mapping. Zero value means
	// DefaultTypeMap.
	Types TypeMap
	// JoinSQL and ArraySQL override the default SQL templates.
	JoinSQL  string
	ArraySQL string
}

// fieldRef locates a generated field: which view owns it and its LookML name.
type fieldRef struct {
	view  int
	name  string
	group bool
}

// Result is the output of Synthesize: all views for one model (root first,
// then nested views in depth-first creation order) plus the explore.
type Result struct {
	Views   []ViewDef
	Explore *ExploreDef
	Diags   []Diagnostic

	fields map[string]fieldRef
}

// FieldFor returns the view index and LookML field name a column path was
// mapped to.
func (r *Result) FieldFor(path string) (viewIdx int, field string, ok bool) {
	ref, ok := r.fields[path]
	if !ok {
		return 0, "", false
	}
	return ref.view, ref.name, true
}

// synthesizer carries traversal state for one model.
type synthesizer struct {
	tree    *Tree
	model   *Model
	types   TypeMap
	joinTpl *template.Template
	arrTpl  *template.Template

	result    *Result
	usedNames map[string]bool
	// basePath[i] is the array-root path of view i ("" for the root view).
	basePath []string
	// scopeParent[i] is the view index view i joins into (root: -1).
	scopeParent []int
	rootLabel   string
}

// Synthesize walks the column tree depth-first, pre-order, and produces one
// ViewDef per view boundary plus the ExploreDef. The root view is always
// present, even for a model with no columns. The only failure modes are
// model-fatal: an unresolvable view-name collision or a broken SQL template.
func Synthesize(tree *Tree, model *Model, opts Options) (*Result, error) {
	types := opts.Types
	if types.entries == nil {
		types = DefaultTypeMap()
	}

	joinSQL := opts.JoinSQL
	if joinSQL == "" {
		joinSQL = DefaultJoinSQL
	}
	arraySQL := opts.ArraySQL
	if arraySQL == "" {
		arraySQL = DefaultArraySQL
	}
	joinTpl, err := template.New("join_sql").Parse(joinSQL)
	if err != nil {
		return nil, fmt.Errorf("invalid join SQL template: %w", err)
	}
	arrTpl, err := template.New("array_sql").Parse(arraySQL)
	if err != nil {
		return nil, fmt.Errorf("invalid array SQL template: %w", err)
	}

	rootName := sanitizePath(model.Name)
	if opts.ViewPrefix != "" {
		rootName = sanitizeSegment(opts.ViewPrefix) + "_" + rootName
	}

	s := &synthesizer{
		tree:    tree,
		model:   model,
		types:   types,
		joinTpl: joinTpl,
		arrTpl:  arrTpl,
		result: &Result{
			fields: make(map[string]fieldRef),
		},
		usedNames:   map[string]bool{rootName: true},
		rootLabel:   titleLabel(model.Name),
		basePath:    []string{""},
		scopeParent: []int{-1},
	}

	s.result.Views = append(s.result.Views, ViewDef{
		Name:         rootName,
		Label:        s.rootLabel,
		SQLTableName: model.RelationName,
	})

	if err := s.walk(RootID, 0); err != nil {
		return nil, err
	}

	explore := &ExploreDef{
		Name:   rootName,
		Label:  s.rootLabel,
		Hidden: "yes",
	}
	for i := 1; i < len(s.result.Views); i++ {
		explore.Joins = append(explore.Joins, *s.result.Views[i].Join)
	}
	s.result.Explore = explore

	return s.result, nil
}

// walk visits node's children in manifest order, attaching fields to the
// view at index scope and opening a new view at every repeated boundary.
func (s *synthesizer) walk(nodeID, scope int) error {
	node := s.tree.Node(nodeID)
	for _, childID := range node.Children {
		child := s.tree.Node(childID)

		switch {
		case child.Boundary():
			childScope, err := s.openView(child, scope)
			if err != nil {
				return err
			}
			if err := s.walk(childID, childScope); err != nil {
				return err
			}
		case child.Leaf():
			if child.Column != nil {
				s.addField(child, scope)
			}
		default:
			// Non-repeated struct: its leaves belong to the current view.
			if err := s.walk(childID, scope); err != nil {
				return err
			}
		}
	}
	return nil
}

// openView creates the nested view for a repeated struct boundary together
// with its JoinSpec back to the enclosing view.
func (s *synthesizer) openView(node *ColumnNode, scope int) (int, error) {
	name, err := s.uniqueViewName(s.result.Views[0].Name + "__" + sanitizePath(node.Path))
	if err != nil {
		return 0, err
	}

	parent := &s.result.Views[scope]
	rel := s.relPath(node.Path, scope)

	var sql strings.Builder
	data := joinSQLData{
		ParentRef: "${" + parent.Name + "." + sanitizePath(rel) + "}",
		Alias:     name,
	}
	if err := s.joinTpl.Execute(&sql, data); err != nil {
		return 0, fmt.Errorf("join SQL template: %w", err)
	}

	join := &JoinSpec{
		ChildView:     name,
		ParentView:    parent.Name,
		Relationship:  "one_to_many",
		Type:          "left_outer",
		SQL:           sql.String(),
		RequiredJoins: s.requiredJoins(scope),
	}

	idx := len(s.result.Views)
	s.result.Views = append(s.result.Views, ViewDef{
		Name:  name,
		Label: s.rootLabel + ": " + titleLabel(node.Path),
		Join:  join,
	})
	s.basePath = append(s.basePath, node.Path)
	s.scopeParent = append(s.scopeParent, scope)
	return idx, nil
}

// requiredJoins lists the nested views between the root and the given
// scope, outermost first. Joining a deeply nested view requires its
// enclosing UNNEST aliases to be in play first.
func (s *synthesizer) requiredJoins(scope int) []string {
	var names []string
	for cur := scope; cur > 0; cur = s.scopeParent[cur] {
		names = append(names, s.result.Views[cur].Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

// uniqueViewName resolves sanitization collisions by appending a numeric
// suffix, deterministically ordered by first occurrence.
func (s *synthesizer) uniqueViewName(base string) (string, error) {
	if !s.usedNames[base] {
		s.usedNames[base] = true
		return base, nil
	}
	for n := 2; n <= maxNameSuffix; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if !s.usedNames[candidate] {
			s.result.Diags = append(s.result.Diags, Diagnostic{
				Severity: SeverityWarning,
				Model:    s.model.Name,
				Message:  fmt.Sprintf("view name %q already taken; using %q", base, candidate),
			})
			s.usedNames[candidate] = true
			return candidate, nil
		}
	}
	return "", NewModelError(s.model.Name, KindViewNameCollision,
		fmt.Errorf("no free name for view %q", base))
}

// relPath strips the owning view's array-root prefix from a column path.
func (s *synthesizer) relPath(path string, scope int) string {
	base := s.basePath[scope]
	if base == "" {
		return path
	}
	return strings.TrimPrefix(path, base+".")
}

// sqlRef builds the SQL reference for a column within its view. Root-view
// fields are always table-qualified. Inside an UNNEST alias a direct child
// is referenced bare; deeper fields under non-repeated structs keep the
// table-qualified dotted form.
func (s *synthesizer) sqlRef(rel string, scope int) string {
	if scope != 0 && !strings.Contains(rel, ".") {
		return rel
	}
	return "${TABLE}." + rel
}

// addField turns a leaf column into a dimension or dimension group of the
// view at index scope.
func (s *synthesizer) addField(node *ColumnNode, scope int) {
	col := node.Column
	view := &s.result.Views[scope]
	rel := s.relPath(node.Path, scope)
	name := sanitizePath(rel)
	ref := s.sqlRef(rel, scope)

	mt := s.types.Map(col.Type)
	if mt.Unmapped {
		s.result.Diags = append(s.result.Diags, Diagnostic{
			Severity: SeverityWarning,
			Model:    s.model.Name,
			Column:   col.Name,
			Message:  fmt.Sprintf("unmapped BigQuery type %q; defaulting to string", col.Type),
		})
	}

	attrs := mt.Attrs.clone()
	if attrs == nil {
		attrs = Attrs{}
	}
	if col.Description != "" {
		attrs["description"] = col.Description
	}
	if col.PrimaryKey {
		attrs["primary_key"] = "yes"
	}

	if mt.Kind == KindDimensionGroup {
		s.addDimensionGroup(view, scope, col, node.Path, name, ref, mt, attrs)
		return
	}

	sql := ref
	if col.Repeated {
		// Array of scalars: hidden dimension rendered through the
		// UNNEST-safe accessor template.
		var b strings.Builder
		if err := s.arrTpl.Execute(&b, arraySQLData{Ref: ref}); err == nil {
			sql = b.String()
		}
		attrs["hidden"] = "yes"
		attrs["tags"] = `["array"]`
	}

	view.Dimensions = append(view.Dimensions, Dimension{
		Name:       name,
		Type:       mt.Type,
		SQL:        sql,
		ColumnPath: node.Path,
		Attrs:      attrs,
	})
	s.result.fields[node.Path] = fieldRef{view: scope, name: name}
}

// addDimensionGroup emits a time dimension group, plus ISO year/week number
// dimensions for DATE columns.
func (s *synthesizer) addDimensionGroup(view *ViewDef, scope int, col *Column, path, name, ref string, mt MappedType, attrs Attrs) {
	groupName := strings.TrimSuffix(name, "_date")
	if groupName == "" {
		groupName = name
	}
	attrs["label"] = titleLabel(groupName)
	attrs["group_label"] = titleLabel(name)

	timeframes := make([]string, len(mt.Timeframes))
	copy(timeframes, mt.Timeframes)

	view.DimensionGroups = append(view.DimensionGroups, DimensionGroup{
		Name:       groupName,
		Type:       mt.Type,
		SQL:        ref,
		Timeframes: timeframes,
		ColumnPath: path,
		Attrs:      attrs,
	})
	s.result.fields[path] = fieldRef{view: scope, name: groupName, group: true}

	if attrs["datatype"] != "date" {
		return
	}
	groupLabel := attrs["group_label"]
	for _, iso := range []struct{ suffix, part string }{
		{"iso_year", "isoyear"},
		{"iso_week_of_year", "isoweek"},
	} {
		view.Dimensions = append(view.Dimensions, Dimension{
			Name:       name + "_" + iso.suffix,
			Type:       "number",
			SQL:        fmt.Sprintf("Extract(%s from %s)", iso.part, ref),
			ColumnPath: path,
			Attrs: Attrs{
				"label":             titleLabel(groupName) + " " + titleLabel(iso.suffix),
				"group_label":       groupLabel,
				"value_format_name": "id",
				"description":       fmt.Sprintf("%s of %s", strings.ReplaceAll(iso.suffix, "_", " "), col.Name),
			},
		})
	}
}
