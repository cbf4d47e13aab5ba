package lookml

import (
	"fmt"
	"strings"
)

// RootID is the arena index of the synthetic root node.
const RootID = 0

// ColumnNode is one node in a model's column tree. Nodes live in a flat
// arena indexed by integer id with explicit parent/child links, so deeply
// nested BigQuery schemas never grow the call stack.
type ColumnNode struct {
	ID int
	// Segment is the last path segment ("sku" for "order.items.sku").
	Segment string
	// Path is the full dotted path. Empty for the root.
	Path string
	// Column is nil for the root and for intermediate STRUCT segments that
	// never appear as their own column entry.
	Column *Column
	// Repeated marks the root of a nested view boundary when the node also
	// has children; a repeated leaf is an array of scalars.
	Repeated bool
	// Struct marks nodes whose children are sub-columns.
	Struct   bool
	Parent   int
	Children []int
}

// Leaf reports whether the node has no sub-columns.
func (n *ColumnNode) Leaf() bool { return len(n.Children) == 0 }

// Boundary reports whether the node opens a new nested view scope: a
// repeated struct. Repeated scalars stay dimensions of the enclosing view.
func (n *ColumnNode) Boundary() bool {
	return n.ID != RootID && n.Repeated && (n.Struct || len(n.Children) > 0)
}

// Tree is the column tree for one model: an arena of ColumnNodes rooted at
// RootID, plus the diagnostics recorded while building it.
type Tree struct {
	nodes []ColumnNode
	index map[string]int // dotted path -> node id
	Diags []Diagnostic
}

// Node returns the node with the given id.
func (t *Tree) Node(id int) *ColumnNode { return &t.nodes[id] }

// Root returns the synthetic root node.
func (t *Tree) Root() *ColumnNode { return &t.nodes[RootID] }

// Len returns the number of nodes including the root.
func (t *Tree) Len() int { return len(t.nodes) }

// Lookup returns the node for a dotted path, if present.
func (t *Tree) Lookup(path string) (*ColumnNode, bool) {
	id, ok := t.index[path]
	if !ok {
		return nil, false
	}
	return &t.nodes[id], true
}

// PathOf reconstructs the dotted path of a node by joining ancestor
// segments. For any node built from a column this equals Column.Name.
func (t *Tree) PathOf(id int) string {
	var segs []string
	for cur := id; cur != RootID; cur = t.nodes[cur].Parent {
		segs = append(segs, t.nodes[cur].Segment)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, ".")
}

// BuildTree reconstructs the nesting tree from a model's flat column list.
// Column order is preserved via insertion order of first occurrence.
//
// Classification conflicts (two columns sharing a path prefix but
// disagreeing on repeated/struct) resolve in favor of the stricter
// classification, repeated over struct over scalar, with a diagnostic.
// Duplicate paths are last-write-wins with a diagnostic. A path with an
// empty segment is model-fatal.
func BuildTree(model string, columns []Column) (*Tree, error) {
	t := &Tree{
		nodes: []ColumnNode{{ID: RootID, Parent: -1, Struct: true}},
		index: make(map[string]int),
	}

	for i := range columns {
		col := &columns[i]
		segs := strings.Split(col.Name, ".")
		for _, s := range segs {
			if s == "" {
				return nil, NewModelError(model, KindMalformedColumnPath,
					fmt.Errorf("column path %q has an empty segment", col.Name))
			}
		}

		parent := RootID
		for depth, seg := range segs {
			path := strings.Join(segs[:depth+1], ".")
			last := depth == len(segs)-1

			id, exists := t.index[path]
			if !exists {
				id = len(t.nodes)
				t.nodes = append(t.nodes, ColumnNode{
					ID:      id,
					Segment: seg,
					Path:    path,
					Parent:  parent,
					// Intermediate segments with no column entry of their
					// own are synthesized struct nodes.
					Struct: !last,
				})
				t.index[path] = id
				t.nodes[parent].Children = append(t.nodes[parent].Children, id)
			}

			if last {
				t.attach(model, id, col)
			} else if !t.nodes[id].Struct {
				// A previously scalar node turned out to have children.
				t.diag(model, path, "column classified as scalar but has nested sub-columns; treating as struct")
				t.nodes[id].Struct = true
			}
			parent = id
		}
	}

	return t, nil
}

// attach binds a column to its node, merging classification when the node
// was already created (as an intermediate or by a duplicate entry).
func (t *Tree) attach(model string, id int, col *Column) {
	n := &t.nodes[id]
	duplicate := n.Column != nil

	if duplicate {
		t.diag(model, col.Name, "duplicate column path; last definition wins")
	}
	n.Column = col

	switch {
	case n.Struct && !col.Struct && len(n.Children) > 0:
		t.diag(model, col.Name, "column classified as scalar but has nested sub-columns; treating as struct")
	case col.Struct:
		n.Struct = true
	}

	// Repeated is sticky: once any entry for the path says repeated, the
	// node stays repeated even if a later duplicate disagrees.
	if duplicate && n.Repeated != col.Repeated {
		t.diag(model, col.Name, "conflicting repeated classification; stricter classification wins")
	}
	n.Repeated = n.Repeated || col.Repeated
}

func (t *Tree) diag(model, column, msg string) {
	t.Diags = append(t.Diags, Diagnostic{
		Severity: SeverityWarning,
		Model:    model,
		Column:   column,
		Message:  msg,
	})
}
