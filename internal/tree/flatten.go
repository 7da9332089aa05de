package tree

// Row is the linearized projection of one visible tree node, as consumed
// by the list widget. Path is the integer child-index path from a root,
// used to resolve the node back from a row index without holding a
// reference into the tree.
type Row struct {
	Depth      int
	Path       []int
	Name       string
	IsFolder   bool
	Expanded   bool
	ChildCount int
	FullKey    string
	HasFullKey bool
}

// Flatten walks the tree depth-first in sorted order, emitting one Row per
// visited node. A node's children are visited only if the node is
// expanded; collapsed nodes contribute only themselves (spec §4.2
// Flattening, P5 in §8).
func Flatten(t *Tree) []Row {
	var rows []Row
	var walk func(nodes []*Node, depth int, prefix []int)
	walk = func(nodes []*Node, depth int, prefix []int) {
		for i, n := range nodes {
			path := append(append([]int{}, prefix...), i)
			rows = append(rows, Row{
				Depth:      depth,
				Path:       path,
				Name:       n.Name,
				IsFolder:   n.Kind == KindFolder,
				Expanded:   n.Expanded,
				ChildCount: len(n.Children),
				FullKey:    n.FullKey,
				HasFullKey: n.HasKey,
			})
			if n.Expanded && n.HasChildren() {
				walk(n.Children, depth+1, path)
			}
		}
	}
	walk(t.Roots, 0, nil)
	return rows
}

// NodeAt resolves a Row's Path back to the *Node it was produced from.
func NodeAt(t *Tree, path []int) *Node {
	nodes := t.Roots
	var n *Node
	for _, idx := range path {
		if idx < 0 || idx >= len(nodes) {
			return nil
		}
		n = nodes[idx]
		nodes = n.Children
	}
	return n
}
