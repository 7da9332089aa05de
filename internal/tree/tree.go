// Package tree builds a hierarchical, expandable tree out of an unordered
// stream of flat, delimiter-conventioned keys, and flattens it back into
// rows for display.
package tree

import (
	"sort"
	"strings"

	"github.com/kvnav/kvnav/internal/store"
)

// Kind tags whether a Node corresponds to a real stored key (Leaf) or is a
// pure grouping node synthesized from a shared prefix (Folder). A node can
// be a Leaf and still own children — see Node.HasChildren.
type Kind int

const (
	KindFolder Kind = iota
	KindLeaf
)

// Node is one node of the key tree. Children are owned exclusively by
// their parent; there are no back-references, so a Node subtree can be
// handed around freely without aliasing the rest of the tree.
type Node struct {
	Name     string
	FullKey  string // valid iff HasKey is true
	HasKey   bool
	Kind     Kind
	Type     store.DataType // valid iff Kind == KindLeaf
	Children []*Node
	Expanded bool
	Loaded   bool // reserved for future lazy loading, see spec §9
}

// HasChildren reports whether the node owns at least one child, regardless
// of its Kind.
func (n *Node) HasChildren() bool { return len(n.Children) > 0 }

// Tree owns the forest of root nodes built from a key set and the
// delimiter set it was split with.
type Tree struct {
	Roots      []*Node
	Delimiters string
}

// Build constructs a tree from scratch out of the given keys, splitting
// each on any character in delimiters. Build is deterministic: any
// permutation of the same input set with the same delimiters yields an
// identical tree (P1 in spec §8).
func Build(items []store.KeyType, delimiters string) *Tree {
	t := &Tree{Delimiters: delimiters}
	for _, it := range items {
		t.Insert(it.Key.String(), it.Type)
	}
	t.sortAll()
	return t
}

// Insert adds or overwrites the key's entry in the tree. Later inserts of
// the same key overwrite the stored type (per spec §4.2, "later key wins").
// Callers that insert in bulk should call sortAll (via Build, or manually)
// once at the end rather than after every insert.
func (t *Tree) Insert(key string, typ store.DataType) {
	segments := split(key, t.Delimiters)
	if len(segments) == 0 {
		return
	}

	children := &t.Roots
	var cur *Node
	for i, seg := range segments {
		cur = findChild(*children, seg)
		if cur == nil {
			cur = &Node{Name: seg, Kind: KindFolder}
			*children = append(*children, cur)
		}
		if i == len(segments)-1 {
			cur.FullKey = key
			cur.HasKey = true
			cur.Kind = KindLeaf
			cur.Type = typ
		}
		children = &cur.Children
	}
}

func findChild(children []*Node, name string) *Node {
	for _, c := range children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// split partitions key into maximal non-empty segments on any rune in
// delims. Empty leading/trailing/consecutive delimiter runs collapse, so
// they never produce an empty segment.
func split(key, delims string) []string {
	if delims == "" {
		if key == "" {
			return nil
		}
		return []string{key}
	}
	return strings.FieldsFunc(key, func(r rune) bool {
		return strings.ContainsRune(delims, r)
	})
}

// sortAll orders every level of the tree by (folder-before-leaf, then
// lexicographic name) — spec §4.2 Sort, invariant 4.
func (t *Tree) sortAll() {
	sortLevel(t.Roots)
}

func sortLevel(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if (a.Kind == KindFolder) != (b.Kind == KindFolder) {
			return a.Kind == KindFolder
		}
		return a.Name < b.Name
	})
	for _, n := range nodes {
		sortLevel(n.Children)
	}
}

// Resort re-sorts the whole tree. Exposed so callers that mutate the tree
// outside of Build/Insert (none in this package today) can restore the
// sort invariant; Build and Insert-via-Build already call it.
func (t *Tree) Resort() { t.sortAll() }

// Toggle flips a folder's Expanded flag. Collapsing does not mutate
// children. Toggling a Leaf with children is permitted and acts as a
// folder toggle; toggling a pure leaf (no children) is a no-op.
func Toggle(n *Node) {
	if !n.HasChildren() {
		return
	}
	n.Expanded = !n.Expanded
}
