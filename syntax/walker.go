package syntax

import (
	"fmt"
	"strings"
)

// WalkFunc is called for each node a walk visits. It may descend by calling
// the walker's Walk methods.
type WalkFunc func(w *Walker, index int, n Node)

// Walker is scoped to one node of a tree.
type Walker struct {
	tree  *Tree
	index int
	depth int
}

// Walk calls fn for each top-level node of t.
func Walk(t *Tree, fn WalkFunc) {
	for i, n := range t.Root().All() {
		fn(&Walker{tree: t, index: i}, i, n)
	}
}

// Tree returns the walked tree.
func (w *Walker) Tree() *Tree {
	return w.tree
}

// Index is the slot of the node the walker is scoped to.
func (w *Walker) Index() int {
	return w.index
}

// Depth counts the ancestors of the current node.
func (w *Walker) Depth() int {
	return w.depth
}

// WalkGroup calls fn for each direct child in group g of the current node.
func (w *Walker) WalkGroup(g int, fn WalkFunc) {
	node := w.tree.Nodes[w.index]
	for i, n := range w.tree.Children(w.index, node.Group(g)).All() {
		fn(&Walker{tree: w.tree, index: i, depth: w.depth + 1}, i, n)
	}
}

// WalkChildren calls fn for the direct children of every group in order.
func (w *Walker) WalkChildren(fn WalkFunc) {
	for g := 0; g < w.tree.Nodes[w.index].GroupCount(); g++ {
		w.WalkGroup(g, fn)
	}
}

// Represent renders t as one `Kind("text")` line per node, indented by depth.
func Represent(t *Tree) string {
	var b strings.Builder
	var visit WalkFunc
	visit = func(w *Walker, index int, n Node) {
		b.WriteString(strings.Repeat("  ", w.Depth()))
		if n.Kind == Error {
			fmt.Fprintf(&b, "Error[%s]", n.Code)
		} else {
			b.WriteString(n.Kind.String())
		}
		fmt.Fprintf(&b, "(\"%s\")\n", escape(t.DirectText(index)))
		w.WalkChildren(visit)
	}
	Walk(t, visit)
	return b.String()
}

func escape(s string) string {
	return strings.NewReplacer("\r", "", "\n", `\n`).Replace(s)
}
