package syntax

import (
	"iter"
	"strings"

	"alumi/token"
)

// Tree pairs the node array of a parse with the source it was parsed from.
type Tree struct {
	Nodes  []Node
	Source []rune
	Tokens []token.Token
}

// NewTree takes ownership of nodes.
func NewTree(nodes []Node, source []rune, tokens []token.Token) *Tree {
	return &Tree{Nodes: nodes, Source: source, Tokens: tokens}
}

// NodeView iterates the siblings of one run, stepping over each sibling's
// descendants.
type NodeView struct {
	nodes []Node
	first int
	end   int
}

// Root views the top-level nodes.
func (t *Tree) Root() NodeView {
	return NodeView{nodes: t.Nodes, first: 0, end: len(t.Nodes)}
}

// Children views the direct children in group g of the node at index.
func (t *Tree) Children(index int, g ChildGroup) NodeView {
	first := index + 1 + g.Skip
	end := first + g.Count
	if end > len(t.Nodes) {
		end = len(t.Nodes)
	}
	return NodeView{nodes: t.Nodes, first: first, end: end}
}

// All yields the index and node of every sibling in the view.
func (v NodeView) All() iter.Seq2[int, Node] {
	return func(yield func(int, Node) bool) {
		for i := v.first; i < v.end; i += v.nodes[i].Size() {
			if !yield(i, v.nodes[i]) {
				return
			}
		}
	}
}

// Indices lists the sibling indices.
func (v NodeView) Indices() []int {
	var out []int
	for i := range v.All() {
		out = append(out, i)
	}
	return out
}

// Len counts the siblings.
func (v NodeView) Len() int {
	n := 0
	for range v.All() {
		n++
	}
	return n
}

// Text is the source spanned by the node at index.
func (t *Tree) Text(index int) string {
	n := t.Nodes[index]
	if n.Start >= n.End || n.Start >= len(t.Tokens) {
		return ""
	}
	end := min(n.End, len(t.Tokens))
	from := t.Tokens[n.Start].Pos.Offset
	to := t.Tokens[end-1].End()
	if to > len(t.Source) {
		to = len(t.Source)
	}
	if from >= to {
		return ""
	}
	return string(t.Source[from:to])
}

// DirectTokens returns the indices of the tokens the node at index spans,
// leaving out every token that belongs to one of its children.
func (t *Tree) DirectTokens(index int) []int {
	n := t.Nodes[index]
	type hole struct{ start, end int }
	var holes []hole
	for g := 0; g < n.GroupCount(); g++ {
		for _, child := range t.Children(index, n.Group(g)).All() {
			if child.End > child.Start {
				holes = append(holes, hole{child.Start, child.End})
			}
		}
	}

	var out []int
	h := 0
	for i := n.Start; i < n.End && i < len(t.Tokens); i++ {
		for h < len(holes) && holes[h].end <= i {
			h++
		}
		if h < len(holes) && holes[h].start <= i {
			continue
		}
		out = append(out, i)
	}
	return out
}

// Ellipsis stands in for child spans in DirectText.
const Ellipsis = "…"

// DirectText renders the node at index with each run of child tokens
// collapsed to Ellipsis.
func (t *Tree) DirectText(index int) string {
	n := t.Nodes[index]
	last := min(n.End, len(t.Tokens)) - 1

	var b strings.Builder
	prev := n.Start - 1
	for _, i := range t.DirectTokens(index) {
		if i > prev+1 {
			if prev >= n.Start {
				b.WriteString(t.gap(prev, prev+1))
			}
			b.WriteString(Ellipsis)
			b.WriteString(t.gap(i-1, i))
		} else if prev >= n.Start {
			b.WriteString(t.gap(prev, i))
		}
		b.WriteString(t.Tokens[i].Text(t.Source))
		prev = i
	}
	if prev < last {
		if prev >= n.Start {
			b.WriteString(t.gap(prev, prev+1))
		}
		b.WriteString(Ellipsis)
	}
	return b.String()
}

// gap is the source between two tokens, usually whitespace.
func (t *Tree) gap(a, b int) string {
	from, to := t.Tokens[a].End(), t.Tokens[b].Pos.Offset
	if from < 0 || from >= to || to > len(t.Source) {
		return ""
	}
	return string(t.Source[from:to])
}

// Errors lists the indices of Error nodes in pre-order.
func (t *Tree) Errors() []int {
	var out []int
	for i, n := range t.Nodes {
		if n.Kind == Error {
			out = append(out, i)
		}
	}
	return out
}
