// Package syntax holds parse trees as a single flat array of nodes. A node's
// descendants follow it directly in pre-order, so a whole subtree is the run
// of 1 + RecursiveChildCount() slots starting at the node.
package syntax

import "fmt"

// Kind tags a node.
type Kind int

const (
	Error Kind = iota
	ModuleRoot
	CodeBlock
	Statement
	Assignment
	Expression
	FunctionDeclaration
	FunctionDefinition
	FunctionCall
	IntegerLiteral
	Identifier
	Parameters
	Parameter
	TypeName
	Brancher
)

var kindNames = [...]string{
	Error:               "Error",
	ModuleRoot:          "ModuleRoot",
	CodeBlock:           "CodeBlock",
	Statement:           "Statement",
	Assignment:          "Assignment",
	Expression:          "Expression",
	FunctionDeclaration: "FunctionDeclaration",
	FunctionDefinition:  "FunctionDefinition",
	FunctionCall:        "FunctionCall",
	IntegerLiteral:      "IntegerLiteral",
	Identifier:          "Identifier",
	Parameters:          "Parameters",
	Parameter:           "Parameter",
	TypeName:            "TypeName",
	Brancher:            "Brancher",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MaxGroups bounds the child groups a node can own.
const MaxGroups = 4

// ChildGroup locates a run of a node's descendants. The run starts Skip
// slots after the slot following the owner and is Count slots long,
// including the descendants of every direct child in it.
type ChildGroup struct {
	Skip  int
	Count int
}

// Node is one tree entry. Start and End delimit the tokens it spans,
// End exclusive.
type Node struct {
	Kind  Kind
	Start int
	End   int

	// Code and At describe Error nodes: the diagnostic code and the token
	// index where the parser started panicking.
	Code string
	At   int

	groups  [MaxGroups]ChildGroup
	ngroups int
}

// New returns a node without children.
func New(kind Kind, start, end int) Node {
	return Node{Kind: kind, Start: start, End: end}
}

// NewError returns an Error node.
func NewError(code string, at, start, end int) Node {
	return Node{Kind: Error, Code: code, At: at, Start: start, End: end}
}

// GroupCount is the number of child groups.
func (n Node) GroupCount() int {
	return n.ngroups
}

// Group returns the i-th child group.
func (n Node) Group(i int) ChildGroup {
	if i < 0 || i >= n.ngroups {
		panic(fmt.Sprintf("syntax: group %d out of range [0,%d)", i, n.ngroups))
	}
	return n.groups[i]
}

// Groups returns a copy of the child groups.
func (n Node) Groups() []ChildGroup {
	out := make([]ChildGroup, n.ngroups)
	copy(out, n.groups[:n.ngroups])
	return out
}

// WithGroups returns n owning groups. Groups must be ordered and must not
// overlap.
func (n Node) WithGroups(groups ...ChildGroup) Node {
	if len(groups) > MaxGroups {
		panic(fmt.Sprintf("syntax: %d child groups exceed the limit of %d", len(groups), MaxGroups))
	}
	n.ngroups = copy(n.groups[:], groups)
	return n
}

// RecursiveChildCount is the number of slots occupied by all descendants.
func (n Node) RecursiveChildCount() int {
	if n.ngroups == 0 {
		return 0
	}
	last := n.groups[n.ngroups-1]
	return last.Skip + last.Count
}

// Size is the number of slots the subtree rooted at n occupies.
func (n Node) Size() int {
	return 1 + n.RecursiveChildCount()
}

func (n Node) String() string {
	if n.Kind == Error {
		return fmt.Sprintf("Error[%s](%d..%d)", n.Code, n.Start, n.End)
	}
	return fmt.Sprintf("%s(%d..%d)", n.Kind, n.Start, n.End)
}

// Adopt makes children, a flattened run of complete subtrees, the single
// child group of n. A node that already has groups is returned unchanged.
func Adopt(n Node, children []Node) Node {
	if n.ngroups > 0 || len(children) == 0 {
		return n
	}
	return n.WithGroups(ChildGroup{Skip: 0, Count: len(children)})
}

// Subtrees splits a flattened run of complete subtrees into one group per
// top-level subtree.
func Subtrees(nodes []Node) []ChildGroup {
	var groups []ChildGroup
	for i := 0; i < len(nodes); {
		size := nodes[i].Size()
		groups = append(groups, ChildGroup{Skip: i, Count: size})
		i += size
	}
	return groups
}
