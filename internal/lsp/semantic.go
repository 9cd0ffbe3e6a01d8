package lsp

import (
	"slices"

	"alumi/grammar"
	"alumi/syntax"
	"alumi/token"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into the semanticTokenTypes array
// TokenModifiers is a bitmask based on semanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into semanticTokenTypes
	TokenModifiers int // bitmask
}

type classification struct {
	tokenType string
	modifiers int
}

// collectSemanticTokens classifies every token of a parsed document. Tokens
// the tree says something about take the tree's role; the rest fall back to
// their lexical kind.
func collectSemanticTokens(doc *grammar.Document) []SemanticToken {
	var tokens []SemanticToken
	if doc == nil {
		return tokens
	}

	roles := make(map[int]classification)
	var visit syntax.WalkFunc
	visit = func(w *syntax.Walker, index int, n syntax.Node) {
		classifyNode(doc.Tree, index, n, roles)
		w.WalkChildren(visit)
	}
	syntax.Walk(doc.Tree, visit)

	for i, tok := range doc.Tree.Tokens {
		c, ok := roles[i]
		if !ok {
			c, ok = classifyKind(tok.Kind)
		}
		if !ok || tok.Length == 0 {
			continue
		}
		tokens = append(tokens, SemanticToken{
			Line:           uint32(tok.Pos.Line - 1),   // LSP uses 0-based line numbers
			StartChar:      uint32(tok.Pos.Column - 1), // LSP uses 0-based column numbers
			Length:         uint32(tok.Length),
			TokenType:      indexOf(c.tokenType, SemanticTokenTypes),
			TokenModifiers: c.modifiers,
		})
	}
	return tokens
}

func classifyNode(t *syntax.Tree, index int, n syntax.Node, roles map[int]classification) {
	declaration := 1 << indexOf("declaration", SemanticTokenModifiers)
	firstSymbol := func() (int, bool) {
		for _, i := range t.DirectTokens(index) {
			if t.Tokens[i].Kind == grammar.Symbol {
				return i, true
			}
		}
		return 0, false
	}

	switch n.Kind {
	case syntax.Assignment:
		if i, ok := firstSymbol(); ok {
			kind := "variable"
			if assignsFunction(t, index, n) {
				kind = "function"
			}
			roles[i] = classification{kind, declaration}
		}
	case syntax.Parameter:
		if i, ok := firstSymbol(); ok {
			roles[i] = classification{"parameter", declaration}
		}
	case syntax.TypeName:
		if i, ok := firstSymbol(); ok {
			roles[i] = classification{"type", 0}
		}
	case syntax.FunctionCall:
		if i, ok := firstSymbol(); ok {
			roles[i] = classification{"function", 0}
		}
	case syntax.Identifier:
		if i, ok := firstSymbol(); ok {
			roles[i] = classification{"variable", 0}
		}
	}
}

func assignsFunction(t *syntax.Tree, index int, n syntax.Node) bool {
	for g := 0; g < n.GroupCount(); g++ {
		for _, child := range t.Children(index, n.Group(g)).All() {
			if child.Kind == syntax.FunctionDefinition {
				return true
			}
		}
	}
	return false
}

func classifyKind(kind token.Kind) (classification, bool) {
	switch {
	case grammar.IsKeyword(kind):
		return classification{tokenType: "keyword"}, true
	case kind == grammar.Literal:
		return classification{tokenType: "number"}, true
	case kind == grammar.Operator, kind == grammar.ReturnOp, kind == grammar.Assignment:
		return classification{tokenType: "operator"}, true
	case kind == grammar.Symbol:
		return classification{tokenType: "variable"}, true
	}
	return classification{}, false
}

// encodeSemanticTokens packs tokens into the LSP wire format (using
// delta-line, delta-start compression)
func encodeSemanticTokens(tokens []SemanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevStart uint32

	for _, tok := range tokens {
		deltaLine := tok.Line - prevLine
		var deltaStart uint32
		if deltaLine == 0 {
			deltaStart = tok.StartChar - prevStart
		} else {
			deltaStart = tok.StartChar
		}

		data = append(data, deltaLine, deltaStart, tok.Length, uint32(tok.TokenType), uint32(tok.TokenModifiers))

		prevLine = tok.Line
		prevStart = tok.StartChar
	}
	return data
}

// indexOf returns the index of a string in a slice, or 0 if not found
func indexOf(target string, list []string) int {
	return max(slices.Index(list, target), 0)
}
