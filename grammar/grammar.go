package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Outline is a line-level view of a file. It only recognizes definitions
// and keeps every other line as raw words, so it never fails on a file the
// full grammar can lex.
type Outline struct {
	Pos   lexer.Position
	Lines []*Line `@@*`
}

// Line is one source line. Blank lines have neither a definition nor
// words.
type Line struct {
	Pos        lexer.Position
	EndPos     lexer.Position
	Indent     string      `@Indent?`
	Definition *Definition `( @@`
	Words      []string    `| @( Symbol | Operator | Literal | Assignment | Separator | OpenParen | CloseParen | ScopeBegin | ReturnOp | Fn | If | Else | For | While | Noop )+ )? Linebreak`
}

type PosSymbol struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Value  string `@Symbol`
}

type Definition struct {
	Pos      lexer.Position
	EndPos   lexer.Position
	Name     PosSymbol `@@ ":="`
	Function *Header   `( @@`
	Value    []string  `| @( Symbol | Operator | Literal | Separator | OpenParen | CloseParen | ScopeBegin | ReturnOp | Fn | If | Else | For | While | Noop )+ )`
}

type Header struct {
	Pos        lexer.Position
	Parameters []*Parameter `"fn" "(" ( @@ ( "," @@ )* )? ")"`
	Returns    string       `( "->" @Symbol )? ":"`
}

type Parameter struct {
	Pos  lexer.Position
	Name string `@Symbol`
	Type string `@Symbol`
}

// TopLevel reports whether l starts at column one.
func (l *Line) TopLevel() bool {
	return l.Indent == ""
}

// Definitions lists the top-level definitions in source order.
func (o *Outline) Definitions() []*Definition {
	var out []*Definition
	for _, l := range o.Lines {
		if l.Definition != nil && l.TopLevel() {
			out = append(out, l.Definition)
		}
	}
	return out
}
