package grammar

import (
	"alumi/lexer"
	"alumi/token"
)

// Token kinds of the alumi language.
const (
	Symbol token.Kind = token.User + iota
	Operator
	Literal
	Assignment
	Separator
	OpenParen
	CloseParen
	ScopeBegin
	ReturnOp
	Fn
	If
	Else
	For
	While
	Noop
)

var keywords = map[token.Kind]string{
	Fn:    "fn",
	If:    "if",
	Else:  "else",
	For:   "for",
	While: "while",
	Noop:  "noop",
}

func init() {
	token.Register(Symbol, "Symbol")
	token.Register(Operator, "Operator")
	token.Register(Literal, "Literal")
	token.Register(Assignment, "Assignment")
	token.Register(Separator, "Separator")
	token.Register(OpenParen, "OpenParen")
	token.Register(CloseParen, "CloseParen")
	token.Register(ScopeBegin, "ScopeBegin")
	token.Register(ReturnOp, "ReturnOp")
	token.Register(Fn, "Fn")
	token.Register(If, "If")
	token.Register(Else, "Else")
	token.Register(For, "For")
	token.Register(While, "While")
	token.Register(Noop, "Noop")
}

const (
	digits     = "0123456789"
	whitespace = " \t\r\n"
	nonSymbol  = "!$%&'()*+,-./:;<=>?@[\\]^_{|}~"
	operators  = "!&|+-*/<>_~"
)

// Keywords lists the reserved words.
func Keywords() []string {
	return []string{"fn", "if", "else", "for", "while", "noop"}
}

// IsKeyword reports whether kind is a reserved word.
func IsKeyword(kind token.Kind) bool {
	_, ok := keywords[kind]
	return ok
}

// Patterns returns a fresh lexicon in priority order. Keywords come before
// Symbol so that an exact keyword wins the tie.
func Patterns() []lexer.Pattern {
	return []lexer.Pattern{
		lexer.AnyOf(" \t"),
		lexer.Tokenize(Fn, lexer.Text("fn")),
		lexer.Tokenize(If, lexer.Text("if")),
		lexer.Tokenize(Else, lexer.Text("else")),
		lexer.Tokenize(For, lexer.Text("for")),
		lexer.Tokenize(While, lexer.Text("while")),
		lexer.Tokenize(Noop, lexer.Text("noop")),
		lexer.Tokenize(ReturnOp, lexer.Text("->")),
		lexer.Tokenize(Assignment, lexer.Text(":=")),
		lexer.Tokenize(Separator, lexer.Text(",")),
		lexer.Tokenize(OpenParen, lexer.Text("(")),
		lexer.Tokenize(CloseParen, lexer.Text(")")),
		lexer.Tokenize(ScopeBegin, lexer.Text(":")),
		lexer.Tokenize(Literal, lexer.Repeats(lexer.AnyOf(digits))),
		lexer.Tokenize(Symbol, lexer.Sequence(
			lexer.NotAnyOf(digits+nonSymbol+whitespace),
			lexer.RepeatsRange(lexer.NotAnyOf(nonSymbol+whitespace), 0, -1),
		)),
		lexer.Tokenize(Operator, lexer.Repeats(lexer.AnyOf(operators))),
	}
}

// NewLexer builds a lexer for alumi source.
func NewLexer(opts ...lexer.Option) *lexer.Lexer {
	return lexer.New(Patterns(), opts...)
}
