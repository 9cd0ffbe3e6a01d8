package grammar

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"alumi/internal/errors"
	"alumi/parser"
	"alumi/syntax"
)

// Document is the result of parsing one source.
type Document struct {
	Tree     *syntax.Tree
	Outcome  parser.Outcome
	Consumed int
}

// Diagnostics lists the syntax errors recorded in the tree.
func (d *Document) Diagnostics() []errors.CompilerError {
	return errors.FromTree(d.Tree, Keywords())
}

// Parse lexes and parses src. A lexer failure is returned as the error; a
// syntax error is not an error here but an Error node in the tree.
func Parse(src string) (*Document, error) {
	runes := []rune(src)
	// a lexer per call, since a Lexer serializes its callers
	tokens, err := NewLexer().Lex(runes)
	if err != nil {
		return nil, err
	}
	res := parser.Parse(tokens, Module)
	return &Document{
		Tree:     syntax.NewTree(res.Nodes, runes, tokens),
		Outcome:  res.Outcome,
		Consumed: res.Consumed(),
	}, nil
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(string(source))
}

// built on first use, after the token kinds are registered
var outlineParser = sync.OnceValues(func() (*participle.Parser[Outline], error) {
	return participle.Build[Outline](
		participle.Lexer(LexerDefinition{}),
		participle.Elide("Dedent"),
		participle.UseLookahead(64),
	)
})

// ParseOutline reads the definitions of src without building a tree.
func ParseOutline(filename, src string) (*Outline, error) {
	p, err := outlineParser()
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}
	return p.ParseString(filename, src)
}

// ReportOutlineError prints a friendly caret-style parse error message.
func ReportOutlineError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("Unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", max(pos.Column-1, 0)) + "^"

	color.Red("Syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("→ %s\n", pe.Message())
}
