package errors

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumi/lexer"
	"alumi/syntax"
	"alumi/token"
)

func init() {
	color.NoColor = true
}

func TestErrorReporter(t *testing.T) {
	source := "main := fn(env Environment) --> ResultCode:\n   noop\n"
	reporter := NewErrorReporter("test.al", source)

	err := NewDiagnostic(ErrorUnexpectedToken, token.Position{Line: 1, Column: 29, Offset: 28}).
		WithLength(3).
		WithSuggestion("did you mean '->'?").
		Build()
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUnexpectedToken+"]: unexpected token")
	assert.Contains(t, formatted, "test.al:1:29")
	assert.Contains(t, formatted, strings.Repeat(" ", 28)+"^^^")
	assert.Contains(t, formatted, "   noop")
	assert.Contains(t, formatted, "did you mean '->'?")
}

func TestErrorReporterCRLF(t *testing.T) {
	reporter := NewErrorReporter("crlf.al", "x := 1\r\ny := (\r\n")
	err := NewDiagnostic(ErrorUnbalancedPair, token.Position{Line: 2, Column: 6, Offset: 13}).Build()

	formatted := reporter.FormatError(err)
	assert.Contains(t, formatted, "y := (\n")
	assert.NotContains(t, formatted, "\r")
}

func TestFormatAllLimit(t *testing.T) {
	reporter := NewErrorReporter("many.al", "a\nb\nc\n")
	var errs []CompilerError
	for line := 1; line <= 3; line++ {
		errs = append(errs, NewDiagnostic(ErrorUnexpectedToken, token.Position{Line: line, Column: 1}).Build())
	}

	formatted := reporter.FormatAll(errs, 2)
	assert.Equal(t, 2, strings.Count(formatted, "error["))
	assert.Contains(t, formatted, "... and 1 more")

	formatted = reporter.FormatAll(errs, 0)
	assert.Equal(t, 3, strings.Count(formatted, "error["))
}

func TestDiagnosticBuilder(t *testing.T) {
	pos := token.Position{Line: 4, Column: 2, Offset: 20}
	err := NewDiagnostic(ErrorExpectedBlock, pos).
		WithMessage("expected a block after '%s'", "if").
		WithReplacement("indent the body", "   noop", pos, 0).
		WithNote("blocks are indented").
		WithHelp("add a statement").
		Build()

	assert.Equal(t, Error, err.Level)
	assert.Equal(t, ErrorExpectedBlock, err.Code)
	assert.Equal(t, "expected a block after 'if'", err.Message)
	assert.Equal(t, 1, err.Length)
	require.Len(t, err.Suggestions, 1)
	assert.Equal(t, "   noop", err.Suggestions[0].Replacement)
	assert.Equal(t, []string{"blocks are indented"}, err.Notes)
	assert.Equal(t, "add a statement", err.HelpText)
	assert.Equal(t, "error[E0112] at 4:2: expected a block after 'if'", err.Error())
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "unbalanced parentheses", Describe(ErrorUnbalancedPair))
	assert.Equal(t, "syntax error", Describe("E9999"))
}

func TestFromLexFailure(t *testing.T) {
	source := []rune("x := 1 ; 2")

	err := FromLexFailure(&lexer.Failure{
		Reason:   lexer.UnexpectedCodepoint,
		Position: token.Position{Line: 1, Column: 8, Offset: 7},
	}, source)
	assert.Equal(t, ErrorUnexpectedCodepoint, err.Code)
	assert.Equal(t, "unexpected character ';'", err.Message)

	err = FromLexFailure(&lexer.Failure{
		Reason:   lexer.MismatchedIndentionCharacters,
		Position: token.Position{Line: 3, Column: 1, Offset: 12},
	}, source)
	assert.Equal(t, ErrorMismatchedIndentChars, err.Code)
	assert.NotEmpty(t, err.HelpText)

	err = FromLexFailure(&lexer.Failure{
		Reason:   lexer.MismatchedIndentationLevel,
		Position: token.Position{Line: 2, Column: 3, Offset: 9},
	}, source)
	assert.Equal(t, ErrorMismatchedIndentLevel, err.Code)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 9}, err.Position)
}

// "whle x:\n" with an incomplete statement nested in a failed one, and a
// second error at the end of input.
func TestFromTree(t *testing.T) {
	source := []rune("whle x:\n")
	word := token.User
	tokens := []token.Token{
		{Kind: token.Indent, Pos: token.Position{Line: 1, Column: 1, Offset: 0}},
		{Kind: word, Pos: token.Position{Line: 1, Column: 1, Offset: 0}, Length: 4},
		{Kind: word, Pos: token.Position{Line: 1, Column: 6, Offset: 5}, Length: 1},
		{Kind: word, Pos: token.Position{Line: 1, Column: 7, Offset: 6}, Length: 1},
		{Kind: token.Linebreak, Pos: token.Position{Line: 1, Column: 8, Offset: 7}, Length: 1},
		{Kind: token.EndOfFile, Pos: token.Position{Line: 2, Column: 1, Offset: 8}},
	}
	inner := syntax.NewError(ErrorIncompleteStatement, 2, 1, 5)
	outer := syntax.Adopt(syntax.NewError(ErrorUnexpectedToken, 2, 1, 5), []syntax.Node{inner})
	trailing := syntax.NewError(ErrorUnexpectedToken, 5, 5, 5)
	root := syntax.New(syntax.ModuleRoot, 0, 6).WithGroups(syntax.ChildGroup{Skip: 0, Count: 3})

	tree := syntax.NewTree([]syntax.Node{root, outer, inner, trailing}, source, tokens)
	errs := FromTree(tree, []string{"if", "while"})
	require.Len(t, errs, 2)

	assert.Equal(t, ErrorIncompleteStatement, errs[0].Code)
	assert.Equal(t, token.Position{Line: 1, Column: 6, Offset: 5}, errs[0].Position)
	assert.Equal(t, "incomplete statement: found 'x'", errs[0].Message)
	require.Len(t, errs[0].Suggestions, 1)
	assert.Equal(t, "did you mean 'while'?", errs[0].Suggestions[0].Message)

	assert.Equal(t, ErrorUnexpectedToken, errs[1].Code)
	assert.Equal(t, "unexpected token: unexpected end of input", errs[1].Message)
	assert.Empty(t, errs[1].Suggestions)
}

func TestFromTreeWithoutTokens(t *testing.T) {
	tree := syntax.NewTree([]syntax.Node{syntax.NewError(ErrorUnexpectedToken, 0, 0, 0)}, nil, nil)
	errs := FromTree(tree, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, token.Position{Line: 1, Column: 1}, errs[0].Position)
}

func TestFindSimilarNames(t *testing.T) {
	keywords := []string{"if", "else", "while", "for", "noop"}

	assert.Equal(t, []string{"if"}, findSimilarNames("iff", keywords))
	assert.Equal(t, []string{"else"}, findSimilarNames("esle", keywords))
	assert.Nil(t, findSimilarNames("if", keywords))
	assert.Nil(t, findSimilarNames("while", keywords))
	assert.Nil(t, findSimilarNames("total", keywords))
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"whle", "while", 1},
		{"héllo", "hello", 1},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshteinDistance(tt.a, tt.b), "%q -> %q", tt.a, tt.b)
	}
}

func TestErrorReporterTabWidth(t *testing.T) {
	reporter := NewErrorReporter("tabs.al", "if x:\n\tnoop (\n")
	reporter.SetTabWidth(4)
	err := NewDiagnostic(ErrorUnbalancedPair, token.Position{Line: 2, Column: 7, Offset: 12}).Build()

	formatted := reporter.FormatError(err)
	assert.Contains(t, formatted, "    noop (\n")
	assert.Contains(t, formatted, "│ "+strings.Repeat(" ", 9)+"^\n")
	assert.NotContains(t, formatted, "\t")
}
