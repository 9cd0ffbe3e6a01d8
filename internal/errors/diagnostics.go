package errors

import (
	"fmt"
	"slices"
	"strings"

	"alumi/lexer"
	"alumi/syntax"
	"alumi/token"
)

// DiagnosticBuilder provides a fluent interface for creating diagnostics with suggestions
type DiagnosticBuilder struct {
	err CompilerError
}

// NewDiagnostic creates a new error builder
func NewDiagnostic(code string, pos token.Position) *DiagnosticBuilder {
	return &DiagnosticBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  Describe(code),
			Position: pos,
			Length:   1,
		},
	}
}

// WithMessage replaces the default message of the code
func (b *DiagnosticBuilder) WithMessage(format string, args ...any) *DiagnosticBuilder {
	b.err.Message = fmt.Sprintf(format, args...)
	return b
}

// WithLength sets the length of the error span
func (b *DiagnosticBuilder) WithLength(length int) *DiagnosticBuilder {
	b.err.Length = length
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *DiagnosticBuilder) WithSuggestion(message string) *DiagnosticBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

// WithReplacement adds a suggestion with replacement text
func (b *DiagnosticBuilder) WithReplacement(message, replacement string, pos token.Position, length int) *DiagnosticBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{
		Message:     message,
		Replacement: replacement,
		Position:    pos,
		Length:      length,
	})
	return b
}

// WithNote adds a note to the error
func (b *DiagnosticBuilder) WithNote(note string) *DiagnosticBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *DiagnosticBuilder) WithHelp(help string) *DiagnosticBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error
func (b *DiagnosticBuilder) Build() CompilerError {
	return b.err
}

// FromLexFailure converts a lexer failure.
func FromLexFailure(f *lexer.Failure, source []rune) CompilerError {
	switch f.Reason {
	case lexer.MismatchedIndentionCharacters:
		return NewDiagnostic(ErrorMismatchedIndentChars, f.Position).
			WithNote("the first indented line decides whether the file uses tabs or spaces").
			WithHelp("indent every line with the same character").
			Build()
	case lexer.MismatchedIndentationLevel:
		return NewDiagnostic(ErrorMismatchedIndentLevel, f.Position).
			WithSuggestion("align the line with one of the enclosing blocks").
			Build()
	}

	b := NewDiagnostic(ErrorUnexpectedCodepoint, f.Position)
	if i := f.Index(); i >= 0 && i < len(source) {
		b = b.WithMessage("unexpected character '%s'", string(source[i]))
	}
	return b.Build()
}

// FromTree reports the Error nodes of t. Only the innermost error of each
// damaged region is kept, since its enclosing rules fail at the same token.
// keywords feed the "did you mean" suggestions.
func FromTree(t *syntax.Tree, keywords []string) []CompilerError {
	var out []CompilerError
	seen := map[int]bool{}
	for _, index := range t.Errors() {
		n := t.Nodes[index]
		if hasErrorBelow(t, index) || seen[n.At] {
			continue
		}
		seen[n.At] = true
		out = append(out, fromNode(t, n, keywords))
	}
	return out
}

func hasErrorBelow(t *syntax.Tree, index int) bool {
	end := index + t.Nodes[index].Size()
	for i := index + 1; i < end && i < len(t.Nodes); i++ {
		if t.Nodes[i].Kind == syntax.Error {
			return true
		}
	}
	return false
}

func fromNode(t *syntax.Tree, n syntax.Node, keywords []string) CompilerError {
	if len(t.Tokens) == 0 {
		return NewDiagnostic(n.Code, token.Position{Line: 1, Column: 1}).Build()
	}
	at := min(max(n.At, 0), len(t.Tokens)-1)
	tok := t.Tokens[at]
	text := tok.Text(t.Source)

	b := NewDiagnostic(n.Code, tok.Pos).WithLength(max(tok.Length, 1))
	switch tok.Kind {
	case token.EndOfFile:
		b = b.WithMessage("%s: unexpected end of input", Describe(n.Code))
	case token.Linebreak:
		b = b.WithMessage("%s: unexpected end of line", Describe(n.Code))
	case token.Indent, token.Dedent:
		b = b.WithMessage("%s: unexpected indentation", Describe(n.Code))
	default:
		b = b.WithMessage("%s: found '%s'", Describe(n.Code), text)
	}

	// a misspelt keyword usually fails a token or two after itself
	for _, i := range []int{at, n.Start} {
		if i < 0 || i >= len(t.Tokens) {
			continue
		}
		if similar := findSimilarNames(t.Tokens[i].Text(t.Source), keywords); len(similar) > 0 {
			b = b.WithSuggestion(fmt.Sprintf("did you mean '%s'?", strings.Join(similar, "', '")))
			break
		}
	}

	switch n.Code {
	case ErrorUnbalancedPair:
		b = b.WithHelp("every '(' needs a matching ')'")
	case ErrorExpectedBlock:
		b = b.WithNote("a block starts on the line after ':' and is indented deeper than it")
	case ErrorUnexpectedIndent:
		b = b.WithSuggestion("remove the extra indentation")
	}
	return b.Build()
}

func findSimilarNames(target string, candidates []string) []string {
	var similar []string
	if len([]rune(target)) < 3 || slices.Contains(candidates, target) {
		return nil
	}
	for _, candidate := range candidates {
		if levenshteinDistance(target, candidate) <= 2 {
			similar = append(similar, candidate)
		}
	}
	return similar
}

func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
