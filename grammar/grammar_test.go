package grammar_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumi/grammar"
	"alumi/internal/errors"
	"alumi/lexer"
	"alumi/parser"
	"alumi/syntax"
	"alumi/token"
)

const mainFunc = "main := fn(env Environment) -> ResultCode:\n   noop"

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	tokens, err := grammar.NewLexer().LexString(src)
	require.NoError(t, err)
	out := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLexicon(t *testing.T) {
	assert.Equal(t, []token.Kind{
		token.Indent, grammar.Symbol, grammar.Assignment, grammar.Fn, grammar.OpenParen,
		grammar.Symbol, grammar.Symbol, grammar.CloseParen, grammar.ReturnOp, grammar.Symbol,
		grammar.ScopeBegin, token.Linebreak, token.Indent, grammar.Noop, token.Linebreak,
		token.EndOfFile,
	}, kinds(t, mainFunc))
}

func TestLexiconPriorities(t *testing.T) {
	tests := []struct {
		src  string
		want token.Kind
	}{
		{"fn", grammar.Fn},
		{"fnord", grammar.Symbol},
		{"while", grammar.While},
		{"->", grammar.ReturnOp},
		{"-->", grammar.Operator},
		{":=", grammar.Assignment},
		{":", grammar.ScopeBegin},
		{"42", grammar.Literal},
		{"x1", grammar.Symbol},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := kinds(t, tt.src)
			require.Len(t, got, 4)
			assert.Equal(t, tt.want, got[1])
		})
	}
}

func TestLexiconRejects(t *testing.T) {
	_, err := grammar.NewLexer().LexString("x := 1 ; 2")
	var failure *lexer.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, lexer.UnexpectedCodepoint, failure.Reason)
	assert.Equal(t, 7, failure.Index())
}

func TestParseFunctionDefinition(t *testing.T) {
	doc, err := grammar.Parse(mainFunc)
	require.NoError(t, err)
	assert.Equal(t, parser.Success, doc.Outcome)
	assert.Equal(t, 15, doc.Consumed)
	assert.Empty(t, doc.Tree.Errors())

	want := `ModuleRoot("…")
  Statement("…")
    Assignment("main := …")
      FunctionDefinition("…")
        FunctionDeclaration("fn… -> …:")
          Parameters("(…)")
            Parameter("env …")
              TypeName("Environment")
          TypeName("ResultCode")
        CodeBlock("\n   …")
          Statement("noop")
`
	assert.Equal(t, want, syntax.Represent(doc.Tree))

	def := doc.Tree.Nodes[3]
	require.Equal(t, syntax.FunctionDefinition, def.Kind)
	assert.Equal(t, 2, def.GroupCount())
	decl := doc.Tree.Children(3, def.Group(0)).Indices()
	body := doc.Tree.Children(3, def.Group(1)).Indices()
	require.Len(t, decl, 1)
	require.Len(t, body, 1)
	assert.Equal(t, syntax.FunctionDeclaration, doc.Tree.Nodes[decl[0]].Kind)
	assert.Equal(t, syntax.CodeBlock, doc.Tree.Nodes[body[0]].Kind)
}

func TestParseRecoversFromBadSignature(t *testing.T) {
	src := "main := fn(env Environment) --> ResultCode:\n   noop"
	doc, err := grammar.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, parser.RecoveredFailure, doc.Outcome)
	assert.Equal(t, 15, doc.Consumed)

	errs := doc.Tree.Errors()
	require.Len(t, errs, 1)
	n := doc.Tree.Nodes[errs[0]]
	assert.Equal(t, errors.ErrorUnexpectedToken, n.Code)
	assert.Equal(t, 8, n.At)
	assert.Equal(t, "-->", doc.Tree.Text(errs[0]))

	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, 1, diags[0].Position.Line)
	assert.Equal(t, 29, diags[0].Position.Column)
	assert.Equal(t, 3, diags[0].Length)
	assert.Contains(t, diags[0].Message, "'-->'")
}

func TestParseStatements(t *testing.T) {
	src := `x := 4 + f(2, y)

g(x)
if x < 3:
   noop
else:
   y := 1
while 1:
   if y:
      noop
   noop
`
	doc, err := grammar.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, parser.Success, doc.Outcome)
	assert.Empty(t, doc.Diagnostics())

	var top []syntax.Kind
	for _, n := range doc.Tree.Children(0, doc.Tree.Nodes[0].Group(0)).All() {
		top = append(top, n.Kind)
	}
	assert.Equal(t, []syntax.Kind{syntax.Statement, syntax.Statement, syntax.Statement, syntax.Statement}, top)
}

func TestParseMultilineParameters(t *testing.T) {
	src := "add := fn(a Int,\n          b Int) -> Int:\n   a + b\n"
	doc, err := grammar.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, parser.Success, doc.Outcome)

	var params []string
	syntax.Walk(doc.Tree, func(w *syntax.Walker, index int, n syntax.Node) {
		var visit syntax.WalkFunc
		visit = func(w *syntax.Walker, index int, n syntax.Node) {
			if n.Kind == syntax.Parameter {
				params = append(params, w.Tree().Text(index))
			}
			w.WalkChildren(visit)
		}
		visit(w, index, n)
	})
	assert.Equal(t, []string{"a Int", "b Int"}, params)
}

func TestParseUnbalancedCall(t *testing.T) {
	doc, err := grammar.Parse("f(1, 2\nnoop\n")
	require.NoError(t, err)
	assert.NotEqual(t, parser.Success, doc.Outcome)
	assert.NotEmpty(t, doc.Diagnostics())
}

func TestParseSpansSkipSwallowedTokens(t *testing.T) {
	doc, err := grammar.Parse("x := f(1,\n      2)\n")
	require.NoError(t, err)
	assert.Equal(t, parser.Success, doc.Outcome)

	var texts []string
	for index, n := range doc.Tree.Nodes {
		if n.Kind != syntax.Expression {
			continue
		}
		first := doc.Tree.Tokens[n.Start].Kind
		assert.NotEqual(t, token.Linebreak, first)
		assert.NotEqual(t, token.Indent, first)
		texts = append(texts, doc.Tree.Text(index))
	}
	assert.Contains(t, texts, "2")
}

func TestParseBrokenCallReportsUnbalancedPair(t *testing.T) {
	doc, err := grammar.Parse("x := f(1, 2\nnoop\n")
	require.NoError(t, err)
	assert.Equal(t, parser.RecoveredFailure, doc.Outcome)

	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorUnbalancedPair, diags[0].Code)
}

func TestParseIncompleteStatement(t *testing.T) {
	doc, err := grammar.Parse("x := := 3\ny := 2\n")
	require.NoError(t, err)
	assert.Equal(t, parser.RecoveredFailure, doc.Outcome)

	diags := doc.Diagnostics()
	require.NotEmpty(t, diags)
	assert.Equal(t, 1, diags[0].Position.Line)

	// the second line still parses
	var assignments int
	for _, n := range doc.Tree.Nodes {
		if n.Kind == syntax.Assignment {
			assignments++
		}
	}
	assert.Equal(t, 1, assignments)
}

func TestParseStrayIndent(t *testing.T) {
	doc, err := grammar.Parse("x := 1\n   y := 2\nz := 3\n")
	require.NoError(t, err)
	assert.Equal(t, parser.RecoveredFailure, doc.Outcome)

	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, errors.ErrorUnexpectedIndent, diags[0].Code)
	assert.Equal(t, 2, diags[0].Position.Line)
}

func TestParseKeywordTypo(t *testing.T) {
	doc, err := grammar.Parse("whille x:\n   noop\n")
	require.NoError(t, err)
	diags := doc.Diagnostics()
	require.NotEmpty(t, diags)
	require.NotEmpty(t, diags[0].Suggestions)
	assert.Contains(t, diags[0].Suggestions[0].Message, "'while'")
}

func TestParseLexFailure(t *testing.T) {
	_, err := grammar.Parse("x := 1\n  y\n\tz\n")
	var failure *lexer.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, lexer.MismatchedIndentionCharacters, failure.Reason)
	assert.Equal(t, 3, failure.Position.Line)
}

func TestOutline(t *testing.T) {
	src := `main := fn(env Environment) -> ResultCode:
   x := 1
   noop
limit := 40 + 2

helper := fn():
   noop
`
	outline, err := grammar.ParseOutline("test.alumi", src)
	require.NoError(t, err)

	defs := outline.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "main", defs[0].Name.Value)
	assert.Equal(t, "function", defs[0].Kind())
	require.Len(t, defs[0].Function.Parameters, 1)
	assert.Equal(t, "Environment", defs[0].Function.Parameters[0].Type)
	assert.Equal(t, "ResultCode", defs[0].Function.Returns)
	assert.Equal(t, 1, defs[0].Pos.Line)

	assert.Equal(t, "limit", defs[1].Name.Value)
	assert.Equal(t, "value", defs[1].Kind())
	assert.Equal(t, 4, defs[1].Pos.Line)

	assert.Equal(t, "helper", defs[2].Name.Value)
	assert.Empty(t, defs[2].Function.Parameters)

	assert.Equal(t, "main := fn(env Environment) -> ResultCode\nlimit := 40 + 2\nhelper := fn()\n", outline.String())
}

func TestOutlineBlankLines(t *testing.T) {
	outline, err := grammar.ParseOutline("blank.alumi", "\nx := 1\n\n\ny := 2\n\n")
	require.NoError(t, err)

	assert.Len(t, outline.Lines, 6)
	assert.Nil(t, outline.Lines[0].Definition)
	assert.Empty(t, outline.Lines[0].Words)

	defs := outline.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "x", defs[0].Name.Value)
	assert.Equal(t, 2, defs[0].Pos.Line)
	assert.Equal(t, "y", defs[1].Name.Value)
	assert.Equal(t, 5, defs[1].Pos.Line)
}

func TestOutlineLexError(t *testing.T) {
	_, err := grammar.ParseOutline("bad.alumi", "x := 1 ; 2\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected code point")
	assert.Contains(t, err.Error(), "bad.alumi:1:8")
}

func TestParseConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	docs := make([]*grammar.Document, 8)
	errs := make([]error, len(docs))
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			docs[i], errs[i] = grammar.Parse(mainFunc)
		}(i)
	}
	wg.Wait()

	for i, doc := range docs {
		require.NoError(t, errs[i])
		assert.Equal(t, parser.Success, doc.Outcome)
		assert.Empty(t, doc.Diagnostics())
	}
}
