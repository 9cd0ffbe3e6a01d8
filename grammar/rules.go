package grammar

import (
	"alumi/internal/errors"
	"alumi/parser"
	"alumi/syntax"
	"alumi/token"
)

// Module is the root production of an alumi file lexed in every-line mode.
var Module = productions()

// reportOnly builds nothing on success and an Error node on failure.
func reportOnly(code string) parser.Builder {
	return func(r parser.Result) (syntax.Node, bool) {
		if r.Outcome != parser.Failure {
			return syntax.Node{}, false
		}
		return syntax.NewError(code, r.Parser.PanicIndex(), r.Parser.First(), r.Parser.Current()), true
	}
}

// buildSubtrees keeps each top-level child in a group of its own, so the
// declaration and the body of a definition can be told apart.
func buildSubtrees(kind syntax.Kind, code string) parser.Builder {
	build := parser.Build(kind, code)
	return func(r parser.Result) (syntax.Node, bool) {
		n, ok := build(r)
		if groups := syntax.Subtrees(r.Nodes); r.Outcome != parser.Failure && len(groups) <= syntax.MaxGroups {
			n = n.WithGroups(groups...)
		}
		return n, ok
	}
}

func productions() parser.Rule {
	is := parser.Is
	var expression, statement parser.Rule

	// blank lines carry no Indent token
	blank := is(token.Linebreak)

	typeName := parser.ParseRule(is(Symbol), parser.NeverSynchronize,
		parser.Build(syntax.TypeName, errors.ErrorUnexpectedToken))

	parameter := parser.ParseRule(
		parser.Sequence(is(Symbol), typeName),
		parser.NeverSynchronize,
		parser.Build(syntax.Parameter, errors.ErrorUnexpectedToken))

	parameters := parser.ParseRule(
		parser.Swallow(parser.Sequence(
			is(OpenParen),
			parser.RepeatsWithSeparator(parameter, Separator),
			is(CloseParen),
		), token.Linebreak, token.Indent),
		parser.SynchronizeOnMatchedPair(OpenParen, CloseParen),
		parser.Build(syntax.Parameters, errors.ErrorUnbalancedPair))

	signature := parser.ParseRule(
		parser.Sequence(
			parser.Optional(parser.Sequence(is(ReturnOp), typeName)),
			is(ScopeBegin),
		),
		parser.SynchronizeOnToken(ScopeBegin),
		reportOnly(errors.ErrorUnexpectedToken))

	codeBlock := parser.ParseRule(
		parser.Block(parser.Sequence(
			is(token.Linebreak),
			parser.Repeats(blank),
			parser.Indented,
			parser.Ref(&statement),
			parser.Repeats(parser.Alternation(
				blank,
				parser.Sequence(parser.NoIndent, parser.Ref(&statement)),
			)),
		)),
		parser.NeverSynchronize,
		parser.Build(syntax.CodeBlock, errors.ErrorExpectedBlock))

	functionDeclaration := parser.ParseRule(
		parser.Sequence(is(Fn), parameters, signature),
		parser.NeverSynchronize,
		parser.Build(syntax.FunctionDeclaration, errors.ErrorUnexpectedToken))

	functionDefinition := parser.ParseRule(
		parser.Sequence(functionDeclaration, codeBlock),
		parser.NeverSynchronize,
		buildSubtrees(syntax.FunctionDefinition, errors.ErrorExpectedBlock))

	integer := parser.ParseRule(is(Literal), parser.NeverSynchronize,
		parser.Build(syntax.IntegerLiteral, errors.ErrorUnexpectedToken))

	identifier := parser.ParseRule(is(Symbol), parser.NeverSynchronize,
		parser.Build(syntax.Identifier, errors.ErrorUnexpectedToken))

	arguments := parser.Swallow(parser.Sequence(
		is(OpenParen),
		parser.RepeatsWithSeparator(parser.Ref(&expression), Separator),
		is(CloseParen),
	), token.Linebreak, token.Indent)

	functionCall := parser.ParseRule(
		parser.Sequence(is(Symbol), arguments),
		parser.SynchronizeOnMatchedPair(OpenParen, CloseParen),
		parser.Build(syntax.FunctionCall, errors.ErrorUnbalancedPair))

	parenthesized := parser.Swallow(parser.Sequence(
		is(OpenParen), parser.Ref(&expression), is(CloseParen),
	), token.Linebreak, token.Indent)

	// A symbol followed by '(' is always a call, so a broken call is
	// reported as such rather than read as an identifier.
	operand := parser.Conditional(
		parser.Sequence(is(Symbol), is(OpenParen)),
		functionCall,
		parser.Alternation(integer, identifier, parenthesized),
	)

	expression = parser.ParseRule(
		parser.Sequence(operand, parser.Repeats(parser.Sequence(is(Operator), operand))),
		parser.NeverSynchronize,
		parser.Build(syntax.Expression, errors.ErrorUnexpectedToken))

	assignment := parser.ParseRule(
		parser.Sequence(
			is(Symbol),
			is(Assignment),
			parser.Alternation(
				functionDefinition,
				parser.Sequence(expression, is(token.Linebreak)),
			),
		),
		parser.NeverSynchronize,
		parser.Build(syntax.Assignment, errors.ErrorUnexpectedToken))

	elseBranch := parser.Sequence(parser.NoIndent, is(Else), is(ScopeBegin), codeBlock)

	brancher := parser.ParseRule(
		parser.Sequence(
			parser.Alternation(is(If), is(While), is(For)),
			expression,
			is(ScopeBegin),
			codeBlock,
			parser.Optional(elseBranch),
		),
		parser.NeverSynchronize,
		parser.Build(syntax.Brancher, errors.ErrorExpectedBlock))

	statement = parser.ParseRule(
		parser.Alternation(
			brancher,
			assignment,
			parser.Sequence(is(Noop), is(token.Linebreak)),
			parser.Sequence(expression, is(token.Linebreak)),
		),
		parser.SynchronizeOnToken(token.Linebreak),
		parser.Build(syntax.Statement, errors.ErrorIncompleteStatement))

	// A line deeper than its block is skipped as a whole.
	strayIndent := parser.ParseRule(
		parser.Sequence(parser.Indented, is(token.Illegal)),
		parser.SynchronizeOnToken(token.Linebreak),
		reportOnly(errors.ErrorUnexpectedIndent))

	line := parser.Alternation(
		blank,
		parser.Sequence(parser.Alternation(parser.NoIndent, parser.Dedented), statement),
		strayIndent,
	)

	return parser.ParseRule(
		parser.Sequence(
			parser.Repeats(blank),
			parser.Optional(parser.Sequence(parser.Indented, statement, parser.Repeats(line))),
			parser.Peek(is(token.EndOfFile)),
		),
		parser.NeverSynchronize,
		parser.Build(syntax.ModuleRoot, errors.ErrorUnexpectedToken))
}
