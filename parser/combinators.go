package parser

import (
	"fmt"

	"alumi/syntax"
	"alumi/token"
)

// Outcome classifies a parse. The order matters: sequences report the
// lowest outcome of their parts and alternations prefer the highest.
type Outcome int

const (
	Failure Outcome = iota
	RecoveredFailure
	Success
)

func (o Outcome) String() string {
	switch o {
	case Failure:
		return "Failure"
	case RecoveredFailure:
		return "RecoveredFailure"
	case Success:
		return "Success"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is what every rule returns. Parser is the cursor after the
// attempt, anchored where the attempt started.
type Result struct {
	Outcome Outcome
	Parser  Subparser
	Nodes   []syntax.Node
}

// Consumed counts the tokens the attempt read.
func (r Result) Consumed() int {
	return r.Parser.Consumed()
}

// Rule parses from a cursor. Rules never modify the cursor they are given;
// callers commit a result with Subparser.Use.
type Rule func(p Subparser) Result

// Ref defers to *r at parse time, for recursive grammars.
func Ref(r *Rule) Rule {
	return func(p Subparser) Result {
		return (*r)(p)
	}
}

// Parse runs root over tokens.
func Parse(tokens []token.Token, root Rule) Result {
	return root(New(tokens))
}

// Is matches one token of kind.
func Is(kind token.Kind) Rule {
	return func(p Subparser) Result {
		c := p.Child()
		if tok := c.Advance(); tok.Kind != kind {
			c.Panic(c.last())
			return Result{Outcome: Failure, Parser: c}
		}
		return Result{Outcome: Success, Parser: c}
	}
}

// Sequence matches rules one after another. It stops at the first Failure
// and reports the worst outcome along with every node produced so far.
func Sequence(rules ...Rule) Rule {
	return func(p Subparser) Result {
		c := p.Child()
		outcome := Success
		var nodes []syntax.Node
		for _, rule := range rules {
			res := rule(c)
			c.Use(res.Parser)
			nodes = append(nodes, res.Nodes...)
			outcome = min(outcome, res.Outcome)
			if res.Outcome == Failure {
				break
			}
		}
		return Result{Outcome: outcome, Parser: c, Nodes: nodes}
	}
}

// Alternation returns the first alternative that succeeds. When none does,
// the best failure is reported: a RecoveredFailure over a Failure, then the
// attempt that read more tokens, then the earlier alternative.
func Alternation(alternatives ...Rule) Rule {
	return func(p Subparser) Result {
		var best *Result
		for _, alt := range alternatives {
			res := alt(p)
			if res.Outcome == Success {
				return res
			}
			if best == nil || res.Outcome > best.Outcome ||
				(res.Outcome == best.Outcome && res.Consumed() > best.Consumed()) {
				best = &res
			}
		}
		if best == nil {
			c := p.Child()
			c.Panic(c.Current())
			return Result{Outcome: Failure, Parser: c}
		}
		return *best
	}
}

// Repeats matches rule zero or more times. The failing attempt is
// discarded. A recovered repetition is kept and lowers the outcome to
// RecoveredFailure.
func Repeats(rule Rule) Rule {
	return func(p Subparser) Result {
		c := p.Child()
		outcome := Success
		var nodes []syntax.Node
		for {
			res := rule(c)
			if res.Outcome == Failure || res.Consumed() == 0 {
				break
			}
			c.Use(res.Parser)
			nodes = append(nodes, res.Nodes...)
			outcome = min(outcome, res.Outcome)
		}
		return Result{Outcome: outcome, Parser: c, Nodes: nodes}
	}
}

// RepeatsWithSeparator matches rule repeatedly while each match is followed
// by a separator token. A missing separator ends the repetition.
func RepeatsWithSeparator(rule Rule, separator token.Kind) Rule {
	return func(p Subparser) Result {
		c := p.Child()
		outcome := Success
		var nodes []syntax.Node
		for {
			res := rule(c)
			if res.Outcome == Failure {
				break
			}
			c.Use(res.Parser)
			nodes = append(nodes, res.Nodes...)
			outcome = min(outcome, res.Outcome)
			if c.Peek().Kind != separator {
				break
			}
			c.Advance()
		}
		return Result{Outcome: outcome, Parser: c, Nodes: nodes}
	}
}

// Optional matches rule or nothing.
func Optional(rule Rule) Rule {
	return func(p Subparser) Result {
		res := rule(p)
		if res.Outcome == Failure {
			return Result{Outcome: Success, Parser: p.Child()}
		}
		return res
	}
}

// Peek runs rule for lookahead only. Nothing is consumed and no nodes are
// produced.
func Peek(rule Rule) Rule {
	return func(p Subparser) Result {
		c := p.Child()
		if res := rule(c); res.Outcome != Success {
			c.Panic(res.Parser.Current())
			return Result{Outcome: Failure, Parser: c}
		}
		return Result{Outcome: Success, Parser: c}
	}
}

// Conditional runs then when guard matches at the cursor and otherwise when
// it does not. guard consumes nothing. Once the guard matched, a failure of
// then is final and otherwise is not tried.
func Conditional(guard, then, otherwise Rule) Rule {
	return func(p Subparser) Result {
		if guard(p.Child()).Outcome == Success {
			return then(p)
		}
		return otherwise(p)
	}
}

// Swallow runs rule with kinds skipped by every read.
func Swallow(rule Rule, kinds ...token.Kind) Rule {
	return func(p Subparser) Result {
		res := rule(p.Swallowing(kinds...))
		res.Parser.swallowed = p.swallowed
		return res
	}
}

func indentation(p Subparser, accept func(had bool, before, after int) bool) Result {
	c := p.Child()
	before, had := c.Indentation()
	tok := c.Advance()
	after, _ := c.Indentation()
	if (tok.Kind == token.Indent || tok.Kind == token.Dedent) && accept(had, before, after) {
		return Result{Outcome: Success, Parser: c}
	}
	c.Panic(c.last())
	return Result{Outcome: Failure, Parser: c}
}

// Indented matches an indentation token that opens a deeper level.
func Indented(p Subparser) Result {
	return indentation(p, func(had bool, before, after int) bool {
		return !had || after > before
	})
}

// Dedented matches an indentation token that returns to a shallower level.
func Dedented(p Subparser) Result {
	return indentation(p, func(had bool, before, after int) bool {
		return had && after < before
	})
}

// NoIndent matches an indentation token that keeps the current level.
func NoIndent(p Subparser) Result {
	return indentation(p, func(had bool, before, after int) bool {
		return had && after == before
	})
}

// Block runs rule and then closes the indentation levels it opened, so a
// nested block that ends on a deeper line leaves the enclosing block at its
// own level.
func Block(rule Rule) Rule {
	return func(p Subparser) Result {
		depth := p.Depth()
		res := rule(p)
		if len(res.Parser.indents) > depth {
			res.Parser.indents = res.Parser.indents[:depth:depth]
		}
		return res
	}
}
