package parser

import (
	"alumi/syntax"
	"alumi/token"
)

// Builder turns the raw result of a rule body into at most one node. It is
// called for failures too, typically returning an Error node so partial
// structure survives.
type Builder func(r Result) (syntax.Node, bool)

// Synchronizer relocates a panicking cursor past a damaged region. The
// cursor passed in is positioned at the start of the failed rule. A
// synchronizer that recovers moves the cursor and clears the panic.
type Synchronizer func(p *Subparser)

// NeverSynchronize leaves the failure as it is.
func NeverSynchronize(*Subparser) {}

// SynchronizeOnToken skips forward to just past the next token of kind.
func SynchronizeOnToken(kind token.Kind) Synchronizer {
	return func(p *Subparser) {
		s := *p
		for {
			tok := s.Advance()
			if tok.Kind == kind {
				p.Use(s)
				p.ClearPanic()
				return
			}
			if tok.Kind == token.EndOfFile {
				return
			}
		}
	}
}

// SynchronizeOnMatchedPair skips forward to just past the close token that
// balances the pair the rule was in. The count starts at one; each open adds
// one and each close takes one away, and the scan stops once it is back to
// one or below.
func SynchronizeOnMatchedPair(open, close token.Kind) Synchronizer {
	return func(p *Subparser) {
		s := *p
		imbalance := 1
		for {
			tok := s.Advance()
			switch tok.Kind {
			case token.EndOfFile:
				return
			case open:
				imbalance++
			case close:
				imbalance--
				if imbalance <= 1 {
					p.Use(s)
					p.ClearPanic()
					return
				}
			}
		}
	}
}

// ParseRule wraps body into a production. The built node is placed before
// the nodes of the body, owning them as its children. When body fails the
// rule panics and sync gets a chance to recover from the rule's start; a
// recovery yields RecoveredFailure.
func ParseRule(body Rule, sync Synchronizer, build Builder) Rule {
	return func(p Subparser) Result {
		res := body(p)

		var nodes []syntax.Node
		if build != nil {
			if n, ok := build(res); ok {
				nodes = append(nodes, syntax.Adopt(n, res.Nodes))
			}
		}
		nodes = append(nodes, res.Nodes...)

		if res.Outcome != Failure {
			return Result{Outcome: res.Outcome, Parser: res.Parser, Nodes: nodes}
		}

		failed := res.Parser
		failed.Panic(failed.Start())
		if sync == nil {
			return Result{Outcome: Failure, Parser: failed, Nodes: nodes}
		}

		s := p.Child()
		s.panicking = true
		s.panicAt = failed.PanicIndex()
		sync(&s)
		if !s.Panicking() {
			return Result{Outcome: RecoveredFailure, Parser: s, Nodes: nodes}
		}
		return Result{Outcome: Failure, Parser: failed, Nodes: nodes}
	}
}

// Build returns a Builder that produces kind on success and an Error node
// carrying code on failure.
func Build(kind syntax.Kind, code string) Builder {
	return func(r Result) (syntax.Node, bool) {
		start, end := r.Parser.First(), r.Parser.Current()
		if r.Outcome == Failure {
			return syntax.NewError(code, r.Parser.PanicIndex(), start, end), true
		}
		return syntax.New(kind, start, end), true
	}
}
