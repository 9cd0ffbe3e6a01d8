// Package parser implements backtracking recursive descent over a token
// array with panic-mode recovery. Grammars are built by composing Rules.
package parser

import (
	"slices"

	"alumi/token"
)

// Subparser is a cursor over a shared token array. It is a value: copies
// are independent and never affect each other, which is what makes
// abandoning a failed attempt free.
type Subparser struct {
	tokens []token.Token

	start   int
	current int

	swallowed []token.Kind
	indents   []int

	panicking bool
	panicAt   int
}

// New returns a cursor at the first token.
func New(tokens []token.Token) Subparser {
	return Subparser{tokens: tokens}
}

// Child returns a copy of p anchored at p's current position.
func (p Subparser) Child() Subparser {
	c := p
	c.start = p.current
	return c
}

// Tokens returns the underlying token array.
func (p Subparser) Tokens() []token.Token {
	return p.tokens
}

// Start is the index the cursor was anchored at.
func (p Subparser) Start() int {
	return p.start
}

// First is the index of the first token read since Start that is not
// swallowed. Nodes begin there, so a rule reached across a swallowed line
// break does not span it. Without such a token it is Current.
func (p Subparser) First() int {
	i := p.start
	for i < p.current && slices.Contains(p.swallowed, p.tokens[i].Kind) {
		i++
	}
	return i
}

// Current is the index of the next token to be read.
func (p Subparser) Current() int {
	return p.current
}

// Consumed counts the tokens read since Start, swallowed ones included.
func (p Subparser) Consumed() int {
	return p.current - p.start
}

func (p Subparser) endOfFile() token.Token {
	if len(p.tokens) == 0 {
		return token.Token{Kind: token.EndOfFile}
	}
	return p.tokens[len(p.tokens)-1]
}

// Advance reads the next token that is not swallowed. Reading an Indent or
// Dedent token updates the indentation stack. Past the end of the array the
// last token is returned again.
func (p *Subparser) Advance() token.Token {
	for {
		if p.current >= len(p.tokens) {
			return p.endOfFile()
		}
		tok := p.tokens[p.current]
		p.current++
		if slices.Contains(p.swallowed, tok.Kind) {
			continue
		}
		if tok.Kind == token.Indent || tok.Kind == token.Dedent {
			p.indentTo(tok.Length)
		}
		return tok
	}
}

// Peek returns the token Advance would return without moving.
func (p Subparser) Peek() token.Token {
	for i := p.current; i < len(p.tokens); i++ {
		if !slices.Contains(p.swallowed, p.tokens[i].Kind) {
			return p.tokens[i]
		}
	}
	return p.endOfFile()
}

func (p *Subparser) indentTo(width int) {
	n := len(p.indents)
	for n > 0 && p.indents[n-1] > width {
		n--
	}
	// cap the slice so a push never writes into a sibling's stack
	p.indents = p.indents[:n:n]
	if n == 0 || p.indents[n-1] < width {
		p.indents = append(p.indents, width)
	}
}

// Indentation is the innermost indentation width, if any line has been
// read.
func (p Subparser) Indentation() (int, bool) {
	if len(p.indents) == 0 {
		return 0, false
	}
	return p.indents[len(p.indents)-1], true
}

// Depth is the height of the indentation stack.
func (p Subparser) Depth() int {
	return len(p.indents)
}

// Swallowing returns a copy of p that skips tokens of kinds.
func (p Subparser) Swallowing(kinds ...token.Kind) Subparser {
	c := p
	c.swallowed = append(slices.Clip(p.swallowed), kinds...)
	return c
}

// Use takes over the position, indentation and panic state of a cursor
// derived from p. The swallowed set and Start of p are kept.
func (p *Subparser) Use(other Subparser) {
	p.current = other.current
	p.indents = other.indents
	p.panicking = other.panicking
	p.panicAt = other.panicAt
}

// Restart moves the cursor back to Start.
func (p *Subparser) Restart() {
	p.current = p.start
}

// Panic enters panic mode at token index at. The first panic index is kept
// until the panic is cleared.
func (p *Subparser) Panic(at int) {
	if p.panicking {
		return
	}
	p.panicking = true
	p.panicAt = at
}

// ClearPanic leaves panic mode.
func (p *Subparser) ClearPanic() {
	p.panicking = false
	p.panicAt = 0
}

// Panicking reports whether the cursor is in panic mode.
func (p Subparser) Panicking() bool {
	return p.panicking
}

// PanicIndex is the token index where the current panic started.
func (p Subparser) PanicIndex() int {
	return p.panicAt
}

// last is the index of the most recently read token.
func (p Subparser) last() int {
	if p.current == 0 {
		return 0
	}
	return min(p.current, len(p.tokens)) - 1
}
