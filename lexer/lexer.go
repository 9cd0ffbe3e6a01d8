package lexer

import (
	"fmt"
	"sync"

	"alumi/token"
)

// Reason classifies a lexer failure.
type Reason int

const (
	UnexpectedCodepoint Reason = iota + 1
	MismatchedIndentionCharacters
	MismatchedIndentationLevel
)

func (r Reason) String() string {
	switch r {
	case UnexpectedCodepoint:
		return "unexpected code point"
	case MismatchedIndentionCharacters:
		return "mismatched indentation characters"
	case MismatchedIndentationLevel:
		return "dedent does not match any outer indentation level"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Failure is returned when a source cannot be tokenized. Tokens holds
// everything produced before the failure.
type Failure struct {
	Reason   Reason
	Position token.Position
	Tokens   []token.Token
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s at %s", f.Reason, f.Position)
}

// Index is the absolute code point index of the failure.
func (f *Failure) Index() int {
	return f.Position.Offset
}

// Indentation selects how leading whitespace turns into tokens.
type Indentation int

const (
	// EveryLine emits one Indent token per non-blank line and a Linebreak
	// before EndOfFile when the input does not end in one.
	EveryLine Indentation = iota
	// OnChange emits Indent when a line is deeper than the one before it and
	// one Dedent per closed level when it is shallower.
	OnChange
)

// Option configures a Lexer.
type Option func(*Lexer)

// WithIndentation selects the indentation mode. The default is EveryLine.
func WithIndentation(mode Indentation) Option {
	return func(l *Lexer) {
		l.mode = mode
	}
}

// Lexer turns code points into tokens using a fixed set of patterns. Earlier
// patterns win ties between matches of equal length.
type Lexer struct {
	mu       sync.Mutex
	patterns []Pattern
	mode     Indentation
}

// New builds a lexer over patterns in priority order.
func New(patterns []Pattern, opts ...Option) *Lexer {
	l := &Lexer{patterns: patterns}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Mode reports the indentation mode.
func (l *Lexer) Mode() Indentation {
	return l.mode
}

// LexString tokenizes a UTF-8 string.
func (l *Lexer) LexString(src string) ([]token.Token, error) {
	return l.Lex([]rune(src))
}

// Lex tokenizes src. On failure the error is a *Failure.
func (l *Lexer) Lex(src []rune) ([]token.Token, error) {
	// patterns carry per-attempt state
	l.mu.Lock()
	defer l.mu.Unlock()

	s := &scan{lexer: l, src: src, line: 1}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.tokens, nil
}

type scan struct {
	lexer  *Lexer
	src    []rune
	tokens []token.Token

	pos       int
	line      int
	lineStart int

	indentChar rune
	levels     []int
}

func (s *scan) position(offset int) token.Position {
	return token.Position{Line: s.line, Column: offset - s.lineStart + 1, Offset: offset}
}

func (s *scan) emit(kind token.Kind, offset, length int) {
	s.tokens = append(s.tokens, token.Token{Kind: kind, Pos: s.position(offset), Length: length})
}

func (s *scan) fail(reason Reason, offset int) error {
	return &Failure{Reason: reason, Position: s.position(offset), Tokens: s.tokens}
}

// lineBreak reports the width of the line break at i, or 0.
func (s *scan) lineBreak(i int) int {
	if i >= len(s.src) {
		return 0
	}
	switch s.src[i] {
	case '\n':
		return 1
	case '\r':
		if i+1 < len(s.src) && s.src[i+1] == '\n' {
			return 2
		}
	}
	return 0
}

func (s *scan) run() error {
	for s.pos < len(s.src) {
		if err := s.indentation(); err != nil {
			return err
		}
		for s.pos < len(s.src) && s.lineBreak(s.pos) == 0 {
			if err := s.next(); err != nil {
				return err
			}
		}
		if n := s.lineBreak(s.pos); n > 0 {
			s.emit(token.Linebreak, s.pos, n)
			s.pos += n
			s.line++
			s.lineStart = s.pos
		}
	}

	switch s.lexer.mode {
	case OnChange:
		for len(s.levels) > 1 {
			s.levels = s.levels[:len(s.levels)-1]
			s.emit(token.Dedent, s.pos, s.levels[len(s.levels)-1])
		}
	default:
		if n := len(s.tokens); n == 0 || s.tokens[n-1].Kind != token.Linebreak {
			s.emit(token.Linebreak, s.pos, 0)
		}
	}
	s.emit(token.EndOfFile, s.pos, 0)
	return nil
}

// indentation consumes the leading whitespace of a line and emits the
// indentation tokens for it. Blank lines produce none.
func (s *scan) indentation() error {
	start := s.pos
	end := start
	for end < len(s.src) && (s.src[end] == ' ' || s.src[end] == '\t') {
		end++
	}
	s.pos = end

	// blank lines count towards the indentation character too
	for i := start; i < end; i++ {
		if s.indentChar == 0 {
			s.indentChar = s.src[i]
		}
		if s.src[i] != s.indentChar {
			return s.fail(MismatchedIndentionCharacters, i)
		}
	}
	if end >= len(s.src) || s.lineBreak(end) > 0 {
		return nil
	}

	width := end - start
	if s.lexer.mode == EveryLine {
		s.emit(token.Indent, start, width)
		return nil
	}

	if len(s.levels) == 0 {
		s.levels = append(s.levels, width)
		s.emit(token.Indent, start, width)
		return nil
	}
	top := s.levels[len(s.levels)-1]
	switch {
	case width > top:
		s.levels = append(s.levels, width)
		s.emit(token.Indent, start, width)
	case width < top:
		for len(s.levels) > 1 && s.levels[len(s.levels)-1] > width {
			s.levels = s.levels[:len(s.levels)-1]
			s.emit(token.Dedent, start, s.levels[len(s.levels)-1])
		}
		if s.levels[len(s.levels)-1] != width {
			return s.fail(MismatchedIndentationLevel, end)
		}
	}
	return nil
}

// next runs every pattern from the current position and keeps the longest
// match.
func (s *scan) next() error {
	patterns := s.lexer.patterns
	start := s.pos
	live := make([]bool, len(patterns))
	for i := range live {
		live[i] = true
	}
	remaining := len(patterns)
	best, bestLen := -1, 0

	consider := func(i int, res Result, fed int) {
		live[i] = false
		remaining--
		if res.Outcome != Completed {
			return
		}
		length := fed - res.Backtrack
		if best < 0 || length > bestLen || (length == bestLen && i < best) {
			best, bestLen = i, length
		}
	}

	at := start
	for remaining > 0 && at < len(s.src) && s.lineBreak(at) == 0 {
		for i, p := range patterns {
			if !live[i] {
				continue
			}
			if res := p.Check(s.src[at], at-start); res.Outcome != Continue {
				consider(i, res, at-start+1)
			}
		}
		at++
	}
	if remaining > 0 {
		for i, p := range patterns {
			if live[i] {
				consider(i, p.Terminate(at-start), at-start)
			}
		}
	}

	if best < 0 || bestLen <= 0 {
		return s.fail(UnexpectedCodepoint, start)
	}
	if t, ok := patterns[best].(*Tokenizer); ok {
		s.emit(t.Kind, start, bestLen)
	}
	s.pos = start + bestLen
	return nil
}
