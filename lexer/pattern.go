package lexer

import (
	"strings"

	"alumi/token"
)

// Outcome is the state a pattern reports after each code point.
type Outcome int

const (
	Continue Outcome = iota
	Completed
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "Continue"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	}
	return "Outcome(?)"
}

// Result is returned by every pattern step. Backtrack is the number of code
// points already fed that are not part of the match, and is only non-zero
// when Outcome is Completed.
type Result struct {
	Outcome   Outcome
	Backtrack int
}

var (
	resultContinue = Result{Outcome: Continue}
	resultFailed   = Result{Outcome: Failed}
)

func completed(backtrack int) Result {
	return Result{Outcome: Completed, Backtrack: backtrack}
}

// Pattern matches a run of code points one at a time. Check receives the code
// point at index, counted from the first code point of the attempt, and a
// Check at index 0 starts a fresh attempt. Terminate is called when input ends
// (or a line boundary cuts the attempt short) after index code points.
//
// Composite patterns keep per-attempt state, so a single pattern value must
// not be shared by two patterns that run in parallel.
type Pattern interface {
	Check(cp rune, index int) Result
	Terminate(index int) Result
}

type text struct {
	literal []rune
}

// Text matches a literal string.
func Text(literal string) Pattern {
	return &text{literal: []rune(literal)}
}

func (t *text) Check(cp rune, index int) Result {
	if len(t.literal) == 0 {
		return completed(1)
	}
	if index >= len(t.literal) || t.literal[index] != cp {
		return resultFailed
	}
	if index == len(t.literal)-1 {
		return completed(0)
	}
	return resultContinue
}

func (t *text) Terminate(index int) Result {
	if len(t.literal) == 0 && index == 0 {
		return completed(0)
	}
	return resultFailed
}

type anyOf struct {
	set    string
	negate bool
}

// AnyOf matches one code point contained in set.
func AnyOf(set string) Pattern {
	return &anyOf{set: set}
}

// NotAnyOf matches one code point not contained in set.
func NotAnyOf(set string) Pattern {
	return &anyOf{set: set, negate: true}
}

func (a *anyOf) Check(cp rune, index int) Result {
	if index != 0 {
		return resultFailed
	}
	if strings.ContainsRune(a.set, cp) != a.negate {
		return completed(0)
	}
	return resultFailed
}

func (a *anyOf) Terminate(int) Result {
	return resultFailed
}

type repeats struct {
	inner    Pattern
	min, max int

	buf   []rune
	count int
	start int
	done  bool
}

// Repeats matches inner one or more times.
func Repeats(inner Pattern) Pattern {
	return RepeatsRange(inner, 1, -1)
}

// RepeatsRange matches inner between min and max times. A negative max means
// no upper bound.
func RepeatsRange(inner Pattern, min, max int) Pattern {
	return &repeats{inner: inner, min: min, max: max}
}

func (r *repeats) reset() {
	r.buf = r.buf[:0]
	r.count = 0
	r.start = 0
	r.done = false
}

func (r *repeats) Check(cp rune, index int) Result {
	if index == 0 {
		r.reset()
	}
	if r.done {
		return resultFailed
	}
	r.buf = append(r.buf, cp)
	return r.feed(index, index)
}

// feed runs buf[from:last+1] through the current repetition. When a match
// ends short of last, the ceded code points start the next repetition.
func (r *repeats) feed(from, last int) Result {
	for i := from; i <= last; i++ {
		res := r.inner.Check(r.buf[i], i-r.start)
		switch res.Outcome {
		case Continue:
			continue
		case Failed:
			// back off to the last whole repetition
			return r.finish(last + 1)
		}
		end := i + 1 - res.Backtrack
		if end == r.start {
			return r.finish(last + 1)
		}
		r.count++
		r.start = end
		if r.max >= 0 && r.count >= r.max {
			return r.finish(last + 1)
		}
		i = end - 1
	}
	return resultContinue
}

func (r *repeats) finish(fed int) Result {
	r.done = true
	if r.count < r.min {
		return resultFailed
	}
	return completed(fed - r.start)
}

func (r *repeats) Terminate(index int) Result {
	if index == 0 {
		r.reset()
	}
	if r.done {
		return resultFailed
	}
	for r.start < index {
		res := r.inner.Terminate(index - r.start)
		if res.Outcome != Completed {
			return r.finish(index)
		}
		end := index - res.Backtrack
		if end <= r.start {
			return r.finish(index)
		}
		r.count++
		r.start = end
		if r.max >= 0 && r.count >= r.max {
			return r.finish(index)
		}
		if end < index {
			if res := r.feed(end, index-1); res.Outcome != Continue {
				return res
			}
		}
	}
	return r.finish(index)
}

type sequence struct {
	parts []Pattern

	buf   []rune
	part  int
	start int
}

// Sequence matches each part in order, each one starting where the previous
// one ended.
func Sequence(parts ...Pattern) Pattern {
	return &sequence{parts: parts}
}

func (s *sequence) reset() {
	s.buf = s.buf[:0]
	s.part = 0
	s.start = 0
}

func (s *sequence) Check(cp rune, index int) Result {
	if index == 0 {
		s.reset()
	}
	if s.part >= len(s.parts) {
		return resultFailed
	}
	s.buf = append(s.buf, cp)
	return s.feed(index, index)
}

func (s *sequence) feed(from, last int) Result {
	for i := from; i <= last; i++ {
		res := s.parts[s.part].Check(s.buf[i], i-s.start)
		switch res.Outcome {
		case Continue:
			continue
		case Failed:
			s.part = len(s.parts)
			return resultFailed
		}
		end := i + 1 - res.Backtrack
		s.part++
		s.start = end
		if s.part == len(s.parts) {
			return completed(last + 1 - end)
		}
		i = end - 1
	}
	return resultContinue
}

func (s *sequence) Terminate(index int) Result {
	if index == 0 {
		s.reset()
	}
	for s.part < len(s.parts) {
		res := s.parts[s.part].Terminate(index - s.start)
		if res.Outcome != Completed {
			s.part = len(s.parts)
			return resultFailed
		}
		end := index - res.Backtrack
		s.part++
		s.start = end
		if s.part == len(s.parts) {
			return completed(index - end)
		}
		if end < index {
			if res := s.feed(end, index-1); res.Outcome != Continue {
				return res
			}
		}
	}
	return resultFailed
}

type union struct {
	alternatives []Pattern
	dead         []bool
}

// Union runs every alternative in parallel and completes with the first one
// to complete.
func Union(alternatives ...Pattern) Pattern {
	return &union{alternatives: alternatives, dead: make([]bool, len(alternatives))}
}

func (u *union) Check(cp rune, index int) Result {
	if index == 0 {
		clear(u.dead)
	}
	alive := false
	for i, alt := range u.alternatives {
		if u.dead[i] {
			continue
		}
		res := alt.Check(cp, index)
		switch res.Outcome {
		case Completed:
			u.kill()
			return res
		case Failed:
			u.dead[i] = true
		default:
			alive = true
		}
	}
	if !alive {
		return resultFailed
	}
	return resultContinue
}

func (u *union) Terminate(index int) Result {
	if index == 0 {
		clear(u.dead)
	}
	for i, alt := range u.alternatives {
		if u.dead[i] {
			continue
		}
		if res := alt.Terminate(index); res.Outcome == Completed {
			u.kill()
			return res
		}
	}
	u.kill()
	return resultFailed
}

func (u *union) kill() {
	for i := range u.dead {
		u.dead[i] = true
	}
}

// Tokenizer is a pattern whose matches produce tokens of Kind.
type Tokenizer struct {
	Pattern
	Kind token.Kind
}

// Tokenize wraps p so the lexer emits a token of kind for each match.
// Patterns registered without it are consumed silently.
func Tokenize(kind token.Kind, p Pattern) Pattern {
	return &Tokenizer{Pattern: p, Kind: kind}
}
