package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// feed drives p over input and returns the first resolved result together
// with how many code points were fed. Running out of input terminates.
func feed(p Pattern, input string) (Result, int) {
	runes := []rune(input)
	for i, cp := range runes {
		if res := p.Check(cp, i); res.Outcome != Continue {
			return res, i + 1
		}
	}
	return p.Terminate(len(runes)), len(runes)
}

// matched returns the prefix of input that p accepted, or false.
func matched(p Pattern, input string) (string, bool) {
	res, fed := feed(p, input)
	if res.Outcome != Completed {
		return "", false
	}
	return string([]rune(input)[:fed-res.Backtrack]), true
}

func TestText(t *testing.T) {
	p := Text("fn")

	res, fed := feed(p, "fn")
	assert.Equal(t, Completed, res.Outcome)
	assert.Equal(t, 0, res.Backtrack)
	assert.Equal(t, 2, fed)

	res, fed = feed(p, "fx")
	assert.Equal(t, Failed, res.Outcome)
	assert.Equal(t, 2, fed)

	// a literal can never be satisfied by running out of input
	res, _ = feed(p, "f")
	assert.Equal(t, Failed, res.Outcome)
}

func TestAnyOfNotAnyOf(t *testing.T) {
	digits := AnyOf("0123456789")
	assert.Equal(t, completed(0), digits.Check('7', 0))
	assert.Equal(t, resultFailed, digits.Check('x', 0))
	assert.Equal(t, resultFailed, digits.Terminate(0))

	other := NotAnyOf(" \t")
	assert.Equal(t, completed(0), other.Check('x', 0))
	assert.Equal(t, resultFailed, other.Check('\t', 0))
}

func TestRepeatsBacksOffOneCodepoint(t *testing.T) {
	p := Repeats(Text("L-"))

	res, fed := feed(p, "L-;")
	assert.Equal(t, Completed, res.Outcome)
	assert.Equal(t, 1, res.Backtrack)
	assert.Equal(t, 3, fed)

	res, _ = feed(p, "A")
	assert.Equal(t, Failed, res.Outcome)
	assert.Equal(t, 0, res.Backtrack)
}

func TestRepeatsGreedy(t *testing.T) {
	p := Repeats(Text("AB"))

	m, ok := matched(p, "ABABC")
	assert.True(t, ok)
	assert.Equal(t, "ABAB", m)

	// runs out of input on a whole repetition
	m, ok = matched(p, "ABAB")
	assert.True(t, ok)
	assert.Equal(t, "ABAB", m)

	// a partial repetition is ceded back
	m, ok = matched(p, "ABA;")
	assert.True(t, ok)
	assert.Equal(t, "AB", m)

	m, ok = matched(p, "ABA")
	assert.True(t, ok)
	assert.Equal(t, "AB", m)
}

func TestRepeatsRange(t *testing.T) {
	p := RepeatsRange(AnyOf("a"), 2, 3)

	_, ok := matched(p, "a;")
	assert.False(t, ok)

	m, ok := matched(p, "aa;")
	assert.True(t, ok)
	assert.Equal(t, "aa", m)

	m, ok = matched(p, "aaaaa")
	assert.True(t, ok)
	assert.Equal(t, "aaa", m)

	zero := RepeatsRange(AnyOf("a"), 0, -1)
	m, ok = matched(zero, ";")
	assert.True(t, ok)
	assert.Equal(t, "", m)
}

func TestSequence(t *testing.T) {
	symbol := Sequence(NotAnyOf("0123456789 "), RepeatsRange(NotAnyOf(" "), 0, -1))

	m, ok := matched(symbol, "env Environment")
	assert.True(t, ok)
	assert.Equal(t, "env", m)

	m, ok = matched(symbol, "x")
	assert.True(t, ok)
	assert.Equal(t, "x", m)

	_, ok = matched(symbol, "4x")
	assert.False(t, ok)
}

func TestSequenceReplaysCededCodepoints(t *testing.T) {
	// the greedy run of 'a' overshoots into the 'b' that the second part needs
	p := Sequence(Repeats(AnyOf("a")), Text("b"), Repeats(AnyOf("c")))

	m, ok := matched(p, "aabcc;")
	assert.True(t, ok)
	assert.Equal(t, "aabcc", m)

	m, ok = matched(p, "abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", m)

	_, ok = matched(p, "aab")
	assert.False(t, ok)
}

func TestUnion(t *testing.T) {
	p := Union(Text("->"), Repeats(AnyOf("-")))

	m, ok := matched(p, "->x")
	assert.True(t, ok)
	assert.Equal(t, "->", m)

	m, ok = matched(p, "--x")
	assert.True(t, ok)
	assert.Equal(t, "--", m)

	_, ok = matched(p, "x")
	assert.False(t, ok)
}

func TestBacktrackRoundTrip(t *testing.T) {
	cases := []struct {
		pattern Pattern
		input   string
	}{
		{Repeats(Text("L-")), "L-L-;"},
		{Sequence(Repeats(AnyOf("a")), Text("b")), "aaab!"},
		{Union(Text("fn"), Repeats(AnyOf("fnx"))), "fnxfn "},
		{RepeatsRange(AnyOf("12"), 0, -1), "1212x"},
	}

	for _, tc := range cases {
		res, fed := feed(tc.pattern, tc.input)
		if !assert.Equal(t, Completed, res.Outcome, tc.input) {
			continue
		}
		prefix := string([]rune(tc.input)[:fed-res.Backtrack])

		// feeding just the matched prefix reaches the same match
		again, ok := matched(tc.pattern, prefix)
		assert.True(t, ok, tc.input)
		assert.Equal(t, prefix, again, tc.input)
	}
}

func TestPatternsResetOnNewAttempt(t *testing.T) {
	p := Sequence(Text("a"), Text("b"))

	_, ok := matched(p, "ax")
	assert.False(t, ok)

	m, ok := matched(p, "ab")
	assert.True(t, ok)
	assert.Equal(t, "ab", m)
}
