// Package token SPDX-License-Identifier: Apache-2.0
package token

import (
	"fmt"
	"sort"
	"sync"
)

// Kind identifies the class of a token. Grammars declare their own kinds
// starting at User.
type Kind int

const (
	Illegal Kind = iota
	EndOfFile
	Linebreak
	Indent
	Dedent

	// User is the first kind available to client lexicons.
	User Kind = 16
)

var (
	namesMu sync.RWMutex
	names   = map[Kind]string{
		Illegal:   "Illegal",
		EndOfFile: "EndOfFile",
		Linebreak: "Linebreak",
		Indent:    "Indent",
		Dedent:    "Dedent",
	}
)

// Register installs a display name for a kind. Registering the same kind
// twice replaces the previous name.
func Register(k Kind, name string) Kind {
	namesMu.Lock()
	defer namesMu.Unlock()
	names[k] = name
	return k
}

// Lookup returns the kind registered under name.
func Lookup(name string) (Kind, bool) {
	namesMu.RLock()
	defer namesMu.RUnlock()
	for k, n := range names {
		if n == name {
			return k, true
		}
	}
	return Illegal, false
}

// Kinds lists every named kind in ascending order.
func Kinds() []Kind {
	namesMu.RLock()
	defer namesMu.RUnlock()
	out := make([]Kind, 0, len(names))
	for k := range names {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (k Kind) String() string {
	namesMu.RLock()
	defer namesMu.RUnlock()
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Position is a location in source. Line and Column are 1-based, Offset is
// the 0-based code point index.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is an immutable lexeme. Length counts code points.
type Token struct {
	Kind   Kind
	Pos    Position
	Length int
}

// End is the code point offset one past the token.
func (t Token) End() int {
	return t.Pos.Offset + t.Length
}

// Text slices the token out of the source it was lexed from.
func (t Token) Text(src []rune) string {
	end := t.End()
	if t.Pos.Offset < 0 || end > len(src) || t.Pos.Offset > end {
		return ""
	}
	return string(src[t.Pos.Offset:end])
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%d)@%s", t.Kind, t.Length, t.Pos)
}
