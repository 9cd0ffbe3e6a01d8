package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterAndLookup(t *testing.T) {
	k := Register(User+40, "Arrow")
	assert.Equal(t, "Arrow", k.String())

	got, ok := Lookup("Arrow")
	assert.True(t, ok)
	assert.Equal(t, k, got)

	_, ok = Lookup("NoSuchKind")
	assert.False(t, ok)

	assert.Equal(t, "Kind(99)", Kind(99).String())
	assert.Contains(t, Kinds(), k)
	assert.Equal(t, []Kind{Illegal, EndOfFile, Linebreak, Indent, Dedent}, Kinds()[:5])
}

func TestTokenText(t *testing.T) {
	src := []rune("añb := 1")
	tok := Token{Kind: User, Pos: Position{Line: 1, Column: 1, Offset: 0}, Length: 3}

	assert.Equal(t, "añb", tok.Text(src))
	assert.Equal(t, 3, tok.End())
	assert.Equal(t, "", Token{Pos: Position{Offset: 7}, Length: 4}.Text(src))
	assert.Equal(t, "Indent(0)@2:1", Token{Kind: Indent, Pos: Position{Line: 2, Column: 1}}.String())
}
