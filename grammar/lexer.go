package grammar

import (
	stderrors "errors"
	"io"

	"github.com/alecthomas/participle/v2/lexer"

	alumilexer "alumi/lexer"
	"alumi/token"
)

// LexerDefinition exposes the alumi lexer to participle. Token types are the
// token kinds; the EndOfFile token becomes participle's EOF.
type LexerDefinition struct{}

var _ lexer.Definition = LexerDefinition{}

// Symbols maps every registered kind name to its token type.
func (LexerDefinition) Symbols() map[string]lexer.TokenType {
	symbols := map[string]lexer.TokenType{"EOF": lexer.EOF}
	for _, k := range token.Kinds() {
		if k == token.EndOfFile {
			continue
		}
		symbols[k.String()] = lexer.TokenType(k)
	}
	return symbols
}

// Lex tokenizes the whole input in every-line mode.
func (LexerDefinition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	src := []rune(string(data))
	tokens, err := NewLexer().Lex(src)
	if err != nil {
		var failure *alumilexer.Failure
		if stderrors.As(err, &failure) {
			return nil, &lexer.Error{
				Msg: failure.Reason.String(),
				Pos: convertPosition(filename, failure.Position),
			}
		}
		return nil, err
	}
	return &tokenStream{filename: filename, src: src, tokens: tokens}, nil
}

type tokenStream struct {
	filename string
	src      []rune
	tokens   []token.Token
	next     int
}

func (s *tokenStream) Next() (lexer.Token, error) {
	for s.next < len(s.tokens) {
		tok := s.tokens[s.next]
		s.next++
		if tok.Kind == token.EndOfFile {
			break
		}
		return lexer.Token{
			Type:  lexer.TokenType(tok.Kind),
			Value: tok.Text(s.src),
			Pos:   convertPosition(s.filename, tok.Pos),
		}, nil
	}
	s.next = len(s.tokens)
	return lexer.EOFToken(s.eofPosition()), nil
}

func (s *tokenStream) eofPosition() lexer.Position {
	if n := len(s.tokens); n > 0 {
		return convertPosition(s.filename, s.tokens[n-1].Pos)
	}
	return lexer.Position{Filename: s.filename, Line: 1, Column: 1}
}

func convertPosition(filename string, pos token.Position) lexer.Position {
	return lexer.Position{
		Filename: filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}
