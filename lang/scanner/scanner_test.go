package scanner_test

import (
	"testing"

	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	var s scanner.Scanner
	s.Init(src)
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll(t, "(){},.-+;*!=<=>=<>==/")
	want := []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.COMMA,
		token.DOT, token.MINUS, token.PLUS, token.SEMI, token.STAR,
		token.BANG_EQ, token.LT_EQ, token.GT_EQ, token.LT, token.GT_EQ,
		token.EQ, token.SLASH, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, k := range want {
		require.Equalf(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll(t, "class fun var this super nil true false orchard")
	require.Equal(t, token.CLASS, toks[0].Kind)
	require.Equal(t, token.FUN, toks[1].Kind)
	require.Equal(t, token.VAR, toks[2].Kind)
	require.Equal(t, token.THIS, toks[3].Kind)
	require.Equal(t, token.SUPER, toks[4].Kind)
	require.Equal(t, token.NIL, toks[5].Kind)
	require.Equal(t, token.TRUE, toks[6].Kind)
	require.Equal(t, token.FALSE, toks[7].Kind)
	// "orchard" starts with the keyword "or" but must scan as one identifier.
	require.Equal(t, token.IDENT, toks[8].Kind)
	require.Equal(t, "orchard", toks[8].Lexeme)
}

func TestScanNumberAndString(t *testing.T) {
	toks := scanAll(t, `123 1.5 "hello world"`)
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, "123", toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[1].Kind)
	require.Equal(t, "1.5", toks[1].Lexeme)
	require.Equal(t, token.STRING, toks[2].Kind)
	require.Equal(t, `"hello world"`, toks[2].Lexeme)
}

func TestScanLineTracking(t *testing.T) {
	toks := scanAll(t, "var a\n= 1;\n\nprint a;")
	require.Equal(t, 1, toks[0].Line) // var
	require.Equal(t, 1, toks[1].Line) // a
	require.Equal(t, 2, toks[2].Line) // =
	require.Equal(t, 4, toks[len(toks)-2].Line) // final ; (last token before EOF)
}

func TestScanSkipsCommentsAndWhitespace(t *testing.T) {
	toks := scanAll(t, "// a comment\n   var   x = 1; // trailing\n")
	require.Equal(t, token.VAR, toks[0].Kind)
	require.Equal(t, 2, toks[0].Line)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(t, `"no closing quote`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}

func TestScanRestartable(t *testing.T) {
	var s scanner.Scanner
	s.Init("var")
	first := s.Scan()
	require.Equal(t, token.VAR, first.Kind)
	eof := s.Scan()
	require.Equal(t, token.EOF, eof.Kind)
	// calling Scan again past EOF keeps returning EOF, never panics.
	again := s.Scan()
	require.Equal(t, token.EOF, again.Kind)
}
