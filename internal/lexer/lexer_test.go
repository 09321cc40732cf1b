package lexer

import (
	"testing"

	"github.com/rill-lang/rill/internal/token"
)

func TestTokenizeOperators(t *testing.T) {
	toks, err := Tokenize("x = 1; y := 2; z ::= 3;")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []token.Type{
		token.IDENT, token.ASSIGN, token.INT, token.SEMICOLON,
		token.IDENT, token.DEFINE, token.INT, token.SEMICOLON,
		token.IDENT, token.REACTIVE, token.INT, token.SEMICOLON,
		token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, tt)
		}
	}
}

func TestTokenizeKeywordsAndIdents(t *testing.T) {
	toks, err := Tokenize("if loop break func struct import print println foo")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []token.Type{
		token.IF, token.LOOP, token.BREAK, token.FUNC, token.STRUCT,
		token.IMPORT, token.PRINT, token.PRINTLN, token.IDENT, token.EOF,
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %v, want %v", i, toks[i].Type, tt)
		}
	}
}

func TestTokenizeComment(t *testing.T) {
	toks, err := Tokenize("x := 1 # this is ignored #\ny := 2")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var idents int
	for _, tok := range toks {
		if tok.Type == token.IDENT {
			idents++
		}
	}
	if idents != 2 {
		t.Errorf("got %d idents, want 2 (comment should have been skipped): %+v", idents, toks)
	}
}

func TestTokenizeCharAndString(t *testing.T) {
	toks, err := Tokenize(`'a' "hello"`)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Type != token.CHAR || toks[0].Literal != "a" {
		t.Errorf("got char token %+v", toks[0])
	}
	if toks[1].Type != token.STRING || toks[1].Literal != "hello" {
		t.Errorf("got string token %+v", toks[1])
	}
}

func TestNewAndNextToken(t *testing.T) {
	l := New("42")
	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("NextToken: %v", err)
	}
	if tok.Type != token.INT || tok.Literal != "42" {
		t.Errorf("got %+v, want INT 42", tok)
	}
}
