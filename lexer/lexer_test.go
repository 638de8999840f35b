package lexer

import (
	"exp/token"
	"testing"
)

func tokenTypes(tokens []token.Token) []token.TokenType {
	types := make([]token.TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.TokenType
	}
	return types
}

func runScan(t *testing.T, input string, want []token.TokenType) {
	t.Helper()
	scanner := New(input)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	gotTypes := tokenTypes(got)
	if len(gotTypes) != len(want) {
		t.Fatalf("Scan() = %v, want %v", gotTypes, want)
	}
	for i := range want {
		if gotTypes[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, gotTypes[i], want[i])
		}
	}
}

func TestOperatorsSuccess(t *testing.T) {
	want := []token.TokenType{
		token.EQUAL_EQUAL,
		token.DIV,
		token.ASSIGN,
		token.MULT,
		token.ADD,
		token.LARGER,
		token.SUB,
		token.LESS,
		token.NOT_EQUAL,
		token.LESS_EQUAL,
		token.LARGER_EQUAL,
		token.BANG,
		token.BANG,
		token.EOF,
	}
	runScan(t, "==/=*+>-<!=<=>=!!", want)
}

func TestScanSuccess(t *testing.T) {
	want := []token.TokenType{
		token.LPA,
		token.RPA,
		token.LCUR,
		token.RCUR,
		token.MULT,
		token.MULT,
		token.SEMICOLON,
		token.ADD,
		token.NOT_EQUAL,
		token.LESS_EQUAL,
		token.EOF,
	}
	runScan(t, "(){}**;+!=<=", want)
}

func TestArrayAndDotSyntax(t *testing.T) {
	want := []token.TokenType{
		token.IDENTIFIER,
		token.DOT,
		token.IDENTIFIER,
		token.LBRACK,
		token.INT,
		token.RBRACK,
		token.SEMICOLON,
		token.EOF,
	}
	runScan(t, "math.values[0];", want)
}

func TestLineComment(t *testing.T) {
	want := []token.TokenType{
		token.AUTO,
		token.IDENTIFIER,
		token.ASSIGN,
		token.INT,
		token.SEMICOLON,
		token.EOF,
	}
	runScan(t, "auto x = 1; // trailing remark\n", want)
}

func TestLeadingDotFloat(t *testing.T) {
	want := []token.TokenType{
		token.FLOAT,
		token.EOF,
	}
	runScan(t, ".5", want)
}

func TestKeywordsAndNamespace(t *testing.T) {
	want := []token.TokenType{
		token.NAMESPACE,
		token.IDENTIFIER,
		token.LCUR,
		token.FUNC,
		token.IDENTIFIER,
		token.LPA,
		token.RPA,
		token.LCUR,
		token.RETURN,
		token.TRUE,
		token.SEMICOLON,
		token.RCUR,
		token.RCUR,
		token.EOF,
	}
	runScan(t, "namespace geo { fn ok() { return true; } }", want)
}

func TestStringLiteral(t *testing.T) {
	scanner := New(`"hello world"`)
	got, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Scan() = %v, want 2 tokens", got)
	}
	if got[0].TokenType != token.STRING || got[0].Literal != "hello world" {
		t.Errorf("got %v, want STRING literal %q", got[0], "hello world")
	}
}
