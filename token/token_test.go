package token

import (
	"testing"
)

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name      string
		tokenType TokenType
		line      int32
		column    int
		want      Token
	}{
		{
			name:      "Create ASSIGN token",
			tokenType: ASSIGN,
			line:      3,
			column:    5,
			want:      Token{TokenType: ASSIGN, Lexeme: "=", Line: 3, Column: 5},
		},
		{
			name:      "Create LPA token",
			tokenType: LPA,
			line:      1,
			column:    0,
			want:      Token{TokenType: LPA, Lexeme: "(", Line: 1, Column: 0},
		},
		{
			name:      "Create EOF token",
			tokenType: EOF,
			line:      10,
			column:    0,
			want:      Token{TokenType: EOF, Lexeme: "EOF", Line: 10, Column: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateToken(tt.tokenType, tt.line, tt.column)
			if got != tt.want {
				t.Errorf("CreateToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateLiteralToken(t *testing.T) {
	got := CreateLiteralToken(INT, int64(42), "42", 2, 1)
	want := Token{TokenType: INT, Lexeme: "42", Literal: int64(42), Line: 2, Column: 1}
	if got != want {
		t.Errorf("CreateLiteralToken() = %v, want %v", got, want)
	}
}

func TestKeyWordsLookup(t *testing.T) {
	tests := []struct {
		lexeme string
		want   TokenType
	}{
		{"namespace", NAMESPACE},
		{"fn", FUNC},
		{"auto", AUTO},
		{"print", PRINT},
		{"halt", HALT},
		{"int", TYPE_INT},
		{"string", TYPE_STRING},
	}

	for _, tt := range tests {
		got, ok := KeyWords[tt.lexeme]
		if !ok {
			t.Fatalf("expected %q to be a known keyword", tt.lexeme)
		}
		if got != tt.want {
			t.Errorf("KeyWords[%q] = %v, want %v", tt.lexeme, got, tt.want)
		}
	}

	if _, ok := KeyWords["notAKeyword"]; ok {
		t.Errorf("expected \"notAKeyword\" to not be a keyword")
	}
}
