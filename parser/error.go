package parser

import (
	"exp/token"
	"fmt"
)

// SyntaxError reports a parse failure at a specific token, keeping
// enough of that token around (not just its position) so the message
// can show what was actually found there.
type SyntaxError struct {
	Line    int32
	Column  int
	Found   string
	Message string
}

// CreateSyntaxError builds a SyntaxError anchored on tok, the token the
// parser was looking at when it gave up.
func CreateSyntaxError(tok token.Token, message string) SyntaxError {
	return SyntaxError{
		Line:    tok.Line,
		Column:  tok.Column,
		Found:   tok.Lexeme,
		Message: message,
	}
}

func (e SyntaxError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("💥 EXP syntax error (line %d, column %d): %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("💥 EXP syntax error (line %d, column %d, near %q): %s", e.Line, e.Column, e.Found, e.Message)
}
