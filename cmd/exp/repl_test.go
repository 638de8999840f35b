package main

import (
	"exp/lexer"
	"exp/parser"
	"testing"
)

func TestIsInputReadyWaitsForUnbalancedBraces(t *testing.T) {
	scanner := lexer.New(`namespace main {`)
	tokens, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if isInputReady(tokens) {
		t.Fatalf("expected isInputReady to report false for an unbalanced brace")
	}
}

func TestIsInputReadyAcceptsCompleteStatement(t *testing.T) {
	scanner := lexer.New(`namespace main { print("hi"); halt(); }`)
	tokens, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if !isInputReady(tokens) {
		t.Fatalf("expected isInputReady to report true for a complete, balanced statement")
	}
}

func TestIsInputReadyWaitsAfterDanglingOperator(t *testing.T) {
	scanner := lexer.New(`auto x = 1 +`)
	tokens, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	if isInputReady(tokens) {
		t.Fatalf("expected isInputReady to report false right after a dangling '+'")
	}
}

func TestAllParseErrorsAtEOFDetectsIncompleteInput(t *testing.T) {
	scanner := lexer.New(`namespace main { auto x =`)
	tokens, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() raised an error: %v", err)
	}
	_, parseErrs := parser.Make(tokens).Parse()
	if len(parseErrs) == 0 {
		t.Fatalf("expected incomplete input to produce at least one parse error")
	}
	if !allParseErrorsAtEOF(parseErrs, tokens[len(tokens)-1]) {
		t.Fatalf("expected all parse errors to be located at the EOF token")
	}
}
