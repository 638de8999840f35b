package main

import (
	"context"
	"exp/bytecode"
	"exp/ir"
	"exp/lexer"
	"exp/optimize"
	"exp/parser"
	"exp/semantic"
	"exp/token"
	"exp/vm"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"
)

// replCmd is a line-buffering REPL that waits for a balanced,
// complete statement before compiling and running it.
type replCmd struct {
	optimize bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive EXP session" }
func (*replCmd) Usage() string    { return "repl [-o]:\n  Read, compile, and run EXP statements interactively.\n" }

func (cmd *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.optimize, "o", false, "run the optimizer before emitting bytecode")
	f.BoolVar(&cmd.optimize, "otimizar", false, "run the optimizer before emitting bytecode")
}

func (cmd *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to the EXP programming language!")

	rl, err := readline.New("exp> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to start REPL: %s\n", err.Error())
		return subcommands.ExitFailure
	}
	defer rl.Close()

	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt("exp> ")
		} else {
			rl.SetPrompt("...  ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buffer.Reset()
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %s\n", err.Error())
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		scanner := lexer.New(source)
		tokens, lexErr := scanner.Scan()
		if lexErr != nil {
			fmt.Println(lexErr)
			buffer.Reset()
			continue
		}

		if !isInputReady(tokens) {
			continue
		}

		program, parseErrs := parser.Make(tokens).Parse()
		if len(parseErrs) > 0 {
			if allParseErrorsAtEOF(parseErrs, tokens[len(tokens)-1]) {
				continue
			}
			fmt.Fprint(os.Stdout, "Parse error: ")
			for _, pErr := range parseErrs {
				fmt.Fprintf(os.Stdout, "%v\n", pErr)
			}
			buffer.Reset()
			continue
		}

		if _, semErr := semantic.Analyze(program); semErr != nil {
			fmt.Fprintln(os.Stdout, semErr.Error())
			buffer.Reset()
			continue
		}

		instructions := ir.Generate(program)
		if cmd.optimize {
			instructions = optimize.Optimize(instructions)
		}
		bc, err := bytecode.Emit(instructions)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			buffer.Reset()
			continue
		}

		if runtimeErr := vm.Run(bc, os.Stdout); runtimeErr != nil {
			fmt.Fprintln(os.Stderr, runtimeErr.Error())
			buffer.Reset()
			continue
		}
		buffer.Reset()
	}
}

// isInputReady reports whether tokens form a balanced, complete
// statement: braces must close and the last token must not be an
// operator or keyword that expects more input.
func isInputReady(tokens []token.Token) bool {
	braceBalance := 0
	for _, tok := range tokens {
		switch tok.TokenType {
		case token.LCUR:
			braceBalance++
		case token.RCUR:
			braceBalance--
		}
	}
	if braceBalance > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.TokenType {
	case token.ASSIGN, token.ADD, token.SUB, token.MULT, token.DIV, token.BANG,
		token.EQUAL_EQUAL, token.NOT_EQUAL, token.LESS, token.LESS_EQUAL,
		token.LARGER, token.LARGER_EQUAL, token.COMMA, token.LPA, token.LCUR,
		token.IF, token.ELSE, token.FUNC, token.RETURN, token.NAMESPACE,
		token.AUTO, token.AND, token.OR, token.PRINT:
		return false
	}

	return true
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].TokenType != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}

func allParseErrorsAtEOF(parseErrs []error, eof token.Token) bool {
	for _, parseErr := range parseErrs {
		syntaxErr, ok := parseErr.(parser.SyntaxError)
		if !ok {
			return false
		}
		if syntaxErr.Line != eof.Line || syntaxErr.Column != eof.Column {
			return false
		}
	}
	return len(parseErrs) > 0
}
