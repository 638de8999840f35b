package main

import (
	"context"
	"exp/bytecode"
	"exp/compiler"
	"exp/parser"
	"exp/vm"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

// runCmd is the "run" subcommand: -a/--arquivo picks the
// source file, -p/--processar executes it, -o/--otimizar runs the
// optimizer first, -v/--verbose dumps intermediate artifacts.
type runCmd struct {
	file     string
	process  bool
	optimize bool
	verbose  bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Compile (and optionally execute) an .exp source file" }
func (*runCmd) Usage() string {
	return `run -a <file.exp> [-p] [-o] [-v]:
  Compile an EXP source file, optionally optimizing and executing it.
`
}

func (cmd *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.file, "a", "", "path to the .exp source file")
	f.StringVar(&cmd.file, "arquivo", "", "path to the .exp source file")
	f.BoolVar(&cmd.process, "p", false, "execute the compiled bytecode")
	f.BoolVar(&cmd.process, "processar", false, "execute the compiled bytecode")
	f.BoolVar(&cmd.optimize, "o", false, "run the optimizer before emitting bytecode")
	f.BoolVar(&cmd.optimize, "otimizar", false, "run the optimizer before emitting bytecode")
	f.BoolVar(&cmd.verbose, "v", false, "print intermediate artifacts (AST, TAC, disassembly)")
	f.BoolVar(&cmd.verbose, "verbose", false, "print intermediate artifacts (AST, TAC, disassembly)")
}

func (cmd *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if cmd.file == "" {
		fmt.Fprintln(os.Stderr, "💥 No file provided (-a/--arquivo)")
		return subcommands.ExitStatus(1)
	}
	if !strings.HasSuffix(cmd.file, ".exp") {
		fmt.Fprintf(os.Stderr, "💥 File must end in .exp, got %q\n", cmd.file)
		return subcommands.ExitStatus(1)
	}

	data, err := os.ReadFile(cmd.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitStatus(1)
	}

	result, err := compiler.CompileWithArtifacts(string(data), cmd.optimize)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}

	if cmd.verbose {
		if rendered, err := parser.PrintASTJSON(result.Program); err == nil {
			fmt.Fprintln(os.Stdout, rendered)
		}
		for _, instr := range result.Instructions {
			fmt.Fprintln(os.Stdout, instr.String())
		}
		if disasm, err := bytecode.Disassemble(result.Bytecode); err == nil {
			fmt.Fprint(os.Stdout, disasm)
		}
	}

	if cmd.process {
		if err := vm.Run(result.Bytecode, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
