package main

import (
	"context"
	"exp/bytecode"
	"exp/compiler"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

// emitCmd emits a source file's bytecode and disassembly to disk
// without executing it.
type emitCmd struct {
	disassemble  bool
	dumpBytecode bool
	optimize     bool
}

func (*emitCmd) Name() string     { return "emit" }
func (*emitCmd) Synopsis() string { return "Emit the bytecode for an .exp source file" }
func (*emitCmd) Usage() string    { return "emit <file.exp>:\n  Compile a source file and dump its bytecode to disk.\n" }

func (cmd *emitCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "diassemble", true, "write a human-readable disassembly to a .dexp file")
	f.BoolVar(&cmd.dumpBytecode, "dumpBytecode", true, "write the encoded bytecode as hex to a .hexp file")
	f.BoolVar(&cmd.optimize, "o", false, "run the optimizer before emitting bytecode")
	f.BoolVar(&cmd.optimize, "otimizar", false, "run the optimizer before emitting bytecode")
}

func (cmd *emitCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "💥 File not provided")
		return subcommands.ExitUsageError
	}
	expFile := args[0]
	if !strings.HasSuffix(expFile, ".exp") {
		fmt.Fprintf(os.Stderr, "💥 File must end in .exp, got %q\n", expFile)
		return subcommands.ExitStatus(1)
	}

	data, err := os.ReadFile(expFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitStatus(1)
	}

	bc, err := compiler.Compile(string(data), cmd.optimize)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}

	stem := strings.TrimSuffix(expFile, ".exp")

	if cmd.dumpBytecode {
		if err := bytecode.Dump(bc, stem+".hexp"); err != nil {
			fmt.Fprintf(os.Stderr, "💥 Dump bytecode error:\n\t%s\n", err.Error())
			return subcommands.ExitFailure
		}
	}

	if cmd.disassemble {
		rendered, err := bytecode.Disassemble(bc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 Disassemble error:\n\t%s\n", err.Error())
			return subcommands.ExitFailure
		}
		if err := os.WriteFile(stem+".dexp", []byte(rendered), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 Failed to write disassembly: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
