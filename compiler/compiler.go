// Package compiler wires the front end and back end together: source
// text in, a ready-to-run bytecode.Bytecode out.
package compiler

import (
	"exp/ast"
	"exp/bytecode"
	"exp/ir"
	"exp/lexer"
	"exp/optimize"
	"exp/parser"
	"exp/semantic"
	"fmt"
)

// Result carries every intermediate artifact Compile produces, so a
// caller that wants to print them for -v/--verbose doesn't need to
// re-run the pipeline.
type Result struct {
	Program      ast.Program
	Instructions []ir.Instruction
	Bytecode     bytecode.Bytecode
}

// Compile runs source through lexing, parsing, semantic analysis, IR
// generation, optimization (when optimizeIR is true), and bytecode
// emission. It recovers from internal panics, turning a programmer
// bug into a returned error instead of a crash.
func Compile(source string, optimizeIR bool) (bc bytecode.Bytecode, err error) {
	result, err := CompileWithArtifacts(source, optimizeIR)
	return result.Bytecode, err
}

// CompileWithArtifacts is Compile plus the program/TAC it produced
// along the way, for -v/--verbose dumping.
func CompileWithArtifacts(source string, optimizeIR bool) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if asErr, ok := r.(error); ok {
				err = asErr
			} else {
				err = fmt.Errorf("compiler: internal error: %v", r)
			}
		}
	}()

	scanner := lexer.New(source)
	tokens, lexErr := scanner.Scan()
	if lexErr != nil {
		return Result{}, lexErr
	}

	program, parseErrs := parser.Make(tokens).Parse()
	if len(parseErrs) > 0 {
		return Result{}, fmt.Errorf("%v", parseErrs[0])
	}
	result.Program = program

	if _, semErr := semantic.Analyze(program); semErr != nil {
		return Result{}, semErr
	}

	instructions := ir.Generate(program)
	if optimizeIR {
		instructions = optimize.Optimize(instructions)
	}
	result.Instructions = instructions

	bc, emitErr := bytecode.Emit(instructions)
	if emitErr != nil {
		return Result{}, fmt.Errorf("compiler: %w", emitErr)
	}
	result.Bytecode = bc

	return result, nil
}
