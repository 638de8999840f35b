// Package ir lowers a type-checked AST to a flat three-address-code
// (TAC) instruction list. The fixed-point optimizer passes that rewrite
// it before bytecode emission live in package optimize.
package ir

import "fmt"

// Instruction is one TAC line: at most two source operands (Arg1,
// Arg2) and one destination (Result). Operands are one of a literal
// Go value, a name (string), or a raw AST leaf carried opaquely through
// to the bytecode emitter: ast.Literal/ast.VarRef in "arg" instructions,
// and ast.Literal as the value of "=", "store" and "ret". A nil field means that operand position is unused
// for this opcode (e.g. "label" has no Arg1/Arg2).
type Instruction struct {
	Op     string
	Arg1   any
	Arg2   any
	Result any
}

// String renders the instruction in a canonical textual form. The
// optimizer's fixed-point driver compares instruction lists for
// equality by this printed form rather than by deep struct equality,
// since operands may embed AST leaves that are not comparable.
func (i Instruction) String() string {
	return fmt.Sprintf("%s %v %v %v", i.Op, i.Arg1, i.Arg2, i.Result)
}

// Print renders a list of instructions, one per line, in the same
// canonical form String uses for a single instruction.
func Print(instructions []Instruction) string {
	out := ""
	for _, instr := range instructions {
		out += instr.String() + "\n"
	}
	return out
}
