// Package bytecode lowers optimized TAC into a flat VM instruction
// stream: an Opcode table, an instruction encoder/decoder pair, and
// the Emitter that walks a TAC list producing a Bytecode value.
package bytecode

import "fmt"

// Opcode identifies one VM instruction.
type Opcode byte

const (
	OP_ALLOC Opcode = iota
	OP_PUSH
	OP_POP
	OP_LOAD
	OP_STORE
	OP_ADD
	OP_SUB
	OP_MUL
	// OP_DIV has no counterpart in the base opcode set: ADD/SUB/MUL
	// cover the other arithmetic operators but `/` needs its own
	// opcode to carry the runtime division-by-zero trap.
	OP_DIV
	OP_EQ
	OP_NEQ
	OP_LT
	OP_LE
	OP_GT
	OP_GE
	// OP_AND/OP_OR fill the same kind of gap as OP_DIV: the source
	// language has `and`/`or` operators with no listed opcode.
	OP_AND
	OP_OR
	OP_PRINT
	OP_LABEL
	OP_JUMP
	OP_JMP_IF_TRUE
	OP_CALL
	OP_RET
	OP_LOAD_ADDR
	OP_DEREF
	OP_STORE_AT_ADDR
	// OP_CAST_INT/FLOAT/BOOL/STRING fill the table's missing CAST
	// opcode: TAC has cast_int/cast_float/cast_bool/cast_string
	// instructions but the opcode table never lists one. One opcode
	// per target type, matching OP_CONSTANT's precedent of a
	// single-purpose opcode over one generic tagged instruction.
	OP_CAST_INT
	OP_CAST_FLOAT
	OP_CAST_BOOL
	OP_CAST_STRING
	OP_HALT
)

// OperandKind distinguishes what an instruction's 2-byte operand
// indexes into, so the disassembler can render it meaningfully.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandConstant
	OperandName
)

// OpCodeDefinition names an opcode and describes its operand.
type OpCodeDefinition struct {
	Name    string
	Operand OperandKind
}

var definitions = map[Opcode]*OpCodeDefinition{
	OP_ALLOC:         {"OP_ALLOC", OperandName},
	OP_PUSH:          {"OP_PUSH", OperandConstant},
	OP_POP:           {"OP_POP", OperandNone},
	OP_LOAD:          {"OP_LOAD", OperandName},
	OP_STORE:         {"OP_STORE", OperandName},
	OP_ADD:           {"OP_ADD", OperandNone},
	OP_SUB:           {"OP_SUB", OperandNone},
	OP_MUL:           {"OP_MUL", OperandNone},
	OP_DIV:           {"OP_DIV", OperandNone},
	OP_EQ:            {"OP_EQ", OperandNone},
	OP_NEQ:           {"OP_NEQ", OperandNone},
	OP_LT:            {"OP_LT", OperandNone},
	OP_LE:            {"OP_LE", OperandNone},
	OP_GT:            {"OP_GT", OperandNone},
	OP_GE:            {"OP_GE", OperandNone},
	OP_AND:           {"OP_AND", OperandNone},
	OP_OR:            {"OP_OR", OperandNone},
	OP_PRINT:         {"OP_PRINT", OperandNone},
	OP_LABEL:         {"OP_LABEL", OperandName},
	OP_JUMP:          {"OP_JUMP", OperandName},
	OP_JMP_IF_TRUE:   {"OP_JMP_IF_TRUE", OperandName},
	OP_CALL:          {"OP_CALL", OperandName},
	OP_RET:           {"OP_RET", OperandNone},
	OP_LOAD_ADDR:     {"OP_LOAD_ADDR", OperandName},
	OP_DEREF:         {"OP_DEREF", OperandNone},
	OP_STORE_AT_ADDR: {"OP_STORE_AT_ADDR", OperandNone},
	OP_CAST_INT:      {"OP_CAST_INT", OperandNone},
	OP_CAST_FLOAT:    {"OP_CAST_FLOAT", OperandNone},
	OP_CAST_BOOL:     {"OP_CAST_BOOL", OperandNone},
	OP_CAST_STRING:   {"OP_CAST_STRING", OperandNone},
	OP_HALT:          {"OP_HALT", OperandNone},
}

// Get looks up an opcode's definition.
func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("bytecode: undefined opcode %d", op)
	}
	return def, nil
}
