package bytecode

import "encoding/binary"

// Instructions is a raw encoded instruction stream: one byte opcode
// followed by a 2-byte BigEndian operand for opcodes that carry one.
type Instructions []byte

// FuncRange records a function's bytecode extent within the combined
// stream.
type FuncRange struct {
	Start int
	End   int
}

// Bytecode is the Emitter's output: the encoded instruction stream
// plus the pools its operands index into.
type Bytecode struct {
	Instructions  Instructions
	ConstantsPool []any
	NameConstants []string
	FunctionTable map[string]FuncRange
}

// MakeInstruction encodes a single instruction: the opcode byte
// followed by a BigEndian uint16 operand when the opcode's definition
// calls for one.
func MakeInstruction(op Opcode, operand int) ([]byte, error) {
	def, err := Get(op)
	if err != nil {
		return nil, err
	}

	if def.Operand == OperandNone {
		return []byte{byte(op)}, nil
	}

	instruction := make([]byte, 3)
	instruction[0] = byte(op)
	binary.BigEndian.PutUint16(instruction[1:3], uint16(operand))
	return instruction, nil
}

// ReadOperand decodes the 2-byte BigEndian operand starting at
// offset, returning its value and the offset of the next instruction.
func ReadOperand(ins Instructions, offset int) (int, int) {
	return int(binary.BigEndian.Uint16(ins[offset : offset+2])), offset + 2
}

// InstructionWidth returns how many bytes op occupies in the stream.
func InstructionWidth(op Opcode) (int, error) {
	def, err := Get(op)
	if err != nil {
		return 0, err
	}
	if def.Operand == OperandNone {
		return 1, nil
	}
	return 3, nil
}

// internedName returns the index of name within bc.NameConstants,
// appending it if this is the first use — name constants are
// deduplicated by value, same as the constant pool below.
func (bc *Bytecode) internedName(name string) int {
	for i, existing := range bc.NameConstants {
		if existing == name {
			return i
		}
	}
	bc.NameConstants = append(bc.NameConstants, name)
	return len(bc.NameConstants) - 1
}

// internedConstant returns the index of value within bc.ConstantsPool,
// appending it if this is the first use.
func (bc *Bytecode) internedConstant(value any) int {
	for i, existing := range bc.ConstantsPool {
		if existing == value {
			return i
		}
	}
	bc.ConstantsPool = append(bc.ConstantsPool, value)
	return len(bc.ConstantsPool) - 1
}

