package bytecode

import (
	"fmt"
	"os"
	"strings"
)

// Disassemble renders bc as a human-readable instruction listing, one
// line per instruction: byte offset, mnemonic, and the decoded
// operand (a name or constant).
func Disassemble(bc Bytecode) (string, error) {
	var out strings.Builder
	offset := 0
	for offset < len(bc.Instructions) {
		op := Opcode(bc.Instructions[offset])
		def, err := Get(op)
		if err != nil {
			return "", fmt.Errorf("bytecode: %w at offset %d", err, offset)
		}

		width, err := InstructionWidth(op)
		if err != nil {
			return "", err
		}

		switch def.Operand {
		case OperandNone:
			fmt.Fprintf(&out, "%04d %s\n", offset, def.Name)
		case OperandName:
			index, _ := ReadOperand(bc.Instructions, offset+1)
			fmt.Fprintf(&out, "%04d %-16s %s\n", offset, def.Name, bc.NameConstants[index])
		case OperandConstant:
			index, _ := ReadOperand(bc.Instructions, offset+1)
			fmt.Fprintf(&out, "%04d %-16s %v\n", offset, def.Name, bc.ConstantsPool[index])
		}

		offset += width
	}
	return out.String(), nil
}

// Dump writes bc's instructions hex-encoded to filePath — cheap to
// eyeball in a text editor without a dedicated viewer.
func Dump(bc Bytecode, filePath string) error {
	if filePath == "" {
		return fmt.Errorf("bytecode: empty dump path")
	}
	return os.WriteFile(filePath, []byte(fmt.Sprintf("%x", []byte(bc.Instructions))), 0o644)
}
