package bytecode

import (
	"exp/ast"
	"exp/ir"
	"fmt"
)

var arithmeticOpcodes = map[string]Opcode{
	"+":   OP_ADD,
	"-":   OP_SUB,
	"*":   OP_MUL,
	"/":   OP_DIV,
	"==":  OP_EQ,
	"!=":  OP_NEQ,
	"<":   OP_LT,
	"<=":  OP_LE,
	">":   OP_GT,
	">=":  OP_GE,
	"and": OP_AND,
	"or":  OP_OR,
}

var castOpcodes = map[string]Opcode{
	"cast_int":    OP_CAST_INT,
	"cast_float":  OP_CAST_FLOAT,
	"cast_bool":   OP_CAST_BOOL,
	"cast_string": OP_CAST_STRING,
}

func isArithmeticTACOp(op string) bool {
	_, ok := arithmeticOpcodes[op]
	return ok
}

func isCastTACOp(op string) bool {
	_, ok := castOpcodes[op]
	return ok
}

// Emitter walks an optimized TAC list and lowers it into a Bytecode
// value, splitting the stream into main_code/function_code segments:
// the cursor starts in main code, and switches into function code for
// the span of each function's LABEL through its RET.
type Emitter struct {
	bc           Bytecode
	mainCode     Instructions
	functionCode Instructions
	inFunction   bool
	currentFunc  string
	functionSet  map[string]bool
}

// Emit lowers instructions to a complete Bytecode: main_code followed
// by function_code.
func Emit(instructions []ir.Instruction) (Bytecode, error) {
	e := &Emitter{
		bc:          Bytecode{FunctionTable: make(map[string]FuncRange)},
		functionSet: collectFunctionNames(instructions),
	}

	if err := e.run(instructions); err != nil {
		return Bytecode{}, err
	}

	funcOffset := len(e.mainCode)
	e.bc.Instructions = append(append(Instructions{}, e.mainCode...), e.functionCode...)
	for name, rng := range e.bc.FunctionTable {
		e.bc.FunctionTable[name] = FuncRange{Start: rng.Start + funcOffset, End: rng.End + funcOffset}
	}
	return e.bc, nil
}

func collectFunctionNames(instructions []ir.Instruction) map[string]bool {
	names := make(map[string]bool)
	for _, instr := range instructions {
		if instr.Op == "call" {
			if name, ok := instr.Arg1.(string); ok {
				names[name] = true
			}
		}
	}
	return names
}

func (e *Emitter) target() *Instructions {
	if e.inFunction {
		return &e.functionCode
	}
	return &e.mainCode
}

func (e *Emitter) emitOpcode(op Opcode, operand int) error {
	encoded, err := MakeInstruction(op, operand)
	if err != nil {
		return err
	}
	t := e.target()
	*t = append(*t, encoded...)
	return nil
}

func (e *Emitter) emitName(op Opcode, name string) error {
	return e.emitOpcode(op, e.bc.internedName(name))
}

func (e *Emitter) emitConstant(op Opcode, value any) error {
	return e.emitOpcode(op, e.bc.internedConstant(value))
}

func (e *Emitter) emitBare(op Opcode) error {
	return e.emitOpcode(op, 0)
}

// pushOperand emits whatever bytecode is needed to leave operand's
// value on top of the evaluation stack: LOAD for a name, PUSH for a
// literal value, and for the raw AST leaves the IR generator
// sometimes carries in "arg" payloads.
func (e *Emitter) pushOperand(operand any) error {
	switch v := operand.(type) {
	case string:
		return e.emitName(OP_LOAD, v)
	case ast.Literal:
		return e.emitConstant(OP_PUSH, v.Value)
	case ast.VarRef:
		return e.emitName(OP_LOAD, v.Name.Lexeme)
	case nil:
		return nil
	default:
		return e.emitConstant(OP_PUSH, v)
	}
}

func (e *Emitter) run(instructions []ir.Instruction) error {
	pendingPrintArgs := 0

	for i := 0; i < len(instructions); i++ {
		instr := instructions[i]

		switch {
		case instr.Op == "alloc":
			name, _ := instr.Result.(string)
			if err := e.pushOperand(instr.Arg1); err != nil {
				return err
			}
			if err := e.emitName(OP_ALLOC, name); err != nil {
				return err
			}

		case instr.Op == "=":
			if err := e.pushOperand(instr.Arg1); err != nil {
				return err
			}
			name, _ := instr.Result.(string)
			if err := e.emitName(OP_STORE, name); err != nil {
				return err
			}

		case isArithmeticTACOp(instr.Op):
			op := arithmeticOpcodes[instr.Op]
			if err := e.pushOperand(instr.Arg1); err != nil {
				return err
			}
			if err := e.pushOperand(instr.Arg2); err != nil {
				return err
			}
			if err := e.emitBare(op); err != nil {
				return err
			}
			name, _ := instr.Result.(string)
			if err := e.emitName(OP_STORE, name); err != nil {
				return err
			}

		case isCastTACOp(instr.Op):
			if err := e.pushOperand(instr.Arg1); err != nil {
				return err
			}
			if err := e.emitBare(castOpcodes[instr.Op]); err != nil {
				return err
			}
			name, _ := instr.Result.(string)
			if err := e.emitName(OP_STORE, name); err != nil {
				return err
			}

		case instr.Op == "ifz":
			label, _ := instr.Result.(string)
			notLabel := "__not_" + label
			if err := e.pushOperand(instr.Arg1); err != nil {
				return err
			}
			if err := e.emitName(OP_JMP_IF_TRUE, notLabel); err != nil {
				return err
			}
			if err := e.emitName(OP_JUMP, label); err != nil {
				return err
			}
			if err := e.emitName(OP_LABEL, notLabel); err != nil {
				return err
			}

		case instr.Op == "goto":
			label, _ := instr.Result.(string)
			if err := e.emitName(OP_JUMP, label); err != nil {
				return err
			}

		case instr.Op == "label":
			name, _ := instr.Result.(string)
			if e.functionSet[name] {
				e.inFunction = true
				e.currentFunc = name
				e.bc.FunctionTable[name] = FuncRange{Start: len(e.functionCode)}
			}
			if err := e.emitName(OP_LABEL, name); err != nil {
				return err
			}

		case instr.Op == "param":
			// Gather the whole run of consecutive params declared for
			// this function and store them in reverse, since the call
			// site pushed arguments left-to-right and the evaluation
			// stack pops them back off in the opposite order.
			var params []string
			for i < len(instructions) && instructions[i].Op == "param" {
				name, _ := instructions[i].Result.(string)
				params = append(params, name)
				i++
			}
			i--
			for j := len(params) - 1; j >= 0; j-- {
				if err := e.emitName(OP_STORE, params[j]); err != nil {
					return err
				}
			}

		case instr.Op == "arg":
			if err := e.pushOperand(instr.Arg1); err != nil {
				return err
			}
			pendingPrintArgs++

		case instr.Op == "PRINT":
			if pendingPrintArgs == 0 {
				pendingPrintArgs = 1
			}
			for k := 0; k < pendingPrintArgs; k++ {
				if err := e.emitBare(OP_PRINT); err != nil {
					return err
				}
			}
			pendingPrintArgs = 0

		case instr.Op == "call":
			pendingPrintArgs = 0
			fname, _ := instr.Arg1.(string)
			if err := e.emitName(OP_CALL, fname); err != nil {
				return err
			}
			if name, ok := instr.Result.(string); ok && name != "" {
				if err := e.emitName(OP_STORE, name); err != nil {
					return err
				}
			}

		case instr.Op == "ret":
			if err := e.pushOperand(instr.Arg1); err != nil {
				return err
			}
			if err := e.emitBare(OP_RET); err != nil {
				return err
			}
			if e.inFunction {
				rng := e.bc.FunctionTable[e.currentFunc]
				rng.End = len(e.functionCode)
				e.bc.FunctionTable[e.currentFunc] = rng
				e.inFunction = false
			}

		case instr.Op == "HALT":
			if err := e.emitBare(OP_HALT); err != nil {
				return err
			}

		case instr.Op == "load":
			name, _ := instr.Arg1.(string)
			if err := e.pushOperand(instr.Arg2); err != nil {
				return err
			}
			if err := e.emitName(OP_LOAD_ADDR, name); err != nil {
				return err
			}
			if err := e.emitBare(OP_DEREF); err != nil {
				return err
			}
			destName, _ := instr.Result.(string)
			if err := e.emitName(OP_STORE, destName); err != nil {
				return err
			}
			if err := e.emitBare(OP_POP); err != nil {
				return err
			}

		case instr.Op == "store":
			name, _ := instr.Result.(string)
			if err := e.pushOperand(instr.Arg2); err != nil {
				return err
			}
			if err := e.emitName(OP_LOAD_ADDR, name); err != nil {
				return err
			}
			if err := e.pushOperand(instr.Arg1); err != nil {
				return err
			}
			if err := e.emitBare(OP_STORE_AT_ADDR); err != nil {
				return err
			}

		default:
			return fmt.Errorf("bytecode: no lowering defined for TAC op %q", instr.Op)
		}
	}

	return nil
}
