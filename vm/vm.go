// Package vm is the stack-based virtual machine that executes the
// bytecode the bytecode package emits.
package vm

import (
	"exp/bytecode"
	"fmt"
	"io"
)

// decoded is one fully-read instruction: an opcode plus its operand
// (a pool index, meaningless for opcodes with no operand). Decoding
// the whole stream once up front lets the main loop address
// instructions by slice index instead of re-walking raw bytes, which
// is what makes the label pre-pass an O(1) index lookup.
type decoded struct {
	Op      bytecode.Opcode
	Operand int
}

func decodeProgram(ins bytecode.Instructions) ([]decoded, error) {
	var program []decoded
	offset := 0
	for offset < len(ins) {
		op := bytecode.Opcode(ins[offset])
		def, err := bytecode.Get(op)
		if err != nil {
			return nil, fmt.Errorf("vm: %w at offset %d", err, offset)
		}
		if def.Operand == bytecode.OperandNone {
			program = append(program, decoded{Op: op})
			offset++
			continue
		}
		if offset+3 > len(ins) {
			return nil, fmt.Errorf("vm: truncated instruction stream at offset %d", offset)
		}
		operand, next := bytecode.ReadOperand(ins, offset+1)
		program = append(program, decoded{Op: op, Operand: operand})
		offset = next
	}
	return program, nil
}

// Frame is the saved (return_pc, static-memory snapshot) pair pushed
// onto the call stack at CALL and restored at RET.
type Frame struct {
	ReturnPC int
	Memory   map[string]Value
}

// VM is a single-threaded stack machine: one evaluation stack, one
// flat static memory, one call stack, mutated in program order with
// no concurrency.
type VM struct {
	program   []decoded
	names     []string
	constants []any

	labels    map[string]int
	functions map[string]bool

	stack   Stack
	memory  map[string]Value
	calls   []Frame
	pc      int
	running bool
	faulted bool

	out io.Writer
}

// New builds a VM ready to Run bc, performing the label/function
// pre-pass before execution starts.
func New(bc bytecode.Bytecode, out io.Writer) (*VM, error) {
	program, err := decodeProgram(bc.Instructions)
	if err != nil {
		return nil, err
	}

	vm := &VM{
		program:   program,
		names:     bc.NameConstants,
		constants: bc.ConstantsPool,
		labels:    make(map[string]int),
		functions: make(map[string]bool),
		memory:    make(map[string]Value),
		out:       out,
	}

	for i, instr := range program {
		if instr.Op == bytecode.OP_LABEL {
			vm.labels[vm.names[instr.Operand]] = i
		}
	}
	for _, instr := range program {
		if instr.Op == bytecode.OP_CALL {
			vm.functions[vm.names[instr.Operand]] = true
		}
	}

	return vm, nil
}

// Run executes bc to completion (HALT, or falling off the end of the
// program), writing PRINT output to out.
func Run(bc bytecode.Bytecode, out io.Writer) (err error) {
	vm, err := New(bc, out)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			if rtErr, ok := r.(error); ok {
				err = rtErr
			} else {
				err = fault("%v", r)
			}
		}
	}()

	return vm.run()
}

func (vm *VM) run() error {
	vm.running = true
	for vm.running && vm.pc < len(vm.program) {
		instr := vm.program[vm.pc]

		if instr.Op == bytecode.OP_LABEL && vm.functions[vm.names[instr.Operand]] {
			// Function-body skip: walk forward to the next RET and
			// resume just past it. Assumes exactly one RET per function
			// body.
			j := vm.pc + 1
			for j < len(vm.program) && vm.program[j].Op != bytecode.OP_RET {
				j++
			}
			vm.pc = j + 1
			continue
		}

		if err := vm.dispatch(instr); err != nil {
			return err
		}
		vm.pc++
	}
	return nil
}

func (vm *VM) name(operand int) string {
	return vm.names[operand]
}

func (vm *VM) constant(operand int) (Value, error) {
	return fromConstant(vm.constants[operand])
}

func (vm *VM) dispatch(instr decoded) error {
	switch instr.Op {
	case bytecode.OP_ALLOC:
		size, ok := vm.stack.Pop()
		if !ok {
			return fault("ALLOC with empty stack")
		}
		name := vm.name(instr.Operand)
		if size.Kind == KindInt && size.Int > 1 {
			elements := make([]Value, size.Int)
			for i := range elements {
				elements[i] = ZeroValue()
			}
			vm.memory[name] = ArrayValue(elements)
		} else {
			vm.memory[name] = ZeroValue()
		}

	case bytecode.OP_PUSH:
		value, err := vm.constant(instr.Operand)
		if err != nil {
			return err
		}
		vm.stack.Push(value)

	case bytecode.OP_POP:
		if _, ok := vm.stack.Pop(); !ok {
			return fault("POP with empty stack")
		}

	case bytecode.OP_LOAD:
		name := vm.name(instr.Operand)
		value, ok := vm.memory[name]
		if !ok {
			return fault("reference to undefined variable %q", name)
		}
		vm.stack.Push(value)

	case bytecode.OP_STORE:
		value, ok := vm.stack.Pop()
		if !ok {
			return fault("STORE with empty stack")
		}
		vm.memory[vm.name(instr.Operand)] = value

	case bytecode.OP_ADD, bytecode.OP_SUB, bytecode.OP_MUL, bytecode.OP_DIV:
		return vm.binaryOp(arithmeticOpName(instr.Op), binaryArithmetic)

	case bytecode.OP_EQ, bytecode.OP_NEQ, bytecode.OP_LT, bytecode.OP_LE, bytecode.OP_GT, bytecode.OP_GE:
		return vm.binaryOp(comparisonOpName(instr.Op), compare)

	case bytecode.OP_AND, bytecode.OP_OR:
		return vm.binaryOp(logicalOpName(instr.Op), logical)

	case bytecode.OP_CAST_INT:
		return vm.unaryCast("int")
	case bytecode.OP_CAST_FLOAT:
		return vm.unaryCast("float")
	case bytecode.OP_CAST_BOOL:
		return vm.unaryCast("bool")
	case bytecode.OP_CAST_STRING:
		return vm.unaryCast("string")

	case bytecode.OP_PRINT:
		value, ok := vm.stack.Pop()
		if !ok {
			return fault("PRINT with empty stack")
		}
		fmt.Fprintf(vm.out, ">> %s\n", value.String())

	case bytecode.OP_LABEL:
		// control-flow labels (if/else ends) are no-ops at dispatch
		// time; function labels are intercepted before dispatch.

	case bytecode.OP_JUMP:
		target, ok := vm.labels[vm.name(instr.Operand)]
		if !ok {
			return fault("jump to undefined label %q", vm.name(instr.Operand))
		}
		vm.pc = target - 1

	case bytecode.OP_JMP_IF_TRUE:
		cond, ok := vm.stack.Pop()
		if !ok {
			return fault("JMP_IF_TRUE with empty stack")
		}
		if cond.Truthy() {
			target, ok := vm.labels[vm.name(instr.Operand)]
			if !ok {
				return fault("jump to undefined label %q", vm.name(instr.Operand))
			}
			vm.pc = target - 1
		}

	case bytecode.OP_CALL:
		name := vm.name(instr.Operand)
		target, ok := vm.labels[name]
		if !ok {
			return fault("call to undefined function %q", name)
		}
		vm.calls = append(vm.calls, Frame{ReturnPC: vm.pc, Memory: cloneMemory(vm.memory)})
		vm.pc = target

	case bytecode.OP_RET:
		if len(vm.calls) == 0 {
			return fault("RET with empty call stack")
		}
		frame := vm.calls[len(vm.calls)-1]
		vm.calls = vm.calls[:len(vm.calls)-1]
		vm.memory = frame.Memory
		vm.pc = frame.ReturnPC

	case bytecode.OP_LOAD_ADDR:
		index, ok := vm.stack.Pop()
		if !ok {
			return fault("LOAD_ADDR with empty stack")
		}
		if index.Kind != KindInt {
			return fault("array index is not an integer")
		}
		vm.stack.Push(RefValue(vm.name(instr.Operand), int(index.Int)))

	case bytecode.OP_DEREF:
		ref, ok := vm.stack.Peek()
		if !ok || ref.Kind != KindRef {
			return fault("DEREF on a non-reference stack value")
		}
		value, err := vm.readRef(ref.Ref)
		if err != nil {
			return err
		}
		vm.stack.Push(value)

	case bytecode.OP_STORE_AT_ADDR:
		value, ok := vm.stack.Pop()
		if !ok {
			return fault("STORE_AT_ADDR with empty stack")
		}
		ref, ok := vm.stack.Pop()
		if !ok || ref.Kind != KindRef {
			return fault("STORE_AT_ADDR on a non-reference stack value")
		}
		if err := vm.writeRef(ref.Ref, value); err != nil {
			return err
		}

	case bytecode.OP_HALT:
		vm.running = false

	default:
		return fault("unhandled opcode %v at pc %d", instr.Op, vm.pc)
	}
	return nil
}

func (vm *VM) readRef(ref Ref) (Value, error) {
	container, ok := vm.memory[ref.Name]
	if !ok {
		return Value{}, fault("reference to undefined variable %q", ref.Name)
	}
	if ref.Index < 0 {
		return container, nil
	}
	if container.Kind != KindArray || ref.Index >= len(container.Array) {
		return Value{}, fault("array index %d out of range for %q", ref.Index, ref.Name)
	}
	return container.Array[ref.Index], nil
}

func (vm *VM) writeRef(ref Ref, value Value) error {
	if ref.Index < 0 {
		vm.memory[ref.Name] = value
		return nil
	}
	container, ok := vm.memory[ref.Name]
	if !ok || container.Kind != KindArray || ref.Index >= len(container.Array) {
		return fault("array index %d out of range for %q", ref.Index, ref.Name)
	}
	container.Array[ref.Index] = value
	vm.memory[ref.Name] = container
	return nil
}

func (vm *VM) binaryOp(op string, eval func(op string, a, b Value) (Value, error)) error {
	b, ok := vm.stack.Pop()
	if !ok {
		return fault("%q with empty stack", op)
	}
	a, ok := vm.stack.Pop()
	if !ok {
		return fault("%q with empty stack", op)
	}
	result, err := eval(op, a, b)
	if err != nil {
		return err
	}
	vm.stack.Push(result)
	return nil
}

func (vm *VM) unaryCast(target string) error {
	value, ok := vm.stack.Pop()
	if !ok {
		return fault("cast with empty stack")
	}
	result, err := castValue(target, value)
	if err != nil {
		return err
	}
	vm.stack.Push(result)
	return nil
}

func arithmeticOpName(op bytecode.Opcode) string {
	switch op {
	case bytecode.OP_ADD:
		return "+"
	case bytecode.OP_SUB:
		return "-"
	case bytecode.OP_MUL:
		return "*"
	case bytecode.OP_DIV:
		return "/"
	}
	return "?"
}

func comparisonOpName(op bytecode.Opcode) string {
	switch op {
	case bytecode.OP_EQ:
		return "=="
	case bytecode.OP_NEQ:
		return "!="
	case bytecode.OP_LT:
		return "<"
	case bytecode.OP_LE:
		return "<="
	case bytecode.OP_GT:
		return ">"
	case bytecode.OP_GE:
		return ">="
	}
	return "?"
}

func logicalOpName(op bytecode.Opcode) string {
	if op == bytecode.OP_AND {
		return "and"
	}
	return "or"
}
