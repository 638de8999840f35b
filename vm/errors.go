package vm

import "fmt"

// RuntimeError is a VM-level failure. Unlike the other phases' error
// types, it has no Line/Column: bytecode instructions carry no source
// position (ir.Instruction has none either), so there
// is nothing to point at by the time a fault happens here.
type RuntimeError struct {
	Message string
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("💥 EXP Runtime error: %s", e.Message)
}

func fault(format string, args ...any) error {
	return RuntimeError{Message: fmt.Sprintf(format, args...)}
}
