package vm

import (
	"fmt"
	"strconv"
)

// Kind tags which variant of Value is populated: the VM needs to tell
// a plain value apart from a Ref tag, which a bare `any` slot can't do
// without type-switching everywhere a value is produced.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindRef
	KindArray
)

// Ref is the tagged pair pushed by LOAD_ADDR: a variable name plus an
// optional array index (-1 marks a whole-variable reference).
type Ref struct {
	Name  string
	Index int
}

// Value is the VM's runtime value sum type.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bool  bool
	Str   string
	Ref   Ref
	Array []Value
}

func IntValue(v int64) Value     { return Value{Kind: KindInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func BoolValue(v bool) Value     { return Value{Kind: KindBool, Bool: v} }
func StringValue(v string) Value { return Value{Kind: KindString, Str: v} }
func RefValue(name string, index int) Value {
	return Value{Kind: KindRef, Ref: Ref{Name: name, Index: index}}
}
func ArrayValue(elements []Value) Value { return Value{Kind: KindArray, Array: elements} }

// ZeroValue is the default slot value ALLOC stamps in before any
// initializer assigns to it.
func ZeroValue() Value { return IntValue(0) }

// fromConstant wraps a raw literal pulled from the constants pool
// (int64/float64/bool/string, as produced by the lexer/parser/IR
// stages) into a Value.
func fromConstant(raw any) (Value, error) {
	switch v := raw.(type) {
	case int64:
		return IntValue(v), nil
	case int:
		return IntValue(int64(v)), nil
	case float64:
		return FloatValue(v), nil
	case bool:
		return BoolValue(v), nil
	case string:
		return StringValue(v), nil
	default:
		return Value{}, fmt.Errorf("vm: constant of unsupported type %T", raw)
	}
}

func (v Value) isNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

func (v Value) asFloat() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

func (v Value) isZero() bool {
	switch v.Kind {
	case KindInt:
		return v.Int == 0
	case KindFloat:
		return v.Float == 0
	default:
		return false
	}
}

// Truthy reports whether v counts as "true" for JMP_IF_TRUE: booleans
// by their value, integers and floats by non-zero, everything else is
// truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	default:
		return true
	}
}

// String renders v the way PRINT writes it to output.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindString:
		return v.Str
	case KindRef:
		return fmt.Sprintf("ref(%s,%d)", v.Ref.Name, v.Ref.Index)
	case KindArray:
		return fmt.Sprintf("%v", v.Array)
	default:
		return ""
	}
}

// cloneMemory makes the shallow copy CALL needs to snapshot: a new
// map with the same Value entries. Array elements inside an entry
// share their backing slice across the clone, which is what "shallow"
// means here.
func cloneMemory(memory map[string]Value) map[string]Value {
	clone := make(map[string]Value, len(memory))
	for k, v := range memory {
		clone[k] = v
	}
	return clone
}
