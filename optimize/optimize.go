// Package optimize runs a fixed-point sequence of TAC rewrite passes
// over the instruction list the ir package produces, ahead of
// bytecode emission.
package optimize

import (
	"exp/ast"
	"exp/ir"
	"strings"
)

func isArithmeticOp(op string) bool {
	switch op {
	case "+", "-", "*", "/":
		return true
	default:
		return false
	}
}

func isArithmeticOrComparisonOp(op string) bool {
	switch op {
	case "+", "-", "*", "/", "==", "!=", "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}

// isEliminableOp is the set of opcodes Pass E may remove when their
// result is unused: plain copies, arithmetic, and casts. Every other
// opcode (control flow, calls, print/halt, param/arg/ret, alloc,
// load/store) is always kept.
func isEliminableOp(op string) bool {
	return op == "=" || isArithmeticOp(op) || strings.HasPrefix(op, "cast_")
}

// isLiteralValue reports whether an operand is a compile-time known
// value rather than a name. Names and string-literal values share
// Go's string type here, exactly as they shared Python's str type in
// the reference optimizer — an ambiguity deliberately preserved rather
// than resolved, since resolving it would require tagging every
// operand and the reference passes behave correctly without it.
func isLiteralValue(v any) bool {
	switch v.(type) {
	case int64, float64, string, bool:
		return true
	default:
		return false
	}
}

func isZero(v any) bool {
	switch x := v.(type) {
	case int64:
		return x == 0
	case float64:
		return x == 0
	default:
		return false
	}
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	default:
		return 0
	}
}

func evalArithmetic(op string, a, b any) any {
	ai, aIsInt := a.(int64)
	bi, bIsInt := b.(int64)
	if aIsInt && bIsInt {
		switch op {
		case "+":
			return ai + bi
		case "-":
			return ai - bi
		case "*":
			return ai * bi
		case "/":
			return ai / bi
		}
	}

	af, bf := toFloat(a), toFloat(b)
	switch op {
	case "+":
		return af + bf
	case "-":
		return af - bf
	case "*":
		return af * bf
	case "/":
		return af / bf
	}
	return nil
}

func substitute(env map[string]any, operand any) any {
	name, ok := operand.(string)
	if !ok {
		return operand
	}
	if v, found := env[name]; found {
		return v
	}
	return operand
}

// FoldConstants is Pass A: arithmetic instructions whose both operands
// are numeric literals are replaced with a plain copy of the computed
// result. Division by an exactly-zero literal divisor is left
// untouched so the VM surfaces the trap at runtime.
func FoldConstants(instructions []ir.Instruction) []ir.Instruction {
	optimized := make([]ir.Instruction, 0, len(instructions))

	for _, instr := range instructions {
		if isArithmeticOp(instr.Op) {
			_, aNum := instr.Arg1.(int64)
			_, aNumF := instr.Arg1.(float64)
			_, bNum := instr.Arg2.(int64)
			_, bNumF := instr.Arg2.(float64)
			if (aNum || aNumF) && (bNum || bNumF) {
				if instr.Op == "/" && isZero(instr.Arg2) {
					optimized = append(optimized, instr)
					continue
				}
				result := evalArithmetic(instr.Op, instr.Arg1, instr.Arg2)
				optimized = append(optimized, ir.Instruction{Op: "=", Arg1: result, Result: instr.Result})
				continue
			}
		}
		optimized = append(optimized, instr)
	}

	return optimized
}

// PropagateConstants is Pass B: a destination→literal environment is
// threaded through the list; known-constant operands of arithmetic and
// comparison instructions are substituted in place. Any instruction
// that assigns a non-constant to a name invalidates that name's entry.
func PropagateConstants(instructions []ir.Instruction) []ir.Instruction {
	env := make(map[string]any)
	optimized := make([]ir.Instruction, 0, len(instructions))

	for _, instr := range instructions {
		out := instr
		if isArithmeticOrComparisonOp(instr.Op) {
			out = ir.Instruction{
				Op:     instr.Op,
				Arg1:   substitute(env, instr.Arg1),
				Arg2:   substitute(env, instr.Arg2),
				Result: instr.Result,
			}
		}
		optimized = append(optimized, out)

		if name, ok := out.Result.(string); ok && name != "" {
			if out.Op == "=" && isLiteralValue(out.Arg1) {
				env[name] = out.Arg1
			} else {
				delete(env, name)
			}
		}
	}

	return optimized
}

// PropagateCopies is Pass C: a destination→source map is threaded
// through the list, seeded by plain-copy ("=") instructions whose
// source is a name. Operands are substituted transitively by recording
// the already-substituted value. Operands that are not names (embedded
// AST leaves, literals) pass through unchanged.
func PropagateCopies(instructions []ir.Instruction) []ir.Instruction {
	copyMap := make(map[string]any)
	optimized := make([]ir.Instruction, 0, len(instructions))

	for _, instr := range instructions {
		arg1 := substitute(copyMap, instr.Arg1)
		arg2 := substitute(copyMap, instr.Arg2)

		if instr.Op == "=" {
			if _, srcIsName := instr.Arg1.(string); srcIsName {
				if dstName, ok := instr.Result.(string); ok {
					copyMap[dstName] = arg1
					optimized = append(optimized, ir.Instruction{Op: "=", Arg1: arg1, Result: dstName})
					continue
				}
			}
		}

		if dstName, ok := instr.Result.(string); ok {
			delete(copyMap, dstName)
		}
		optimized = append(optimized, ir.Instruction{Op: instr.Op, Arg1: arg1, Arg2: arg2, Result: instr.Result})
	}

	return optimized
}

// EliminateCommonSubexpressions is Pass D: arithmetic instructions
// whose two operands are both names are keyed by (op, arg1, arg2) —
// the key is not commuted, "a+b" and "b+a" are distinct. A repeated
// key is rewritten as a copy of the earlier result.
func EliminateCommonSubexpressions(instructions []ir.Instruction) []ir.Instruction {
	type exprKey struct{ op, arg1, arg2 string }
	seen := make(map[exprKey]any)
	optimized := make([]ir.Instruction, 0, len(instructions))

	for _, instr := range instructions {
		arg1Name, arg1IsName := instr.Arg1.(string)
		arg2Name, arg2IsName := instr.Arg2.(string)

		if isArithmeticOp(instr.Op) && arg1IsName && arg2IsName {
			key := exprKey{instr.Op, arg1Name, arg2Name}
			if prevResult, ok := seen[key]; ok {
				optimized = append(optimized, ir.Instruction{Op: "=", Arg1: prevResult, Result: instr.Result})
				continue
			}
			seen[key] = instr.Result
		}

		optimized = append(optimized, instr)
	}

	return optimized
}

// markLive records the name(s) an operand reads from. Most operands
// are plain name strings, but "arg" instructions carry a raw
// ast.VarRef leaf instead (see ir.emitArgs), so its wrapped name needs
// unwrapping too or a live variable's feeding "=" gets swept by Pass E.
func markLive(live map[string]bool, operand any) {
	switch v := operand.(type) {
	case string:
		live[v] = true
	case ast.VarRef:
		live[v.Name.Lexeme] = true
	}
}

// EliminateDeadCode is Pass E: a reverse scan over the list keeping a
// live-name set. Control/linkage instructions are always kept and
// their name operands marked live; copy/arithmetic/cast instructions
// are kept only if their result is live, in which case the result is
// retired from the live set and its operands are marked live in turn.
func EliminateDeadCode(instructions []ir.Instruction) []ir.Instruction {
	live := make(map[string]bool)
	reversed := make([]ir.Instruction, 0, len(instructions))

	for i := len(instructions) - 1; i >= 0; i-- {
		instr := instructions[i]

		if !isEliminableOp(instr.Op) {
			reversed = append(reversed, instr)
			markLive(live, instr.Arg1)
			markLive(live, instr.Arg2)
			continue
		}

		resultName, hasName := instr.Result.(string)
		if !hasName || resultName == "" || !live[resultName] {
			continue
		}

		reversed = append(reversed, instr)
		markLive(live, instr.Arg1)
		markLive(live, instr.Arg2)
		delete(live, resultName)
	}

	optimized := make([]ir.Instruction, len(reversed))
	for i, instr := range reversed {
		optimized[len(reversed)-1-i] = instr
	}
	return optimized
}

// Optimize drives the five passes to a fixed point: it re-runs A–E
// until a full round produces a list printing identically to its
// input.
func Optimize(instructions []ir.Instruction) []ir.Instruction {
	current := instructions
	for {
		previous := current
		current = FoldConstants(current)
		current = PropagateConstants(current)
		current = PropagateCopies(current)
		current = EliminateCommonSubexpressions(current)
		current = EliminateDeadCode(current)
		if ir.Print(current) == ir.Print(previous) {
			break
		}
	}
	return current
}
