package bytecode

import (
	"exp/ir"
	"exp/lexer"
	"exp/parser"
	"exp/semantic"
	"strings"
	"testing"
)

func compileToBytecode(t *testing.T, source string) Bytecode {
	t.Helper()
	scanner := lexer.New(source)
	tokens, err := scanner.Scan()
	if err != nil {
		t.Fatalf("lexer.Scan() raised an error: %v", err)
	}
	program, errs := parser.Make(tokens).Parse()
	if len(errs) != 0 {
		t.Fatalf("Parse() raised errors: %v", errs)
	}
	if _, err := semantic.Analyze(program); err != nil {
		t.Fatalf("Analyze() raised an error: %v", err)
	}
	bc, err := Emit(ir.Generate(program))
	if err != nil {
		t.Fatalf("Emit() raised an error: %v", err)
	}
	return bc
}

func TestEmitConstantFoldsIntoPushStore(t *testing.T) {
	instructions := []ir.Instruction{
		{Op: "alloc", Arg1: int64(1), Result: "x"},
		{Op: "=", Arg1: int64(5), Result: "x"},
		{Op: "HALT"},
	}
	bc, err := Emit(instructions)
	if err != nil {
		t.Fatalf("Emit() raised an error: %v", err)
	}

	out, err := Disassemble(bc)
	if err != nil {
		t.Fatalf("Disassemble() raised an error: %v", err)
	}
	for _, want := range []string{"OP_ALLOC", "OP_PUSH", "OP_STORE", "OP_HALT"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected disassembly to contain %q, got:\n%s", want, out)
		}
	}
}

func TestEmitHelloWorldEmitsOnePrintPerArg(t *testing.T) {
	bc := compileToBytecode(t, `namespace main { print("Hello World"); halt(); }`)

	out, err := Disassemble(bc)
	if err != nil {
		t.Fatalf("Disassemble() raised an error: %v", err)
	}

	printCount := strings.Count(out, "OP_PRINT")
	if printCount != 1 {
		t.Fatalf("expected exactly one OP_PRINT, got %d:\n%s", printCount, out)
	}
	if !strings.Contains(out, "Hello World") {
		t.Fatalf("expected the constants pool to carry the literal string, got:\n%s", out)
	}
}

func TestEmitIfBuildsJumpAroundElseBranch(t *testing.T) {
	bc := compileToBytecode(t, `
		namespace main {
			auto x = true;
			if (x) { print("yes"); } else { print("no"); }
			halt();
		}
	`)

	out, err := Disassemble(bc)
	if err != nil {
		t.Fatalf("Disassemble() raised an error: %v", err)
	}
	for _, want := range []string{"OP_JMP_IF_TRUE", "OP_JUMP", "OP_LABEL"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected disassembly to contain %q, got:\n%s", want, out)
		}
	}
}

func TestEmitFunctionBodyLandsInFunctionTable(t *testing.T) {
	bc := compileToBytecode(t, `
		namespace main {
			int soma(int a, int b) { return a + b; }
			auto resultado = soma(5, 6);
			print(resultado);
			halt();
		}
	`)

	rng, ok := bc.FunctionTable["soma"]
	if !ok {
		t.Fatalf("expected a FunctionTable entry for 'soma', got %+v", bc.FunctionTable)
	}
	if rng.Start >= rng.End {
		t.Fatalf("expected a non-empty function range, got %+v", rng)
	}

	out, err := Disassemble(bc)
	if err != nil {
		t.Fatalf("Disassemble() raised an error: %v", err)
	}
	if !strings.Contains(out, "OP_CALL") || !strings.Contains(out, "OP_RET") {
		t.Fatalf("expected OP_CALL/OP_RET in disassembly, got:\n%s", out)
	}
}

func TestEmitArrayAccessRoundTripsThroughRef(t *testing.T) {
	bc := compileToBytecode(t, `
		namespace main {
			int nums[3];
			nums[0] = 7;
			auto first = nums[0];
			halt();
		}
	`)

	out, err := Disassemble(bc)
	if err != nil {
		t.Fatalf("Disassemble() raised an error: %v", err)
	}
	for _, want := range []string{"OP_LOAD_ADDR", "OP_STORE_AT_ADDR", "OP_DEREF"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected disassembly to contain %q, got:\n%s", want, out)
		}
	}
}

func TestEmitRejectsUnknownTACOp(t *testing.T) {
	_, err := Emit([]ir.Instruction{{Op: "not_a_real_op"}})
	if err == nil {
		t.Fatalf("expected an error for an unrecognized TAC op")
	}
}
