package ir

import (
	"exp/lexer"
	"exp/parser"
	"exp/semantic"
	"testing"
)

func generate(t *testing.T, source string) []Instruction {
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
	return Generate(program)
}

func opSequence(instructions []Instruction) []string {
	ops := make([]string, len(instructions))
	for i, instr := range instructions {
		ops[i] = instr.Op
	}
	return ops
}

func TestGenerateHelloWorld(t *testing.T) {
	instructions := generate(t, `namespace main { print("Hello World"); halt(); }`)

	want := []string{"arg", "PRINT", "HALT"}
	got := opSequence(instructions)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestGenerateAutoDeclEmitsAllocThenCopy(t *testing.T) {
	instructions := generate(t, `namespace main { auto x = 5; halt(); }`)

	want := []string{"alloc", "=", "HALT"}
	got := opSequence(instructions)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if instructions[1].Result != "x" {
		t.Fatalf("expected the copy to target 'x', got %+v", instructions[1])
	}
}

func TestGenerateIfEmitsIfzGotoAndTwoLabels(t *testing.T) {
	instructions := generate(t, `
		namespace main {
			auto x = true;
			if (x) { print("yes"); } else { print("no"); }
			halt();
		}
	`)

	var sawIfz, sawGoto int
	var labels []string
	for _, instr := range instructions {
		switch instr.Op {
		case "ifz":
			sawIfz++
		case "goto":
			sawGoto++
		case "label":
			if name, ok := instr.Result.(string); ok {
				labels = append(labels, name)
			}
		}
	}
	if sawIfz != 1 || sawGoto != 1 {
		t.Fatalf("expected exactly one 'ifz' and one 'goto', got ifz=%d goto=%d", sawIfz, sawGoto)
	}
	if len(labels) != 2 {
		t.Fatalf("expected two labels (else, end), got %v", labels)
	}
}

func TestGenerateFunctionDeclEmitsLabelAndParams(t *testing.T) {
	instructions := generate(t, `
		namespace main {
			int soma(int a, int b) { return a + b; }
			auto resultado = soma(5, 6);
			print(resultado);
			halt();
		}
	`)

	var sawFunctionLabel, sawParamA, sawParamB, sawCall, sawRet bool
	for _, instr := range instructions {
		switch instr.Op {
		case "label":
			if instr.Result == "soma" {
				sawFunctionLabel = true
			}
		case "param":
			if instr.Result == "a" {
				sawParamA = true
			}
			if instr.Result == "b" {
				sawParamB = true
			}
		case "call":
			if instr.Arg1 == "soma" && instr.Arg2 == 2 {
				sawCall = true
			}
		case "ret":
			sawRet = true
		}
	}
	if !sawFunctionLabel || !sawParamA || !sawParamB || !sawCall || !sawRet {
		t.Fatalf("expected label/param/call/ret sequence for soma, got %+v", instructions)
	}
}

func TestGenerateUnaryBangLowersToEqualityAgainstZero(t *testing.T) {
	instructions := generate(t, `namespace main { auto flag = !true; halt(); }`)

	found := false
	for _, instr := range instructions {
		if instr.Op == "==" {
			found = true
		}
		if instr.Op == "!" {
			t.Fatalf("expected '!' to lower to '==', but found a literal '!' opcode")
		}
	}
	if !found {
		t.Fatalf("expected an '==' instruction from desugared '!', got %+v", instructions)
	}
}

func TestGenerateArrayAccessEmitsLoad(t *testing.T) {
	instructions := generate(t, `
		namespace main {
			int nums[3];
			auto first = nums[0];
			halt();
		}
	`)

	found := false
	for _, instr := range instructions {
		if instr.Op == "load" && instr.Arg1 == "nums" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a 'load nums' instruction, got %+v", instructions)
	}
}

func TestGenerateArrayAssignEmitsStore(t *testing.T) {
	instructions := generate(t, `
		namespace main {
			int nums[3];
			nums[0] = 7;
			halt();
		}
	`)

	found := false
	for _, instr := range instructions {
		if instr.Op == "store" && instr.Result == "nums" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a 'store ... nums' instruction, got %+v", instructions)
	}
}
