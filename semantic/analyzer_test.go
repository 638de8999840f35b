package semantic

import (
	"exp/ast"
	"exp/lexer"
	"exp/parser"
	"strings"
	"testing"
)

func parseSource(t *testing.T, source string) ast.Program {
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
	return program
}

func TestAnalyzeHelloWorldSucceeds(t *testing.T) {
	program := parseSource(t, `namespace main { print("Hello World"); halt(); }`)

	if _, err := Analyze(program); err != nil {
		t.Fatalf("Analyze() returned an unexpected error: %v", err)
	}
}

func TestAnalyzeAutoDeclInfersType(t *testing.T) {
	program := parseSource(t, `namespace main { auto x = 5; auto y = x + 1; halt(); }`)

	table, err := Analyze(program)
	if err != nil {
		t.Fatalf("Analyze() returned an unexpected error: %v", err)
	}

	mainScope, ok := table.Namespace("main")
	if !ok {
		t.Fatalf("expected a 'main' namespace scope to be registered")
	}
	sym, ok := mainScope.ResolveLocal("x")
	if !ok {
		t.Fatalf("expected 'x' to be defined in the main namespace")
	}
	if sym.Type != "int" {
		t.Fatalf("expected x to be inferred as int, got %q", sym.Type)
	}
}

func TestAnalyzeUndeclaredIdentifierIsRejected(t *testing.T) {
	program := parseSource(t, `namespace main { auto x = y; halt(); }`)

	if _, err := Analyze(program); err == nil {
		t.Fatalf("expected Analyze() to reject an undeclared identifier")
	} else if !strings.Contains(err.Error(), "undeclared identifier") {
		t.Fatalf("expected an undeclared identifier error, got: %v", err)
	}
}

func TestAnalyzeFunctionCallArityMismatchIsRejected(t *testing.T) {
	program := parseSource(t, `
		namespace main {
			int soma(int a, int b) { return a + b; }
			auto resultado = soma(5);
			halt();
		}
	`)

	if _, err := Analyze(program); err == nil {
		t.Fatalf("expected Analyze() to reject an arity mismatch")
	}
}

func TestAnalyzeFunctionCallTypeMismatchIsRejected(t *testing.T) {
	program := parseSource(t, `
		namespace main {
			int soma(int a, int b) { return a + b; }
			auto resultado = soma(5, "not a number");
			halt();
		}
	`)

	if _, err := Analyze(program); err == nil {
		t.Fatalf("expected Analyze() to reject an argument type mismatch")
	}
}

func TestAnalyzeForwardReferenceToFunctionSucceeds(t *testing.T) {
	program := parseSource(t, `
		namespace main {
			auto resultado = soma(5, 6);
			int soma(int a, int b) { return a + b; }
			halt();
		}
	`)

	if _, err := Analyze(program); err != nil {
		t.Fatalf("expected a forward reference to a function to resolve, got: %v", err)
	}
}

func TestAnalyzeIfConditionMustBeBoolean(t *testing.T) {
	program := parseSource(t, `
		namespace main {
			auto x = 5;
			if (x) { print(x); } else { halt(); }
		}
	`)

	if _, err := Analyze(program); err == nil {
		t.Fatalf("expected Analyze() to reject a non-boolean if condition")
	}
}

func TestAnalyzeArrayDeclAndAccess(t *testing.T) {
	program := parseSource(t, `
		namespace main {
			int nums[10];
			auto first = nums[0];
			halt();
		}
	`)

	table, err := Analyze(program)
	if err != nil {
		t.Fatalf("Analyze() returned an unexpected error: %v", err)
	}

	mainScope, _ := table.Namespace("main")
	sym, ok := mainScope.ResolveLocal("first")
	if !ok {
		t.Fatalf("expected 'first' to be defined")
	}
	if sym.Type != "int" {
		t.Fatalf("expected first to be int (element type of nums), got %q", sym.Type)
	}
}

func TestAnalyzeArrayIndexMustBeInteger(t *testing.T) {
	program := parseSource(t, `
		namespace main {
			int nums[10];
			auto first = nums["zero"];
			halt();
		}
	`)

	if _, err := Analyze(program); err == nil {
		t.Fatalf("expected Analyze() to reject a non-integer array index")
	}
}

func TestAnalyzeAssignTypeMismatchIsRejected(t *testing.T) {
	program := parseSource(t, `
		namespace main {
			string a;
			a = 5;
			halt();
		}
	`)

	if _, err := Analyze(program); err == nil {
		t.Fatalf("expected Analyze() to reject an assignment type mismatch")
	}
}

func TestAnalyzeUnaryBangDesugarsToBooleanBinaryOp(t *testing.T) {
	program := parseSource(t, `namespace main { auto flag = !true; halt(); }`)

	table, err := Analyze(program)
	if err != nil {
		t.Fatalf("Analyze() returned an unexpected error: %v", err)
	}

	mainScope, _ := table.Namespace("main")
	sym, ok := mainScope.ResolveLocal("flag")
	if !ok {
		t.Fatalf("expected 'flag' to be defined")
	}
	if sym.Type != "bool" {
		t.Fatalf("expected flag to be bool, got %q", sym.Type)
	}
}

func TestAnalyzeQualifiedRefAcrossNamespaces(t *testing.T) {
	program := parseSource(t, `
		namespace geo {
			int origin;
		}
		namespace main {
			auto x = geo.origin;
			halt();
		}
	`)

	if _, err := Analyze(program); err != nil {
		t.Fatalf("Analyze() returned an unexpected error: %v", err)
	}
}

func TestAnalyzeMixedIntFloatArithmeticWidensToFloat(t *testing.T) {
	program := parseSource(t, `namespace main { auto x = 1 + 2.5; halt(); }`)

	table, err := Analyze(program)
	if err != nil {
		t.Fatalf("Analyze() returned an unexpected error: %v", err)
	}

	mainScope, _ := table.Namespace("main")
	sym, ok := mainScope.ResolveLocal("x")
	if !ok {
		t.Fatalf("expected 'x' to be defined")
	}
	if sym.Type != "float" {
		t.Fatalf("expected x to widen to float, got %q", sym.Type)
	}
}
