package compiler

import (
	"bytes"
	"exp/vm"
	"testing"
)

// Each case is an end-to-end scenario: source in, expected stdout
// out, run through the full pipeline both with and without the
// optimizer.
func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "S1 hello world",
			source: `namespace main { print("Hello World"); halt(); }`,
			want:   ">> Hello World\n",
		},
		{
			name:   "S2 auto decl print",
			source: `namespace main { auto msg = "Texto fixo"; print(msg); halt(); }`,
			want:   ">> Texto fixo\n",
		},
		{
			name:   "S3 assign then print twice",
			source: `namespace main { string a; a = "Repetido"; print(a); print("Repetido"); halt(); }`,
			want:   ">> Repetido\n>> Repetido\n",
		},
		{
			name:   "S4 function call sums arguments",
			source: `namespace main { int soma(int a, int b){ return a+b; } auto resultado = soma(5,6); print(resultado); halt(); }`,
			want:   ">> 11\n",
		},
		{
			name:   "S5 function side effect before return",
			source: `namespace main { int mensagem(){ print("Ola de dentro"); return 0; } auto x = mensagem(); halt(); }`,
			want:   ">> Ola de dentro\n",
		},
		{
			name:   "S6 string returning function",
			source: `namespace main { string saudacao(){ return "Oi"; } auto msg = saudacao(); print(msg); print("Tudo bem?"); halt(); }`,
			want:   ">> Oi\n>> Tudo bem?\n",
		},
	}

	for _, tt := range tests {
		for _, optimizeIR := range []bool{false, true} {
			bc, err := Compile(tt.source, optimizeIR)
			if err != nil {
				t.Fatalf("%s (optimize=%v): Compile() raised an error: %v", tt.name, optimizeIR, err)
			}
			var out bytes.Buffer
			if err := vm.Run(bc, &out); err != nil {
				t.Fatalf("%s (optimize=%v): Run() raised an error: %v", tt.name, optimizeIR, err)
			}
			if out.String() != tt.want {
				t.Fatalf("%s (optimize=%v): got %q, want %q", tt.name, optimizeIR, out.String(), tt.want)
			}
		}
	}
}
