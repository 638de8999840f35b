package parser

import (
	"encoding/json"
	"exp/ast"
	"fmt"
	"os"
)

const (
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// astPrinter implements the Visitor interfaces and builds a
// JSON-friendly representation of the AST using maps and slices.
// Each Visit method returns an object that can be marshaled to JSON.
type astPrinter struct{}

func (p astPrinter) VisitLiteral(l ast.Literal) any {
	return map[string]any{
		"type":  "Literal",
		"value": l.Value,
		"kind":  l.Type,
	}
}

func (p astPrinter) VisitVarRef(ref ast.VarRef) any {
	return map[string]any{
		"type": "VarRef",
		"name": ref.Name.Lexeme,
	}
}

func (p astPrinter) VisitQualifiedRef(ref ast.QualifiedRef) any {
	return map[string]any{
		"type":      "QualifiedRef",
		"namespace": ref.Namespace.Lexeme,
		"name":      ref.Name.Lexeme,
	}
}

func (p astPrinter) VisitArrayAccess(access ast.ArrayAccess) any {
	return map[string]any{
		"type":  "ArrayAccess",
		"name":  access.Name.Lexeme,
		"index": access.Index.Accept(p),
	}
}

func (p astPrinter) VisitBinaryOp(b ast.BinaryOp) any {
	return map[string]any{
		"type":     "BinaryOp",
		"operator": b.Operator.Lexeme,
		"left":     b.Left.Accept(p),
		"right":    b.Right.Accept(p),
	}
}

func (p astPrinter) VisitTypeCast(cast ast.TypeCast) any {
	return map[string]any{
		"type":   "TypeCast",
		"target": cast.TargetType.Lexeme,
		"expr":   cast.Expr.Accept(p),
	}
}

func (p astPrinter) VisitAssign(assign ast.Assign) any {
	return map[string]any{
		"type":   "Assign",
		"target": assign.Target.Accept(p),
		"value":  assign.Value.Accept(p),
	}
}

func (p astPrinter) VisitCall(call ast.Call) any {
	args := make([]any, 0, len(call.Args))
	for _, arg := range call.Args {
		args = append(args, arg.Accept(p))
	}
	return map[string]any{
		"type": "Call",
		"name": call.Name.Lexeme,
		"args": args,
	}
}

func (p astPrinter) VisitExpressionStmt(exprStmt ast.ExpressionStmt) any {
	return map[string]any{
		"type":       "ExpressionStmt",
		"expression": exprStmt.Expression.Accept(p),
	}
}

func (p astPrinter) VisitDecl(decl ast.Decl) any {
	return map[string]any{
		"type": "Decl",
		"name": decl.Name.Lexeme,
		"kind": decl.Type.Lexeme,
	}
}

func (p astPrinter) VisitAutoDecl(decl ast.AutoDecl) any {
	return map[string]any{
		"type": "AutoDecl",
		"name": decl.Name.Lexeme,
		"expr": decl.Expr.Accept(p),
	}
}

func (p astPrinter) VisitArrayDecl(decl ast.ArrayDecl) any {
	return map[string]any{
		"type": "ArrayDecl",
		"name": decl.Name.Lexeme,
		"kind": decl.ElemType.Lexeme,
		"size": decl.Size.Accept(p),
	}
}

func (p astPrinter) VisitIf(stmt ast.If) any {
	var elseVal any
	if stmt.Else != nil {
		elseVal = stmt.Else.Accept(p)
	}
	return map[string]any{
		"type":      "If",
		"condition": stmt.Cond.Accept(p),
		"then":      stmt.Then.Accept(p),
		"else":      elseVal,
	}
}

func (p astPrinter) VisitBlock(block ast.Block) any {
	stmts := make([]any, 0, len(block.Stmts))
	for _, stmt := range block.Stmts {
		stmts = append(stmts, stmt.Accept(p))
	}
	return map[string]any{
		"type":       "Block",
		"statements": stmts,
	}
}

func (p astPrinter) VisitFunctionDecl(decl ast.FunctionDecl) any {
	params := make([]any, 0, len(decl.Params))
	for _, param := range decl.Params {
		params = append(params, map[string]any{
			"name": param.Name.Lexeme,
			"kind": param.Type.Lexeme,
		})
	}
	return map[string]any{
		"type":       "FunctionDecl",
		"name":       decl.Name.Lexeme,
		"params":     params,
		"returnType": decl.ReturnType.Lexeme,
		"body":       decl.Body.Accept(p),
	}
}

func (p astPrinter) VisitPrint(print ast.Print) any {
	args := make([]any, 0, len(print.Args))
	for _, arg := range print.Args {
		args = append(args, arg.Accept(p))
	}
	return map[string]any{
		"type": "Print",
		"args": args,
	}
}

func (p astPrinter) VisitHalt(halt ast.Halt) any {
	return map[string]any{"type": "Halt"}
}

func (p astPrinter) VisitReturn(ret ast.Return) any {
	return map[string]any{
		"type": "Return",
		"expr": nilOrAccept(ret.Expr, p),
	}
}

func (p astPrinter) VisitNamespaceDecl(decl ast.NamespaceDecl) any {
	decls := make([]any, 0, len(decl.Decls))
	for _, d := range decl.Decls {
		decls = append(decls, d.Accept(p))
	}
	return map[string]any{
		"type":  "NamespaceDecl",
		"name":  decl.Name.Lexeme,
		"decls": decls,
	}
}

func (p astPrinter) VisitProgram(program ast.Program) any {
	namespaces := make([]any, 0, len(program.Namespaces))
	for _, ns := range program.Namespaces {
		namespaces = append(namespaces, p.VisitNamespaceDecl(ns))
	}
	return map[string]any{
		"type":       "Program",
		"namespaces": namespaces,
	}
}

// nilOrAccept returns nil if expr is nil, otherwise it continues
// processing the expression and returns the result.
func nilOrAccept(expr ast.Expression, p ast.ExpressionVisitor) any {
	if expr == nil {
		return nil
	}
	return expr.Accept(p)
}

// PrintASTJSON converts a Program into a prettified JSON string.
func PrintASTJSON(program ast.Program) (string, error) {
	printer := astPrinter{}
	out := program.Accept(printer)
	bytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}

	jsonStr := string(bytes)
	fmt.Println(colorYellow + "----- AST JSON -----")
	fmt.Println(colorYellow + jsonStr)
	fmt.Println(colorYellow + "-----" + colorReset)
	fmt.Println("")
	return jsonStr, nil
}

// WriteASTJSONToFile writes the prettified AST JSON to the given file path.
func WriteASTJSONToFile(program ast.Program, path string) error {
	s, err := PrintASTJSON(program)
	if err != nil {
		return err
	}
	fDescriptor, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %s", err.Error())
	}

	_, error := fDescriptor.Write([]byte(s))
	if error != nil {
		return fmt.Errorf("error writing AST to file: %s", error.Error())
	}
	defer fDescriptor.Close()
	return nil
}
