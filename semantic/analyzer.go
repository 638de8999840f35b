// Package semantic type-checks a parsed ast.Program ahead of execution.
// It mirrors the shape of a tree-walking visitor (one Visit method per
// AST node, dispatch via Accept) but, unlike a runtime interpreter, it
// never produces a value: each expression Visit method returns the
// static type of its node (as a string), statement Visit methods return
// nil, and any of them raises a panic(SemanticError) on the
// first violation found. Analyze recovers that panic at the boundary
// and turns it back into a returned error.
package semantic

import (
	"exp/ast"
	"exp/token"
	"fmt"
	"strings"
)

// Analyzer walks a Program, builds the global SymbolTable (one child
// scope per namespace, one grandchild scope per function), and rejects
// programs that violate EXP's static typing rules.
type Analyzer struct {
	global             *SymbolTable
	scope              *SymbolTable
	functionReturnType string
	literalNames       map[string]string
}

// Analyze type-checks program and returns the populated global symbol
// table, or the first SemanticError encountered.
func Analyze(program ast.Program) (table *SymbolTable, err error) {
	a := &Analyzer{
		global:       NewSymbolTable(),
		literalNames: make(map[string]string),
	}
	a.scope = a.global

	defer func() {
		if r := recover(); r != nil {
			if semErr, ok := r.(error); ok {
				err = semErr
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()

	for _, ns := range program.Namespaces {
		a.analyzeNamespace(ns)
	}
	return a.global, nil
}

func typeKeywordToString(tok token.Token) string {
	switch tok.TokenType {
	case token.TYPE_INT:
		return "int"
	case token.TYPE_FLOAT:
		return "float"
	case token.TYPE_BOOL:
		return "bool"
	case token.TYPE_STRING:
		return "string"
	default:
		return tok.Lexeme
	}
}

func isNumeric(t string) bool {
	return t == "int" || t == "float"
}

// widen returns the arithmetic result type of combining two numeric
// operand types: float dominates int, matching host arithmetic
// promotion rules.
func widen(left, right string) string {
	if left == "float" || right == "float" {
		return "float"
	}
	return "int"
}

func (a *Analyzer) typeOf(expr ast.Expression) string {
	result := expr.Accept(a)
	t, _ := result.(string)
	return t
}

// registerLiteral coalesces literal registrations by (type, value) and
// records the literal under a synthetic name in the global table, so
// a later stage may resolve the literal by name (see design note on
// literal registration). The registry is a convenience: the bytecode
// emitter generally inlines literal values directly via PUSH.
func (a *Analyzer) registerLiteral(literalType string, value any) string {
	key := fmt.Sprintf("%s:%v", literalType, value)
	if name, ok := a.literalNames[key]; ok {
		return name
	}
	name := fmt.Sprintf("$lit%d", len(a.literalNames))
	a.literalNames[key] = name
	_ = a.global.Define(Symbol{Name: name, Type: literalType, Category: CategoryLiteral, Value: value})
	return name
}

// analyzeNamespace creates the namespace's scope, pre-registers every
// function signature and plain/array declaration (so calls may resolve
// regardless of declaration order), then type-checks every
// declaration's body in source order.
func (a *Analyzer) analyzeNamespace(ns ast.NamespaceDecl) {
	nsScope := a.global.NewChild(ns.Name.Lexeme)

	for _, decl := range ns.Decls {
		a.declareTopLevel(decl, nsScope)
	}

	previous := a.scope
	a.scope = nsScope
	for _, decl := range ns.Decls {
		decl.Accept(a)
	}
	a.scope = previous
}

// declareTopLevel registers the signature of a declaration that other
// declarations may reference before its body is checked: functions
// (so forward/recursive calls resolve), typed variables, and arrays.
// AutoDecl is intentionally excluded: its type is only known once its
// initializer is type-checked, which happens in source order during
// the second pass.
func (a *Analyzer) declareTopLevel(decl ast.Stmt, scope *SymbolTable) {
	switch d := decl.(type) {
	case ast.FunctionDecl:
		params := make([]Param, 0, len(d.Params))
		for _, p := range d.Params {
			params = append(params, Param{Name: p.Name.Lexeme, Type: typeKeywordToString(p.Type)})
		}
		sym := Symbol{
			Name:       d.Name.Lexeme,
			Category:   CategoryFunc,
			Params:     params,
			ReturnType: typeKeywordToString(d.ReturnType),
		}
		if err := scope.Define(sym); err != nil {
			panic(CreateSemanticError(d.Name.Line, d.Name.Column, err.Error()))
		}
	case ast.Decl:
		sym := Symbol{Name: d.Name.Lexeme, Type: typeKeywordToString(d.Type), Category: CategoryVar}
		if err := scope.Define(sym); err != nil {
			panic(CreateSemanticError(d.Name.Line, d.Name.Column, err.Error()))
		}
	case ast.ArrayDecl:
		sym := Symbol{Name: d.Name.Lexeme, Type: typeKeywordToString(d.ElemType) + "[]", Category: CategoryVar}
		if err := scope.Define(sym); err != nil {
			panic(CreateSemanticError(d.Name.Line, d.Name.Column, err.Error()))
		}
	}
}

// --- StmtVisitor ---

func (a *Analyzer) VisitExpressionStmt(stmt ast.ExpressionStmt) any {
	a.typeOf(stmt.Expression)
	return nil
}

func (a *Analyzer) VisitDecl(decl ast.Decl) any {
	// Already registered by declareTopLevel; nothing further to check.
	return nil
}

func (a *Analyzer) VisitAutoDecl(decl ast.AutoDecl) any {
	exprType := a.typeOf(decl.Expr)
	sym := Symbol{Name: decl.Name.Lexeme, Type: exprType, Category: CategoryVar}
	if err := a.scope.Define(sym); err != nil {
		panic(CreateSemanticError(decl.Name.Line, decl.Name.Column, err.Error()))
	}
	return nil
}

func (a *Analyzer) VisitArrayDecl(decl ast.ArrayDecl) any {
	sizeType := a.typeOf(decl.Size)
	if sizeType != "int" {
		panic(CreateSemanticError(decl.Name.Line, decl.Name.Column, "array size must be an integer"))
	}
	return nil
}

func (a *Analyzer) VisitIf(stmt ast.If) any {
	condType := a.typeOf(stmt.Cond)
	if condType != "bool" {
		panic(CreateSemanticError(0, 0, fmt.Sprintf("if condition must be boolean, got %s", condType)))
	}
	stmt.Then.Accept(a)
	if stmt.Else != nil {
		stmt.Else.Accept(a)
	}
	return nil
}

func (a *Analyzer) VisitBlock(block ast.Block) any {
	previous := a.scope
	a.scope = a.scope.NewChild("<block>")
	for _, stmt := range block.Stmts {
		stmt.Accept(a)
	}
	a.scope = previous
	return nil
}

func (a *Analyzer) VisitFunctionDecl(decl ast.FunctionDecl) any {
	fnScope := a.scope.NewChild(decl.Name.Lexeme)
	for _, p := range decl.Params {
		sym := Symbol{Name: p.Name.Lexeme, Type: typeKeywordToString(p.Type), Category: CategoryVar}
		if err := fnScope.Define(sym); err != nil {
			panic(CreateSemanticError(p.Name.Line, p.Name.Column, err.Error()))
		}
	}

	previousScope := a.scope
	previousReturn := a.functionReturnType
	a.scope = fnScope
	a.functionReturnType = typeKeywordToString(decl.ReturnType)

	decl.Body.Accept(a)

	a.scope = previousScope
	a.functionReturnType = previousReturn
	return nil
}

func (a *Analyzer) VisitPrint(print ast.Print) any {
	for _, arg := range print.Args {
		a.typeOf(arg)
	}
	return nil
}

func (a *Analyzer) VisitHalt(halt ast.Halt) any {
	return nil
}

func (a *Analyzer) VisitReturn(ret ast.Return) any {
	if ret.Expr == nil {
		return nil
	}
	exprType := a.typeOf(ret.Expr)
	if a.functionReturnType != "" && exprType != a.functionReturnType {
		panic(CreateSemanticError(0, 0, fmt.Sprintf("return type mismatch: expected %s, got %s", a.functionReturnType, exprType)))
	}
	return nil
}

func (a *Analyzer) VisitNamespaceDecl(decl ast.NamespaceDecl) any {
	a.analyzeNamespace(decl)
	return nil
}

func (a *Analyzer) VisitProgram(program ast.Program) any {
	for _, ns := range program.Namespaces {
		a.analyzeNamespace(ns)
	}
	return nil
}

// --- ExpressionVisitor ---

func (a *Analyzer) VisitLiteral(literal ast.Literal) any {
	a.registerLiteral(literal.Type, literal.Value)
	return literal.Type
}

func (a *Analyzer) VisitVarRef(ref ast.VarRef) any {
	sym, ok := a.scope.Resolve(ref.Name.Lexeme)
	if !ok {
		panic(CreateSemanticError(ref.Name.Line, ref.Name.Column, fmt.Sprintf("undeclared identifier: %s", ref.Name.Lexeme)))
	}
	return sym.Type
}

func (a *Analyzer) VisitQualifiedRef(ref ast.QualifiedRef) any {
	nsScope, ok := a.global.Namespace(ref.Namespace.Lexeme)
	if !ok {
		panic(CreateSemanticError(ref.Namespace.Line, ref.Namespace.Column, fmt.Sprintf("unknown namespace: %s", ref.Namespace.Lexeme)))
	}
	sym, ok := nsScope.ResolveLocal(ref.Name.Lexeme)
	if !ok {
		panic(CreateSemanticError(ref.Name.Line, ref.Name.Column, fmt.Sprintf("%s.%s is not declared", ref.Namespace.Lexeme, ref.Name.Lexeme)))
	}
	return sym.Type
}

func (a *Analyzer) VisitArrayAccess(access ast.ArrayAccess) any {
	sym, ok := a.scope.Resolve(access.Name.Lexeme)
	if !ok {
		panic(CreateSemanticError(access.Name.Line, access.Name.Column, fmt.Sprintf("undeclared identifier: %s", access.Name.Lexeme)))
	}
	if !strings.HasSuffix(sym.Type, "[]") {
		panic(CreateSemanticError(access.Name.Line, access.Name.Column, fmt.Sprintf("%s is not an array", access.Name.Lexeme)))
	}
	indexType := a.typeOf(access.Index)
	if indexType != "int" {
		panic(CreateSemanticError(access.Name.Line, access.Name.Column, "array index must be an integer"))
	}
	return strings.TrimSuffix(sym.Type, "[]")
}

func (a *Analyzer) VisitBinaryOp(binaryOp ast.BinaryOp) any {
	leftType := a.typeOf(binaryOp.Left)
	rightType := a.typeOf(binaryOp.Right)
	op := binaryOp.Operator

	switch op.TokenType {
	case token.AND, token.OR:
		if leftType != "bool" || rightType != "bool" {
			panic(CreateSemanticError(op.Line, op.Column, fmt.Sprintf("operator '%s' requires boolean operands", op.Lexeme)))
		}
		return "bool"

	case token.BANG:
		// Desugared "!x" -> BinaryOp{Left: 0, Operator: "!", Right: x}.
		if rightType != "bool" {
			panic(CreateSemanticError(op.Line, op.Column, "operator '!' requires a boolean operand"))
		}
		return "bool"

	case token.EQUAL_EQUAL, token.NOT_EQUAL, token.LARGER, token.LARGER_EQUAL, token.LESS, token.LESS_EQUAL:
		if leftType != rightType {
			panic(CreateSemanticError(op.Line, op.Column, fmt.Sprintf("cannot compare %s with %s", leftType, rightType)))
		}
		return "bool"

	case token.ADD:
		if leftType == "string" && rightType == "string" {
			return "string"
		}
		if isNumeric(leftType) && isNumeric(rightType) {
			return widen(leftType, rightType)
		}
		panic(CreateSemanticError(op.Line, op.Column, fmt.Sprintf("operator '+' not defined for %s and %s", leftType, rightType)))

	case token.SUB, token.MULT, token.DIV:
		if !isNumeric(leftType) || !isNumeric(rightType) {
			panic(CreateSemanticError(op.Line, op.Column, fmt.Sprintf("operator '%s' requires numeric operands, got %s and %s", op.Lexeme, leftType, rightType)))
		}
		return widen(leftType, rightType)

	default:
		panic(CreateSemanticError(op.Line, op.Column, fmt.Sprintf("operator '%s' not supported", op.Lexeme)))
	}
}

func (a *Analyzer) VisitTypeCast(cast ast.TypeCast) any {
	a.typeOf(cast.Expr)
	return typeKeywordToString(cast.TargetType)
}

func (a *Analyzer) VisitAssign(assign ast.Assign) any {
	targetType := a.typeOf(assign.Target)
	valueType := a.typeOf(assign.Value)
	if targetType != valueType {
		panic(CreateSemanticError(0, 0, fmt.Sprintf("cannot assign %s to %s", valueType, targetType)))
	}
	return targetType
}

func (a *Analyzer) VisitCall(call ast.Call) any {
	sym, ok := a.scope.Resolve(call.Name.Lexeme)
	if !ok {
		panic(CreateSemanticError(call.Name.Line, call.Name.Column, fmt.Sprintf("undeclared function: %s", call.Name.Lexeme)))
	}
	if sym.Category != CategoryFunc {
		panic(CreateSemanticError(call.Name.Line, call.Name.Column, fmt.Sprintf("%s is not callable", call.Name.Lexeme)))
	}
	if len(call.Args) != len(sym.Params) {
		panic(CreateSemanticError(call.Name.Line, call.Name.Column, fmt.Sprintf("%s expects %d argument(s), got %d", call.Name.Lexeme, len(sym.Params), len(call.Args))))
	}
	for i, arg := range call.Args {
		argType := a.typeOf(arg)
		if argType != sym.Params[i].Type {
			panic(CreateSemanticError(call.Name.Line, call.Name.Column, fmt.Sprintf("argument %d to %s: expected %s, got %s", i+1, call.Name.Lexeme, sym.Params[i].Type, argType)))
		}
	}
	return sym.ReturnType
}
