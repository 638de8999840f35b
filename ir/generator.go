package ir

import (
	"exp/ast"
	"exp/token"
	"fmt"
)

// Generator lowers a type-checked ast.Program to TAC using a
// monotonic temporary counter. Traversal is recursive over the AST;
// each expression Visit method returns either a literal value or a
// temporary/variable name (string) holding its result, mirroring the
// teacher's tree-walking visitor shape but emitting instructions
// instead of producing runtime values.
type Generator struct {
	instructions []Instruction
	nextTemp     int
}

// Generate lowers program to a flat TAC instruction list.
func Generate(program ast.Program) []Instruction {
	g := &Generator{}
	program.Accept(g)
	return g.instructions
}

func (g *Generator) emit(op string, arg1, arg2, result any) {
	g.instructions = append(g.instructions, Instruction{Op: op, Arg1: arg1, Arg2: arg2, Result: result})
}

// newTemp mints a fresh "tN" temporary name.
func (g *Generator) newTemp() string {
	name := fmt.Sprintf("t%d", g.nextTemp)
	g.nextTemp++
	return name
}

// newLabel mints a fresh "LN" label name from the same counter as
// newTemp, exactly as the reference generator does.
func (g *Generator) newLabel() string {
	name := fmt.Sprintf("L%d", g.nextTemp)
	g.nextTemp++
	return name
}

func (g *Generator) visitExpr(expr ast.Expression) any {
	return expr.Accept(g)
}

// literalOrValue evaluates expr, except when expr is itself a bare
// literal: then the raw ast.Literal leaf is carried unevaluated
// instead, the same way emitArgs already carries Literal/VarRef leaves
// for "arg". Without this, a literal string RHS would reach the
// emitter as a plain Go string indistinguishable from a variable name
// and get loaded instead of pushed.
func (g *Generator) literalOrValue(expr ast.Expression) any {
	if lit, ok := expr.(ast.Literal); ok {
		return lit
	}
	return g.visitExpr(expr)
}

func typeCastTargetName(targetType token.Token) string {
	switch targetType.TokenType {
	case token.TYPE_INT:
		return "int"
	case token.TYPE_FLOAT:
		return "float"
	case token.TYPE_BOOL:
		return "bool"
	case token.TYPE_STRING:
		return "string"
	default:
		return targetType.Lexeme
	}
}

// --- StmtVisitor ---

func (g *Generator) VisitProgram(program ast.Program) any {
	for _, ns := range program.Namespaces {
		ns.Accept(g)
	}
	return nil
}

func (g *Generator) VisitNamespaceDecl(decl ast.NamespaceDecl) any {
	for _, d := range decl.Decls {
		d.Accept(g)
	}
	return nil
}

func (g *Generator) VisitDecl(decl ast.Decl) any {
	g.emit("alloc", int64(1), nil, decl.Name.Lexeme)
	return nil
}

func (g *Generator) VisitAutoDecl(decl ast.AutoDecl) any {
	g.emit("alloc", int64(1), nil, decl.Name.Lexeme)
	value := g.literalOrValue(decl.Expr)
	g.emit("=", value, nil, decl.Name.Lexeme)
	return nil
}

func (g *Generator) VisitArrayDecl(decl ast.ArrayDecl) any {
	size := g.visitExpr(decl.Size)
	g.emit("alloc", size, nil, decl.Name.Lexeme)
	return nil
}

func (g *Generator) VisitExpressionStmt(stmt ast.ExpressionStmt) any {
	g.visitExpr(stmt.Expression)
	return nil
}

func (g *Generator) VisitIf(stmt ast.If) any {
	cond := g.visitExpr(stmt.Cond)
	labelElse := g.newLabel()
	labelEnd := g.newLabel()

	g.emit("ifz", cond, nil, labelElse)
	stmt.Then.Accept(g)
	g.emit("goto", nil, nil, labelEnd)
	g.emit("label", nil, nil, labelElse)
	if stmt.Else != nil {
		stmt.Else.Accept(g)
	}
	g.emit("label", nil, nil, labelEnd)
	return nil
}

func (g *Generator) VisitBlock(block ast.Block) any {
	for _, stmt := range block.Stmts {
		stmt.Accept(g)
	}
	return nil
}

func (g *Generator) VisitFunctionDecl(decl ast.FunctionDecl) any {
	g.emit("label", nil, nil, decl.Name.Lexeme)
	for _, p := range decl.Params {
		g.emit("param", nil, nil, p.Name.Lexeme)
	}
	decl.Body.Accept(g)
	return nil
}

// emitArgs emits one "arg" instruction per call/print argument. A
// Literal or VarRef argument is carried as the raw AST leaf itself so
// the bytecode emitter can materialize it directly at lowering time;
// any other expression is evaluated first and its result name/value
// is carried instead.
func (g *Generator) emitArgs(args []ast.Expression) {
	for _, arg := range args {
		switch leaf := arg.(type) {
		case ast.Literal:
			g.emit("arg", leaf, nil, nil)
		case ast.VarRef:
			g.emit("arg", leaf, nil, nil)
		default:
			value := g.visitExpr(arg)
			g.emit("arg", value, nil, nil)
		}
	}
}

func (g *Generator) VisitPrint(print ast.Print) any {
	g.emitArgs(print.Args)
	g.emit("PRINT", nil, nil, nil)
	return nil
}

func (g *Generator) VisitHalt(halt ast.Halt) any {
	g.emit("HALT", nil, nil, nil)
	return nil
}

func (g *Generator) VisitReturn(ret ast.Return) any {
	var value any
	if ret.Expr != nil {
		value = g.literalOrValue(ret.Expr)
	}
	g.emit("ret", value, nil, nil)
	return nil
}

// --- ExpressionVisitor ---

func (g *Generator) VisitLiteral(literal ast.Literal) any {
	return literal.Value
}

func (g *Generator) VisitVarRef(ref ast.VarRef) any {
	return ref.Name.Lexeme
}

func (g *Generator) VisitQualifiedRef(ref ast.QualifiedRef) any {
	return fmt.Sprintf("%s.%s", ref.Namespace.Lexeme, ref.Name.Lexeme)
}

func (g *Generator) VisitArrayAccess(access ast.ArrayAccess) any {
	index := g.visitExpr(access.Index)
	temp := g.newTemp()
	g.emit("load", access.Name.Lexeme, index, temp)
	return temp
}

func (g *Generator) VisitBinaryOp(binaryOp ast.BinaryOp) any {
	left := g.visitExpr(binaryOp.Left)
	right := g.visitExpr(binaryOp.Right)
	temp := g.newTemp()

	if binaryOp.Operator.TokenType == token.BANG {
		// "!x" was desugared by the parser to BinaryOp("!", 0, x).
		// Lower it as an equality test against zero rather than give
		// the VM a dedicated NOT opcode of its own.
		g.emit("==", left, right, temp)
		return temp
	}

	g.emit(binaryOp.Operator.Lexeme, left, right, temp)
	return temp
}

func (g *Generator) VisitTypeCast(cast ast.TypeCast) any {
	value := g.visitExpr(cast.Expr)
	temp := g.newTemp()
	g.emit("cast_"+typeCastTargetName(cast.TargetType), value, nil, temp)
	return temp
}

func (g *Generator) VisitAssign(assign ast.Assign) any {
	value := g.literalOrValue(assign.Value)
	switch target := assign.Target.(type) {
	case ast.VarRef:
		g.emit("=", value, nil, target.Name.Lexeme)
	case ast.QualifiedRef:
		g.emit("=", value, nil, fmt.Sprintf("%s.%s", target.Namespace.Lexeme, target.Name.Lexeme))
	case ast.ArrayAccess:
		index := g.visitExpr(target.Index)
		g.emit("store", value, index, target.Name.Lexeme)
	default:
		panic(fmt.Sprintf("ir: invalid assignment target %T", assign.Target))
	}
	return value
}

func (g *Generator) VisitCall(call ast.Call) any {
	g.emitArgs(call.Args)
	temp := g.newTemp()
	g.emit("call", call.Name.Lexeme, len(call.Args), temp)
	return temp
}
