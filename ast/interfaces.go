// interfaces.go contains all visitor interfaces that any code traversing expression and statement AST nodes must implement.
// It also contains the interfaces that all statement and expression AST nodes must implement which also follows the
// visitor design pattern

package ast

// ExpressionVisitor is the interface for operating on all Expression AST nodes.
// Any type that wants to perform an operation on expressions (e.g., the IR
// generator, an ast-printer, or the semantic analyzer) must implement this
// interface.
//
// Each Visit method corresponds to a distinct Expression type.
type ExpressionVisitor interface {
	// VisitLiteral is called when visiting a Literal expression (a number, string, or boolean).
	VisitLiteral(literal Literal) any

	// VisitVarRef is called when visiting a bare identifier reference (e.g., "a").
	VisitVarRef(varRef VarRef) any

	// VisitQualifiedRef is called when visiting a namespace-qualified reference (e.g., "ns.a").
	VisitQualifiedRef(ref QualifiedRef) any

	// VisitArrayAccess is called when visiting an indexed array read (e.g., "a[i]").
	VisitArrayAccess(access ArrayAccess) any

	// VisitBinaryOp is called when visiting a binary operation (arithmetic, relational, or logical).
	VisitBinaryOp(binaryOp BinaryOp) any

	// VisitTypeCast is called when visiting an explicit type coercion.
	VisitTypeCast(cast TypeCast) any

	// VisitAssign is called when visiting an assignment to a variable or array slot.
	VisitAssign(assign Assign) any

	// VisitCall is called when visiting a function call used as an expression.
	VisitCall(call Call) any
}

// StmtVisitor is the interface for operating on all Statement AST nodes.
// Like ExpressionVisitor, it defines one Visit method per statement type.
// This separation between expressions and statements mirrors the grammar structure.
type StmtVisitor interface {
	// VisitExpressionStmt is called when visiting an expression used as a statement.
	// Example: "soma(5, 6);" or "a = b;"
	VisitExpressionStmt(exprStmt ExpressionStmt) any

	// VisitDecl is called when visiting a typed variable declaration with no initializer.
	// Example: "int x;"
	VisitDecl(decl Decl) any

	// VisitAutoDecl is called when visiting an inferred-type declaration with an initializer.
	// Example: "auto msg = "hello";"
	VisitAutoDecl(decl AutoDecl) any

	// VisitArrayDecl is called when visiting a fixed-size array declaration.
	// Example: "int nums[10];"
	VisitArrayDecl(decl ArrayDecl) any

	// VisitIf is called when visiting a conditional statement.
	VisitIf(ifStmt If) any

	// VisitBlock is called when visiting a brace-delimited sequence of statements.
	VisitBlock(block Block) any

	// VisitFunctionDecl is called when visiting a function declaration.
	VisitFunctionDecl(decl FunctionDecl) any

	// VisitPrint is called when visiting a print statement.
	VisitPrint(print Print) any

	// VisitHalt is called when visiting a halt statement.
	VisitHalt(halt Halt) any

	// VisitReturn is called when visiting a return statement.
	VisitReturn(ret Return) any

	// VisitNamespaceDecl is called when visiting a top-level namespace block.
	VisitNamespaceDecl(decl NamespaceDecl) any

	// VisitProgram is called when visiting the root of the AST.
	VisitProgram(program Program) any
}

// Expression is the core interface for all expression nodes in the Abstract Syntax Tree (AST).
// Any expression type (e.g., binary operation, literal, call, etc.) must implement this interface.
// The Accept method enables the Visitor design pattern so that operations can be performed on
// expressions without the expression types needing to know the details of those operations.
type Expression interface {
	// Accept dispatches the current expression node to the appropriate method on a Visitor.
	Accept(v ExpressionVisitor) any
}

// Stmt is the base interface for all statement nodes in the AST.
// Like Expression, it follows the Visitor design pattern where each
// statement type implements Accept, calling back into the correct
// Visit method on a StmtVisitor.
type Stmt interface {
	// Accept dispatches this statement to the appropriate Visit method
	// of the provided StmtVisitor implementation.
	Accept(v StmtVisitor) any
}
