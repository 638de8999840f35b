// expressions.go contains all the expression AST nodes. A expression node always evaluates to a value.

package ast

import (
	"exp/token"
)

// Literal represents a literal value in the source code
// (e.g., numbers, strings, or booleans).
type Literal struct {
	Value any    // The literal value (Go's `any` allows different possible types)
	Type  string // One of "int", "float", "bool", "string"
}

func (literal Literal) Accept(v ExpressionVisitor) any {
	return v.VisitLiteral(literal)
}

// VarRef represents a reference to a value bound to an unqualified
// identifier (e.g., "a").
type VarRef struct {
	Name token.Token // An IDENTIFIER token
}

func (ref VarRef) Accept(v ExpressionVisitor) any {
	return v.VisitVarRef(ref)
}

// QualifiedRef represents a reference to a declaration inside another
// namespace (e.g., "geo.origin").
type QualifiedRef struct {
	Namespace token.Token
	Name      token.Token
}

func (ref QualifiedRef) Accept(v ExpressionVisitor) any {
	return v.VisitQualifiedRef(ref)
}

// ArrayAccess represents an indexed read of an array variable (e.g., "a[i]").
type ArrayAccess struct {
	Name  token.Token
	Index Expression
}

func (access ArrayAccess) Accept(v ExpressionVisitor) any {
	return v.VisitArrayAccess(access)
}

// BinaryOp represents a binary operation expression (e.g., "a + b",
// "a and b", "a <= b"). It consists of a left-hand side expression, an
// operator token, and a right-hand side expression. Arithmetic,
// relational, and logical operators all share this single node; the
// operator lexeme distinguishes them.
//
// Unary operators have no dedicated node: the parser desugars "-x" and
// "!x" into a BinaryOp whose left operand is a synthetic zero literal
// (see parser.unary).
type BinaryOp struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func (binaryOp BinaryOp) Accept(v ExpressionVisitor) any {
	return v.VisitBinaryOp(binaryOp)
}

// TypeCast represents an explicit coercion of an expression's value to
// another type (e.g., "float(x)").
type TypeCast struct {
	TargetType token.Token
	Expr       Expression
}

func (cast TypeCast) Accept(v ExpressionVisitor) any {
	return v.VisitTypeCast(cast)
}

// Assign represents an assignment expression in the abstract syntax tree (AST).
// It models the operation of assigning a new value to an existing variable
// or array slot.
type Assign struct {
	Target Expression // VarRef, QualifiedRef, or ArrayAccess
	Value  Expression
}

func (assign Assign) Accept(v ExpressionVisitor) any {
	return v.VisitAssign(assign)
}

// Call represents a function invocation used as an expression
// (e.g., "soma(5, 6)").
type Call struct {
	Name token.Token
	Args []Expression
}

func (call Call) Accept(v ExpressionVisitor) any {
	return v.VisitCall(call)
}
