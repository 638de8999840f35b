// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser

//	A Recursive descent parser is a top-down parser because it starts from the top
//
// grammar rule and works its way down in to the nested sub-experessions before reaching
// the leaves of the syntax tree (terminal rules)
package parser

import (
	"exp/ast"
	"exp/token"
	"fmt"
)

var comparisonTokenTypes = []token.TokenType{
	token.LARGER,
	token.LARGER_EQUAL,
	token.LESS,
	token.LESS_EQUAL,
}

var equalityTokenTypes = []token.TokenType{
	token.NOT_EQUAL,
	token.EQUAL_EQUAL,
}

var termTokenTypes = []token.TokenType{
	token.SUB,
	token.ADD,
}

var factorExpressionTypes = []token.TokenType{
	token.MULT,
	token.DIV,
}

var unaryExpressionTypes = []token.TokenType{
	token.BANG,
	token.SUB,

	// NOTE: not supported operands on unary expressions are included
	// So they can be parsed, but then unary rejects them with an error
	// naming the operator. This is known as "error productions"
	token.MULT,
	token.ADD,
	token.DIV,
}

var typeTokenTypes = []token.TokenType{
	token.TYPE_INT,
	token.TYPE_FLOAT,
	token.TYPE_BOOL,
	token.TYPE_STRING,
}

type Parser struct {
	tokens   []token.Token
	position int
}

// NOTE: The parsers position is always one unit ahead of the
// current token

// Make initializes and returns a new Parser instance over the given tokens.
func Make(tokens []token.Token) *Parser {
	return &Parser{
		tokens:   tokens,
		position: 0,
	}
}

// Print prints the AST as prettified JSON to standard output.
func (parser *Parser) Print(program ast.Program) {
	_, err := PrintASTJSON(program)
	if err != nil {
		fmt.Println("error producing AST JSON:", err)
	}
}

// PrintToFile writes the AST for the provided program to a .json file at the given path.
func (parser *Parser) PrintToFile(program ast.Program, path string) error {
	return WriteASTJSONToFile(program, path)
}

// peek returns the token at the parser's current position,
// without advancing the parser's position.
func (parser *Parser) peek() token.Token {
	return parser.tokens[parser.position]
}

// peekAt returns the token `offset` positions ahead of the parser's
// current position, without advancing the parser. It clamps to the
// final token (EOF) rather than indexing past the end of the stream.
func (parser *Parser) peekAt(offset int) token.Token {
	index := parser.position + offset
	if index >= len(parser.tokens) {
		return parser.tokens[len(parser.tokens)-1]
	}
	return parser.tokens[index]
}

// previous retrieves the token at the parser's previous position
// (position -1).
func (parser *Parser) previous() token.Token {
	return parser.tokens[parser.position-1]
}

// advance increments the parser's position by one unit and
// consumes the current token.
func (parser *Parser) advance() token.Token {
	if !parser.isFinished() {
		parser.position++
	}
	return parser.previous()
}

// isFinished determines if the parser has consumed all the tokens.
func (parser *Parser) isFinished() bool {
	tok := parser.peek()
	return tok.TokenType == token.EOF
}

// checkType determines if the provided tokenType matches the TokenType
// at the parser's current position.
func (parser *Parser) checkType(tokeType token.TokenType) bool {
	if parser.isFinished() {
		return false
	}
	tok := parser.peek()
	return tok.TokenType == tokeType
}

// isMatch determines if the TokenType at the current position matches
// any of the provided tokenTypes. If a match is found the parser
// increments its position and consumes the current token.
func (parser *Parser) isMatch(tokenTypes []token.TokenType) bool {
	for i := range tokenTypes {
		tokenType := tokenTypes[i]

		if parser.checkType(tokenType) {
			parser.advance()
			return true
		}
	}
	return false
}

// Parse parses the entire token stream into an ast.Program: one or
// more namespace blocks. Errors during parsing are collected but
// parsing continues to find additional errors where possible: after an
// error it skips one token and resumes at the top level, so every token
// skipped before the next "namespace" adds its own "Expected
// 'namespace'" error.
//
// Returns:
//   - ast.Program: the successfully parsed program.
//   - []error: all errors that occurred during parsing.
func (parser *Parser) Parse() (ast.Program, []error) {
	namespaces := []ast.NamespaceDecl{}
	errors := []error{}

	for !parser.isFinished() {
		_, err := parser.consume(token.NAMESPACE, "Expected 'namespace' at top level.")
		if err != nil {
			errors = append(errors, err)
			if !parser.isFinished() {
				parser.position++
			}
			continue
		}

		namespace, err := parser.namespaceDeclaration()
		if err != nil {
			errors = append(errors, err)
			if !parser.isFinished() {
				parser.position++
			}
			continue
		}
		namespaces = append(namespaces, namespace)
	}

	return ast.Program{Namespaces: namespaces}, errors
}

// namespaceDeclaration parses the body of a "namespace Name { decls }" block.
// The leading "namespace" keyword has already been consumed.
func (parser *Parser) namespaceDeclaration() (ast.NamespaceDecl, error) {
	name, err := parser.consume(token.IDENTIFIER, "Expected namespace name.")
	if err != nil {
		return ast.NamespaceDecl{}, err
	}

	if _, err := parser.consume(token.LCUR, "Expected '{' after namespace name."); err != nil {
		return ast.NamespaceDecl{}, err
	}

	decls := []ast.Stmt{}
	for !parser.checkType(token.RCUR) && !parser.isFinished() {
		decl, err := parser.declaration()
		if err != nil {
			return ast.NamespaceDecl{}, err
		}
		decls = append(decls, decl)
	}

	if _, err := parser.consume(token.RCUR, "Expected '}' to close namespace."); err != nil {
		return ast.NamespaceDecl{}, err
	}

	return ast.NamespaceDecl{Name: name, Decls: decls}, nil
}

// declaration parses a single declaration or statement appearing inside
// a namespace or function body: typed variable declarations, array
// declarations, function declarations, "auto" declarations, or a plain
// statement.
func (parser *Parser) declaration() (ast.Stmt, error) {
	if parser.checkType(token.AUTO) {
		parser.advance()
		return parser.autoDeclaration()
	}

	if parser.isMatch(typeTokenTypes) {
		return parser.typedDeclaration(parser.previous())
	}

	return parser.statement()
}

// autoDeclaration parses an "auto name = expr;" declaration. The
// leading "auto" keyword has already been consumed.
func (parser *Parser) autoDeclaration() (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "Expected variable name after 'auto'.")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.ASSIGN, "Expected '=' after 'auto' variable name."); err != nil {
		return nil, err
	}
	expr, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "Expected ';' after auto declaration."); err != nil {
		return nil, err
	}
	return ast.AutoDecl{Name: name, Expr: expr}, nil
}

// typedDeclaration parses the three constructs beginning with a type
// keyword: a plain declaration ("int x;"), an array declaration
// ("int nums[10];"), or a function declaration ("int f(int a) { }").
// The leading type token has already been consumed.
func (parser *Parser) typedDeclaration(typeTok token.Token) (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "Expected a name after type.")
	if err != nil {
		return nil, err
	}

	switch parser.peek().TokenType {
	case token.LPA:
		return parser.functionDeclaration(typeTok, name)
	case token.LBRACK:
		return parser.arrayDeclaration(typeTok, name)
	default:
		if _, err := parser.consume(token.SEMICOLON, "Expected ';' after declaration."); err != nil {
			return nil, err
		}
		return ast.Decl{Name: name, Type: typeTok}, nil
	}
}

// arrayDeclaration parses "name[size];"; the type and name tokens have
// already been consumed.
func (parser *Parser) arrayDeclaration(elemType token.Token, name token.Token) (ast.Stmt, error) {
	if _, err := parser.consume(token.LBRACK, "Expected '[' in array declaration."); err != nil {
		return nil, err
	}
	size, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RBRACK, "Expected ']' in array declaration."); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "Expected ';' after array declaration."); err != nil {
		return nil, err
	}
	return ast.ArrayDecl{Name: name, ElemType: elemType, Size: size}, nil
}

// functionDeclaration parses "name(T1 p1, T2 p2, ...) { body }"; the
// return type and name tokens have already been consumed.
func (parser *Parser) functionDeclaration(returnType token.Token, name token.Token) (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "Expected '(' after function name."); err != nil {
		return nil, err
	}

	params := []ast.Param{}
	if !parser.checkType(token.RPA) {
		for {
			if !parser.isMatch(typeTokenTypes) {
				currentToken := parser.peek()
				return nil, CreateSyntaxError(currentToken, "Expected a parameter type.")
			}
			paramType := parser.previous()
			paramName, err := parser.consume(token.IDENTIFIER, "Expected parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: paramName, Type: paramType})

			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}

	if _, err := parser.consume(token.RPA, "Expected ')' after parameter list."); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LCUR, "Expected '{' before function body."); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}

	return ast.FunctionDecl{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       ast.Block{Stmts: body},
	}, nil
}

// statement parses a single statement: print, halt, if, return, a
// block, or an expression statement (assignment or bare call).
func (parser *Parser) statement() (ast.Stmt, error) {
	if parser.isMatch([]token.TokenType{token.PRINT}) {
		return parser.printStatement()
	}

	if parser.isMatch([]token.TokenType{token.HALT}) {
		return parser.haltStatement()
	}

	if parser.isMatch([]token.TokenType{token.RETURN}) {
		return parser.returnStatement()
	}

	if parser.isMatch([]token.TokenType{token.IF}) {
		return parser.ifStatement()
	}

	if parser.isMatch([]token.TokenType{token.LCUR}) {
		statements, err := parser.block()
		if err != nil {
			return nil, err
		}
		return ast.Block{Stmts: statements}, nil
	}

	return parser.expressionStatement()
}

// printStatement parses "print(args...);". The leading "print"
// keyword has already been consumed.
func (parser *Parser) printStatement() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "Expected '(' after 'print'."); err != nil {
		return nil, err
	}
	args, err := parser.argumentList()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after print arguments."); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "Expected ';' after print statement."); err != nil {
		return nil, err
	}
	return ast.Print{Args: args}, nil
}

// haltStatement parses "halt();". The leading "halt" keyword has
// already been consumed.
func (parser *Parser) haltStatement() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "Expected '(' after 'halt'."); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after 'halt'."); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "Expected ';' after halt statement."); err != nil {
		return nil, err
	}
	return ast.Halt{}, nil
}

// returnStatement parses "return expr;" or a bare "return;". The
// leading "return" keyword has already been consumed.
func (parser *Parser) returnStatement() (ast.Stmt, error) {
	if parser.isMatch([]token.TokenType{token.SEMICOLON}) {
		return ast.Return{Expr: nil}, nil
	}
	expr, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "Expected ';' after return statement."); err != nil {
		return nil, err
	}
	return ast.Return{Expr: expr}, nil
}

// ifStatement parses an if-statement from the token stream. It expects
// a parenthesized condition followed by a brace-delimited 'then'
// branch, and optionally parses an 'else' branch if present. The
// leading "if" keyword has already been consumed.
func (parser *Parser) ifStatement() (ast.Stmt, error) {
	if _, err := parser.consume(token.LPA, "Expected '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after if condition."); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LCUR, "Expected '{' to begin if body."); err != nil {
		return nil, err
	}
	thenStmts, err := parser.block()
	if err != nil {
		return nil, err
	}

	var elseBlock *ast.Block
	if parser.isMatch([]token.TokenType{token.ELSE}) {
		if _, err := parser.consume(token.LCUR, "Expected '{' to begin else body."); err != nil {
			return nil, err
		}
		elseStmts, err := parser.block()
		if err != nil {
			return nil, err
		}
		elseBlock = &ast.Block{Stmts: elseStmts}
	}

	return ast.If{
		Cond: cond,
		Then: ast.Block{Stmts: thenStmts},
		Else: elseBlock,
	}, nil
}

// expressionStatement parses a statement consisting of a single
// expression (an assignment or a bare call) terminated by ';'.
func (parser *Parser) expressionStatement() (ast.Stmt, error) {
	expression, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, "Expected ';' after expression."); err != nil {
		return nil, err
	}
	return ast.ExpressionStmt{Expression: expression}, nil
}

// block parses a block's statements up to, and consuming, the
// closing '}'. The opening '{' has already been consumed.
func (parser *Parser) block() ([]ast.Stmt, error) {
	statements := []ast.Stmt{}

	for !parser.checkType(token.RCUR) && !parser.isFinished() {
		stmt, err := parser.declaration()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	if _, err := parser.consume(token.RCUR, "Expected '}' after block."); err != nil {
		return nil, err
	}
	return statements, nil
}

// argumentList parses a comma-separated list of expressions, up to
// but not consuming the closing ')'. An empty argument list is valid.
func (parser *Parser) argumentList() ([]ast.Expression, error) {
	args := []ast.Expression{}
	if parser.checkType(token.RPA) {
		return args, nil
	}
	for {
		arg, err := parser.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !parser.isMatch([]token.TokenType{token.COMMA}) {
			break
		}
	}
	return args, nil
}

// expression is the entry point for parsing expressions. It begins at
// the assignment rule, which encompasses all lower-precedence rules.
func (parser *Parser) expression() (ast.Expression, error) {
	return parser.assignment()
}

// assignment parses an assignment expression from the token stream.
//
// Steps:
//  1. First, parse the left-hand side (LHS) as an "or" expression.
//     This ensures proper precedence, so assignment has lower precedence
//     than logical-or and everything below it.
//  2. If the next token is an '=' (ASSIGN), then:
//     - Recursively call `assignment` to parse the right-hand side (RHS).
//     - Check if the LHS is a valid assignment target (VarRef,
//       QualifiedRef, or ArrayAccess); otherwise produce a syntax error.
//  3. If no '=' follows, just return the previously parsed expression.
func (parser *Parser) assignment() (ast.Expression, error) {
	expression, err := parser.or()
	if err != nil {
		return nil, err
	}
	if parser.isMatch([]token.TokenType{token.ASSIGN}) {
		equalsToken := parser.previous()
		value, err := parser.assignment()
		if err != nil {
			return nil, err
		}
		switch expression.(type) {
		case ast.VarRef, ast.QualifiedRef, ast.ArrayAccess:
			return ast.Assign{Target: expression, Value: value}, nil
		default:
			msg := "Invalid assignment target."
			return nil, CreateSyntaxError(equalsToken, msg)
		}
	}

	return expression, nil
}

// or parses a logical OR expression from the token stream.
// It first parses an AND expression on the left side, then consumes
// any sequence of OR operators, building a left-associative AST.
func (parser *Parser) or() (ast.Expression, error) {
	expr, err := parser.and()
	if err != nil {
		return nil, err
	}

	for parser.isMatch([]token.TokenType{token.OR}) {
		op := parser.previous()
		rightExpr, err := parser.and()
		if err != nil {
			return nil, err
		}
		expr = ast.BinaryOp{Left: expr, Operator: op, Right: rightExpr}
	}

	return expr, nil
}

// and parses a logical AND expression from the token stream.
// It first parses an equality expression on the left side,
// then consumes any sequence of AND operators, building a
// left-associative AST.
func (parser *Parser) and() (ast.Expression, error) {
	expr, err := parser.equality()
	if err != nil {
		return nil, err
	}

	for parser.isMatch([]token.TokenType{token.AND}) {
		op := parser.previous()
		rightExpr, err := parser.equality()
		if err != nil {
			return nil, err
		}
		expr = ast.BinaryOp{Left: expr, Operator: op, Right: rightExpr}
	}
	return expr, nil
}

// equality parses equality expressions using operators "==" and "!=".
func (parser *Parser) equality() (ast.Expression, error) {
	exp, err := parser.comparison()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(equalityTokenTypes) {
		operator := parser.previous()
		right, err := parser.comparison()
		if err != nil {
			return nil, err
		}
		exp = ast.BinaryOp{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

// comparison parses comparison expressions using operators "<", "<=", ">", ">=".
func (parser *Parser) comparison() (ast.Expression, error) {
	exp, err := parser.term()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(comparisonTokenTypes) {
		operator := parser.previous()
		right, err := parser.term()
		if err != nil {
			return nil, err
		}
		exp = ast.BinaryOp{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

// term parses addition and subtraction expressions using operators "+" and "-".
func (parser *Parser) term() (ast.Expression, error) {
	exp, err := parser.factor()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(termTokenTypes) {
		operator := parser.previous()
		right, err := parser.factor()
		if err != nil {
			return nil, err
		}
		exp = ast.BinaryOp{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

// factor parses multiplication and division expressions using operators "*" and "/".
func (parser *Parser) factor() (ast.Expression, error) {
	exp, err := parser.unary()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(factorExpressionTypes) {
		operator := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		exp = ast.BinaryOp{Left: exp, Operator: operator, Right: right}
	}
	return exp, nil
}

// zeroLiteral builds the synthetic integer 0 literal used to desugar
// unary operators into binary ones.
func zeroLiteral() ast.Literal {
	return ast.Literal{Value: int64(0), Type: "int"}
}

// unary parses unary prefix expressions using operators "!" or "-"
// (plus the error-production operators "+", "*", "/", which are
// matched only to be rejected with a syntax error naming the operator
// rather than a bare "Unrecognised expression"). "-x" and "!x" are
// desugared here into a BinaryOp against a synthetic zero:
// BinaryOp("-", 0, x) / BinaryOp("!", 0, x).
func (parser *Parser) unary() (ast.Expression, error) {
	if parser.isMatch(unaryExpressionTypes) {
		operator := parser.previous()
		if operator.TokenType != token.BANG && operator.TokenType != token.SUB {
			return nil, CreateSyntaxError(operator, fmt.Sprintf("Unary operator '%s' is not supported.", operator.Lexeme))
		}
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		return ast.BinaryOp{
			Left:     zeroLiteral(),
			Operator: operator,
			Right:    right,
		}, nil
	}
	return parser.call()
}

// call parses a primary expression with at most one call or
// array-index suffix: "f(args)" or "a[i]" (no chaining). A qualified reference
// ("ns.name") is resolved inside primary, since EXP has no nested
// field access.
func (parser *Parser) call() (ast.Expression, error) {
	if parser.checkType(token.IDENTIFIER) && parser.peekAt(1).TokenType == token.LPA {
		name := parser.advance()
		parser.advance() // consume '('
		args, err := parser.argumentList()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RPA, "Expected ')' after call arguments."); err != nil {
			return nil, err
		}
		return ast.Call{Name: name, Args: args}, nil
	}

	expr, err := parser.primary()
	if err != nil {
		return nil, err
	}

	if parser.isMatch([]token.TokenType{token.LBRACK}) {
		name, ok := expr.(ast.VarRef)
		if !ok {
			currentToken := parser.previous()
			return nil, CreateSyntaxError(currentToken, "Array index may only be applied to a variable name.")
		}
		index, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RBRACK, "Expected ']' after array index."); err != nil {
			return nil, err
		}
		return ast.ArrayAccess{Name: name.Name, Index: index}, nil
	}

	return expr, nil
}

// primary parses the most basic forms of expressions: literals,
// groupings, type casts, qualified references, and bare identifiers.
func (parser *Parser) primary() (ast.Expression, error) {
	if parser.isMatch([]token.TokenType{token.FALSE}) {
		return ast.Literal{Value: false, Type: "bool"}, nil
	}
	if parser.isMatch([]token.TokenType{token.TRUE}) {
		return ast.Literal{Value: true, Type: "bool"}, nil
	}

	if parser.isMatch([]token.TokenType{token.INT}) {
		return ast.Literal{Value: parser.previous().Literal, Type: "int"}, nil
	}
	if parser.isMatch([]token.TokenType{token.FLOAT}) {
		return ast.Literal{Value: parser.previous().Literal, Type: "float"}, nil
	}
	if parser.isMatch([]token.TokenType{token.STRING}) {
		return ast.Literal{Value: parser.previous().Literal, Type: "string"}, nil
	}

	if parser.isMatch(typeTokenTypes) {
		targetType := parser.previous()
		if _, err := parser.consume(token.LPA, "Expected '(' after type in cast expression."); err != nil {
			return nil, err
		}
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RPA, "Expected ')' after cast expression."); err != nil {
			return nil, err
		}
		return ast.TypeCast{TargetType: targetType, Expr: expr}, nil
	}

	if parser.isMatch([]token.TokenType{token.IDENTIFIER}) {
		name := parser.previous()
		if parser.isMatch([]token.TokenType{token.DOT}) {
			member, err := parser.consume(token.IDENTIFIER, "Expected identifier after '.'.")
			if err != nil {
				return nil, err
			}
			return ast.QualifiedRef{Namespace: name, Name: member}, nil
		}
		return ast.VarRef{Name: name}, nil
	}

	if parser.isMatch([]token.TokenType{token.LPA}) {
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		_, consumeErr := parser.consume(token.RPA, fmt.Sprintf("expression is missing '%s'", token.RPA))
		if consumeErr != nil {
			return nil, consumeErr
		}
		return expr, nil
	}

	currentToken := parser.peek()
	return nil, CreateSyntaxError(currentToken, "Unrecognised expression.")
}

// consume consumes the current token by advancing the parsers current
// position by one unit if the `tokenType` matches the token type of
// the parsers current position.
//
// Returns a SyntaxError if the provided `tokenType` does not match the
// `TokenType` at the parsers current position.
func (parser *Parser) consume(tokenType token.TokenType, errorMessage string) (token.Token, error) {
	if parser.checkType(tokenType) {
		return parser.advance(), nil
	}
	currentToken := parser.peek()
	return token.CreateToken(token.EOF, 0, 0), CreateSyntaxError(currentToken, errorMessage)
}
