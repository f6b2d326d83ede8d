// Package parser builds an AST from a token stream with a hand-written
// recursive descent parser: statements are dispatched by keyword, and
// expressions climb operator precedence in a small Pratt loop.
package parser

import (
	"fmt"

	"github.com/codeassociates/pyla/ast"
	"github.com/codeassociates/pyla/lexer"
)

// Operator precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	COMPARISON // ==, !=, <, >, <=, >=
	SUM        // +, -
	PRODUCT    // *, /
	PREFIX     // unary -x, +x
)

var precedences = map[lexer.TokenType]int{
	lexer.EQUAL:         COMPARISON,
	lexer.NOT_EQUAL:     COMPARISON,
	lexer.LESS:          COMPARISON,
	lexer.GREATER:       COMPARISON,
	lexer.LESS_EQUAL:    COMPARISON,
	lexer.GREATER_EQUAL: COMPARISON,
	lexer.PLUS:          SUM,
	lexer.MINUS:         SUM,
	lexer.MULTIPLY:      PRODUCT,
	lexer.DIVIDE:        PRODUCT,
}

// Parser consumes a Lexer's token stream and produces a Program. Errors
// are collected rather than returned; parsing always proceeds on a
// best-effort basis and the program root is always returned.
type Parser struct {
	l      *lexer.Lexer
	errors []string

	curToken  lexer.Token
	peekToken lexer.Token

	// indentLevel is the net INDENT/DEDENT count consumed so far, used by
	// parseBlock to tell "this DEDENT closes my block" from "this DEDENT
	// belongs to a nested block that already returned".
	indentLevel int
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: []string{}}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: %s", p.curToken.Line, msg))
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()

	switch p.curToken.Type {
	case lexer.INDENT:
		p.indentLevel++
	case lexer.DEDENT:
		p.indentLevel--
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.peekToken.Type))
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram consumes the whole token stream and returns the root node.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(lexer.EOF) {
		for p.curTokenIs(lexer.NEWLINE) {
			p.nextToken()
		}
		// A top-level statement that closed an indented block may return
		// with curToken sitting on that block's own closing DEDENT,
		// already fully accounted for; just drain it.
		for p.curTokenIs(lexer.DEDENT) {
			p.nextToken()
		}
		for p.curTokenIs(lexer.NEWLINE) {
			p.nextToken()
		}
		if p.curTokenIs(lexer.EOF) {
			break
		}

		prevToken, prevPeek := p.curToken, p.peekToken

		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}

		if !p.curTokenIs(lexer.NEWLINE) && !p.curTokenIs(lexer.DEDENT) && !p.curTokenIs(lexer.EOF) {
			p.nextToken()
		}
		if p.curToken == prevToken && p.peekToken == prevPeek {
			p.nextToken()
		}
	}

	return program
}

// parseStatement dispatches on the current token. A statement that
// cannot be parsed emits a diagnostic and returns nil; the caller is
// responsible for advancing past the offending token.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.DEF:
		return p.parseFunctionDef()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.PRINT:
		return p.parsePrintStatement()
	case lexer.IDENTIFIER:
		if p.peekTokenIs(lexer.ASSIGN) {
			return p.parseAssignment()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseAssignment() ast.Statement {
	name := p.curToken.Literal
	p.nextToken() // move onto =
	assign := &ast.Assignment{Token: p.curToken, Name: name}
	p.nextToken() // move onto the start of the value expression
	assign.Value = p.parseExpression(LOWEST)
	if assign.Value == nil {
		return nil
	}
	return assign
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{Token: tok, Value: expr}
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.If{Token: p.curToken}

	p.nextToken() // move onto the condition
	stmt.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.COLON) {
		return stmt
	}
	for p.peekTokenIs(lexer.NEWLINE) {
		p.nextToken()
	}
	stmt.Then = p.parseBlock()

	// The then-block may have returned with curToken sitting on its own
	// unconsumed closing DEDENT (or, for an un-indented empty block, on
	// the NEWLINE that precedes the next line). An ELSE clause at the
	// same level shows up one token past that point.
	if p.curTokenIs(lexer.ELSE) ||
		((p.curTokenIs(lexer.DEDENT) || p.curTokenIs(lexer.NEWLINE)) && p.peekTokenIs(lexer.ELSE)) {
		if !p.curTokenIs(lexer.ELSE) {
			p.nextToken()
		}
		if !p.expectPeek(lexer.COLON) {
			return stmt
		}
		for p.peekTokenIs(lexer.NEWLINE) {
			p.nextToken()
		}
		stmt.Else = p.parseBlock()
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.While{Token: p.curToken}

	p.nextToken() // move onto the condition
	stmt.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.COLON) {
		return stmt
	}
	for p.peekTokenIs(lexer.NEWLINE) {
		p.nextToken()
	}
	stmt.Body = p.parseBlock()

	return stmt
}

func (p *Parser) parseFunctionDef() ast.Statement {
	stmt := &ast.FunctionDef{Token: p.curToken}

	if !p.expectPeek(lexer.IDENTIFIER) {
		return stmt
	}
	stmt.Name = p.curToken.Literal

	if !p.expectPeek(lexer.LPAREN) {
		return stmt
	}
	stmt.Params = p.parseParamList()

	if !p.expectPeek(lexer.COLON) {
		return stmt
	}
	for p.peekTokenIs(lexer.NEWLINE) {
		p.nextToken()
	}
	stmt.Body = p.parseBlock()

	return stmt
}

func (p *Parser) parseParamList() []string {
	var params []string

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}

	p.nextToken()
	params = append(params, p.curToken.Literal)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume comma
		p.nextToken() // move to next param
		params = append(params, p.curToken.Literal)
	}

	if !p.expectPeek(lexer.RPAREN) {
		return params
	}
	return params
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.Return{Token: p.curToken}

	if p.peekTokenIs(lexer.NEWLINE) || p.peekTokenIs(lexer.EOF) || p.peekTokenIs(lexer.DEDENT) {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parsePrintStatement() ast.Statement {
	stmt := &ast.Print{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RPAREN) {
		return stmt
	}
	return stmt
}

// parseBlock parses an INDENT ... DEDENT delimited statement sequence.
// It is called with curToken positioned on the last NEWLINE skipped after
// a COLON (or on the COLON itself, if the grammar's NEWLINE* matched
// zero). If the next token isn't INDENT, no block was indented here: an
// empty block is returned and nothing is consumed, preserving curToken
// as a terminator for the enclosing statement sequence to pick up. The
// statement sequence otherwise grows with a plain slice append; there is
// no cap on block length.
func (p *Parser) parseBlock() *ast.Block {
	if !p.peekTokenIs(lexer.INDENT) {
		return &ast.Block{Token: p.peekToken}
	}

	p.nextToken() // consume INDENT
	block := &ast.Block{Token: p.curToken}
	startLevel := p.indentLevel
	p.nextToken() // move past INDENT, onto the first statement

	for !p.curTokenIs(lexer.EOF) {
		for p.curTokenIs(lexer.NEWLINE) {
			p.nextToken()
		}

		for p.curTokenIs(lexer.DEDENT) {
			if p.indentLevel < startLevel {
				return block
			}
			// A nested block already returned without consuming its own
			// closing DEDENT; do so on its behalf and keep going.
			p.nextToken()
		}

		for p.curTokenIs(lexer.NEWLINE) {
			p.nextToken()
		}

		if p.curTokenIs(lexer.EOF) || p.indentLevel < startLevel {
			break
		}

		prevToken, prevPeek := p.curToken, p.peekToken

		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}

		if !p.curTokenIs(lexer.NEWLINE) && !p.curTokenIs(lexer.DEDENT) && !p.curTokenIs(lexer.EOF) {
			p.nextToken()
		}
		if p.curToken == prevToken && p.peekToken == prevPeek {
			break
		}
	}

	return block
}

// parseExpression is the Pratt loop: parse a prefix production for
// curToken, then repeatedly fold in infix operators whose precedence
// beats the caller's, producing left-associative trees.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	var left ast.Expression

	switch p.curToken.Type {
	case lexer.NUMBER:
		left = &ast.Number{Token: p.curToken, Value: p.curToken.Value}
	case lexer.STRING:
		left = &ast.String{Token: p.curToken, Value: p.curToken.Literal}
	case lexer.IDENTIFIER:
		if p.peekTokenIs(lexer.LPAREN) {
			left = p.parseFunctionCall()
		} else {
			left = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
		}
	case lexer.LPAREN:
		p.nextToken()
		left = p.parseExpression(LOWEST)
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
	case lexer.PLUS, lexer.MINUS:
		tok := p.curToken
		p.nextToken()
		operand := p.parseExpression(PREFIX)
		if operand == nil {
			return nil
		}
		left = &ast.UnaryOp{Token: tok, Operator: tok.Type, Operand: operand}
	default:
		p.addError(fmt.Sprintf("unexpected token in expression: %s", p.curToken.Type))
		return nil
	}

	if left == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.NEWLINE) && !p.peekTokenIs(lexer.EOF) && !p.peekTokenIs(lexer.DEDENT) &&
		precedence < p.peekPrecedence() {

		switch p.peekToken.Type {
		case lexer.PLUS, lexer.MINUS, lexer.MULTIPLY, lexer.DIVIDE,
			lexer.EQUAL, lexer.NOT_EQUAL, lexer.LESS, lexer.GREATER, lexer.LESS_EQUAL, lexer.GREATER_EQUAL:
			p.nextToken()
			left = p.parseBinaryOp(left)
		default:
			return left
		}
	}

	return left
}

func (p *Parser) parseBinaryOp(left ast.Expression) ast.Expression {
	expr := &ast.BinaryOp{Token: p.curToken, Left: left, Operator: p.curToken.Type}
	prec := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(prec)
	return expr
}

func (p *Parser) parseFunctionCall() ast.Expression {
	call := &ast.FunctionCall{Token: p.curToken, Name: p.curToken.Literal}

	p.nextToken() // consume the callee, move onto (

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return call
	}

	p.nextToken() // move onto the first argument
	call.Args = append(call.Args, p.parseExpression(LOWEST))

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken() // consume comma
		p.nextToken() // move to next argument
		call.Args = append(call.Args, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return call
}
