package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeassociates/pyla/ast"
	"github.com/codeassociates/pyla/lexer"
)

func parseSource(src string) (*ast.Program, *Parser) {
	p := New(lexer.New(src))
	return p.ParseProgram(), p
}

func requireNoParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	require.Emptyf(t, p.Errors(), "unexpected parser errors: %v", p.Errors())
}

func TestParseAssignment(t *testing.T) {
	program, p := parseSource("x = 10\n")
	requireNoParserErrors(t, p)
	require.Len(t, program.Statements, 1)

	assign, ok := program.Statements[0].(*ast.Assignment)
	require.Truef(t, ok, "expected *ast.Assignment, got %T", program.Statements[0])
	assert.Equal(t, "x", assign.Name)

	num, ok := assign.Value.(*ast.Number)
	require.True(t, ok)
	assert.Equal(t, 10.0, num.Value)
}

// TestArithmeticPrecedence checks that `x + y * 2` parses as
// `x + (y * 2)`, matching scenario 1 of the end-to-end suite.
func TestArithmeticPrecedence(t *testing.T) {
	program, p := parseSource("result = x + y * 2\n")
	requireNoParserErrors(t, p)
	require.Len(t, program.Statements, 1)

	assign := program.Statements[0].(*ast.Assignment)
	add, ok := assign.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, lexer.PLUS, add.Operator)

	left, ok := add.Left.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "x", left.Name)

	mul, ok := add.Right.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, lexer.MULTIPLY, mul.Operator)
}

func TestLeftAssociativeSubtraction(t *testing.T) {
	// 10 - 3 - 2 must parse as (10 - 3) - 2, i.e. 5, not 10 - (3 - 2) = 9.
	program, p := parseSource("r = 10 - 3 - 2\n")
	requireNoParserErrors(t, p)

	assign := program.Statements[0].(*ast.Assignment)
	outer, ok := assign.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, lexer.MINUS, outer.Operator)

	inner, ok := outer.Left.(*ast.BinaryOp)
	require.True(t, ok, "left operand of outer minus should itself be a BinaryOp (left-associative)")
	assert.Equal(t, lexer.MINUS, inner.Operator)

	_, rightIsNumber := outer.Right.(*ast.Number)
	assert.True(t, rightIsNumber)
}

func TestUnaryMinusBindsTighterThanBinary(t *testing.T) {
	program, p := parseSource("r = -x + 1\n")
	requireNoParserErrors(t, p)

	assign := program.Statements[0].(*ast.Assignment)
	add, ok := assign.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, lexer.PLUS, add.Operator)

	unary, ok := add.Left.(*ast.UnaryOp)
	require.True(t, ok)
	assert.Equal(t, lexer.MINUS, unary.Operator)
}

func TestParenthesizedExpression(t *testing.T) {
	program, p := parseSource("r = (1 + 2) * 3\n")
	requireNoParserErrors(t, p)

	assign := program.Statements[0].(*ast.Assignment)
	mul, ok := assign.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, lexer.MULTIPLY, mul.Operator)

	_, leftIsSum := mul.Left.(*ast.BinaryOp)
	assert.True(t, leftIsSum, "left of * should be the parenthesized sum")
}

func TestParseIfWithoutElse(t *testing.T) {
	src := "age = 18\nif age >= 18:\n    print(\"Adult\")\n"
	program, p := parseSource(src)
	requireNoParserErrors(t, p)
	require.Len(t, program.Statements, 2)

	ifStmt, ok := program.Statements[1].(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Then)
	assert.Len(t, ifStmt.Then.Statements, 1)
	assert.Nil(t, ifStmt.Else)

	_, isPrint := ifStmt.Then.Statements[0].(*ast.Print)
	assert.True(t, isPrint)
}

func TestParseIfElse(t *testing.T) {
	src := "if n <= 1:\n    return 1\nelse:\n    return n\nprint(0)\n"
	program, p := parseSource(src)
	requireNoParserErrors(t, p)
	require.Len(t, program.Statements, 2, "the if/else and the trailing print")

	ifStmt, ok := program.Statements[0].(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
	assert.Len(t, ifStmt.Then.Statements, 1)
	assert.Len(t, ifStmt.Else.Statements, 1)

	_, trailingIsPrint := program.Statements[1].(*ast.Print)
	assert.True(t, trailingIsPrint, "the statement after the if/else must still be reachable")
}

func TestParseNestedIfElse(t *testing.T) {
	// Mirrors the shape of the factorial scenario: an if/else nested
	// inside a while body, each branch ending in a return.
	src := "while n > 0:\n    if n <= 1:\n        return 1\n    else:\n        return n\n    print(n)\n"
	program, p := parseSource(src)
	requireNoParserErrors(t, p)
	require.Len(t, program.Statements, 1)

	loop := program.Statements[0].(*ast.While)
	require.Len(t, loop.Body.Statements, 2, "if/else, then the trailing print at the while's own level")

	ifStmt, ok := loop.Body.Statements[0].(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)

	_, trailingIsPrint := loop.Body.Statements[1].(*ast.Print)
	assert.True(t, trailingIsPrint)
}

func TestParseWhile(t *testing.T) {
	src := "count = 0\nwhile count < 3:\n    print(count)\n    count = count + 1\n"
	program, p := parseSource(src)
	requireNoParserErrors(t, p)
	require.Len(t, program.Statements, 2)

	loop, ok := program.Statements[1].(*ast.While)
	require.True(t, ok)
	require.Len(t, loop.Body.Statements, 2)

	cond, ok := loop.Condition.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, lexer.LESS, cond.Operator)
}

func TestParseFunctionDefAndCall(t *testing.T) {
	src := "def square(x):\n    return x * x\n\nresult = square(5)\nprint(result)\n"
	program, p := parseSource(src)
	requireNoParserErrors(t, p)
	require.Len(t, program.Statements, 3)

	def, ok := program.Statements[0].(*ast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "square", def.Name)
	assert.Equal(t, []string{"x"}, def.Params)
	require.Len(t, def.Body.Statements, 1)

	ret, ok := def.Body.Statements[0].(*ast.Return)
	require.True(t, ok)
	require.NotNil(t, ret.Value)

	assign := program.Statements[1].(*ast.Assignment)
	call, ok := assign.Value.(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "square", call.Name)
	require.Len(t, call.Args, 1)
}

func TestParseMultiParamFunctionDef(t *testing.T) {
	program, p := parseSource("def add(a, b):\n    return a + b\n")
	requireNoParserErrors(t, p)

	def := program.Statements[0].(*ast.FunctionDef)
	assert.Equal(t, []string{"a", "b"}, def.Params)
}

func TestParseBareReturn(t *testing.T) {
	program, p := parseSource("def noop():\n    return\n")
	requireNoParserErrors(t, p)

	def := program.Statements[0].(*ast.FunctionDef)
	ret := def.Body.Statements[0].(*ast.Return)
	assert.Nil(t, ret.Value, "a bare return has no value expression")
}

func TestParseEmptyBlockWithoutIndent(t *testing.T) {
	// §4.2 edge case: a block without an INDENT parses as empty rather
	// than an error.
	program, p := parseSource("while x:\nprint(1)\n")
	requireNoParserErrors(t, p)
	require.Len(t, program.Statements, 2, "the empty while, then print as a sibling statement")

	loop := program.Statements[0].(*ast.While)
	assert.Empty(t, loop.Body.Statements)
}

func TestStringConcatenation(t *testing.T) {
	program, p := parseSource(`print("a" + "b")` + "\n")
	requireNoParserErrors(t, p)

	printStmt := program.Statements[0].(*ast.Print)
	concat := printStmt.Value.(*ast.BinaryOp)
	assert.Equal(t, lexer.PLUS, concat.Operator)
	assert.Equal(t, "a", concat.Left.(*ast.String).Value)
	assert.Equal(t, "b", concat.Right.(*ast.String).Value)
}

func TestComparisonOperators(t *testing.T) {
	cases := []struct {
		src  string
		want lexer.TokenType
	}{
		{"r = a == b\n", lexer.EQUAL},
		{"r = a != b\n", lexer.NOT_EQUAL},
		{"r = a < b\n", lexer.LESS},
		{"r = a > b\n", lexer.GREATER},
		{"r = a <= b\n", lexer.LESS_EQUAL},
		{"r = a >= b\n", lexer.GREATER_EQUAL},
	}
	for _, tc := range cases {
		program, p := parseSource(tc.src)
		requireNoParserErrors(t, p)
		assign := program.Statements[0].(*ast.Assignment)
		cmp, ok := assign.Value.(*ast.BinaryOp)
		require.True(t, ok)
		assert.Equal(t, tc.want, cmp.Operator)
	}
}

// TestParserRecoversFromUnexpectedToken exercises the best-effort
// recovery rule: a bad statement is reported and skipped, and parsing
// continues with the rest of the program.
func TestParserRecoversFromUnexpectedToken(t *testing.T) {
	program, p := parseSource(") \nx = 1\n")
	require.NotEmpty(t, p.Errors())
	require.Len(t, program.Statements, 1, "the malformed line is skipped, the rest still parses")

	assign, ok := program.Statements[0].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Name)
}

func TestStrayElseProducesDiagnostic(t *testing.T) {
	program, p := parseSource("else\nx = 1\n")
	require.NotEmpty(t, p.Errors())
	require.Len(t, program.Statements, 1)
	_, ok := program.Statements[0].(*ast.Assignment)
	assert.True(t, ok)
}

// TestBlockGrowsPastHistoricalCap documents the deliberate REDESIGN
// decision to drop the 64-statement soft cap: a block with many more
// statements than that parses in full.
func TestBlockGrowsPastHistoricalCap(t *testing.T) {
	var src string
	src += "while 1:\n"
	const n = 200
	for i := 0; i < n; i++ {
		src += fmt.Sprintf("    print(%d)\n", i)
	}

	program, p := parseSource(src)
	requireNoParserErrors(t, p)
	require.Len(t, program.Statements, 1)

	loop := program.Statements[0].(*ast.While)
	assert.Len(t, loop.Body.Statements, n)
}

// TestLineNumbersTrackFirstToken checks the quantified invariant from
// §8: every AST node's line equals the line of the first token
// consumed to build it.
func TestLineNumbersTrackFirstToken(t *testing.T) {
	program, p := parseSource("x = 1\nif x:\n    print(x)\n")
	requireNoParserErrors(t, p)
	require.Len(t, program.Statements, 2)

	assert.Equal(t, 1, program.Statements[0].Line())

	ifStmt := program.Statements[1].(*ast.If)
	assert.Equal(t, 2, ifStmt.Line())
	assert.Equal(t, 3, ifStmt.Then.Statements[0].Line())
}
