package debugdump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeassociates/pyla/lexer"
	"github.com/codeassociates/pyla/parser"
)

func TestTokensRendersOneLinePerToken(t *testing.T) {
	out := Tokens(lexer.Tokenize("x = 1\n"))
	assert.Contains(t, out, "Line 1: x (IDENTIFIER)")
	assert.Contains(t, out, "Line 1: = (=)")
	assert.Contains(t, out, "Line 1: 1 (NUMBER)")
	assert.Contains(t, out, `Line 1: \n (NEWLINE)`)
	assert.Contains(t, out, "Line 2:  (EOF)")
}

func TestASTRendersNestedStructure(t *testing.T) {
	p := parser.New(lexer.New("def square(x):\n    return x * x\n"))
	program := p.ParseProgram()
	require.Empty(t, p.Errors())

	out := AST(program)
	assert.Contains(t, out, "Program")
	assert.Contains(t, out, "FunctionDef square(x)")
	assert.Contains(t, out, "Return")
	assert.Contains(t, out, "BinaryOp *")
}

func TestASTRendersEmptyBlock(t *testing.T) {
	p := parser.New(lexer.New("if x:\nprint(1)\n"))
	program := p.ParseProgram()
	require.Empty(t, p.Errors())

	out := AST(program)
	assert.Contains(t, out, "Block (empty)")
}
