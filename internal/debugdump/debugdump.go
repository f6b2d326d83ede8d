// Package debugdump renders a token stream and an AST as plain text for
// the interpreter's -d debug mode (spec §6: "exact formatting is
// implementation-defined; this debug channel is not a compatibility
// surface"). Nothing here is parsed back in; it exists purely to let a
// developer see what the front end produced.
package debugdump

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codeassociates/pyla/ast"
	"github.com/codeassociates/pyla/lexer"
)

// Tokens renders one line per token as "Line N: <lexeme> (<KIND>)",
// mirroring the TokenType.String() stringer's canonical names.
func Tokens(tokens []lexer.Token) string {
	var b strings.Builder
	for _, tok := range tokens {
		lexeme := tok.Literal
		if tok.Type == lexer.NEWLINE {
			lexeme = `\n`
		}
		fmt.Fprintf(&b, "Line %d: %s (%s)\n", tok.Line, lexeme, tok.Type)
	}
	return b.String()
}

const indentUnit = "  "

// AST renders a recursive, indented dump of a parsed program, two
// spaces per nesting level.
func AST(program *ast.Program) string {
	var b strings.Builder
	b.WriteString("Program\n")
	for _, stmt := range program.Statements {
		dumpStatement(&b, stmt, 1)
	}
	return b.String()
}

func line(b *strings.Builder, depth int, format string, args ...any) {
	b.WriteString(strings.Repeat(indentUnit, depth))
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

func dumpBlock(b *strings.Builder, block *ast.Block, depth int) {
	if block == nil || len(block.Statements) == 0 {
		line(b, depth, "Block (empty)")
		return
	}
	line(b, depth, "Block")
	for _, stmt := range block.Statements {
		dumpStatement(b, stmt, depth+1)
	}
}

func dumpStatement(b *strings.Builder, stmt ast.Statement, depth int) {
	switch s := stmt.(type) {
	case *ast.Block:
		dumpBlock(b, s, depth)
	case *ast.If:
		line(b, depth, "If (line %d)", s.Line())
		dumpExpression(b, s.Condition, depth+1)
		dumpBlock(b, s.Then, depth+1)
		if s.Else != nil {
			line(b, depth, "Else")
			dumpBlock(b, s.Else, depth+1)
		}
	case *ast.While:
		line(b, depth, "While (line %d)", s.Line())
		dumpExpression(b, s.Condition, depth+1)
		dumpBlock(b, s.Body, depth+1)
	case *ast.FunctionDef:
		line(b, depth, "FunctionDef %s(%s) (line %d)", s.Name, strings.Join(s.Params, ", "), s.Line())
		dumpBlock(b, s.Body, depth+1)
	case *ast.Return:
		line(b, depth, "Return (line %d)", s.Line())
		if s.Value != nil {
			dumpExpression(b, s.Value, depth+1)
		}
	case *ast.Print:
		line(b, depth, "Print (line %d)", s.Line())
		dumpExpression(b, s.Value, depth+1)
	case *ast.Assignment:
		line(b, depth, "Assignment %s (line %d)", s.Name, s.Line())
		dumpExpression(b, s.Value, depth+1)
	case *ast.ExpressionStatement:
		line(b, depth, "ExpressionStatement (line %d)", s.Line())
		dumpExpression(b, s.Value, depth+1)
	default:
		line(b, depth, "<unknown statement %T>", s)
	}
}

func dumpExpression(b *strings.Builder, expr ast.Expression, depth int) {
	switch e := expr.(type) {
	case *ast.Number:
		line(b, depth, "Number %s", strconv.FormatFloat(e.Value, 'g', -1, 64))
	case *ast.String:
		line(b, depth, "String %q", e.Value)
	case *ast.Identifier:
		line(b, depth, "Identifier %s", e.Name)
	case *ast.BinaryOp:
		line(b, depth, "BinaryOp %s (line %d)", e.Operator, e.Line())
		dumpExpression(b, e.Left, depth+1)
		dumpExpression(b, e.Right, depth+1)
	case *ast.UnaryOp:
		line(b, depth, "UnaryOp %s (line %d)", e.Operator, e.Line())
		dumpExpression(b, e.Operand, depth+1)
	case *ast.Assignment:
		line(b, depth, "Assignment %s (line %d)", e.Name, e.Line())
		dumpExpression(b, e.Value, depth+1)
	case *ast.FunctionCall:
		line(b, depth, "FunctionCall %s (line %d)", e.Name, e.Line())
		for _, arg := range e.Args {
			dumpExpression(b, arg, depth+1)
		}
	case nil:
		line(b, depth, "<nil>")
	default:
		line(b, depth, "<unknown expression %T>", e)
	}
}
