package eval

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/codeassociates/pyla/ast"
	"github.com/codeassociates/pyla/lexer"
)

// Evaluator walks a Program and executes it directly: no intermediate
// bytecode, no separate compile step. It tracks a current scope, a
// return-value slot, and a has-returned flag, exactly as a single call
// stack frame would.
type Evaluator struct {
	global  *Scope
	current *Scope
	out     io.Writer

	hasReturned bool
	returnValue Value

	diagnostics []string
}

// New creates an Evaluator whose print statements write to out.
func New(out io.Writer) *Evaluator {
	global := NewScope(nil)
	return &Evaluator{global: global, current: global, out: out}
}

// Diagnostics returns every runtime diagnostic recorded so far, each
// already formatted as "line N: message".
func (e *Evaluator) Diagnostics() []string {
	return e.diagnostics
}

// addDiagnostic records a diagnostic and writes it to e.out immediately,
// at the point it's discovered — not buffered for later — so it lands
// in the same ordered stream as Print output, interleaved exactly where
// it occurred in program order (spec §8 scenario 6: a division-by-zero
// diagnostic appears between two Print lines, not after both).
func (e *Evaluator) addDiagnostic(line int, msg string) {
	formatted := fmt.Sprintf("line %d: %s", line, msg)
	e.diagnostics = append(e.diagnostics, formatted)
	fmt.Fprintf(e.out, "Runtime error: %s\n", formatted)
}

// Run evaluates a whole program against the global scope.
func (e *Evaluator) Run(program *ast.Program) {
	e.evalStatements(program.Statements)
}

// evalStatements runs a sequence in order, stopping at the first one
// that sets hasReturned — the control-flow short circuit shared by
// Block, Program, and While bodies.
func (e *Evaluator) evalStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		e.evalStatement(stmt)
		if e.hasReturned {
			return
		}
	}
}

func (e *Evaluator) evalStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Block:
		e.evalStatements(s.Statements)
	case *ast.If:
		if e.evalExpression(s.Condition).Truthy() {
			e.evalStatements(s.Then.Statements)
		} else if s.Else != nil {
			e.evalStatements(s.Else.Statements)
		}
	case *ast.While:
		for e.evalExpression(s.Condition).Truthy() {
			e.evalStatements(s.Body.Statements)
			if e.hasReturned {
				break
			}
		}
	case *ast.FunctionDef:
		e.current.Set(s.Name, NewFunction(s))
	case *ast.Return:
		if s.Value != nil {
			e.returnValue = e.evalExpression(s.Value)
		} else {
			e.returnValue = None
		}
		e.hasReturned = true
	case *ast.Print:
		v := e.evalExpression(s.Value)
		fmt.Fprintln(e.out, formatValue(v))
	case *ast.Assignment:
		e.evalExpression(s)
	case *ast.ExpressionStatement:
		e.evalExpression(s.Value)
	}
}

func (e *Evaluator) evalExpression(expr ast.Expression) Value {
	switch x := expr.(type) {
	case *ast.Number:
		return NewNumber(x.Value)
	case *ast.String:
		return NewString(x.Value)
	case *ast.Identifier:
		v, ok := e.current.Get(x.Name)
		if !ok {
			e.addDiagnostic(x.Line(), fmt.Sprintf("undefined name %q", x.Name))
			return None
		}
		return v
	case *ast.BinaryOp:
		return e.evalBinaryOp(x)
	case *ast.UnaryOp:
		return e.evalUnaryOp(x)
	case *ast.Assignment:
		v := e.evalExpression(x.Value)
		e.current.Set(x.Name, v)
		return v
	case *ast.FunctionCall:
		return e.evalFunctionCall(x)
	default:
		return None
	}
}

func (e *Evaluator) evalBinaryOp(x *ast.BinaryOp) Value {
	left := e.evalExpression(x.Left)
	right := e.evalExpression(x.Right)

	if left.Kind == NumberValue && right.Kind == NumberValue {
		return e.evalNumericBinaryOp(x, left.Num, right.Num)
	}
	if left.Kind == StringValue && right.Kind == StringValue && x.Operator == lexer.PLUS {
		return NewString(left.Str + right.Str)
	}

	e.addDiagnostic(x.Line(), fmt.Sprintf("type mismatch: %s %s %s", kindName(left), x.Operator, kindName(right)))
	return None
}

func (e *Evaluator) evalNumericBinaryOp(x *ast.BinaryOp, l, r float64) Value {
	switch x.Operator {
	case lexer.PLUS:
		return NewNumber(l + r)
	case lexer.MINUS:
		return NewNumber(l - r)
	case lexer.MULTIPLY:
		return NewNumber(l * r)
	case lexer.DIVIDE:
		if r == 0 {
			e.addDiagnostic(x.Line(), "division by zero")
			return NewNumber(0)
		}
		return NewNumber(l / r)
	case lexer.EQUAL:
		return boolValue(l == r)
	case lexer.NOT_EQUAL:
		return boolValue(l != r)
	case lexer.LESS:
		return boolValue(l < r)
	case lexer.GREATER:
		return boolValue(l > r)
	case lexer.LESS_EQUAL:
		return boolValue(l <= r)
	case lexer.GREATER_EQUAL:
		return boolValue(l >= r)
	default:
		e.addDiagnostic(x.Line(), fmt.Sprintf("unsupported operator %s", x.Operator))
		return None
	}
}

func (e *Evaluator) evalUnaryOp(x *ast.UnaryOp) Value {
	operand := e.evalExpression(x.Operand)
	if operand.Kind != NumberValue {
		e.addDiagnostic(x.Line(), fmt.Sprintf("unary %s requires a number", x.Operator))
		return None
	}
	if x.Operator == lexer.MINUS {
		return NewNumber(-operand.Num)
	}
	return NewNumber(operand.Num)
}

// evalFunctionCall binds parameters positionally and runs the call
// against a scope whose parent is the *caller's current scope* — the
// deliberately preserved dynamic-scoping behavior.
func (e *Evaluator) evalFunctionCall(x *ast.FunctionCall) Value {
	callee, ok := e.current.Get(x.Name)
	if !ok || callee.Kind != FunctionValue {
		e.addDiagnostic(x.Line(), fmt.Sprintf("call to undefined function %q", x.Name))
		return None
	}

	// Only as many arguments as there are parameters are evaluated: an
	// argument past len(Params) is never reached, so any side effect in
	// its expression never happens. Parameters past len(Args) are simply
	// left unbound in callScope.
	bound := len(x.Args)
	if n := len(callee.Fn.Params); n < bound {
		bound = n
	}

	callScope := NewScope(e.current)
	for i := 0; i < bound; i++ {
		callScope.Set(callee.Fn.Params[i], e.evalExpression(x.Args[i]))
	}

	savedScope := e.current
	savedHasReturned := e.hasReturned
	savedReturnValue := e.returnValue

	e.current = callScope
	e.hasReturned = false
	e.returnValue = None

	e.evalStatements(callee.Fn.Body.Statements)

	result := e.returnValue

	e.current = savedScope
	e.hasReturned = savedHasReturned
	e.returnValue = savedReturnValue

	return result
}

func boolValue(b bool) Value {
	if b {
		return NewNumber(1)
	}
	return NewNumber(0)
}

func kindName(v Value) string {
	switch v.Kind {
	case NumberValue:
		return "Number"
	case StringValue:
		return "String"
	case FunctionValue:
		return "Function"
	default:
		return "None"
	}
}

// formatValue renders a Value the way a Print statement writes it:
// integral numbers without a decimal point, other numbers in general
// form, strings verbatim, None as the literal text "None".
func formatValue(v Value) string {
	switch v.Kind {
	case NumberValue:
		return formatNumber(v.Num)
	case StringValue:
		return v.Str
	case FunctionValue:
		return "<function>"
	default:
		return "None"
	}
}

func formatNumber(n float64) string {
	if !math.IsInf(n, 0) && !math.IsNaN(n) && n == math.Trunc(n) {
		return strconv.FormatFloat(n, 'f', 0, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
