// Package eval walks an AST directly against a chain of scopes,
// producing print output and diagnostics as it goes.
package eval

import "github.com/codeassociates/pyla/ast"

// ValueKind tags which variant a Value holds.
type ValueKind int

const (
	NoneValue ValueKind = iota
	NumberValue
	StringValue
	FunctionValue
)

// Value is the tagged runtime value: a Number, a String, a Function
// (a non-owning reference to the FunctionDef node that defines it), or
// None. Values are copied on bind and on read; a String Value owns its
// text.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Fn   *ast.FunctionDef
}

var None = Value{Kind: NoneValue}

func NewNumber(n float64) Value { return Value{Kind: NumberValue, Num: n} }
func NewString(s string) Value  { return Value{Kind: StringValue, Str: s} }
func NewFunction(def *ast.FunctionDef) Value {
	return Value{Kind: FunctionValue, Fn: def}
}

// Truthy reports whether v is considered true by if/while: a Number
// that is not zero. Strings, None, and Function values are never
// truthy.
func (v Value) Truthy() bool {
	return v.Kind == NumberValue && v.Num != 0
}

// Scope is a set of name-to-Value bindings with a parent link
// used only for lookup. Assignment always targets the scope it is
// called on; it never reaches into a parent.
type Scope struct {
	vars   map[string]Value
	parent *Scope
}

// NewScope creates a scope chained to parent. parent is nil for the
// global scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{vars: make(map[string]Value), parent: parent}
}

// Set binds name to value in this scope, creating or replacing the
// binding. It never affects a parent scope.
func (s *Scope) Set(name string, value Value) {
	s.vars[name] = value
}

// Get looks up name in this scope, then its parents, to the root. The
// second return value is false when the name is unbound anywhere in
// the chain.
func (s *Scope) Get(name string) (Value, bool) {
	for scope := s; scope != nil; scope = scope.parent {
		if v, ok := scope.vars[name]; ok {
			return v, true
		}
	}
	return None, false
}
