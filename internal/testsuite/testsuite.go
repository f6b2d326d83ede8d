// Package testsuite runs the six canonical end-to-end scenarios (spec
// §8) as the interpreter's built-in, zero-argument "run the built-in
// test cases" mode. It exists so `pyla` with no arguments has something
// to do without a source file, the way a small interpreter's own
// smoke tests double as a demo.
package testsuite

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/codeassociates/pyla/eval"
	"github.com/codeassociates/pyla/lexer"
	"github.com/codeassociates/pyla/parser"
)

// Scenario is one named source program and the stdout lines it must
// produce.
type Scenario struct {
	Name   string
	Source string
	Want   []string
}

// Scenarios is the canonical list from spec §8, in order.
var Scenarios = []Scenario{
	{
		Name:   "arithmetic precedence",
		Source: "x = 10\ny = 20\nresult = x + y * 2\nprint(result)\n",
		Want:   []string{"50"},
	},
	{
		Name:   "if without else",
		Source: "age = 18\nif age >= 18:\n    print(\"Adult\")\n",
		Want:   []string{"Adult"},
	},
	{
		Name:   "while loop",
		Source: "count = 0\nwhile count < 3:\n    print(count)\n    count = count + 1\n",
		Want:   []string{"0", "1", "2"},
	},
	{
		Name:   "function call",
		Source: "def square(x):\n    return x * x\n\nresult = square(5)\nprint(result)\n",
		Want:   []string{"25"},
	},
	{
		Name: "recursive factorial",
		Source: "def factorial(n):\n" +
			"    if n <= 1:\n" +
			"        return 1\n" +
			"    else:\n" +
			"        return n * factorial(n - 1)\n" +
			"\n" +
			"print(factorial(5))\n",
		Want: []string{"120"},
	},
	{
		// The evaluator writes each runtime diagnostic to the same
		// stream as Print output at the point it's discovered, so the
		// expected lines include the division-by-zero diagnostic
		// interleaved between the two Print results, not appended
		// after them.
		Name:   "string concat and division by zero",
		Source: "print(\"a\" + \"b\")\nprint(1 / 0)\n",
		Want:   []string{"ab", "Runtime error: line 2: division by zero", "0"},
	},
}

// Result is the outcome of running a single Scenario.
type Result struct {
	Scenario    Scenario
	Got         []string
	Diagnostics []string
	Diff        string // empty when Got matches Scenario.Want
}

// Passed reports whether the scenario's captured output matched.
func (r Result) Passed() bool { return r.Diff == "" }

// Run executes every scenario in order and writes a pass/fail line per
// scenario (plus a go-cmp diff on failure) to w. It returns false if
// any scenario failed.
func Run(w io.Writer) bool {
	allPassed := true
	for _, result := range RunAll() {
		if result.Passed() {
			fmt.Fprintf(w, "ok   %s\n", result.Scenario.Name)
			continue
		}
		allPassed = false
		fmt.Fprintf(w, "FAIL %s\n", result.Scenario.Name)
		fmt.Fprint(w, indent(result.Diff))
		if len(result.Diagnostics) > 0 {
			fmt.Fprintf(w, "  diagnostics: %s\n", strings.Join(result.Diagnostics, "; "))
		}
	}
	return allPassed
}

// RunAll executes every scenario and returns its Result without
// writing anything, for callers that want the structured outcome
// (e.g. a future test runner or CI integration).
func RunAll() []Result {
	results := make([]Result, 0, len(Scenarios))
	for _, sc := range Scenarios {
		results = append(results, runOne(sc))
	}
	return results
}

func runOne(sc Scenario) Result {
	p := parser.New(lexer.New(sc.Source))
	program := p.ParseProgram()

	var buf bytes.Buffer
	ev := eval.New(&buf)
	ev.Run(program)

	got := splitLines(buf.String())

	result := Result{Scenario: sc, Got: got, Diagnostics: p.Errors()}
	result.Diagnostics = append(result.Diagnostics, ev.Diagnostics()...)

	if diff := cmp.Diff(sc.Want, got); diff != "" {
		result.Diff = diff
	}
	return result
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func indent(s string) string {
	var b strings.Builder
	for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		b.WriteString("  ")
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}
