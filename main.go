package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeassociates/pyla/eval"
	"github.com/codeassociates/pyla/internal/debugdump"
	"github.com/codeassociates/pyla/internal/testsuite"
	"github.com/codeassociates/pyla/lexer"
	"github.com/codeassociates/pyla/parser"
)

const version = "0.1.0"

func main() {
	var debugFile string

	rootCmd := &cobra.Command{
		Use:           "pyla [path]",
		Short:         "pyla runs programs written in a small indentation-based scripting language",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch {
			case debugFile != "":
				return runFile(out, debugFile, true)
			case len(args) == 1:
				return runFile(out, args[0], false)
			default:
				if !testsuite.Run(out) {
					return fmt.Errorf("built-in test suite reported failures")
				}
				return nil
			}
		},
	}

	rootCmd.Flags().StringVarP(&debugFile, "debug", "d", "",
		"compile and run <path> with debug output (tokens + AST dump)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runFile reads source from path, lexes and parses it, optionally
// dumping tokens and the AST first, then evaluates the program. Parse
// errors abort the run (spec §7: the driver aborts compilation on a
// bad front end); runtime diagnostics are reported but never abort —
// the evaluator writes each one to out itself, at the point it's
// discovered, so it appears interleaved with Print output in true
// program order rather than all at once at the end.
func runFile(out io.Writer, path string, debug bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unreadable input file %q: %w", path, err)
	}
	source := string(data)

	if debug {
		fmt.Fprint(out, debugdump.Tokens(lexer.Tokenize(source)))
	}

	p := parser.New(lexer.New(source))
	program := p.ParseProgram()

	if debug {
		fmt.Fprint(out, debugdump.AST(program))
	}

	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(out, "Parse error: %s\n", e)
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	ev := eval.New(out)
	ev.Run(program)

	return nil
}
