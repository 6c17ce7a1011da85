package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cflat-lang/cflatc/pkg/ast"
	"github.com/cflat-lang/cflatc/pkg/lir"
	"github.com/cflat-lang/cflatc/pkg/lirgen"
)

var version = "0.1.0"

// Debug and output flags
var (
	dAST       bool
	outputFile string
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cflatc [file.astj]",
		Short: "cflatc lowers a type-checked Cflat AST to LIR",
		Long: `cflatc reads a Cflat abstract syntax tree serialized as JSON and
lowers it to LIR, a three-address intermediate representation organized
as a control-flow graph of basic blocks. The lowered program is written
to standard output.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			filename := args[0]

			prog, err := parseFile(filename, errOut)
			if err != nil {
				return err
			}

			// Handle --dast: dump the parsed AST instead of lowering
			if dAST {
				ast.NewPrinter(out).PrintProgram(prog)
				return nil
			}

			return doLower(prog, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&dAST, "dast", false, "Dump the parsed AST instead of lowering")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Also write the LIR dump to a file")

	return rootCmd
}

// parseFile reads and decodes an AST JSON file.
func parseFile(filename string, errOut io.Writer) (*ast.Program, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "cflatc: error reading %s: %v\n", filename, err)
		return nil, err
	}

	prog, err := ast.DecodeProgram(data)
	if err != nil {
		fmt.Fprintf(errOut, "cflatc: %s: %v\n", filename, err)
		return nil, err
	}
	return prog, nil
}

// doLower lowers the program and prints the LIR. Lowering completes before
// any printing starts, so a failure emits no partial dump.
func doLower(prog *ast.Program, out, errOut io.Writer) error {
	lirProg, err := lirgen.TranslateProgram(prog)
	if err != nil {
		fmt.Fprintf(errOut, "cflatc: lowering error: %v\n", err)
		return err
	}

	if outputFile != "" {
		outFile, err := os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(errOut, "cflatc: error creating %s: %v\n", outputFile, err)
			return err
		}
		defer outFile.Close()
		lir.NewPrinter(outFile).PrintProgram(lirProg)
	}

	lir.NewPrinter(out).PrintProgram(lirProg)
	return nil
}
