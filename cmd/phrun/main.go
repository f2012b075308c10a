// Command phrun is a thin cobra-driven CLI demonstrating the §4.8 host
// API surface: it parses a PHP source file into the ast tree, reports
// any builder errors, and can drive a minimal engine.Engine against it
// to show the output/error consumer wiring end to end.
package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/marl-lang/phcore/ast"
	"github.com/marl-lang/phcore/constant"
	"github.com/marl-lang/phcore/engine"
	"github.com/marl-lang/phcore/errkind"
	"github.com/marl-lang/phcore/vfs"
)

var dump bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "phrun",
		Short: "phrun parses and drives phcore against a PHP source file",
	}
	root.PersistentFlags().BoolVar(&dump, "dump", false, "spew-dump the parsed tree instead of summarizing it")

	root.AddCommand(newParseCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the engine version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), constant.EngineVersion)
			return nil
		},
	}
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "parse a PHP source file and report builder errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			b := ast.NewFromSource(src, 1)
			prog := b.ParseProgram()

			if dump {
				spew.Fdump(cmd.OutOrStdout(), prog)
				return nil
			}
			for _, msg := range b.Errors() {
				fmt.Fprintln(cmd.ErrOrStderr(), "parse error:", msg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d statement(s), %d error(s)\n", len(prog.Statements), len(b.Errors()))
			if len(b.Errors()) > 0 {
				return errkind.New(errkind.SYNTAX, "parse failed for %s", args[0])
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "parse a file, buffer any compile errors, and echo engine output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}

			eng := engine.New()
			defer eng.Release()

			eng.SetOutputConsumer(func(chunk string) bool {
				fmt.Fprint(cmd.OutOrStdout(), chunk)
				return false
			})
			eng.SetErrorConsumer(func(err error) bool {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				return false
			})

			vm := eng.NewVM()

			b := ast.NewFromSource(src, 1)
			b.ParseProgram()
			for _, msg := range b.Errors() {
				eng.CompileErrors()
				vm.ThrowError(errkind.New(errkind.COMPILE, "%s", msg))
			}

			if len(eng.CompileErrors()) > 0 {
				return errkind.New(errkind.COMPILE, "compilation of %s produced errors", args[0])
			}
			vm.Echo(fmt.Sprintf("parsed %s with no compile errors\n", args[0]))
			return nil
		},
	}
}

func readSource(path string) (string, error) {
	data, err := vfs.ReadFile(vfs.NewOS(), path)
	if err != nil {
		return "", errkind.Wrap(errkind.IO, err, "reading "+path)
	}
	return string(data), nil
}
