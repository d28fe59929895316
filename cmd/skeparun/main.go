// Command skeparun executes Skepa programs: run compiles and runs a .sk
// entry file directly, run-bc runs an already-built .skbc container.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/pkg/bytecode"
	"github.com/AayushMainali-Github/skepa-lang/pkg/module"
	"github.com/AayushMainali-Github/skepa-lang/pkg/sema"
	"github.com/AayushMainali-Github/skepa-lang/pkg/vm"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var trace bool

var rootCmd = &cobra.Command{
	Use:   "skeparun",
	Short: "Run Skepa programs, from source or from a compiled .skbc container.",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "log every executed instruction to stderr")
	rootCmd.AddCommand(runCmd, runBCCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <entry.sk>",
	Short: "Compile and run a Skepa program in one step.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g, errs := module.Load(args[0])
		if errs.HasErrors() {
			printDiagnostics(errs)
			os.Exit(errs.ExitCode())
		}

		irProg, errs := sema.Check(g)
		if errs.HasErrors() {
			printDiagnostics(errs)
			os.Exit(errs.ExitCode())
		}

		prog, err := bytecode.Emit(irProg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skeparun: E-CODEGEN: %v\n", err)
			os.Exit(12)
		}

		execute(prog)
	},
}

var runBCCmd = &cobra.Command{
	Use:   "run-bc <file.skbc>",
	Short: "Run an already-compiled .skbc container.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "skeparun: %v\n", err)
			os.Exit(13)
		}
		defer f.Close()

		prog, err := bytecode.ReadContainer(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skeparun: E-BC-DECODE: %v\n", err)
			os.Exit(13)
		}

		execute(prog)
	},
}

// execute runs prog to completion and exits the process with its result:
// main's returned Int on a clean run, or the exit code of whichever E-VM-*
// label a runtime trap carries.
func execute(prog *bytecode.Program) {
	m := vm.NewMachine(prog, vm.WithTrace(trace))
	exitCode, err := m.Run()
	if err != nil {
		trap, ok := err.(*vm.Trap)
		if !ok {
			fmt.Fprintf(os.Stderr, "skeparun: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "%s\n", trap.Error())
		os.Exit(diag.Label(trap.Label).ExitCode())
	}
	os.Exit(exitCode)
}

func printDiagnostics(errs diag.Errors) {
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e.Error())
	}
}
