// Command skepac is the Skepa compiler front-end: check, build, and
// disasm subcommands over the module resolver, semantic analyzer, and
// bytecode emitter.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AayushMainali-Github/skepa-lang/internal/diag"
	"github.com/AayushMainali-Github/skepa-lang/pkg/bytecode"
	"github.com/AayushMainali-Github/skepa-lang/pkg/module"
	"github.com/AayushMainali-Github/skepa-lang/pkg/sema"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "skepac",
	Short: "Skepa compiler: check, build and inspect .sk programs.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(checkCmd, buildCmd, disasmCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <entry.sk>",
	Short: "Parse and type-check a program without emitting bytecode.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, exitCode := compile(args[0])
		os.Exit(exitCode)
	},
}

var buildOut string

var buildCmd = &cobra.Command{
	Use:   "build <entry.sk>",
	Short: "Compile a program to a .skbc bytecode container.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prog, exitCode := compile(args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
		out := buildOut
		if out == "" {
			out = defaultOutputPath(args[0])
		}
		f, err := os.Create(out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skepac: %v\n", err)
			os.Exit(12)
		}
		defer f.Close()
		if err := bytecode.WriteContainer(f, prog); err != nil {
			fmt.Fprintf(os.Stderr, "skepac: %v\n", err)
			os.Exit(12)
		}
		log.Infof("wrote %s", out)
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "output .skbc path (default: entry file's name with .skbc extension)")
}

var disasmCmd = &cobra.Command{
	Use:   "disasm <file.skbc>",
	Short: "Print a human-readable instruction listing of a compiled program.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "skepac: %v\n", err)
			os.Exit(13)
		}
		defer f.Close()
		prog, err := bytecode.ReadContainer(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skepac: E-BC-DECODE: %v\n", err)
			os.Exit(13)
		}
		fmt.Print(bytecode.Disassemble(prog))
	},
}

// compile runs the full check-through-emit pipeline for entryFile, printing
// every collected diagnostic. exitCode is 0 on success, or the dominant
// phase's spec.md §6.1 exit code on failure.
func compile(entryFile string) (*bytecode.Program, int) {
	g, errs := module.Load(entryFile)
	if errs.HasErrors() {
		printDiagnostics(errs)
		return nil, errs.ExitCode()
	}

	irProg, errs := sema.Check(g)
	if errs.HasErrors() {
		printDiagnostics(errs)
		return nil, errs.ExitCode()
	}

	prog, err := bytecode.Emit(irProg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "skepac: E-CODEGEN: %v\n", err)
		return nil, 12
	}
	return prog, 0
}

func printDiagnostics(errs diag.Errors) {
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, e.Error())
	}
}

func defaultOutputPath(entryFile string) string {
	trimmed := entryFile
	for _, suffix := range []string{".sk"} {
		if len(trimmed) > len(suffix) && trimmed[len(trimmed)-len(suffix):] == suffix {
			trimmed = trimmed[:len(trimmed)-len(suffix)]
			break
		}
	}
	return trimmed + ".skbc"
}
