package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rill-lang/rill/internal/config"
	"github.com/rill-lang/rill/internal/modules"
	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/vm"
)

func newRunCommand() *cobra.Command {
	var debug bool
	var dumpBytecode bool

	cmd := &cobra.Command{
		Use:   "run <path>",
		Short: "Compile and execute a Rill source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			rc, err := config.LoadRCFile(".")
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("debug") && rc.Debug {
				debug = true
			}

			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			prog, err := parser.Parse(string(src), path)
			if err != nil {
				return err
			}

			machine := vm.New()
			machine.Debug = debug
			machine.Out = cmd.OutOrStdout()
			machine.SetLoader(modules.NewLoader())

			if dumpBytecode {
				chunk, err := vm.NewCompiler().CompileProgram(prog)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), vm.Disassemble(chunk, path))
			}

			return machine.Run(prog)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "dump VM state on failure and trace every instruction")
	cmd.Flags().BoolVar(&dumpBytecode, "dump-bytecode", false, "print the compiled bytecode before running")
	return cmd
}
