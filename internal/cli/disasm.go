package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rill-lang/rill/internal/parser"
	"github.com/rill-lang/rill/internal/vm"
)

func newDisasmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <path>",
		Short: "Compile a Rill source file and print its disassembly without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			prog, err := parser.Parse(string(src), path)
			if err != nil {
				return err
			}

			chunk, err := vm.NewCompiler().CompileProgram(prog)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), vm.Disassemble(chunk, path))
			return nil
		},
	}
}
