// Package cli formalizes rillc's command surface as a spf13/cobra
// command tree. The teacher drives its whole pkg/cli/entry.go by hand
// (a single large entry function reading os.Args and dispatching on
// string flags); Rill's surface is small enough that the dispatch
// itself is the only thing worth keeping from that shape, re-expressed
// with the real library rather than reimplemented by hand.
package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/rill-lang/rill/internal/config"
)

// colorEnabled reports whether diagnostics written to stderr should be
// colorized: only when stderr is an actual terminal, never when piped
// or redirected to a file.
func colorEnabled() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

// NewRootCommand builds the rillc command tree: run, disasm, version.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "rillc",
		Short:         "Compiler and VM for the Rill language",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCommand())
	root.AddCommand(newDisasmCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the rillc command tree and returns a process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		return 1
	}
	return 0
}

func renderError(err error) string {
	if !colorEnabled() {
		return "error: " + err.Error()
	}
	const red = "\x1b[31m"
	const reset = "\x1b[0m"
	return red + "error: " + err.Error() + reset
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rillc version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.Version)
			return nil
		},
	}
}
