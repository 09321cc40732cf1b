// Command rillc is the Rill compiler and VM entry point. The teacher's
// main.go hand-dispatches on os.Args; here that dispatch is formalized
// as a spf13/cobra command tree in internal/cli, so main only needs to
// invoke it and translate the result into a process exit code.
package main

import (
	"os"

	"github.com/rill-lang/rill/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
