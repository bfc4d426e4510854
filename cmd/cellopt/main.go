// Command cellopt is a thin CLI harness around this module's public
// celljson/cellmodel API: read a problem description, solve it, write
// the solution. It is ambient outer scaffolding, not part of the
// optimizer core.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes: 0 on Optimal with results written; non-zero
// differentiated by failure category otherwise.
const (
	exitOK = iota
	exitIOError
	exitValidationError
	exitNonOptimal
)

func main() {
	root := &cobra.Command{
		Use:   "cellopt",
		Short: "Energy-minimal cyclic work-cell scheduler",
	}
	root.AddCommand(newSolveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitIOError)
	}
}
