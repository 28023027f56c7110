// Command tally counts repeated lines in text files and looks records up
// in the ordered result.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errNotFound makes find exit with status 1 without printing an error.
var errNotFound = errors.New("record not found")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tally",
		Short:         "Count repeated lines and look records up",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Int("max-bytes", 1<<20, "Largest accepted input in bytes")

	root.AddCommand(newCountCmd(), newFindCmd(), newMigrateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errNotFound) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
