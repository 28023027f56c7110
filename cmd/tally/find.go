package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"textrecords/internal/tally"
	"textrecords/internal/validation"
)

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <query> [file]",
		Short: "Look a record up, ignoring case",
		Long:  "Tallies the input, orders it and looks the query up. Exits with status 1 when nothing matches.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := validation.NormalizeQuery(args[0])
			if valid, msg := validation.ValidateQuery(query); !valid {
				return fmt.Errorf("%s", msg)
			}

			text, err := readInput(cmd, firstArg(args[1:]))
			if err != nil {
				return err
			}

			entries := tally.Sort(tally.Build(text))
			i := tally.Find(entries, query)
			if i == tally.NotFound {
				fmt.Fprintf(cmd.OutOrStdout(), "%q not found\n", query)
				return errNotFound
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d\n", i, entries[i].Key, entries[i].Count)
			return nil
		},
	}
}
