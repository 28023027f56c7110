package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"textrecords/internal/tally"
)

const barWidth = 40

func newCountCmd() *cobra.Command {
	var histogram bool

	cmd := &cobra.Command{
		Use:   "count [file]",
		Short: "Print the ordered frequency table of a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, firstArg(args))
			if err != nil {
				return err
			}

			entries := tally.Sort(tally.Build(text))
			if histogram {
				return writeHistogram(cmd.OutOrStdout(), entries)
			}
			return writeTable(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().BoolVar(&histogram, "histogram", false, "Draw bars instead of a table")
	return cmd
}

func writeTable(out io.Writer, entries []tally.Entry) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORD\tCOUNT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\n", e.Key, e.Count)
	}
	fmt.Fprintf(tw, "\t%d unique, %d total\n", len(entries), tally.Total(entries))
	return tw.Flush()
}

func writeHistogram(out io.Writer, entries []tally.Entry) error {
	maxCount := tally.MaxCount(entries)
	tw := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	for _, e := range entries {
		width := e.Count * barWidth / maxCount
		if width == 0 {
			width = 1
		}
		fmt.Fprintf(tw, "%s\t%s %d\n", e.Key, strings.Repeat("#", width), e.Count)
	}
	return tw.Flush()
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
