package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/ats-analyzer/internal/ingestion"
)

func newNormalizeCmd(_ *app) *cobra.Command {
	var textOnly bool

	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Print the normalized form of a résumé",
		Long:  `Normalize cleans extracted résumé text ("-" reads stdin) and prints the normalized document as JSON, or only the logical lines with --text.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			doc := ingestion.Normalize(raw)
			if textOnly {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(doc.LogicalLines, "\n"))
				return err
			}
			return writeJSON(cmd.OutOrStdout(), doc)
		},
	}

	cmd.Flags().BoolVar(&textOnly, "text", false, "Print logical lines instead of JSON")
	return cmd
}
