package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/docoutline/internal/layout"
	"github.com/spf13/cobra"
)

func (c *cli) newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect the page layout the heuristics operate on",
	}

	dump := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print the text blocks of a document as layout JSON",
		Long: `Print the blocks, lines and spans read from a document as layout JSON. The
dump can be edited and fed back to extract, batch --include-layouts or the
server in place of the PDF.

Examples:
  docoutline layout dump report.pdf > report.layout.json
  docoutline extract report.layout.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opener := layout.FileOpener{Password: c.cfg.Password}
			doc, err := opener.Open(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("cannot open %s: %w", args[0], err)
			}
			defer func() { _ = doc.Close() }()

			return layout.EncodeJSON(cmd.OutOrStdout(), doc)
		},
	}

	cmd.AddCommand(dump)
	return cmd
}
