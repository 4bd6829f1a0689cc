package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/docoutline/internal/layout"
	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/output"
	"github.com/spf13/cobra"
)

// errExtractionFailed marks a run whose record is an error record. The
// record itself has already been written.
var errExtractionFailed = errors.New("extraction failed")

func (c *cli) newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Print the title and outline of one document",
		Long: `Extract the title and heading outline of a PDF (or a layout JSON dump) and
print the record. A document that cannot be read still produces a record,
titled "Error: <reason>", and the command exits non-zero.

Examples:
  docoutline extract report.pdf
  docoutline extract report.pdf --format text
  docoutline extract report.pdf --output report.json
  docoutline extract secret.pdf --password hunter2`,
		Args: cobra.ExactArgs(1),
		RunE: c.runExtract,
	}

	cmd.Flags().StringP("format", "f", "json", "output format: json, yaml, text, html")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("output-dir", "", "also write <name>.json into this directory")
	return cmd
}

func (c *cli) runExtract(cmd *cobra.Command, args []string) error {
	cfg := c.cfg

	formatName := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		formatName, _ = cmd.Flags().GetString("format")
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}
	outputDir, _ := cmd.Flags().GetString("output-dir")

	path := args[0]
	engine := outline.New(cfg.Outline)
	st := engine.ExtractFile(cmd.Context(), layout.FileOpener{Password: cfg.Password}, path)
	slog.Info("Document processed", "file", path, "title", st.Title, "headings", len(st.Outline))

	if outputDir != "" {
		if _, err := output.WriteFile(outputDir, path, st); err != nil {
			return err
		}
	}

	if err := writeRecord(cmd.OutOrStdout(), outputFile, st, format); err != nil {
		return err
	}

	if outline.IsErrorStructure(st) {
		return fmt.Errorf("%w: %s", errExtractionFailed, path)
	}
	return nil
}

// writeRecord encodes st to outputFile, or to w when no file is given.
func writeRecord(w io.Writer, outputFile string, st outline.Structure, format output.Format) error {
	if outputFile == "" {
		return output.Encode(w, st, format)
	}

	data, err := output.Marshal(st, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
