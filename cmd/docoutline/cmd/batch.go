package cmd

import (
	"fmt"
	"runtime"

	"github.com/MeKo-Tech/docoutline/internal/batch"
	"github.com/MeKo-Tech/docoutline/internal/config"
	"github.com/spf13/cobra"
)

func (c *cli) newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [files or directories...]",
		Short: "Extract outlines of many documents in parallel",
		Long: `Extract the outline of every PDF in the input directory (or the given files
and directories) with a pool of parallel workers. Each document yields
<name>.json in the output directory, in the same subdirectory it was found
in; unreadable documents yield an error record and do not stop the run.
Documents whose record would clash with another record or overwrite an input
are reported as failed and left unread.

Examples:
  docoutline batch
  docoutline batch --input-dir ./in --output-dir ./out --workers 8
  docoutline batch docs/ --recursive --exclude "draft-*"
  docoutline batch docs/ --summary-format csv --summary-file summary.csv`,
		RunE: c.runBatch,
	}

	f := cmd.Flags()
	f.String("input-dir", config.DefaultInputDir, "directory scanned when no arguments are given")
	f.String("output-dir", config.DefaultOutputDir, "directory receiving <name>.json records")
	f.IntP("workers", "w", 0, fmt.Sprintf("number of parallel workers (default: %d)", runtime.NumCPU()))
	f.BoolP("recursive", "r", false, "recursively scan directories")
	f.Bool("include-layouts", false, "also process layout JSON dumps (*.json)")
	f.StringSlice("include", nil, "file patterns to include")
	f.StringSlice("exclude", nil, "file patterns to exclude")
	f.String("summary-format", "text", "summary format: text, json, csv")
	f.String("summary-file", "", "write the summary to this file instead of stdout")
	f.Bool("quiet", false, "suppress the summary")
	f.Bool("stats", false, "show processing statistics")
	return cmd
}

// configToBatchConfig maps the resolved configuration to a batch.Config,
// letting explicitly set flags win.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) *batch.Config {
	bc := cfg.ToBatchConfig()
	f := cmd.Flags()

	if f.Changed("output-dir") {
		bc.OutputDir, _ = f.GetString("output-dir")
	}
	if f.Changed("workers") {
		bc.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("recursive") {
		bc.Recursive, _ = f.GetBool("recursive")
	}
	if f.Changed("include-layouts") {
		bc.IncludeLayouts, _ = f.GetBool("include-layouts")
	}
	if f.Changed("include") {
		bc.IncludePatterns, _ = f.GetStringSlice("include")
	}
	if f.Changed("exclude") {
		bc.ExcludePatterns, _ = f.GetStringSlice("exclude")
	}
	if f.Changed("summary-format") {
		bc.Format, _ = f.GetString("summary-format")
	}
	if f.Changed("summary-file") {
		bc.OutputFile, _ = f.GetString("summary-file")
	}

	bc.Quiet, _ = f.GetBool("quiet")
	bc.ShowStats, _ = f.GetBool("stats")
	return bc
}

func (c *cli) runBatch(cmd *cobra.Command, args []string) error {
	bc := configToBatchConfig(c.cfg, cmd)

	inputs := args
	if len(inputs) == 0 {
		inputDir := c.cfg.Batch.InputDir
		if cmd.Flags().Changed("input-dir") {
			inputDir, _ = cmd.Flags().GetString("input-dir")
		}
		inputs = []string{inputDir}
	}

	result, err := batch.ProcessBatch(cmd.Context(), inputs, bc)
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	if !bc.Quiet {
		if err := result.SaveResults(cmd.OutOrStdout(), bc.Format, bc.OutputFile, bc.Quiet); err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
	}
	if bc.ShowStats {
		result.PrintStats(cmd.OutOrStdout(), bc.Quiet)
	}
	return nil
}
