package batch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/docoutline/internal/layout"
	"github.com/MeKo-Tech/docoutline/internal/outline"
)

// Config holds all configuration for batch processing.
type Config struct {
	// Destination of the per-document .json records, laid out like the
	// input directories. Empty disables writing.
	OutputDir string

	// Heuristic thresholds
	Options outline.Options

	// Input settings
	Password string
	// Opener overrides how documents are opened. Nil means a
	// layout.FileOpener using Password.
	Opener layout.Opener

	// Parallel processing settings
	Workers int

	// File discovery settings
	Recursive       bool
	IncludeLayouts  bool
	IncludePatterns []string
	ExcludePatterns []string

	// Summary settings
	Format     string
	OutputFile string
	Quiet      bool
	ShowStats  bool
}

// opener returns the configured opener or the file opener.
func (c *Config) opener() layout.Opener {
	if c.Opener != nil {
		return c.Opener
	}
	return layout.FileOpener{Password: c.Password}
}

// workers clamps the worker count to at least one.
func (c *Config) workers() int {
	return max(c.Workers, 1)
}

// DocumentResult is the outcome for one input file.
type DocumentResult struct {
	File      string            `json:"file"`
	Output    string            `json:"output,omitempty"`
	Structure outline.Structure `json:"structure"`
	Duration  time.Duration     `json:"duration_ns"`
	// Error is set when the document could not be read or its record could
	// not be written. The batch carries on either way.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the document produced an error record or its
// output could not be written.
func (d DocumentResult) Failed() bool {
	return d.Error != ""
}

// Result holds the result of batch processing.
type Result struct {
	RunID       string           `json:"run_id"`
	Documents   []DocumentResult `json:"documents"`
	Duration    time.Duration    `json:"duration_ns"`
	WorkerCount int              `json:"workers"`
}

// Stats summarises a batch run.
type Stats struct {
	Total            int
	Succeeded        int
	Failed           int
	Headings         int
	Duration         time.Duration
	AveragePerDoc    time.Duration
	ThroughputPerSec float64
}

// Stats computes the run statistics.
func (r *Result) Stats() Stats {
	s := Stats{Total: len(r.Documents), Duration: r.Duration}
	for _, d := range r.Documents {
		if d.Failed() {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.Headings += len(d.Structure.Outline)
	}
	if s.Total > 0 {
		s.AveragePerDoc = r.Duration / time.Duration(s.Total)
	}
	if secs := r.Duration.Seconds(); secs > 0 {
		s.ThroughputPerSec = float64(s.Total) / secs
	}
	return s
}

// FormatResults formats the batch summary in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r, format)
}

// SaveResults writes the formatted summary to a file or w.
func (r *Result) SaveResults(w io.Writer, format, outputFile string, quiet bool) error {
	out, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(w, "Results written to %s\n", outputFile)
		}
		return nil
	}

	_, _ = fmt.Fprint(w, out)
	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer, quiet bool) {
	if quiet {
		return
	}
	stats := r.Stats()
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Run: %s\n", r.RunID)
	_, _ = fmt.Fprintf(w, "  Total documents: %d\n", stats.Total)
	_, _ = fmt.Fprintf(w, "  Processed: %d\n", stats.Succeeded)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", stats.Failed)
	_, _ = fmt.Fprintf(w, "  Headings: %d\n", stats.Headings)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", stats.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Avg per document: %v\n", stats.AveragePerDoc.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Throughput: %.1f documents/sec\n", stats.ThroughputPerSec)
}
