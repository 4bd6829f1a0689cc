// Package batch runs outline extraction over many documents with a bounded
// worker pool and summarises the run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/google/uuid"
)

var (
	// ErrNoDocuments is returned when discovery finds nothing to process.
	ErrNoDocuments = errors.New("no documents found")
	// ErrRecordConflict marks a document whose record path is taken by
	// another document or by an input.
	ErrRecordConflict = errors.New("output record conflict")
)

// ProcessBatch extracts the outline of every document found under inputs.
// A document that cannot be read yields an error record and does not stop
// the batch.
func ProcessBatch(ctx context.Context, inputs []string, config *Config) (*Result, error) {
	if err := config.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid outline options: %w", err)
	}

	files, err := discoverDocuments(inputs, config.Recursive, documentExtensions(config.IncludeLayouts),
		config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover documents: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoDocuments
	}

	runID := uuid.NewString()
	workers := config.workers()
	slog.Info("Batch started", "run_id", runID, "documents", len(files), "workers", workers)

	startTime := time.Now()
	docs, err := processDocumentsParallel(ctx, outline.New(config.Options), config.opener(),
		files, config.OutputDir, workers)
	duration := time.Since(startTime)
	if err != nil {
		return nil, fmt.Errorf("batch processing failed: %w", err)
	}

	result := &Result{
		RunID:       runID,
		Documents:   docs,
		Duration:    duration,
		WorkerCount: workers,
	}
	stats := result.Stats()
	slog.Info("Batch finished",
		"run_id", runID,
		"processed", stats.Succeeded,
		"failed", stats.Failed,
		"duration", duration.Round(time.Millisecond))
	return result, nil
}
