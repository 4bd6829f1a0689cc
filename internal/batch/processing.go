package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/docoutline/internal/layout"
	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/output"
	"golang.org/x/sync/errgroup"
)

// processSingleDocument extracts one document and writes its record to
// recordPath, if set. Failures are recorded on the result, never returned.
func processSingleDocument(ctx context.Context, engine *outline.Engine, opener layout.Opener,
	path, recordPath string) DocumentResult {
	start := time.Now()
	slog.Info("Processing", "file", filepath.Base(path))

	res := DocumentResult{File: path}
	res.Structure = engine.ExtractFile(ctx, opener, path)
	if outline.IsErrorStructure(res.Structure) {
		res.Error = res.Structure.Title
		slog.Warn("Document failed", "file", path, "error", res.Error)
	}

	if recordPath != "" {
		if err := output.WriteRecord(recordPath, res.Structure); err != nil {
			res.Error = err.Error()
			slog.Error("Failed to write result", "file", path, "error", err)
		} else {
			res.Output = recordPath
		}
	}

	res.Duration = time.Since(start)
	slog.Debug("Document processed",
		"file", path,
		"title", res.Structure.Title,
		"headings", len(res.Structure.Outline),
		"duration", res.Duration)
	return res
}

// planRecords maps every document to its record path below outputDir,
// keeping the document's place under its input root. A record path that is
// itself an input, or that an earlier document already claimed, becomes an
// error for that document.
func planRecords(docs []document, outputDir string) ([]string, []error) {
	records := make([]string, len(docs))
	conflicts := make([]error, len(docs))
	if outputDir == "" {
		return records, conflicts
	}

	inputs := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		inputs[absPath(d.Path)] = struct{}{}
	}

	claimed := make(map[string]string, len(docs))
	for i, d := range docs {
		record := output.RecordPath(outputDir, d.Rel)
		key := absPath(record)
		if _, ok := inputs[key]; ok {
			conflicts[i] = fmt.Errorf("%w: %s is an input document", ErrRecordConflict, record)
			continue
		}
		if owner, ok := claimed[key]; ok {
			conflicts[i] = fmt.Errorf("%w: %s is already written for %s", ErrRecordConflict, record, owner)
			continue
		}
		claimed[key] = d.Path
		records[i] = record
	}
	return records, conflicts
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// processDocumentsParallel runs up to workers extractions at a time.
// Results keep the order of docs. Documents whose record path conflicts
// are reported as failed without being read. Only cancellation of ctx
// aborts the run.
func processDocumentsParallel(ctx context.Context, engine *outline.Engine, opener layout.Opener,
	docs []document, outputDir string, workers int) ([]DocumentResult, error) {
	results := make([]DocumentResult, len(docs))
	records, conflicts := planRecords(docs, outputDir)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, doc := range docs {
		if err := conflicts[i]; err != nil {
			slog.Warn("Document skipped", "file", doc.Path, "error", err)
			results[i] = DocumentResult{
				File:      doc.Path,
				Structure: outline.ErrorStructure(err),
				Error:     err.Error(),
			}
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = processSingleDocument(gctx, engine, opener, doc.Path, records[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
