package outline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/docoutline/internal/layout"
)

// Engine runs the title and heading heuristics with a fixed set of options.
// It holds no per-document state and may be shared between goroutines.
type Engine struct {
	opts Options
}

// New returns an engine using opts.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Default returns an engine using DefaultOptions.
func Default() *Engine {
	return New(DefaultOptions())
}

// Options returns the engine thresholds.
func (e *Engine) Options() Options {
	return e.opts
}

// Extract infers the structure of an open document. The body size is
// estimated first, then the title, then the headings, each stage feeding
// the next.
func (e *Engine) Extract(ctx context.Context, doc layout.Document) (Structure, error) {
	if doc.PageCount() == 0 {
		return EmptyStructure(), nil
	}

	bodySize, err := EstimateBodySize(doc)
	if err != nil {
		return Structure{}, err
	}
	title, err := e.ExtractTitle(doc, bodySize)
	if err != nil {
		return Structure{}, err
	}
	candidates, err := e.Classify(ctx, doc, bodySize, title)
	if err != nil {
		return Structure{}, err
	}

	slog.Debug("Structure inferred",
		"pages", doc.PageCount(),
		"body_size", bodySize,
		"title", title,
		"candidates", len(candidates))

	return Structure{Title: title, Outline: Resolve(candidates)}, nil
}

// ExtractFile opens path, infers its structure and closes it again. It never
// fails: unreadable input yields an error record, an empty document yields
// the empty record. A nil opener means layout.DefaultOpener.
func (e *Engine) ExtractFile(ctx context.Context, opener layout.Opener, path string) Structure {
	if opener == nil {
		opener = layout.DefaultOpener
	}
	doc, err := opener.Open(ctx, path)
	if err != nil {
		return ErrorStructure(err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			slog.Warn("Failed to close document", "file", path, "error", cerr)
		}
	}()

	st, err := e.Extract(ctx, doc)
	if err != nil {
		return ErrorStructure(err)
	}
	return st
}

// IsErrorStructure reports whether st is an error record.
func IsErrorStructure(st Structure) bool {
	return strings.HasPrefix(st.Title, ErrorTitlePrefix) && len(st.Outline) == 0
}
