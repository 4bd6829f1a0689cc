package layout

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when no adapter handles a file extension.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrPageOutOfRange is returned for a page index outside the document.
	ErrPageOutOfRange = errors.New("page index out of range")
)

// Document is an open layout source. Pages are addressed from zero.
// Close must be called once the caller is done with the document.
type Document interface {
	PageCount() int
	Page(i int) (*Page, error)
	Close() error
}

// Opener opens a layout source from a path.
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, path string) (Document, error)

// Open calls f(ctx, path).
func (f OpenerFunc) Open(ctx context.Context, path string) (Document, error) {
	return f(ctx, path)
}

// FileOpener picks an adapter from the file extension.
type FileOpener struct {
	// Password is used for encrypted PDFs. Empty means none.
	Password string
}

// DefaultOpener handles .pdf and .json layout files without a password.
var DefaultOpener Opener = FileOpener{}

// IsSupported reports whether FileOpener has an adapter for path.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".json":
		return true
	default:
		return false
	}
}

// Open dispatches on the file extension.
func (o FileOpener) Open(ctx context.Context, path string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return OpenPDF(path, o.Password)
	case ".json":
		return OpenJSON(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// MemoryDocument is a Document backed by pages already in memory.
type MemoryDocument struct {
	pages  []*Page
	closed bool
}

// NewMemoryDocument builds a document from pages. Page numbers are assigned
// from their position when left at zero.
func NewMemoryDocument(pages ...*Page) *MemoryDocument {
	for i, p := range pages {
		if p.Number == 0 {
			p.Number = i + 1
		}
	}
	return &MemoryDocument{pages: pages}
}

// PageCount returns the number of pages.
func (d *MemoryDocument) PageCount() int { return len(d.pages) }

// Page returns page i.
func (d *MemoryDocument) Page(i int) (*Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("%w: %d", ErrPageOutOfRange, i)
	}
	return d.pages[i], nil
}

// Close marks the document closed.
func (d *MemoryDocument) Close() error {
	d.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (d *MemoryDocument) Closed() bool { return d.closed }
