package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dslipak/pdf"
)

// Letter size in points, used when a page carries no usable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// pdfDocument reads layout from a PDF file through its content streams.
type pdfDocument struct {
	path    string
	file    *os.File
	reader  *pdf.Reader
	pages   []*Page
	cleanup func()
}

// OpenPDF opens a PDF for layout extraction. A non-empty password decrypts
// the file into a temporary copy first; the copy is removed on Close.
func OpenPDF(path, password string) (Document, error) {
	src := path
	cleanup := func() {}

	if password != "" {
		decrypted, err := NewPasswordHandler(password).Decrypt(path)
		if err != nil {
			return nil, err
		}
		if decrypted != path {
			src = decrypted
			cleanup = func() { _ = os.Remove(decrypted) }
		}
	}

	f, err := os.Open(src) //nolint:gosec // G304: path supplied by the caller
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		cleanup()
		return nil, fmt.Errorf("failed to stat PDF: %w", err)
	}

	reader, err := newReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		cleanup()
		if password == "" {
			if encrypted, _ := NewPasswordHandler("").IsEncrypted(path); encrypted {
				return nil, fmt.Errorf("%w: %s", ErrEncrypted, path)
			}
		}
		return nil, fmt.Errorf("failed to read PDF %s: %w", path, err)
	}

	return &pdfDocument{
		path:    path,
		file:    f,
		reader:  reader,
		pages:   make([]*Page, reader.NumPage()),
		cleanup: cleanup,
	}, nil
}

// newReader guards against parser panics on damaged cross-reference data.
func newReader(f *os.File, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed PDF: %v", rec)
		}
	}()
	return pdf.NewReader(f, size)
}

func (d *pdfDocument) PageCount() int { return len(d.pages) }

// Page extracts page i on first access and caches it for the lifetime of
// the document.
func (d *pdfDocument) Page(i int) (*Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("%w: %d", ErrPageOutOfRange, i)
	}
	if d.pages[i] != nil {
		return d.pages[i], nil
	}

	p := d.reader.Page(i + 1)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing page object", i+1)
	}

	box := mediaBox(p.V)
	page := &Page{
		Number: i + 1,
		Width:  box.Width(),
		Height: box.Height(),
	}

	texts, err := pageTexts(p)
	if err != nil {
		// The page still counts; it just contributes no text.
		slog.Warn("Page content unreadable", "file", d.path, "page", i+1, "error", err)
		d.pages[i] = page
		return page, nil
	}

	glyphs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		glyphs = append(glyphs, glyph{
			text:     t.S,
			font:     t.Font,
			size:     t.FontSize,
			x:        t.X - box.X0,
			w:        t.W,
			baseline: box.Y1 - t.Y,
		})
	}
	page.Blocks = assembleBlocks(glyphs)
	d.pages[i] = page
	return page, nil
}

// Close releases the file handle and any decrypted copy.
func (d *pdfDocument) Close() error {
	var err error
	if d.file != nil {
		err = d.file.Close()
		d.file = nil
	}
	if d.cleanup != nil {
		d.cleanup()
		d.cleanup = nil
	}
	return err
}

// pageTexts reads the positioned glyphs of a page, turning interpreter
// panics on broken content streams into errors.
func pageTexts(p pdf.Page) (texts []pdf.Text, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			texts, err = nil, fmt.Errorf("malformed content stream: %v", rec)
		}
	}()
	return p.Content().Text, nil
}

// mediaBox resolves the page MediaBox, following the Parent chain for
// inherited values. The returned rect is in PDF user space.
func mediaBox(v pdf.Value) Rect {
	for node := v; !node.IsNull(); node = node.Key("Parent") {
		mb := node.Key("MediaBox")
		if mb.Kind() != pdf.Array || mb.Len() < 4 {
			continue
		}
		r := Rect{
			X0: mb.Index(0).Float64(),
			Y0: mb.Index(1).Float64(),
			X1: mb.Index(2).Float64(),
			Y1: mb.Index(3).Float64(),
		}
		if r.X0 > r.X1 {
			r.X0, r.X1 = r.X1, r.X0
		}
		if r.Y0 > r.Y1 {
			r.Y0, r.Y1 = r.Y1, r.Y0
		}
		if !r.IsEmpty() {
			return r
		}
	}
	return Rect{X1: defaultPageWidth, Y1: defaultPageHeight}
}

// ErrEncrypted is returned when a PDF needs a password that was not given.
var ErrEncrypted = errors.New("PDF is encrypted")
