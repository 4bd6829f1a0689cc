package testutil

import (
	"unicode/utf8"

	"github.com/MeKo-Tech/docoutline/internal/layout"
)

// Fonts used by synthetic layouts.
const (
	FontRegular = "Helvetica"
	FontBold    = "Helvetica-Bold"
)

// PageBuilder assembles a synthetic page.
type PageBuilder struct {
	page *layout.Page
}

// NewPage starts a page of the given size.
func NewPage(width, height float64) *PageBuilder {
	return &PageBuilder{page: &layout.Page{Width: width, Height: height}}
}

// LetterPage starts a 612x792 page.
func LetterPage() *PageBuilder {
	return NewPage(612, 792)
}

// Text adds a one-line, one-span block whose top-left corner is (x, y).
func (b *PageBuilder) Text(text string, x, y, size float64, font string) *PageBuilder {
	b.page.Blocks = append(b.page.Blocks, SpanBlock(text, x, y, size, font))
	return b
}

// Centered adds a one-span block centred horizontally on the page.
func (b *PageBuilder) Centered(text string, y, size float64, font string) *PageBuilder {
	w := TextWidth(text, size)
	return b.Text(text, (b.page.Width-w)/2, y, size, font)
}

// Block adds a prepared block.
func (b *PageBuilder) Block(blk layout.Block) *PageBuilder {
	b.page.Blocks = append(b.page.Blocks, blk)
	return b
}

// Build returns the page.
func (b *PageBuilder) Build() *layout.Page {
	return b.page
}

// Document builds an in-memory document from page builders.
func Document(pages ...*PageBuilder) *layout.MemoryDocument {
	built := make([]*layout.Page, 0, len(pages))
	for _, p := range pages {
		built = append(built, p.Build())
	}
	return layout.NewMemoryDocument(built...)
}

// TextWidth approximates the rendered width of text at size: every glyph
// is half an em wide.
func TextWidth(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * size * 0.5
}

// SpanBlock returns a block holding a single span.
func SpanBlock(text string, x, y, size float64, font string) layout.Block {
	box := layout.Rect{X0: x, Y0: y, X1: x + TextWidth(text, size), Y1: y + size}
	span := layout.Span{Text: text, Font: font, Size: size, BBox: box}
	return layout.Block{
		BBox:  box,
		Lines: []layout.Line{{Spans: []layout.Span{span}, BBox: box}},
	}
}

// MultiSpanBlock returns a one-line block whose spans sit side by side.
func MultiSpanBlock(x, y float64, spans ...layout.Span) layout.Block {
	line := layout.Line{}
	cursor := x
	for _, s := range spans {
		w := TextWidth(s.Text, s.Size)
		s.BBox = layout.Rect{X0: cursor, Y0: y, X1: cursor + w, Y1: y + s.Size}
		cursor += w + s.Size*0.5
		line.Spans = append(line.Spans, s)
		line.BBox = line.BBox.Union(s.BBox)
	}
	line.BBox.X0, line.BBox.Y0 = x, y
	return layout.Block{BBox: line.BBox, Lines: []layout.Line{line}}
}
