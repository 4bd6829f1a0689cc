package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Layout JSON mirrors the dict-style page dumps produced by common PDF
// toolkits. Boxes are [x0, y0, x1, y1] with y growing downwards. Blocks
// with a non-zero type (images) are ignored.
type (
	jsonLayout struct {
		Pages []jsonPage `json:"pages"`
	}
	jsonPage struct {
		Number int         `json:"number"`
		Width  float64     `json:"width"`
		Height float64     `json:"height"`
		Blocks []jsonBlock `json:"blocks"`
	}
	jsonBlock struct {
		Type  int         `json:"type"`
		BBox  *[4]float64 `json:"bbox"`
		Lines []jsonLine  `json:"lines"`
	}
	jsonLine struct {
		BBox  *[4]float64 `json:"bbox"`
		Spans []jsonSpan  `json:"spans"`
	}
	jsonSpan struct {
		Text string      `json:"text"`
		Font string      `json:"font"`
		Size float64     `json:"size"`
		BBox *[4]float64 `json:"bbox"`
	}
)

// OpenJSON reads a layout JSON file into an in-memory document.
func OpenJSON(path string) (Document, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path supplied by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to open layout: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeJSON(f)
}

// DecodeJSON parses layout JSON from r.
func DecodeJSON(r io.Reader) (*MemoryDocument, error) {
	var raw jsonLayout
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}

	pages := make([]*Page, 0, len(raw.Pages))
	for i, jp := range raw.Pages {
		page, err := jp.toPage(i + 1)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return NewMemoryDocument(pages...), nil
}

func (jp jsonPage) toPage(fallbackNumber int) (*Page, error) {
	page := &Page{Number: jp.Number, Width: jp.Width, Height: jp.Height}
	if page.Number == 0 {
		page.Number = fallbackNumber
	}
	if page.Width <= 0 || page.Height <= 0 {
		page.Width, page.Height = defaultPageWidth, defaultPageHeight
	}

	for bi, jb := range jp.Blocks {
		if jb.Type != 0 {
			continue
		}
		var block Block
		for li, jl := range jb.Lines {
			var line Line
			for si, js := range jl.Spans {
				if js.BBox == nil {
					return nil, fmt.Errorf("page %d block %d line %d span %d: missing bbox",
						page.Number, bi, li, si)
				}
				line.Spans = append(line.Spans, Span{
					Text: js.Text,
					Font: js.Font,
					Size: js.Size,
					BBox: rectOf(*js.BBox),
				})
			}
			if len(line.Spans) == 0 {
				continue
			}
			line.BBox = boundsOfSpans(line.Spans)
			if jl.BBox != nil {
				line.BBox = rectOf(*jl.BBox)
			}
			block.Lines = append(block.Lines, line)
		}
		if len(block.Lines) == 0 {
			continue
		}
		block.BBox = boundsOfLines(block.Lines)
		if jb.BBox != nil {
			block.BBox = rectOf(*jb.BBox)
		}
		page.Blocks = append(page.Blocks, block)
	}
	return page, nil
}

func rectOf(b [4]float64) Rect {
	return Rect{X0: b[0], Y0: b[1], X1: b[2], Y1: b[3]}
}

// EncodeJSON writes doc in the layout JSON format.
func EncodeJSON(w io.Writer, doc Document) error {
	out := jsonLayout{Pages: make([]jsonPage, 0, doc.PageCount())}
	for i := 0; i < doc.PageCount(); i++ {
		p, err := doc.Page(i)
		if err != nil {
			return err
		}
		jp := jsonPage{Number: p.Number, Width: p.Width, Height: p.Height}
		for _, b := range p.Blocks {
			jb := jsonBlock{BBox: boxOf(b.BBox)}
			for _, l := range b.Lines {
				jl := jsonLine{BBox: boxOf(l.BBox)}
				for _, s := range l.Spans {
					jl.Spans = append(jl.Spans, jsonSpan{Text: s.Text, Font: s.Font, Size: s.Size, BBox: boxOf(s.BBox)})
				}
				jb.Lines = append(jb.Lines, jl)
			}
			jp.Blocks = append(jp.Blocks, jb)
		}
		out.Pages = append(out.Pages, jp)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func boxOf(r Rect) *[4]float64 {
	return &[4]float64{r.X0, r.Y0, r.X1, r.Y1}
}
