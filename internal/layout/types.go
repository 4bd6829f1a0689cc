// Package layout models the page geometry a PDF exposes: pages made of
// blocks, blocks made of lines, lines made of styled spans.
package layout

import (
	"math"
	"strings"
)

// Rect is an axis-aligned rectangle in page space. Y grows downwards.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// CenterX returns the horizontal centre.
func (r Rect) CenterX() float64 { return (r.X0 + r.X1) / 2 }

// CenterY returns the vertical centre.
func (r Rect) CenterY() float64 { return (r.Y0 + r.Y1) / 2 }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// ContainsPoint reports whether (x, y) lies inside r, edges included.
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// Intersects reports whether the two rectangles overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// Union returns the smallest rectangle covering both.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

// Span is a run of text sharing one font and size.
type Span struct {
	Text string  `json:"text"`
	Font string  `json:"font"`
	Size float64 `json:"size"`
	BBox Rect    `json:"bbox"`
}

// Line is an ordered sequence of spans on one baseline.
type Line struct {
	Spans []Span `json:"spans"`
	BBox  Rect   `json:"bbox"`
}

// Text concatenates the span texts.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Block groups one or more lines under a shared bounding box.
type Block struct {
	BBox  Rect   `json:"bbox"`
	Lines []Line `json:"lines"`
}

// Text returns the plain text of the block, one line per row.
func (b Block) Text() string {
	rows := make([]string, 0, len(b.Lines))
	for _, l := range b.Lines {
		rows = append(rows, l.Text())
	}
	return strings.Join(rows, "\n")
}

// SpanCount returns the number of spans across all lines.
func (b Block) SpanCount() int {
	n := 0
	for _, l := range b.Lines {
		n += len(l.Spans)
	}
	return n
}

// boundsOfSpans recomputes a line box from its spans.
func boundsOfSpans(spans []Span) Rect {
	var r Rect
	for i, s := range spans {
		if i == 0 {
			r = s.BBox
			continue
		}
		r = r.Union(s.BBox)
	}
	return r
}

// boundsOfLines recomputes a block box from its lines.
func boundsOfLines(lines []Line) Rect {
	var r Rect
	for i, l := range lines {
		if i == 0 {
			r = l.BBox
			continue
		}
		r = r.Union(l.BBox)
	}
	return r
}
