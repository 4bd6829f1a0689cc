package layout

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Glyph geometry ratios relative to the font size.
const (
	ascentRatio   = 0.8
	descentRatio  = 0.2
	spaceGapRatio = 0.2  // horizontal gap that implies a word break
	columnGap     = 3.0  // horizontal gap (in font sizes) that splits a row
	baselineTol   = 0.45 // baseline drift (in font sizes) tolerated on one row
	blockGapRatio = 0.9  // vertical gap (in line heights) that splits a block
	sizeTolerance = 0.5  // font size difference (points) that splits a block
)

// glyph is one positioned character in top-based page coordinates.
type glyph struct {
	text     string
	font     string
	size     float64
	x, w     float64
	baseline float64
}

func (g glyph) right() float64 { return g.x + g.w }

// assembleBlocks groups positioned glyphs into spans, lines and blocks.
func assembleBlocks(glyphs []glyph) []Block {
	lines := make([]Line, 0)
	for _, row := range groupRows(glyphs) {
		for _, seg := range splitRow(row) {
			if ln, ok := buildLine(seg); ok {
				lines = append(lines, ln)
			}
		}
	}
	return groupLines(lines)
}

// groupRows clusters glyphs that share a baseline and sorts each row by x.
func groupRows(glyphs []glyph) [][]glyph {
	gs := make([]glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.text != "" && g.size > 0 {
			gs = append(gs, g)
		}
	}
	if len(gs) == 0 {
		return nil
	}
	sort.SliceStable(gs, func(i, j int) bool { return gs[i].baseline < gs[j].baseline })

	var rows [][]glyph
	current := []glyph{gs[0]}
	anchor := gs[0].baseline
	for _, g := range gs[1:] {
		if math.Abs(g.baseline-anchor) <= baselineTol*g.size {
			current = append(current, g)
			continue
		}
		rows = append(rows, current)
		current = []glyph{g}
		anchor = g.baseline
	}
	rows = append(rows, current)

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].x < row[j].x })
	}
	return rows
}

// splitRow cuts a row wherever the horizontal gap looks like a column gutter.
func splitRow(row []glyph) [][]glyph {
	var segs [][]glyph
	start := 0
	for i := 1; i < len(row); i++ {
		if row[i].x-row[i-1].right() > columnGap*row[i].size {
			segs = append(segs, row[start:i])
			start = i
		}
	}
	return append(segs, row[start:])
}

// buildLine merges consecutive glyphs with the same font and size into spans.
func buildLine(seg []glyph) (Line, bool) {
	var (
		spans []Span
		cur   *Span
		sb    strings.Builder
		prev  glyph
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = norm.NFC.String(sb.String())
		if strings.TrimSpace(cur.Text) != "" {
			spans = append(spans, *cur)
		}
		cur = nil
		sb.Reset()
	}

	for i, g := range seg {
		gap := i > 0 && g.x-prev.right() > spaceGapRatio*g.size
		sameStyle := cur != nil && cur.Font == g.font && math.Abs(cur.Size-g.size) < 0.01

		if !sameStyle {
			if gap && cur != nil && !endsWithSpace(sb.String()) {
				sb.WriteByte(' ')
			}
			flush()
			cur = &Span{Font: g.font, Size: g.size, BBox: glyphBox(g)}
		} else if gap && !endsWithSpace(sb.String()) && !strings.HasPrefix(g.text, " ") {
			sb.WriteByte(' ')
		}

		sb.WriteString(g.text)
		cur.BBox = cur.BBox.Union(glyphBox(g))
		prev = g
	}
	flush()

	if len(spans) == 0 {
		return Line{}, false
	}
	return Line{Spans: spans, BBox: boundsOfSpans(spans)}, true
}

func glyphBox(g glyph) Rect {
	return Rect{
		X0: g.x,
		Y0: g.baseline - ascentRatio*g.size,
		X1: g.x + math.Max(g.w, 0),
		Y1: g.baseline + descentRatio*g.size,
	}
}

func endsWithSpace(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)
	return unicode.IsSpace(r[len(r)-1])
}

// groupLines stacks lines into blocks. A line joins the most recent block
// it overlaps horizontally when the vertical gap is small and its leading
// style matches that block.
func groupLines(lines []Line) []Block {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].BBox.Y0 != lines[j].BBox.Y0 {
			return lines[i].BBox.Y0 < lines[j].BBox.Y0
		}
		return lines[i].BBox.X0 < lines[j].BBox.X0
	})

	var blocks []Block
	for _, ln := range lines {
		target := -1
		for i := len(blocks) - 1; i >= 0; i-- {
			if continuesBlock(blocks[i], ln) {
				target = i
				break
			}
		}
		if target < 0 {
			blocks = append(blocks, Block{BBox: ln.BBox, Lines: []Line{ln}})
			continue
		}
		blocks[target].Lines = append(blocks[target].Lines, ln)
		blocks[target].BBox = blocks[target].BBox.Union(ln.BBox)
	}
	return blocks
}

func continuesBlock(b Block, ln Line) bool {
	last := b.Lines[len(b.Lines)-1]
	if ln.BBox.X0 >= b.BBox.X1 || ln.BBox.X1 <= b.BBox.X0 {
		return false
	}
	height := last.BBox.Height()
	if gap := ln.BBox.Y0 - last.BBox.Y1; gap > blockGapRatio*height || gap < -height {
		return false
	}
	a, c := last.Spans[0], ln.Spans[0]
	if math.Abs(a.Size-c.Size) > sizeTolerance {
		return false
	}
	return isBold(a.Font) == isBold(c.Font)
}

func isBold(font string) bool {
	f := strings.ToLower(font)
	return strings.Contains(f, "bold") || strings.Contains(f, "black") || strings.Contains(f, "heavy")
}
