package layout

import (
	"sort"
	"sync"

	"github.com/tidwall/rtree"
)

// Page is one page of extracted layout. Blocks keep the order in which the
// source produced them; use TextBlocks for reading order.
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Blocks []Block `json:"blocks"`

	indexOnce sync.Once
	index     rtree.RTreeG[spanRef]
}

// spanRef addresses a span inside Page.Blocks.
type spanRef struct {
	block, line, span int
}

// Bounds returns the full page rectangle.
func (p *Page) Bounds() Rect {
	return Rect{X0: 0, Y0: 0, X1: p.Width, Y1: p.Height}
}

// TextBlocks returns the text-bearing blocks sorted into reading order:
// top edge first, then left edge.
func (p *Page) TextBlocks() []Block {
	out := make([]Block, 0, len(p.Blocks))
	for _, b := range p.Blocks {
		if b.SpanCount() > 0 {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BBox.Y0 != out[j].BBox.Y0 {
			return out[i].BBox.Y0 < out[j].BBox.Y0
		}
		return out[i].BBox.X0 < out[j].BBox.X0
	})
	return out
}

// Clip returns the detailed blocks restricted to spans whose centre lies in
// clip. Lines and blocks left without spans are dropped and the remaining
// boxes are recomputed from what survived.
func (p *Page) Clip(clip Rect) []Block {
	p.indexOnce.Do(p.buildIndex)

	var refs []spanRef
	p.index.Search(
		[2]float64{clip.X0, clip.Y0},
		[2]float64{clip.X1, clip.Y1},
		func(_, _ [2]float64, ref spanRef) bool {
			refs = append(refs, ref)
			return true
		},
	)
	if len(refs) == 0 {
		return nil
	}
	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.block != b.block {
			return a.block < b.block
		}
		if a.line != b.line {
			return a.line < b.line
		}
		return a.span < b.span
	})

	var (
		blocks  []Block
		curBlk  = -1
		curLine = -1
	)
	for _, ref := range refs {
		span := p.Blocks[ref.block].Lines[ref.line].Spans[ref.span]
		if ref.block != curBlk {
			blocks = append(blocks, Block{})
			curBlk, curLine = ref.block, -1
		}
		blk := &blocks[len(blocks)-1]
		if ref.line != curLine {
			blk.Lines = append(blk.Lines, Line{})
			curLine = ref.line
		}
		ln := &blk.Lines[len(blk.Lines)-1]
		ln.Spans = append(ln.Spans, span)
	}

	for i := range blocks {
		for j := range blocks[i].Lines {
			blocks[i].Lines[j].BBox = boundsOfSpans(blocks[i].Lines[j].Spans)
		}
		blocks[i].BBox = boundsOfLines(blocks[i].Lines)
	}
	return blocks
}

// buildIndex inserts every span centre into the spatial index.
func (p *Page) buildIndex() {
	for bi, b := range p.Blocks {
		for li, l := range b.Lines {
			for si, s := range l.Spans {
				pt := [2]float64{s.BBox.CenterX(), s.BBox.CenterY()}
				p.index.Insert(pt, pt, spanRef{block: bi, line: li, span: si})
			}
		}
	}
}
