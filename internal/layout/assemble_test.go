package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// glyphRun lays out text one glyph per rune, each half an em wide.
func glyphRun(text string, x, baseline, size float64, font string) []glyph {
	var out []glyph
	for _, r := range text {
		out = append(out, glyph{text: string(r), font: font, size: size, x: x, w: size / 2, baseline: baseline})
		x += size / 2
	}
	return out
}

func TestAssembleBlocks_SingleLine(t *testing.T) {
	blocks := assembleBlocks(glyphRun("Hello World", 72, 100, 10, "Helvetica"))

	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].Lines, 1)
	require.Len(t, blocks[0].Lines[0].Spans, 1)

	span := blocks[0].Lines[0].Spans[0]
	assert.Equal(t, "Hello World", span.Text)
	assert.Equal(t, "Helvetica", span.Font)
	assert.InDelta(t, 10, span.Size, 1e-9)
	assert.InDelta(t, 72, span.BBox.X0, 1e-9)
	assert.InDelta(t, 92, span.BBox.Y0, 1e-9)
	assert.InDelta(t, 102, span.BBox.Y1, 1e-9)
	assert.InDelta(t, 72+11*5.0, span.BBox.X1, 1e-9)
}

func TestAssembleBlocks_FontChangeSplitsSpans(t *testing.T) {
	glyphs := glyphRun("Bold", 72, 100, 10, "Helvetica-Bold")
	glyphs = append(glyphs, glyphRun(" rest", 92, 100, 10, "Helvetica")...)

	blocks := assembleBlocks(glyphs)

	require.Len(t, blocks, 1)
	line := blocks[0].Lines[0]
	require.Len(t, line.Spans, 2)
	assert.Equal(t, "Helvetica-Bold", line.Spans[0].Font)
	assert.Equal(t, "Bold rest", line.Text())
}

func TestAssembleBlocks_GapInsertsSpace(t *testing.T) {
	glyphs := glyphRun("ab", 0, 50, 10, "F")
	glyphs = append(glyphs, glyphRun("cd", 20, 50, 10, "F")...)

	blocks := assembleBlocks(glyphs)

	require.Len(t, blocks, 1)
	assert.Equal(t, "ab cd", blocks[0].Text())
}

func TestAssembleBlocks_ShuffledInputIsOrdered(t *testing.T) {
	glyphs := glyphRun("abc", 0, 50, 10, "F")
	glyphs[0], glyphs[2] = glyphs[2], glyphs[0]

	blocks := assembleBlocks(glyphs)

	require.Len(t, blocks, 1)
	assert.Equal(t, "abc", blocks[0].Text())
}

func TestAssembleBlocks_Paragraphs(t *testing.T) {
	var glyphs []glyph
	glyphs = append(glyphs, glyphRun("first line", 72, 100, 10, "F")...)
	glyphs = append(glyphs, glyphRun("second line", 72, 112, 10, "F")...)
	glyphs = append(glyphs, glyphRun("new paragraph", 72, 160, 10, "F")...)

	blocks := assembleBlocks(glyphs)

	require.Len(t, blocks, 2)
	assert.Equal(t, "first line\nsecond line", blocks[0].Text())
	assert.Equal(t, "new paragraph", blocks[1].Text())
	assert.InDelta(t, 92, blocks[0].BBox.Y0, 1e-9)
	assert.InDelta(t, 114, blocks[0].BBox.Y1, 1e-9)
}

func TestAssembleBlocks_StyleChangeStartsBlock(t *testing.T) {
	var glyphs []glyph
	glyphs = append(glyphs, glyphRun("Heading", 72, 100, 18, "F-Bold")...)
	glyphs = append(glyphs, glyphRun("body text", 72, 112, 10, "F")...)
	glyphs = append(glyphs, glyphRun("Bold lead", 72, 124, 10, "F-Bold")...)

	blocks := assembleBlocks(glyphs)

	require.Len(t, blocks, 3)
	assert.Equal(t, "Heading", blocks[0].Text())
	assert.Equal(t, "body text", blocks[1].Text())
	assert.Equal(t, "Bold lead", blocks[2].Text())
}

func TestAssembleBlocks_ColumnsSplitRows(t *testing.T) {
	var glyphs []glyph
	glyphs = append(glyphs, glyphRun("left", 72, 100, 10, "F")...)
	glyphs = append(glyphs, glyphRun("right", 320, 100, 10, "F")...)

	blocks := assembleBlocks(glyphs)

	require.Len(t, blocks, 2)
	assert.Equal(t, "left", blocks[0].Text())
	assert.Equal(t, "right", blocks[1].Text())
}

func TestAssembleBlocks_DropsEmptyGlyphs(t *testing.T) {
	glyphs := []glyph{
		{text: "", font: "F", size: 10, x: 0, w: 5, baseline: 10},
		{text: "x", font: "F", size: 0, x: 0, w: 5, baseline: 10},
		{text: "   ", font: "F", size: 10, x: 0, w: 5, baseline: 10},
	}

	assert.Empty(t, assembleBlocks(glyphs))
	assert.Empty(t, assembleBlocks(nil))
}

func TestAssembleBlocks_ComposesCombiningMarks(t *testing.T) {
	glyphs := glyphRun("Cafe\u0301", 0, 10, 10, "F")

	blocks := assembleBlocks(glyphs)

	require.Len(t, blocks, 1)
	assert.Equal(t, "Caf\u00e9", blocks[0].Text())
}
