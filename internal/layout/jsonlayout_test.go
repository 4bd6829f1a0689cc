package layout_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/MeKo-Tech/docoutline/internal/layout"
	"github.com/MeKo-Tech/docoutline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLayout = `{
  "pages": [
    {
      "width": 600, "height": 800,
      "blocks": [
        {"type": 1, "bbox": [0, 0, 100, 100]},
        {
          "bbox": [100, 50, 500, 80],
          "lines": [
            {"spans": [
              {"text": "Annual Report", "font": "Times-Bold", "size": 26, "bbox": [150, 50, 450, 80]}
            ]}
          ]
        },
        {"lines": [{"spans": []}]}
      ]
    },
    {"blocks": []}
  ]
}`

func TestDecodeJSON(t *testing.T) {
	doc, err := layout.DecodeJSON(strings.NewReader(sampleLayout))
	require.NoError(t, err)
	require.Equal(t, 2, doc.PageCount())

	p, err := doc.Page(0)
	require.NoError(t, err)
	assert.InDelta(t, 600, p.Width, 1e-9)
	require.Len(t, p.Blocks, 1, "image and empty blocks are dropped")

	blk := p.Blocks[0]
	assert.Equal(t, layout.Rect{X0: 100, Y0: 50, X1: 500, Y1: 80}, blk.BBox)
	assert.Equal(t, layout.Rect{X0: 150, Y0: 50, X1: 450, Y1: 80}, blk.Lines[0].BBox)
	assert.Equal(t, "Times-Bold", blk.Lines[0].Spans[0].Font)

	second, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Number)
	assert.InDelta(t, 612, second.Width, 1e-9, "missing size falls back to letter")
}

func TestDecodeJSON_Errors(t *testing.T) {
	_, err := layout.DecodeJSON(strings.NewReader("{"))
	require.Error(t, err)

	_, err = layout.DecodeJSON(strings.NewReader(`{"pages":[{"blocks":[{"lines":[{"spans":[{"text":"x"}]}]}]}]}`))
	require.ErrorContains(t, err, "missing bbox")
}

func TestEncodeJSON_RoundTrip(t *testing.T) {
	src := testutil.Document(testutil.LetterPage().
		Text("Heading", 72, 72, 18, testutil.FontBold).
		Text("Body", 72, 100, 10, testutil.FontRegular))

	var buf bytes.Buffer
	require.NoError(t, layout.EncodeJSON(&buf, src))

	doc, err := layout.DecodeJSON(&buf)
	require.NoError(t, err)
	p, err := doc.Page(0)
	require.NoError(t, err)

	want, _ := src.Page(0)
	assert.Equal(t, want.Blocks, p.Blocks)
}

func TestOpenJSONThroughOpener(t *testing.T) {
	path := testutil.WriteFile(t, testutil.CreateTempDir(t), "doc.json", []byte(sampleLayout))

	doc, err := layout.DefaultOpener.Open(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = doc.Close() }()
	assert.Equal(t, 2, doc.PageCount())
}
