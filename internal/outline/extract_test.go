package outline_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/docoutline/internal/layout"
	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectPlan() *layout.MemoryDocument {
	return testutil.Document(testutil.LetterPage().
		Centered("Project Plan", 60, 24, testutil.FontRegular).
		Text("1. Overview", 72, 200, 10, testutil.FontRegular))
}

func TestExtract_EndToEnd(t *testing.T) {
	st, err := outline.Default().Extract(context.Background(), projectPlan())
	require.NoError(t, err)

	assert.Equal(t, outline.Structure{
		Title:   "Project Plan",
		Outline: []outline.Entry{{Level: outline.H1, Text: "1. Overview", Page: 1}},
	}, st)

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Project Plan","outline":[{"level":"H1","text":"1. Overview","page":1}]}`, string(data))
	assert.Equal(t, `{"title":"Project Plan","outline":[{"level":"H1","text":"1. Overview","page":1}]}`, string(data))
}

func TestExtract_EmptyDocument(t *testing.T) {
	st, err := outline.Default().Extract(context.Background(), layout.NewMemoryDocument())
	require.NoError(t, err)
	assert.Equal(t, outline.EmptyStructure(), st)

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Empty Document","outline":[]}`, string(data))
}

func TestExtract_NoHeadingsStillHasOutlineArray(t *testing.T) {
	doc := testutil.Document(testutil.LetterPage().Text("just words here", 72, 400, 10, testutil.FontRegular))

	st, err := outline.Default().Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, outline.UntitledTitle, st.Title)
	assert.NotNil(t, st.Outline)
	assert.Empty(t, st.Outline)
}

func TestExtract_MultiPage(t *testing.T) {
	doc := testutil.Document(
		testutil.LetterPage().
			Centered("Field Guide", 50, 28, testutil.FontBold).
			Text("body text line", 72, 300, 10, testutil.FontRegular).
			Text("more body text", 72, 320, 10, testutil.FontRegular).
			Text("Chapter 1 Birds", 72, 400, 10, testutil.FontRegular),
		testutil.LetterPage().
			Text("Summary", 72, 30, 14, testutil.FontBold).
			Text("1.1 Songbirds", 72, 200, 10, testutil.FontRegular).
			Text("Summary", 72, 760, 14, testutil.FontBold),
		testutil.LetterPage().
			Text("Summary", 72, 30, 14, testutil.FontBold).
			Text("FIELD GUIDE", 72, 60, 14, testutil.FontBold).
			Text("closing remarks", 72, 300, 10, testutil.FontRegular).
			Text("closing thoughts", 72, 320, 10, testutil.FontRegular).
			Text("closing words", 72, 340, 10, testutil.FontRegular),
	)

	st, err := outline.Default().Extract(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, "Field Guide", st.Title)
	assert.Equal(t, []outline.Entry{
		{Level: outline.H1, Text: "Chapter 1 Birds", Page: 1},
		{Level: outline.H2, Text: "Summary", Page: 2},
		{Level: outline.H2, Text: "1.1 Songbirds", Page: 2},
		{Level: outline.H2, Text: "Summary", Page: 3},
	}, st.Outline)
}

func TestExtract_CustomOptions(t *testing.T) {
	opts := outline.DefaultOptions()
	opts.HeadingMaxWords = 1

	st, err := outline.New(opts).Extract(context.Background(), projectPlan())
	require.NoError(t, err)
	assert.Empty(t, st.Outline)
}

type failingPageDoc struct{ closed bool }

func (d *failingPageDoc) PageCount() int                 { return 1 }
func (d *failingPageDoc) Page(int) (*layout.Page, error) { return nil, errors.New("broken page tree") }
func (d *failingPageDoc) Close() error                   { d.closed = true; return nil }

func TestExtractFile(t *testing.T) {
	ctx := context.Background()
	engine := outline.Default()

	t.Run("success closes the document", func(t *testing.T) {
		doc := projectPlan()
		opener := layout.OpenerFunc(func(context.Context, string) (layout.Document, error) { return doc, nil })

		st := engine.ExtractFile(ctx, opener, "plan.pdf")

		assert.Equal(t, "Project Plan", st.Title)
		assert.True(t, doc.Closed())
	})

	t.Run("open failure becomes error record", func(t *testing.T) {
		opener := layout.OpenerFunc(func(context.Context, string) (layout.Document, error) {
			return nil, errors.New("cannot open broken.pdf")
		})

		st := engine.ExtractFile(ctx, opener, "broken.pdf")

		assert.Equal(t, "Error: cannot open broken.pdf", st.Title)
		assert.Empty(t, st.Outline)
		assert.True(t, outline.IsErrorStructure(st))
	})

	t.Run("read failure closes and reports", func(t *testing.T) {
		doc := &failingPageDoc{}
		opener := layout.OpenerFunc(func(context.Context, string) (layout.Document, error) { return doc, nil })

		st := engine.ExtractFile(ctx, opener, "x.pdf")

		assert.True(t, outline.IsErrorStructure(st))
		assert.Contains(t, st.Title, "broken page tree")
		assert.True(t, doc.closed)
	})

	t.Run("empty document", func(t *testing.T) {
		doc := layout.NewMemoryDocument()
		opener := layout.OpenerFunc(func(context.Context, string) (layout.Document, error) { return doc, nil })

		st := engine.ExtractFile(ctx, opener, "empty.pdf")

		assert.Equal(t, outline.EmptyTitle, st.Title)
		assert.False(t, outline.IsErrorStructure(st))
		assert.True(t, doc.Closed())
	})

	t.Run("missing file through default opener", func(t *testing.T) {
		st := engine.ExtractFile(ctx, nil, filepath.Join(testutil.CreateTempDir(t), "nope.pdf"))
		assert.True(t, outline.IsErrorStructure(st))
	})
}

func TestExtractFile_GeneratedPDF(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := testutil.WritePDF(t, dir, "plan.pdf",
		testutil.LetterPDFPage(
			testutil.CenteredPDFText("Project Plan", 60, 24, 612, false),
			testutil.PDFText{Text: "1. Overview", X: 72, Y: 200, Size: 10},
			testutil.PDFText{Text: "Some body text follows here.", X: 72, Y: 240, Size: 10},
			testutil.PDFText{Text: "Risks", X: 72, Y: 320, Size: 14, Bold: true},
		),
		testutil.LetterPDFPage(
			testutil.PDFText{Text: "1.1 Milestones", X: 72, Y: 100, Size: 10},
			testutil.PDFText{Text: "Contents ........ 4", X: 72, Y: 300, Size: 10},
		),
	)

	st := outline.Default().ExtractFile(context.Background(), layout.DefaultOpener, path)

	assert.Equal(t, outline.Structure{
		Title: "Project Plan",
		Outline: []outline.Entry{
			{Level: outline.H1, Text: "1. Overview", Page: 1},
			{Level: outline.H2, Text: "Risks", Page: 1},
			{Level: outline.H2, Text: "1.1 Milestones", Page: 2},
		},
	}, st)
}
