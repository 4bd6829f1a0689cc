package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/testutil"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mutate ...func(*Config)) *Server {
	t.Helper()
	cfg := Config{
		CORSOrigin:  "*",
		MaxUploadMB: 5,
		TimeoutSec:  10,
		Options:     outline.DefaultOptions(),
		Version:     "test",
	}
	for _, m := range mutate {
		m(&cfg)
	}
	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func planPDF() []byte {
	return testutil.BuildPDF(
		testutil.LetterPDFPage(
			testutil.CenteredPDFText("Project Plan", 60, 24, 612, false),
			testutil.PDFText{Text: "1. Overview", X: 72, Y: 200, Size: 10},
			testutil.PDFText{Text: "Some body text follows here.", X: 72, Y: 240, Size: 10},
		),
		testutil.LetterPDFPage(
			testutil.PDFText{Text: "1.1 Milestones", X: 72, Y: 100, Size: 10},
		),
	)
}

var planStructure = outline.Structure{
	Title: "Project Plan",
	Outline: []outline.Entry{
		{Level: outline.H1, Text: "1. Overview", Page: 1},
		{Level: outline.H2, Text: "1.1 Milestones", Page: 2},
	},
}

// uploadRequest builds a multipart POST to /v1/outline.
func uploadRequest(t *testing.T, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/outline", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
