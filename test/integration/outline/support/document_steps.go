package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/docoutline/internal/testutil"
	"github.com/cucumber/godog"
)

const pageWidth = 612

// aPDFWithText builds a PDF from a table with the columns
// page | text | y | size, and optionally style (bold) and align (center).
func (testCtx *TestContext) aPDFWithText(name string, table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("table for %s has no rows", name)
	}
	header := make(map[string]int)
	for i, cell := range table.Rows[0].Cells {
		header[strings.TrimSpace(cell.Value)] = i
	}
	for _, col := range []string{"page", "text", "y", "size"} {
		if _, ok := header[col]; !ok {
			return fmt.Errorf("table for %s lacks column %q", name, col)
		}
	}

	var pageTexts [][]testutil.PDFText
	for _, row := range table.Rows[1:] {
		get := func(col string) string {
			i, ok := header[col]
			if !ok || i >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[i].Value)
		}

		page, err := strconv.Atoi(get("page"))
		if err != nil || page < 1 {
			return fmt.Errorf("invalid page %q", get("page"))
		}
		y, err := strconv.ParseFloat(get("y"), 64)
		if err != nil {
			return fmt.Errorf("invalid y %q", get("y"))
		}
		size, err := strconv.ParseFloat(get("size"), 64)
		if err != nil {
			return fmt.Errorf("invalid size %q", get("size"))
		}
		text := get("text")
		bold := get("style") == "bold"

		run := testutil.PDFText{Text: text, X: 72, Y: y, Size: size, Bold: bold}
		if get("align") == "center" {
			run = testutil.CenteredPDFText(text, y, size, pageWidth, bold)
		}
		for len(pageTexts) < page {
			pageTexts = append(pageTexts, nil)
		}
		pageTexts[page-1] = append(pageTexts[page-1], run)
	}

	pages := make([]testutil.PDFPage, len(pageTexts))
	for i, texts := range pageTexts {
		pages[i] = testutil.LetterPDFPage(texts...)
	}
	return writeFile(testCtx.path(name), testutil.BuildPDF(pages...))
}

// aFileContaining writes literal content, for broken or non-PDF inputs.
func (testCtx *TestContext) aFileContaining(name, content string) error {
	return writeFile(testCtx.path(name), []byte(content))
}

// aLayoutFile writes a layout JSON document from a doc string.
func (testCtx *TestContext) aLayoutFile(name string, doc *godog.DocString) error {
	return writeFile(testCtx.path(name), []byte(doc.Content))
}

// aCopyOf duplicates an already described document under another name.
func (testCtx *TestContext) aCopyOf(dst, src string) error {
	data, err := os.ReadFile(testCtx.path(src))
	if err != nil {
		return err
	}
	return writeFile(testCtx.path(dst), data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// RegisterDocumentSteps registers the fixture steps.
func (testCtx *TestContext) RegisterDocumentSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a PDF "([^"]*)" with text:$`, testCtx.aPDFWithText)
	sc.Step(`^a file "([^"]*)" containing "([^"]*)"$`, testCtx.aFileContaining)
	sc.Step(`^a layout file "([^"]*)":$`, testCtx.aLayoutFile)
	sc.Step(`^a record file "([^"]*)":$`, testCtx.aLayoutFile)
	sc.Step(`^a copy of "([^"]*)" named "([^"]*)"$`, func(src, dst string) error {
		return testCtx.aCopyOf(dst, src)
	})
}
