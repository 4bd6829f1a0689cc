package testutil

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"
)

// PDFText is a text run placed on a generated PDF page. Y is the baseline
// measured from the top of the page.
type PDFText struct {
	Text string
	X, Y float64
	Size float64
	Bold bool
}

// PDFPage describes one generated page.
type PDFPage struct {
	Width, Height float64
	Texts         []PDFText
}

// LetterPDFPage returns a 612x792 page holding texts.
func LetterPDFPage(texts ...PDFText) PDFPage {
	return PDFPage{Width: 612, Height: 792, Texts: texts}
}

// CenteredPDFText places text centred on a page of the given width. The
// generated fonts give every glyph a width of half an em.
func CenteredPDFText(text string, y, size, pageWidth float64, bold bool) PDFText {
	return PDFText{Text: text, X: (pageWidth - TextWidth(text, size)) / 2, Y: y, Size: size, Bold: bold}
}

// BuildPDF renders a minimal uncompressed PDF using the standard Helvetica
// faces with fixed glyph widths.
func BuildPDF(pages ...PDFPage) []byte {
	var objects []string

	// 1: catalog, 2: page tree, 3: regular font, 4: bold font.
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	objects = append(objects, "") // page tree, filled in below
	objects = append(objects, fontObject("Helvetica"))
	objects = append(objects, fontObject("Helvetica-Bold"))

	kids := make([]string, 0, len(pages))
	for _, p := range pages {
		content := contentStream(p)
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		contentRef := len(objects)

		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] "+
				"/Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>",
			num(p.Width), num(p.Height), contentRef))
		kids = append(kids, fmt.Sprintf("%d 0 R", len(objects)))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// WritePDF generates a PDF into dir/name and returns its path.
func WritePDF(t *testing.T, dir, name string, pages ...PDFPage) string {
	t.Helper()
	return WriteFile(t, dir, name, BuildPDF(pages...))
}

func fontObject(base string) string {
	widths := make([]string, 0, 95)
	for c := 32; c <= 126; c++ {
		widths = append(widths, "500")
	}
	return fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding "+
			"/FirstChar 32 /LastChar 126 /Widths [%s] >>",
		base, strings.Join(widths, " "))
}

func contentStream(p PDFPage) string {
	var b strings.Builder
	for _, t := range p.Texts {
		font := "F1"
		if t.Bold {
			font = "F2"
		}
		fmt.Fprintf(&b, "BT /%s %s Tf 1 0 0 1 %s %s Tm (%s) Tj ET\n",
			font, num(t.Size), num(t.X), num(p.Height-t.Y), escapePDFString(t.Text))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
