package outline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/MeKo-Tech/docoutline/internal/layout"
	"golang.org/x/text/cases"
)

// Numbering patterns in priority order.
var headingPatterns = []struct {
	level Level
	re    *regexp.Regexp
}{
	{H1, regexp.MustCompile(`(?i)^(?:CHAPTER\s\d+|APPENDIX\s[A-Z]|\d+)\.?\s`)},
	{H2, regexp.MustCompile(`^\d+\.\d+\.?\s`)},
	{H3, regexp.MustCompile(`^(?:\d+\.\d+\.\d+\.?|\([a-z]\)|[a-z]\))\s`)},
}

// MatchNumbering returns the level implied by the numbering prefix of a
// normalized text, if any.
func MatchNumbering(text string) (Level, bool) {
	for _, p := range headingPatterns {
		if p.re.MatchString(text) {
			return p.level, true
		}
	}
	return "", false
}

// Classify walks every block of every page in reading order and returns the
// heading candidates. Numbered blocks take the level of their numbering;
// other blocks become H2 when their first span is bold and larger than body
// text. The numbering prefix stays part of the candidate text.
func (e *Engine) Classify(ctx context.Context, doc layout.Document, bodySize float64, title string) ([]Candidate, error) {
	fold := cases.Fold()
	foldedTitle := fold.String(title)

	var out []Candidate
	for i := 0; i < doc.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := doc.Page(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i+1, err)
		}

		for _, b := range page.TextBlocks() {
			text := Normalize(b.Text())
			if utf8.RuneCountInString(text) < e.opts.HeadingMinChars ||
				len(strings.Fields(text)) > e.opts.HeadingMaxWords ||
				fold.String(text) == foldedTitle {
				continue
			}

			if level, ok := MatchNumbering(text); ok {
				out = append(out, Candidate{Text: text, Page: i + 1, Y: b.BBox.Y0, Level: level})
				continue
			}

			if e.styledHeading(page, b, bodySize) {
				out = append(out, Candidate{Text: text, Page: i + 1, Y: b.BBox.Y0, Level: H2})
			}
		}
	}
	return out, nil
}

// styledHeading re-reads the spans inside the block's box and checks the
// leading one for a bold face set larger than body text.
func (e *Engine) styledHeading(page *layout.Page, b layout.Block, bodySize float64) bool {
	clipped := page.Clip(b.BBox)
	if len(clipped) == 0 || len(clipped[0].Lines) == 0 || len(clipped[0].Lines[0].Spans) == 0 {
		return false
	}
	span := clipped[0].Lines[0].Spans[0]
	return strings.Contains(strings.ToLower(span.Font), "bold") && span.Size > bodySize*e.opts.BoldSizeRatio
}
