package outline

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/MeKo-Tech/docoutline/internal/layout"
)

// ExtractTitle scores the blocks in the top region of the first page and
// returns the best one's text, or UntitledTitle when none qualifies.
//
// A block qualifies when the text of its first line has a sensible length
// and its leading span is clearly larger than body text. The score is the
// font size boosted by up to 2x for horizontal centring.
func (e *Engine) ExtractTitle(doc layout.Document, bodySize float64) (string, error) {
	if doc.PageCount() == 0 {
		return UntitledTitle, nil
	}
	page, err := doc.Page(0)
	if err != nil {
		return "", fmt.Errorf("failed to read first page: %w", err)
	}

	region := layout.Rect{X0: 0, Y0: 0, X1: page.Width, Y1: page.Height * e.opts.TitleRegion}
	pageCenter := page.Width / 2

	title, best := UntitledTitle, 0.0
	for _, b := range page.Clip(region) {
		if len(b.Lines) == 0 || len(b.Lines[0].Spans) == 0 {
			continue
		}
		spans := b.Lines[0].Spans

		parts := make([]string, 0, len(spans))
		for _, s := range spans {
			parts = append(parts, s.Text)
		}
		text := Normalize(strings.Join(parts, " "))
		if n := utf8.RuneCountInString(text); n < e.opts.TitleMinChars || n > e.opts.TitleMaxChars {
			continue
		}

		size := spans[0].Size
		if size < bodySize*e.opts.TitleSizeRatio {
			continue
		}

		score := size * (1 + e.centerProximity(b.BBox.CenterX(), pageCenter))
		if score > best {
			best, title = score, text
		}
	}
	return title, nil
}

// centerProximity is 1 for a block centred on the page, falling linearly to
// 0 at CenterSpread half-widths away.
func (e *Engine) centerProximity(center, pageCenter float64) float64 {
	if pageCenter <= 0 {
		return 0
	}
	return math.Max(0, 1-math.Abs(center-pageCenter)/(pageCenter*e.opts.CenterSpread))
}
