package outline

import (
	"fmt"
	"math"

	"github.com/MeKo-Tech/docoutline/internal/layout"
)

// EstimateBodySize returns the most frequent span font size, rounded to
// whole points, across the whole document. Ties go to the smaller size.
// Documents without pages or spans yield DefaultBodySize.
func EstimateBodySize(doc layout.Document) (float64, error) {
	counts := make(map[int]int)
	for i := 0; i < doc.PageCount(); i++ {
		page, err := doc.Page(i)
		if err != nil {
			return 0, fmt.Errorf("failed to read page %d: %w", i+1, err)
		}
		for _, b := range page.Blocks {
			for _, l := range b.Lines {
				for _, s := range l.Spans {
					counts[roundHalfEven(s.Size)]++
				}
			}
		}
	}
	return modeSize(counts), nil
}

// modeSize picks the size with the highest count, smallest size first on ties.
func modeSize(counts map[int]int) float64 {
	if len(counts) == 0 {
		return DefaultBodySize
	}
	best, bestCount := 0, -1
	for size, n := range counts {
		if n > bestCount || (n == bestCount && size < best) {
			best, bestCount = size, n
		}
	}
	return float64(best)
}

// roundHalfEven rounds halves to the even neighbour: 10.5 -> 10, 11.5 -> 12.
func roundHalfEven(f float64) int {
	return int(math.RoundToEven(f))
}
