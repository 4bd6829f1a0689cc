package outline

import (
	"regexp"
	"strings"
)

var (
	// Dot leaders followed by a page number, as found in tables of contents.
	leaderSuffix = regexp.MustCompile(`\s*\.{3,}\s*\d+$`)

	ligatures = strings.NewReplacer("ﬀ", "ff", "ﬁ", "fi", "ﬂ", "fl")
)

// Normalize cleans text pulled from a layout block: whitespace runs become a
// single space, trailing dot leaders with page numbers are removed and the
// ff, fi and fl ligatures are expanded.
func Normalize(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	// "A ... 1 ... 2" sheds one leader per pass.
	for {
		stripped := leaderSuffix.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	return ligatures.Replace(s)
}
