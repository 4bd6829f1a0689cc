package outline

import "sort"

// Resolve orders candidates by page and vertical position and keeps the
// first occurrence of every (text, page) pair.
func Resolve(candidates []Candidate) []Entry {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		return sorted[i].Y < sorted[j].Y
	})

	type key struct {
		text string
		page int
	}
	seen := make(map[key]struct{}, len(sorted))
	out := make([]Entry, 0, len(sorted))
	for _, c := range sorted {
		k := key{c.Text, c.Page}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, Entry{Level: c.Level, Text: c.Text, Page: c.Page})
	}
	return out
}
