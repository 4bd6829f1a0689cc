package outline_test

import (
	"testing"

	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestResolve_DeduplicatesPerPage(t *testing.T) {
	got := outline.Resolve([]outline.Candidate{
		{Text: "Summary", Page: 3, Y: 40, Level: outline.H2},
		{Text: "Summary", Page: 3, Y: 700, Level: outline.H2},
		{Text: "Summary", Page: 4, Y: 40, Level: outline.H2},
	})

	assert.Equal(t, []outline.Entry{
		{Level: outline.H2, Text: "Summary", Page: 3},
		{Level: outline.H2, Text: "Summary", Page: 4},
	}, got)
}

func TestResolve_OrdersByPageThenY(t *testing.T) {
	got := outline.Resolve([]outline.Candidate{
		{Text: "c", Page: 3, Y: 10, Level: outline.H1},
		{Text: "b", Page: 2, Y: 500, Level: outline.H3},
		{Text: "a", Page: 2, Y: 100, Level: outline.H2},
	})

	assert.Equal(t, []outline.Entry{
		{Level: outline.H2, Text: "a", Page: 2},
		{Level: outline.H3, Text: "b", Page: 2},
		{Level: outline.H1, Text: "c", Page: 3},
	}, got)
}

func TestResolve_KeepsFirstAfterSorting(t *testing.T) {
	got := outline.Resolve([]outline.Candidate{
		{Text: "Scope", Page: 1, Y: 300, Level: outline.H3},
		{Text: "Scope", Page: 1, Y: 100, Level: outline.H1},
	})

	assert.Equal(t, []outline.Entry{{Level: outline.H1, Text: "Scope", Page: 1}}, got)
}

func TestResolve_Empty(t *testing.T) {
	got := outline.Resolve(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResolve_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	genCandidate := gopter.CombineGens(
		gen.OneConstOf("Intro", "Summary", "Methods", "Results"),
		gen.IntRange(1, 4),
		gen.Float64Range(0, 800),
		gen.OneConstOf(outline.H1, outline.H2, outline.H3),
	).Map(func(v []interface{}) outline.Candidate {
		return outline.Candidate{
			Text:  v[0].(string),
			Page:  v[1].(int),
			Y:     v[2].(float64),
			Level: v[3].(outline.Level),
		}
	})

	properties.Property("pages never decrease", prop.ForAll(
		func(cs []outline.Candidate) bool {
			out := outline.Resolve(cs)
			for i := 1; i < len(out); i++ {
				if out[i].Page < out[i-1].Page {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genCandidate),
	))

	properties.Property("(text, page) pairs are unique and all present", prop.ForAll(
		func(cs []outline.Candidate) bool {
			type key struct {
				text string
				page int
			}
			want := map[key]bool{}
			for _, c := range cs {
				want[key{c.Text, c.Page}] = true
			}
			out := outline.Resolve(cs)
			seen := map[key]bool{}
			for _, e := range out {
				k := key{e.Text, e.Page}
				if seen[k] || !want[k] {
					return false
				}
				seen[k] = true
			}
			return len(seen) == len(want)
		},
		gen.SliceOf(genCandidate),
	))

	properties.Property("input is not modified", prop.ForAll(
		func(cs []outline.Candidate) bool {
			before := append([]outline.Candidate(nil), cs...)
			outline.Resolve(cs)
			for i := range cs {
				if cs[i] != before[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genCandidate),
	))

	properties.TestingRun(t)
}
