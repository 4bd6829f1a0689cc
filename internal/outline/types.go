// Package outline infers a document title and a three-level heading outline
// from page layout alone: font size statistics, numbering patterns, bold
// styling and position on the page.
package outline

import "fmt"

// Placeholder titles.
const (
	UntitledTitle    = "Untitled Document"
	EmptyTitle       = "Empty Document"
	ErrorTitlePrefix = "Error: "
)

// DefaultBodySize is the body font size assumed when a document has no text.
const DefaultBodySize = 10.0

// Level is a heading depth.
type Level string

// Heading levels, outermost first.
const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// Depth returns 1 for H1, 2 for H2, 3 for H3 and 0 otherwise.
func (l Level) Depth() int {
	switch l {
	case H1:
		return 1
	case H2:
		return 2
	case H3:
		return 3
	default:
		return 0
	}
}

// Candidate is a heading detection before ordering and deduplication.
type Candidate struct {
	Text  string
	Page  int
	Y     float64
	Level Level
}

// Entry is one heading of the final outline.
type Entry struct {
	Level Level  `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
	Page  int    `json:"page" yaml:"page"`
}

// Structure is the title and outline of one document. Field order is the
// serialized key order.
type Structure struct {
	Title   string  `json:"title" yaml:"title"`
	Outline []Entry `json:"outline" yaml:"outline"`
}

// ErrorStructure is the record emitted for a document that could not be read.
func ErrorStructure(err error) Structure {
	return Structure{Title: fmt.Sprintf("%s%v", ErrorTitlePrefix, err), Outline: []Entry{}}
}

// EmptyStructure is the record emitted for a document without pages.
func EmptyStructure() Structure {
	return Structure{Title: EmptyTitle, Outline: []Entry{}}
}
