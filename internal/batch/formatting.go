package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/docoutline/internal/outline"
)

// formatBatchResults formats the batch summary in the specified format.
func formatBatchResults(r *Result, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(r)
	case "csv":
		return formatCSV(r)
	default: // text
		return formatText(r)
	}
}

// formatJSON formats the run as JSON.
func formatJSON(r *Result) (string, error) {
	bts, err := json.MarshalIndent(r, "", "  ")
	return string(bts), err
}

// formatCSV writes one row per heading, or one row per document without
// headings.
func formatCSV(r *Result) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)

	if err := writer.Write([]string{"file", "title", "index", "level", "text", "page", "error"}); err != nil {
		return "", err
	}

	for _, d := range r.Documents {
		if len(d.Structure.Outline) == 0 {
			if err := writer.Write([]string{d.File, d.Structure.Title, "", "", "", "", d.Error}); err != nil {
				return "", err
			}
			continue
		}
		for j, e := range d.Structure.Outline {
			row := []string{d.File, d.Structure.Title, strconv.Itoa(j), string(e.Level), e.Text, strconv.Itoa(e.Page), d.Error}
			if err := writer.Write(row); err != nil {
				return "", err
			}
		}
	}

	writer.Flush()
	return output.String(), writer.Error()
}

// formatText lists each document with its title and heading tree.
func formatText(r *Result) (string, error) {
	var output strings.Builder
	for i, d := range r.Documents {
		if i > 0 {
			output.WriteString("\n")
		}
		output.WriteString(fmt.Sprintf("# %s\n", d.File))
		if d.Failed() {
			output.WriteString(fmt.Sprintf("! %s\n", d.Error))
			continue
		}
		output.WriteString(d.Structure.Title + "\n")
		for _, e := range d.Structure.Outline {
			output.WriteString(fmt.Sprintf("%s%s %s (p. %d)\n", indent(e.Level), e.Level, e.Text, e.Page))
		}
	}
	return output.String(), nil
}

func indent(l outline.Level) string {
	return strings.Repeat("  ", max(l.Depth(), 1))
}
