// Package output renders outline structures as JSON, YAML, plain text or an
// HTML table of contents, and writes per-document result files.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/docoutline/internal/outline"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// ResultExt is the extension of files written by WriteFile.
const ResultExt = ".json"

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatText, FormatHTML}
}

// ParseFormat resolves a format name. "yml" and "txt" are accepted aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "text", "txt":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", name)
	}
}

// Encode writes st to w in format f.
func Encode(w io.Writer, st outline.Structure, f Format) error {
	switch f {
	case FormatJSON:
		return encodeJSON(w, st)
	case FormatYAML:
		return encodeYAML(w, st)
	case FormatText:
		return encodeText(w, st)
	case FormatHTML:
		return encodeHTML(w, st)
	default:
		return fmt.Errorf("unsupported output format: %s", f)
	}
}

// Marshal returns st encoded in format f.
func Marshal(st outline.Structure, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, st, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeJSON writes the compatibility format: four-space indent, non-ASCII
// text kept verbatim.
func encodeJSON(w io.Writer, st outline.Structure) error {
	if st.Outline == nil {
		st.Outline = []outline.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(st)
}

func encodeYAML(w io.Writer, st outline.Structure) error {
	if st.Outline == nil {
		st.Outline = []outline.Entry{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(st); err != nil {
		return err
	}
	return enc.Close()
}

// encodeText writes the title followed by one indented line per heading.
func encodeText(w io.Writer, st outline.Structure) error {
	var sb strings.Builder
	sb.WriteString(st.Title)
	sb.WriteString("\n")
	for _, e := range st.Outline {
		depth := max(e.Level.Depth(), 1)
		fmt.Fprintf(&sb, "%s%s %s (p. %d)\n", strings.Repeat("  ", depth), e.Level, e.Text, e.Page)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// OutputPath returns the result file path for source inside dir.
func OutputPath(dir, source string) string {
	return RecordPath(dir, filepath.Base(source))
}

// RecordPath returns the result file path for a document known by its path
// rel relative to an input root. Subdirectories of rel are kept below dir.
func RecordPath(dir, rel string) string {
	rel = filepath.Clean(rel)
	return filepath.Join(dir, strings.TrimSuffix(rel, filepath.Ext(rel))+ResultExt)
}

// WriteFile writes st as JSON to <dir>/<source base name>.json and returns
// the path written.
func WriteFile(dir, source string, st outline.Structure) (string, error) {
	path := OutputPath(dir, source)
	return path, WriteRecord(path, st)
}

// WriteRecord writes st as JSON to path, creating missing parent
// directories.
func WriteRecord(path string, st outline.Structure) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := Marshal(st, FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
