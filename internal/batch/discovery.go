package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// documentExtensions returns the file extensions picked up from directories.
func documentExtensions(includeLayouts bool) []string {
	if includeLayouts {
		return []string{".pdf", ".json"}
	}
	return []string{".pdf"}
}

// document is a discovered input. Rel is its path below the directory it
// was found in, or its base name when it was named explicitly.
type document struct {
	Path string
	Rel  string
}

// discoverDocuments finds all documents matching the given patterns. Files
// named explicitly are taken as they are; directories contribute only files
// with a document extension. The result is sorted by path and free of
// duplicates; the first argument that reaches a file decides its Rel.
func discoverDocuments(args []string, recursive bool, exts, includePatterns, excludePatterns []string) ([]document, error) {
	var docs []document

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			files, err := discoverInDirectory(arg, recursive, exts, includePatterns, excludePatterns)
			if err != nil {
				return nil, err
			}
			docs = append(docs, files...)
		} else if shouldIncludeFile(arg, includePatterns, excludePatterns) {
			docs = append(docs, document{Path: arg, Rel: filepath.Base(arg)})
		}
	}

	slices.SortStableFunc(docs, func(a, b document) int { return strings.Compare(a.Path, b.Path) })
	return slices.CompactFunc(docs, func(a, b document) bool { return a.Path == b.Path }), nil
}

// discoverInDirectory walks dir, descending into subdirectories only when
// recursive is set.
func discoverInDirectory(dir string, recursive bool, exts, includePatterns, excludePatterns []string) ([]document, error) {
	var files []document

	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if hasExtension(path, exts) && shouldIncludeFile(path, includePatterns, excludePatterns) {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, document{Path: path, Rel: rel})
		}

		return nil
	}

	return files, filepath.WalkDir(dir, walkFn)
}

func hasExtension(path string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}

// shouldIncludeFile determines if a file should be included based on include/exclude patterns.
func shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	// Check exclude patterns first
	if matchesAnyPattern(path, excludePatterns) {
		return false
	}

	// If no include patterns, include all (that aren't excluded)
	if len(includePatterns) == 0 {
		return true
	}

	return matchesAnyPattern(path, includePatterns)
}

// matchesAnyPattern matches the base name of path against shell patterns.
func matchesAnyPattern(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
