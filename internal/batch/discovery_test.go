package batch

import (
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/docoutline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, testutil.WriteFile(t, dir, name, []byte("x")))
	}
	return paths
}

func pathsOf(docs []document) []string {
	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = d.Path
	}
	return paths
}

func TestDiscoverDocuments_EmptyArgs(t *testing.T) {
	files, err := discoverDocuments([]string{}, false, documentExtensions(false), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverDocuments_Directory(t *testing.T) {
	tempDir := testutil.CreateTempDir(t)
	touch(t, tempDir, "b.pdf", "a.PDF", "notes.txt", "layout.json")

	files, err := discoverDocuments([]string{tempDir}, false, documentExtensions(false), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tempDir, "a.PDF"), filepath.Join(tempDir, "b.pdf")}, pathsOf(files))
}

func TestDiscoverDocuments_IncludeLayouts(t *testing.T) {
	tempDir := testutil.CreateTempDir(t)
	touch(t, tempDir, "a.pdf", "layout.json", "notes.txt")

	files, err := discoverDocuments([]string{tempDir}, false, documentExtensions(true), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tempDir, "a.pdf"), filepath.Join(tempDir, "layout.json")}, pathsOf(files))
}

func TestDiscoverDocuments_Recursive(t *testing.T) {
	tempDir := testutil.CreateTempDir(t)
	subDir := filepath.Join(tempDir, "subdir")
	touch(t, tempDir, "root.pdf")
	touch(t, subDir, "sub.pdf", "sub.txt")

	files, err := discoverDocuments([]string{tempDir}, true, documentExtensions(false), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []document{
		{Path: filepath.Join(tempDir, "root.pdf"), Rel: "root.pdf"},
		{Path: filepath.Join(subDir, "sub.pdf"), Rel: filepath.Join("subdir", "sub.pdf")},
	}, files)

	files, err = discoverDocuments([]string{tempDir}, false, documentExtensions(false), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tempDir, "root.pdf")}, pathsOf(files))
}

func TestDiscoverDocuments_Patterns(t *testing.T) {
	tempDir := testutil.CreateTempDir(t)
	touch(t, tempDir, "report-2024.pdf", "report-draft.pdf", "invoice.pdf")

	files, err := discoverDocuments([]string{tempDir}, false, documentExtensions(false),
		[]string{"report-*"}, []string{"*draft*"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tempDir, "report-2024.pdf")}, pathsOf(files))
}

func TestDiscoverDocuments_ExplicitFilesAndDuplicates(t *testing.T) {
	tempDir := testutil.CreateTempDir(t)
	paths := touch(t, tempDir, "doc.pdf", "odd.bin")

	files, err := discoverDocuments([]string{paths[1], paths[0], tempDir}, false, documentExtensions(false), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []document{
		{Path: paths[0], Rel: "doc.pdf"},
		{Path: paths[1], Rel: "odd.bin"},
	}, files)
}

func TestDiscoverDocuments_MissingPath(t *testing.T) {
	_, err := discoverDocuments([]string{"/nonexistent/file.pdf"}, false, documentExtensions(false), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestShouldIncludeFile(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		include []string
		exclude []string
		want    bool
	}{
		{"no patterns", "/a/b.pdf", nil, nil, true},
		{"include match", "/a/b.pdf", []string{"*.pdf"}, nil, true},
		{"include miss", "/a/b.pdf", []string{"*.txt"}, nil, false},
		{"exclude wins", "/a/b.pdf", []string{"*.pdf"}, []string{"b.*"}, false},
		{"pattern on base name", "/reports/b.pdf", []string{"reports*"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldIncludeFile(tt.path, tt.include, tt.exclude))
		})
	}
}
