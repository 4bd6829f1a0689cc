package cmd

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty working and home directory so that no
// configuration file on the machine is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	return dir
}

// executeCommand runs a fresh command tree and returns stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writePlanPDF(t *testing.T, dir, name string) string {
	t.Helper()
	return testutil.WritePDF(t, dir, name,
		testutil.LetterPDFPage(
			testutil.CenteredPDFText("Project Plan", 60, 24, 612, false),
			testutil.PDFText{Text: "1. Overview", X: 72, Y: 200, Size: 10},
			testutil.PDFText{Text: "Some body text follows here.", X: 72, Y: 240, Size: 10},
		),
		testutil.LetterPDFPage(
			testutil.PDFText{Text: "1.1 Milestones", X: 72, Y: 100, Size: 10},
		),
	)
}

var planStructure = outline.Structure{
	Title: "Project Plan",
	Outline: []outline.Entry{
		{Level: outline.H1, Text: "1. Overview", Page: 1},
		{Level: outline.H2, Text: "1.1 Milestones", Page: 2},
	},
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "docoutline", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.NotEmpty(t, root.Long)
	assert.True(t, root.HasSubCommands())

	names := make([]string, 0, len(root.Commands()))
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"extract", "batch", "watch", "serve", "validate", "layout", "config", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "verbose", "log-level", "password"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRootCommandHelp(t *testing.T) {
	isolate(t)
	stdout, _, err := executeCommand(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "heading outline")
	assert.Contains(t, stdout, "Available Commands:")
	assert.Contains(t, stdout, "Usage:")
}

func TestRootCommandNoArgsShowsHelp(t *testing.T) {
	isolate(t)
	stdout, _, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Available Commands:")
}

func TestRootCommandVersionFlag(t *testing.T) {
	isolate(t)
	stdout, _, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "docoutline version dev")
}

func TestRootCommandInvalidFlag(t *testing.T) {
	isolate(t)
	_, stderr, err := executeCommand(t, "--invalid-flag")
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown flag")
}

func TestRootCommandInvalidLogLevel(t *testing.T) {
	isolate(t)
	_, _, err := executeCommand(t, "--log-level", "loud", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRootCommandConfigFile(t *testing.T) {
	dir := isolate(t)
	cfgPath := testutil.WriteFile(t, dir, "custom.yaml", []byte("output:\n  format: text\n"))
	pdf := writePlanPDF(t, dir, "plan.pdf")

	stdout, _, err := executeCommand(t, "--config", cfgPath, "extract", pdf)
	require.NoError(t, err)
	assert.Equal(t, "Project Plan\n  H1 1. Overview (p. 1)\n    H2 1.1 Milestones (p. 2)\n", stdout)
}

func TestRootCommandEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("DOCOUTLINE_OUTPUT_FORMAT", "yaml")
	pdf := writePlanPDF(t, dir, "plan.pdf")

	stdout, _, err := executeCommand(t, "extract", pdf)
	require.NoError(t, err)
	assert.Contains(t, stdout, "title: Project Plan\n")
}

func TestLogsGoToStderr(t *testing.T) {
	dir := isolate(t)
	pdf := writePlanPDF(t, dir, "plan.pdf")

	stdout, stderr, err := executeCommand(t, "--log-level", "debug", "extract", pdf)
	require.NoError(t, err)
	assert.NotContains(t, stdout, `"level"`)
	assert.Contains(t, stderr, `"msg":"Document processed"`)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	stdout, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "docoutline version dev\n")
	assert.Contains(t, stdout, "Commit: unknown\n")
}
