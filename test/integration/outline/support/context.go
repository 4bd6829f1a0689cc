// Package support holds the godog step definitions of the outline feature
// suite. Commands run in-process against a fresh command tree.
package support

import (
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Command execution state
	LastCommand  string
	LastOutput   string
	LastStderr   string
	LastError    error
	LastDuration time.Duration

	// Test environment
	TempDir string

	// Server state
	HTTPServer         *httptest.Server
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    map[string]string
}

// NewTestContext creates a scenario context with its own temp directory.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "docoutline-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{
		TempDir: tempDir,
	}, nil
}

// Cleanup stops the server and removes the temp directory.
func (testCtx *TestContext) Cleanup() error {
	if testCtx.HTTPServer != nil {
		testCtx.HTTPServer.Close()
		testCtx.HTTPServer = nil
	}
	if err := os.RemoveAll(testCtx.TempDir); err != nil {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err)
	}
	return nil
}

// substitute expands {tmp} to the scenario's temp directory.
func (testCtx *TestContext) substitute(s string) string {
	return strings.ReplaceAll(s, "{tmp}", testCtx.TempDir)
}

// path resolves a scenario-relative file name.
func (testCtx *TestContext) path(name string) string {
	return testCtx.substitute("{tmp}/" + name)
}

// Register installs every step definition.
func (testCtx *TestContext) Register(sc *godog.ScenarioContext) {
	testCtx.RegisterDocumentSteps(sc)
	testCtx.RegisterCommandSteps(sc)
	testCtx.RegisterServerSteps(sc)
}
