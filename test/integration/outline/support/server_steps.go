package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/server"
	"github.com/cucumber/godog"
)

func (testCtx *TestContext) theOutlineServerIsRunning() error {
	srv, err := server.NewServer(server.Config{
		Options:     outline.DefaultOptions(),
		MaxUploadMB: 5,
		TimeoutSec:  30,
		Version:     "integration",
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	testCtx.HTTPServer = httptest.NewServer(srv.Handler())
	return nil
}

func (testCtx *TestContext) iRequest(path string) error {
	if testCtx.HTTPServer == nil {
		return fmt.Errorf("server is not running")
	}
	resp, err := http.Get(testCtx.HTTPServer.URL + path)
	if err != nil {
		return err
	}
	return testCtx.recordResponse(resp)
}

func (testCtx *TestContext) iUpload(name string) error {
	return testCtx.upload(name, "")
}

func (testCtx *TestContext) iUploadAs(name, format string) error {
	return testCtx.upload(name, format)
}

func (testCtx *TestContext) upload(name, format string) error {
	if testCtx.HTTPServer == nil {
		return fmt.Errorf("server is not running")
	}
	data, err := os.ReadFile(testCtx.path(name))
	if err != nil {
		return err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if format != "" {
		if err := mw.WriteField("format", format); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := http.Post(testCtx.HTTPServer.URL+"/v1/outline", mw.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	return testCtx.recordResponse(resp)
}

func (testCtx *TestContext) recordResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(data)
	testCtx.LastHTTPHeaders = make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

func (testCtx *TestContext) theResponseStatusShouldBe(code int) error {
	if testCtx.LastHTTPStatusCode != code {
		return fmt.Errorf("expected status %d, got %d\nBody: %s", code, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain %q\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseContentTypeShouldBe(prefix string) error {
	got := testCtx.LastHTTPHeaders["Content-Type"]
	if !strings.HasPrefix(got, prefix) {
		return fmt.Errorf("expected content type %q, got %q", prefix, got)
	}
	return nil
}

func (testCtx *TestContext) theResponseTitleShouldBe(want string) error {
	var st outline.Structure
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &st); err != nil {
		return fmt.Errorf("response is not an outline record: %w\nBody: %s", err, testCtx.LastHTTPResponse)
	}
	if st.Title != want {
		return fmt.Errorf("expected title %q, got %q", want, st.Title)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldHaveHeadings(n int) error {
	var st outline.Structure
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &st); err != nil {
		return fmt.Errorf("response is not an outline record: %w", err)
	}
	if len(st.Outline) != n {
		return fmt.Errorf("expected %d headings, got %d", n, len(st.Outline))
	}
	return nil
}

// RegisterServerSteps registers steps that talk to an in-process server.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the outline server is running$`, testCtx.theOutlineServerIsRunning)
	sc.Step(`^I request "([^"]*)"$`, testCtx.iRequest)
	sc.Step(`^I upload "([^"]*)"$`, testCtx.iUpload)
	sc.Step(`^I upload "([^"]*)" as "([^"]*)"$`, testCtx.iUploadAs)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response content type should be "([^"]*)"$`, testCtx.theResponseContentTypeShouldBe)
	sc.Step(`^the response title should be "([^"]*)"$`, testCtx.theResponseTitleShouldBe)
	sc.Step(`^the response should have (\d+) headings?$`, testCtx.theResponseShouldHaveHeadings)
}
