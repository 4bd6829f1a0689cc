package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/docoutline/cmd/docoutline/cmd"
	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/schema"
	"github.com/cucumber/godog"
)

// iRunCommand executes a docoutline command line in-process.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substitute(command)
	testCtx.LastCommand = command

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}
	if parts[0] != "docoutline" {
		return fmt.Errorf("unknown program %q", parts[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	root := cmd.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(parts[1:])

	start := time.Now()
	testCtx.LastError = root.ExecuteContext(ctx)
	testCtx.LastDuration = time.Since(start)
	testCtx.LastOutput = stdout.String()
	testCtx.LastStderr = stderr.String()
	return nil
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastError != nil {
		return fmt.Errorf("command %q failed: %w\nOutput: %s\nStderr: %s",
			testCtx.LastCommand, testCtx.LastError, testCtx.LastOutput, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastError == nil {
		return fmt.Errorf("command %q succeeded when it should have failed\nOutput: %s",
			testCtx.LastCommand, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(expected string) error {
	expected = testCtx.substitute(expected)
	if !strings.Contains(testCtx.LastOutput, expected) {
		return fmt.Errorf("output does not contain %q\nActual output: %s", expected, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldBe(doc *godog.DocString) error {
	expected := testCtx.substitute(doc.Content) + "\n"
	if testCtx.LastOutput != expected {
		return fmt.Errorf("output mismatch\nExpected:\n%s\nActual:\n%s", expected, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theErrorShouldMention(text string) error {
	if testCtx.LastError == nil {
		return fmt.Errorf("no error occurred, but expected error containing %q", text)
	}
	full := testCtx.LastError.Error() + " " + testCtx.LastStderr
	if !strings.Contains(strings.ToLower(full), strings.ToLower(text)) {
		return fmt.Errorf("error does not contain %q\nActual error: %s", text, full)
	}
	return nil
}

// record decodes the last command output, or the named file, as an outline
// record after validating it against the schema.
func (testCtx *TestContext) record(file string) (outline.Structure, error) {
	data := []byte(testCtx.LastOutput)
	if file != "" {
		var err error
		if data, err = os.ReadFile(testCtx.path(file)); err != nil {
			return outline.Structure{}, err
		}
	}
	if err := schema.Validate(data); err != nil {
		return outline.Structure{}, fmt.Errorf("invalid outline record: %w\n%s", err, data)
	}
	var st outline.Structure
	if err := json.Unmarshal(data, &st); err != nil {
		return outline.Structure{}, err
	}
	return st, nil
}

func (testCtx *TestContext) theOutputShouldBeAValidRecord() error {
	_, err := testCtx.record("")
	return err
}

func (testCtx *TestContext) theFileShouldBeAValidRecord(file string) error {
	_, err := testCtx.record(file)
	return err
}

func (testCtx *TestContext) titleShouldBe(file, want string) error {
	st, err := testCtx.record(file)
	if err != nil {
		return err
	}
	if st.Title != want {
		return fmt.Errorf("expected title %q, got %q", want, st.Title)
	}
	return nil
}

func (testCtx *TestContext) titleShouldStartWith(file, prefix string) error {
	st, err := testCtx.record(file)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(st.Title, prefix) {
		return fmt.Errorf("expected title starting with %q, got %q", prefix, st.Title)
	}
	return nil
}

// outlineShouldBe compares against a table with the columns level | text | page.
func (testCtx *TestContext) outlineShouldBe(file string, table *godog.Table) error {
	st, err := testCtx.record(file)
	if err != nil {
		return err
	}
	want := make([]outline.Entry, 0, len(table.Rows))
	for _, row := range table.Rows[1:] {
		if len(row.Cells) != 3 {
			return fmt.Errorf("outline table rows need 3 cells, got %d", len(row.Cells))
		}
		page, err := strconv.Atoi(strings.TrimSpace(row.Cells[2].Value))
		if err != nil {
			return err
		}
		want = append(want, outline.Entry{
			Level: outline.Level(strings.TrimSpace(row.Cells[0].Value)),
			Text:  strings.TrimSpace(row.Cells[1].Value),
			Page:  page,
		})
	}
	if len(want) != len(st.Outline) {
		return fmt.Errorf("expected %d headings, got %d: %+v", len(want), len(st.Outline), st.Outline)
	}
	for i := range want {
		if want[i] != st.Outline[i] {
			return fmt.Errorf("heading %d: expected %+v, got %+v", i+1, want[i], st.Outline[i])
		}
	}
	return nil
}

func (testCtx *TestContext) outlineShouldBeEmpty(file string) error {
	st, err := testCtx.record(file)
	if err != nil {
		return err
	}
	if len(st.Outline) != 0 {
		return fmt.Errorf("expected an empty outline, got %+v", st.Outline)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldNotExist(file string) error {
	if _, err := os.Stat(testCtx.path(file)); !os.IsNotExist(err) {
		return fmt.Errorf("file %s exists", file)
	}
	return nil
}

// RegisterCommandSteps registers the CLI steps. Record steps come in two
// forms: about the command output, and about a file written by it.
func (testCtx *TestContext) RegisterCommandSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should be:$`, testCtx.theOutputShouldBe)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)

	sc.Step(`^the output should be a valid outline record$`, testCtx.theOutputShouldBeAValidRecord)
	sc.Step(`^the title should be "([^"]*)"$`, func(want string) error {
		return testCtx.titleShouldBe("", want)
	})
	sc.Step(`^the title should start with "([^"]*)"$`, func(prefix string) error {
		return testCtx.titleShouldStartWith("", prefix)
	})
	sc.Step(`^the outline should be:$`, func(table *godog.Table) error {
		return testCtx.outlineShouldBe("", table)
	})
	sc.Step(`^the outline should be empty$`, func() error {
		return testCtx.outlineShouldBeEmpty("")
	})

	sc.Step(`^the file "([^"]*)" should be a valid outline record$`, testCtx.theFileShouldBeAValidRecord)
	sc.Step(`^the file "([^"]*)" should have title "([^"]*)"$`, testCtx.titleShouldBe)
	sc.Step(`^the file "([^"]*)" should have a title starting with "([^"]*)"$`, testCtx.titleShouldStartWith)
	sc.Step(`^the file "([^"]*)" should have the outline:$`, testCtx.outlineShouldBe)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
}
