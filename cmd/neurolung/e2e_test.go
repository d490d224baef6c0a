package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

// binaryPath holds the path to the compiled binary (set once in TestMain)
var binaryPath string

// cliContext holds state for a single scenario
type cliContext struct {
	tmpDir   string
	exitCode int
	output   string
}

// buildBinary compiles the neurolung binary once
func buildBinary() (string, error) {
	tmpFile, err := os.CreateTemp("", "neurolung-test-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpFile.Close()

	_, thisFile, _, _ := runtime.Caller(0)

	cmd := exec.Command("go", "build", "-o", tmpFile.Name(), ".")
	cmd.Dir = filepath.Dir(thisFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("build failed: %w\n%s", err, stderr.String())
	}

	return tmpFile.Name(), nil
}

// TestMain compiles the binary once before running all tests
func TestMain(m *testing.M) {
	var err error
	binaryPath, err = buildBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build binary: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Remove(binaryPath)
	os.Exit(code)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	c := &cliContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tmpDir, err := os.MkdirTemp("", "neurolung-e2e-*")
		if err != nil {
			return ctx, err
		}
		c.tmpDir = tmpDir
		return ctx, nil
	})

	sc.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if c.tmpDir != "" {
			os.RemoveAll(c.tmpDir)
		}
		return ctx, nil
	})

	sc.Step(`^neurolung is built$`, c.neurolungIsBuilt)
	sc.Step(`^I run neurolung with "([^"]*)"$`, c.iRunNeurolungWith)
	sc.Step(`^the exit code should be (\d+)$`, c.theExitCodeShouldBe)
	sc.Step(`^the output should contain "([^"]*)"$`, c.theOutputShouldContain)
	sc.Step(`^"([^"]*)" should contain (\d+) DICOM files$`, c.shouldContainDICOMFiles)
	sc.Step(`^"([^"]*)" should exist$`, c.shouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, c.fileShouldContain)
}

func (c *cliContext) neurolungIsBuilt() error {
	if binaryPath == "" {
		return fmt.Errorf("binary not built")
	}
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		return fmt.Errorf("binary does not exist at %s", binaryPath)
	}
	return nil
}

func (c *cliContext) iRunNeurolungWith(args string) error {
	args = strings.ReplaceAll(args, "{tmpdir}", c.tmpDir)

	cmd := exec.Command(binaryPath, splitArgs(args)...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	c.output = output.String()

	if exitErr, ok := err.(*exec.ExitError); ok {
		c.exitCode = exitErr.ExitCode()
	} else if err != nil {
		return fmt.Errorf("failed to run command: %w", err)
	} else {
		c.exitCode = 0
	}
	return nil
}

func (c *cliContext) theExitCodeShouldBe(expected int) error {
	if c.exitCode != expected {
		return fmt.Errorf("expected exit code %d, got %d\nOutput:\n%s", expected, c.exitCode, c.output)
	}
	return nil
}

func (c *cliContext) theOutputShouldContain(expected string) error {
	if !strings.Contains(c.output, expected) {
		return fmt.Errorf("output does not contain %q\nOutput:\n%s", expected, c.output)
	}
	return nil
}

func (c *cliContext) shouldContainDICOMFiles(path string, count int) error {
	path = strings.ReplaceAll(path, "{tmpdir}", c.tmpDir)

	files, err := filepath.Glob(filepath.Join(path, "SL*.dcm"))
	if err != nil {
		return fmt.Errorf("failed to list DICOM files: %w", err)
	}
	if len(files) != count {
		return fmt.Errorf("expected %d DICOM files, found %d", count, len(files))
	}
	return nil
}

func (c *cliContext) shouldExist(path string) error {
	path = strings.ReplaceAll(path, "{tmpdir}", c.tmpDir)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	return nil
}

func (c *cliContext) fileShouldContain(path, expected string) error {
	path = strings.ReplaceAll(path, "{tmpdir}", c.tmpDir)

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !strings.Contains(string(data), expected) {
		return fmt.Errorf("%s does not contain %q", path, expected)
	}
	return nil
}

// splitArgs splits a command line string into arguments
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}
