package pipeline_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/temirov/weave/internal/clean"
	"github.com/temirov/weave/internal/pipeline"
	"github.com/temirov/weave/internal/readers"
)

func newTestPipeline() *pipeline.Pipeline {
	return pipeline.New(readers.NewRegistry(), clean.NewRegistry(), zap.NewNop())
}

func writeTestFile(testingHandle *testing.T, directory string, name string, content string) string {
	testingHandle.Helper()
	filePath := filepath.Join(directory, name)
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("writing %s: %v", filePath, writeError)
	}
	return filePath
}

func baseSettings() pipeline.Settings {
	return pipeline.Settings{
		ShowHeaders:     true,
		SeenHeaderPaths: make(map[string]struct{}),
	}
}

func TestConcatenateEmitsBannersOnce(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "a.txt", "alpha\n")

	testPipeline := newTestPipeline()
	settings := baseSettings()
	output := testPipeline.Concatenate([]string{filePath, filePath}, settings)

	if strings.Count(output, "===== ") != 1 {
		testingHandle.Fatalf("expected one banner, got %q", output)
	}
	if strings.Count(output, "alpha") != 2 {
		testingHandle.Fatalf("expected the content twice, got %q", output)
	}
	expectedBanner := fmt.Sprintf("===== %s =====\n", filePath)
	if !strings.HasPrefix(output, expectedBanner) {
		testingHandle.Fatalf("unexpected banner in %q", output)
	}
}

func TestConcatenateHidesBanners(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "a.txt", "alpha\n")

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.ShowHeaders = false
	output := testPipeline.Concatenate([]string{filePath}, settings)
	if output != "alpha\n" {
		testingHandle.Fatalf("expected bare content, got %q", output)
	}
}

func TestConcatenateRelativePaths(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "a.txt", "alpha\n")

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.RelativePaths = true
	settings.BaseDirectory = directory
	output := testPipeline.Concatenate([]string{filePath}, settings)
	if !strings.HasPrefix(output, "===== a.txt =====\n") {
		testingHandle.Fatalf("expected a relative banner, got %q", output)
	}
}

func TestConcatenateListOnly(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	firstPath := writeTestFile(testingHandle, directory, "a.txt", "alpha\n")
	secondPath := writeTestFile(testingHandle, directory, "b.txt", "beta\n")

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.ListOnly = true
	output := testPipeline.Concatenate([]string{firstPath, secondPath}, settings)
	if output != firstPath+"\n"+secondPath+"\n" {
		testingHandle.Fatalf("expected a bare path list, got %q", output)
	}
}

func TestConcatenateSuffixFilters(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	goPath := writeTestFile(testingHandle, directory, "main.go", "package main\n")
	minifiedPath := writeTestFile(testingHandle, directory, "bundle.min.js", "x\n")
	textPath := writeTestFile(testingHandle, directory, "notes.txt", "note\n")

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.ShowHeaders = false
	settings.IncludeSuffixes = []string{".go", ".js"}
	settings.ExcludeSuffixes = []string{".min.js"}
	output := testPipeline.Concatenate([]string{goPath, minifiedPath, textPath}, settings)
	if !strings.Contains(output, "package main") {
		testingHandle.Fatalf("expected the go file, got %q", output)
	}
	if strings.Contains(output, "x\n") || strings.Contains(output, "note") {
		testingHandle.Fatalf("expected filtered files to be absent, got %q", output)
	}
}

func TestConcatenateSkipsUnreadableFiles(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	goodPath := writeTestFile(testingHandle, directory, "good.txt", "ok\n")
	missingPath := filepath.Join(directory, "missing.txt")

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.ShowHeaders = false
	output := testPipeline.Concatenate([]string{missingPath, goodPath}, settings)
	if output != "ok\n" {
		testingHandle.Fatalf("expected the surviving file only, got %q", output)
	}
}

func numberedLines(total int) string {
	var builder strings.Builder
	for lineNumber := 1; lineNumber <= total; lineNumber++ {
		fmt.Fprintf(&builder, "line %d\n", lineNumber)
	}
	return builder.String()
}

func intPointer(value int) *int {
	pointer := value
	return &pointer
}

func TestConcatenateSlicesLines(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "big.txt", numberedLines(150))

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.ShowHeaders = false
	settings.SliceStart = intPointer(50)
	settings.SliceCount = intPointer(10)

	output := testPipeline.Concatenate([]string{filePath}, settings)
	outputLines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	if len(outputLines) != 10 {
		testingHandle.Fatalf("expected 10 lines, got %d: %q", len(outputLines), output)
	}
	if outputLines[0] != "line 50" || outputLines[9] != "line 59" {
		testingHandle.Fatalf("unexpected slice bounds: %q .. %q", outputLines[0], outputLines[9])
	}
}

func TestConcatenateKeepFirstLine(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "big.txt", numberedLines(150))

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.ShowHeaders = false
	settings.SliceStart = intPointer(50)
	settings.SliceCount = intPointer(10)
	settings.KeepFirstLine = true

	output := testPipeline.Concatenate([]string{filePath}, settings)
	outputLines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	if len(outputLines) != 11 {
		testingHandle.Fatalf("expected 11 lines, got %d", len(outputLines))
	}
	if outputLines[0] != "line 1" || outputLines[1] != "line 50" {
		testingHandle.Fatalf("unexpected leading lines: %q, %q", outputLines[0], outputLines[1])
	}
	seenLines := make(map[string]struct{}, len(outputLines))
	for _, line := range outputLines {
		if _, duplicate := seenLines[line]; duplicate {
			testingHandle.Fatalf("duplicate line %q", line)
		}
		seenLines[line] = struct{}{}
	}
}

func TestConcatenateKeepFirstAtRangeStart(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "big.txt", numberedLines(5))

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.ShowHeaders = false
	settings.SliceStart = intPointer(1)
	settings.SliceCount = intPointer(3)
	settings.KeepFirstLine = true

	output := testPipeline.Concatenate([]string{filePath}, settings)
	outputLines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	if len(outputLines) != 3 || outputLines[0] != "line 1" {
		testingHandle.Fatalf("expected no duplicated first line, got %v", outputLines)
	}
}

func TestConcatenateSliceBeyondEnd(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "small.txt", numberedLines(3))

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.ShowHeaders = false
	settings.SliceStart = intPointer(10)
	settings.SliceCount = intPointer(5)

	output := testPipeline.Concatenate([]string{filePath}, settings)
	if output != "\n" {
		testingHandle.Fatalf("expected empty sliced content, got %q", output)
	}
}

func TestConcatenateStripBlank(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "spaced.txt", "one\n\n\ntwo\n")

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.ShowHeaders = false
	settings.StripBlank = true
	output := testPipeline.Concatenate([]string{filePath}, settings)
	if output != "one\ntwo\n" {
		testingHandle.Fatalf("expected blank lines removed, got %q", output)
	}
}

func TestConcatenateReplaceAndPreserve(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "body.txt", "alpha beta alphabet\n")

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.ShowHeaders = false
	settings.ReplaceSpecs = []string{"/alpha/omega/"}
	settings.PreserveSpecs = []string{"/alphabet/"}
	output := testPipeline.Concatenate([]string{filePath}, settings)
	if output != "omega beta alphabet\n" {
		testingHandle.Fatalf("expected preserve to shield the longer word, got %q", output)
	}
}

func TestConcatenateCleansBySuffix(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "script.py", "# comment\nvalue = 1\n")

	testPipeline := newTestPipeline()
	settings := baseSettings()
	settings.ShowHeaders = false
	settings.CleanOptions = clean.Options{StripComments: true}
	output := testPipeline.Concatenate([]string{filePath}, settings)
	if strings.Contains(output, "comment") || !strings.Contains(output, "value = 1") {
		testingHandle.Fatalf("expected the comment stripped and code kept, got %q", output)
	}
}
