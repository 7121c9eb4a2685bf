package readers_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/weave/internal/readers"
)

func writeTestFile(testingHandle *testing.T, directory string, name string, content []byte) string {
	testingHandle.Helper()
	filePath := filepath.Join(directory, name)
	if writeError := os.WriteFile(filePath, content, 0o644); writeError != nil {
		testingHandle.Fatalf("writing %s: %v", filePath, writeError)
	}
	return filePath
}

func TestReadPlainText(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "notes.txt", []byte("hello\n"))

	registry := readers.NewRegistry()
	content, readError := registry.Read(filePath)
	if readError != nil {
		testingHandle.Fatalf("unexpected read error: %v", readError)
	}
	if content != "hello\n" {
		testingHandle.Fatalf("unexpected content %q", content)
	}
}

func TestReadRejectsBinaryContent(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	filePath := writeTestFile(testingHandle, directory, "data.bin", []byte{0x00, 0x01, 0xff})

	registry := readers.NewRegistry()
	_, readError := registry.Read(filePath)
	if !errors.Is(readError, readers.ErrBinaryContent) {
		testingHandle.Fatalf("expected binary rejection, got %v", readError)
	}
}

func TestReadHTMLExtractsText(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	htmlDocument := `<html><head><title>t</title><style>body{color:red}</style></head>` +
		`<body><nav>menu</nav><script>var x = 1;</script><p>First paragraph.</p><p>Second paragraph.</p></body></html>`
	filePath := writeTestFile(testingHandle, directory, "page.html", []byte(htmlDocument))

	registry := readers.NewRegistry()
	content, readError := registry.Read(filePath)
	if readError != nil {
		testingHandle.Fatalf("unexpected read error: %v", readError)
	}
	if !strings.Contains(content, "First paragraph.") || !strings.Contains(content, "Second paragraph.") {
		testingHandle.Fatalf("expected paragraph text, got %q", content)
	}
	if strings.Contains(content, "var x = 1") || strings.Contains(content, "color:red") || strings.Contains(content, "menu") {
		testingHandle.Fatalf("expected script, style, and nav content removed, got %q", content)
	}
}

func TestReadMissingFile(testingHandle *testing.T) {
	registry := readers.NewRegistry()
	_, readError := registry.Read(filepath.Join(testingHandle.TempDir(), "absent.txt"))
	if readError == nil {
		testingHandle.Fatal("expected an error for a missing file")
	}
}
