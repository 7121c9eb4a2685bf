// Package readers converts discovered files into text, keyed by file suffix.
//
// Plain text is the default; HTML, PDF, and Excel workbooks get dedicated
// readers. The registry is the fixed contract the concatenation pipeline
// consumes; new formats register without touching the pipeline.
package readers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/weave/internal/utils"
)

// ErrBinaryContent marks files whose bytes are not representable as text.
var ErrBinaryContent = errors.New("binary content")

// Reader converts one file into text.
type Reader func(path string) (string, error)

// Registry resolves a Reader for a file path by suffix.
type Registry struct {
	bySuffix map[string]Reader
}

// NewRegistry constructs a Registry with the built-in readers.
func NewRegistry() *Registry {
	registry := &Registry{bySuffix: make(map[string]Reader)}
	registry.Register(".html", ReadHTML)
	registry.Register(".htm", ReadHTML)
	registry.Register(".pdf", ReadPDF)
	registry.Register(".xlsx", ReadExcel)
	registry.Register(".xlsm", ReadExcel)
	return registry
}

// Register installs a reader for the given suffix, replacing any previous one.
func (registry *Registry) Register(suffix string, reader Reader) {
	registry.bySuffix[strings.ToLower(suffix)] = reader
}

// Read converts the file at path into text using the suffix-matched reader,
// falling back to plain text with binary detection.
func (registry *Registry) Read(path string) (string, error) {
	if reader, found := registry.bySuffix[strings.ToLower(filepath.Ext(path))]; found {
		return reader(path)
	}
	return ReadPlainText(path)
}

// ReadPlainText reads the file as UTF-8 text. A bounded sniff of the leading
// bytes rejects binary files before the full read.
func ReadPlainText(path string) (string, error) {
	if utils.IsFileBinary(path) {
		return "", fmt.Errorf("%w: %s", ErrBinaryContent, path)
	}
	data, readError := os.ReadFile(path)
	if readError != nil {
		return "", readError
	}
	return string(data), nil
}
