package readers

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ReadPDF extracts the plain text of a PDF document.
func ReadPDF(path string) (string, error) {
	fileHandle, document, openError := pdf.Open(path)
	if openError != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, openError)
	}
	defer fileHandle.Close()

	textReader, textError := document.GetPlainText()
	if textError != nil {
		return "", fmt.Errorf("extracting text from PDF %s: %w", path, textError)
	}
	var buffer bytes.Buffer
	if _, copyError := buffer.ReadFrom(textReader); copyError != nil {
		return "", fmt.Errorf("reading text from PDF %s: %w", path, copyError)
	}
	return buffer.String(), nil
}
