package readers

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// collapsedBlankLinesPattern folds runs of blank lines left by tag removal.
var collapsedBlankLinesPattern = regexp.MustCompile(`\n{3,}`)

// ReadHTML extracts readable text from an HTML document, discarding script,
// style, and navigation chrome.
func ReadHTML(path string) (string, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return "", openError
	}
	defer fileHandle.Close()

	document, parseError := goquery.NewDocumentFromReader(fileHandle)
	if parseError != nil {
		return "", fmt.Errorf("parsing HTML %s: %w", path, parseError)
	}
	document.Find("script, style, noscript, nav, header, footer").Remove()

	selection := document.Find("body")
	if selection.Length() == 0 {
		selection = document.Selection
	}

	var builder strings.Builder
	for _, line := range strings.Split(selection.Text(), "\n") {
		builder.WriteString(strings.TrimSpace(line))
		builder.WriteByte('\n')
	}
	collapsed := collapsedBlankLinesPattern.ReplaceAllString(builder.String(), "\n\n")
	return strings.TrimSpace(collapsed) + "\n", nil
}
