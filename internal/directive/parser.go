package directive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

const (
	headerOpenBracket          = "["
	unterminatedHeaderTemplate = "%s:%d: unterminated context header"
	emptyHeaderNameTemplate    = "%s:%d: context header has no name"
	openDirectiveFileTemplate  = "opening directive file %s: %w"
	readDirectiveFileTemplate  = "reading directive file %s: %w"
)

// headerLinePattern matches a context header line such as `[name]`.
var headerLinePattern = regexp.MustCompile(`^\s*\[([^\[\]]*)\]\s*$`)

// ContextNode is one directive scope: the root or a named child context.
type ContextNode struct {
	Name     string
	Tokens   []string
	Children []*ContextNode
}

// TokenizeWarning records a non-fatal tokenization failure encountered while parsing.
type TokenizeWarning struct {
	Source string
	Err    *TokenizeError
}

// String renders the warning with its source file coordinates.
func (warning TokenizeWarning) String() string {
	return fmt.Sprintf("%s: %v", warning.Source, warning.Err)
}

// ParseFile reads the directive file at path and returns the context tree.
// Tokenization failures are returned as warnings and contribute no tokens;
// structural failures (an unterminated header) abort the parse.
func ParseFile(path string) (*ContextNode, []TokenizeWarning, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return nil, nil, fmt.Errorf(openDirectiveFileTemplate, path, openError)
	}
	defer fileHandle.Close()
	return Parse(fileHandle, path)
}

// Parse consumes directive text from reader, attributing diagnostics to sourceName.
func Parse(reader io.Reader, sourceName string) (*ContextNode, []TokenizeWarning, error) {
	rootNode := &ContextNode{}
	currentNode := rootNode
	var warnings []TokenizeWarning

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		strippedLine := stripComment(line)
		trimmedLine := strings.TrimSpace(strippedLine)
		if trimmedLine == "" {
			continue
		}

		if headerMatch := headerLinePattern.FindStringSubmatch(strippedLine); headerMatch != nil {
			headerName := strings.TrimSpace(headerMatch[1])
			if headerName == "" {
				return nil, warnings, fmt.Errorf(emptyHeaderNameTemplate, sourceName, lineNumber)
			}
			childNode := &ContextNode{Name: headerName}
			rootNode.Children = append(rootNode.Children, childNode)
			currentNode = childNode
			continue
		}
		if strings.HasPrefix(trimmedLine, headerOpenBracket) {
			return nil, warnings, fmt.Errorf(unterminatedHeaderTemplate, sourceName, lineNumber)
		}

		lineTokens, tokenizeError := TokenizeLine(line, lineNumber)
		if tokenizeError != nil {
			warnings = append(warnings, TokenizeWarning{Source: sourceName, Err: tokenizeError})
			continue
		}
		currentNode.Tokens = append(currentNode.Tokens, lineTokens...)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, warnings, fmt.Errorf(readDirectiveFileTemplate, sourceName, scanError)
	}
	return rootNode, warnings, nil
}
