// Package directive turns directive files into context trees.
//
// A directive file is UTF-8 text. Blank lines and comment lines are ignored,
// `[name]` lines open a new child context, and every other line contributes
// CLI-style tokens to the current context.
package directive

import (
	"fmt"
	"strings"

	shlex "github.com/anmitsu/go-shlex"

	"github.com/temirov/weave/internal/options"
)

const (
	flagPrefix             = "-"
	addPathFlagToken       = "-a"
	schemeSeparator        = ':'
	lineCommentSlashes     = "//"
	lineCommentHash        = "#"
	lineCommentSemicolon   = ";"
	emptyValuePlaceholder  = ""
	tokenizeFailureMessage = "tokenizing line"
)

// TokenizeError describes a non-fatal tokenization failure with source coordinates.
type TokenizeError struct {
	Line    int
	Column  int
	Message string
}

// Error formats the tokenization failure with its line and column.
func (tokenizeError *TokenizeError) Error() string {
	return fmt.Sprintf("%s at line %d column %d", tokenizeError.Message, tokenizeError.Line, tokenizeError.Column)
}

// TokenizeLine converts one physical directive line into CLI-style tokens.
//
// Comments (`//`, `#`, `;`) are stripped unless they appear inside a quoted
// span; `//` is preserved when immediately preceded by `:` so URL schemes
// survive. A line whose first token does not start with the flag prefix is
// expanded into explicit add-path pairs. A trailing flag that expects a value
// receives an empty placeholder so the next line cannot be consumed as its
// value.
func TokenizeLine(line string, lineNumber int) ([]string, *TokenizeError) {
	strippedLine := stripComment(line)
	if strings.TrimSpace(strippedLine) == "" {
		return nil, nil
	}

	rawTokens, splitError := shlex.Split(strippedLine, true)
	if splitError != nil {
		return nil, &TokenizeError{
			Line:    lineNumber,
			Column:  unterminatedQuoteColumn(strippedLine),
			Message: fmt.Sprintf("%s: %v", tokenizeFailureMessage, splitError),
		}
	}
	if len(rawTokens) == 0 {
		return nil, nil
	}

	var tokens []string
	if strings.HasPrefix(rawTokens[0], flagPrefix) {
		tokens = rawTokens
	} else {
		for _, rawToken := range rawTokens {
			tokens = append(tokens, addPathFlagToken, rawToken)
		}
	}

	lastToken := tokens[len(tokens)-1]
	if options.FlagTakesValue(lastToken) {
		tokens = append(tokens, emptyValuePlaceholder)
	}
	return tokens, nil
}

// stripComment removes a trailing comment from a line, honoring quoted spans
// and the `://` scheme guard.
func stripComment(line string) string {
	var insideSingleQuote bool
	var insideDoubleQuote bool
	runes := []rune(line)
	for index := 0; index < len(runes); index++ {
		current := runes[index]
		switch {
		case current == '\'' && !insideDoubleQuote:
			insideSingleQuote = !insideSingleQuote
		case current == '"' && !insideSingleQuote:
			insideDoubleQuote = !insideDoubleQuote
		case insideSingleQuote || insideDoubleQuote:
			continue
		case current == '#' || current == ';':
			return string(runes[:index])
		case current == '/' && index+1 < len(runes) && runes[index+1] == '/':
			if index > 0 && runes[index-1] == schemeSeparator {
				index++
				continue
			}
			return string(runes[:index])
		}
	}
	return line
}

// unterminatedQuoteColumn locates the 1-based column of the quote character
// that opens an unterminated span, for error reporting.
func unterminatedQuoteColumn(line string) int {
	var quoteRune rune
	quoteColumn := 0
	for index, current := range line {
		if current != '\'' && current != '"' {
			continue
		}
		if quoteRune == 0 {
			quoteRune = current
			quoteColumn = index + 1
			continue
		}
		if current == quoteRune {
			quoteRune = 0
			quoteColumn = 0
		}
	}
	if quoteColumn > 0 {
		return quoteColumn
	}
	return 1
}
