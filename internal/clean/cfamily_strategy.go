package clean

import (
	"regexp"
	"strings"
)

// cFamilyStrategy strips C-family comments with a hand-written quote/comment
// state machine, so comment markers inside string and character literals
// survive intact. Import-like lines are removed with a post-pass.
type cFamilyStrategy struct{}

var cFamilyImportLinePattern = regexp.MustCompile(`(?m)^\s*(#include\b.*|import\s+.*|export\s+.*from\s+.*)$\n?`)

func newCFamilyStrategy() *cFamilyStrategy {
	return &cFamilyStrategy{}
}

// scanState enumerates the lexical states of the comment scanner.
type scanState int

const (
	stateCode scanState = iota
	stateLineComment
	stateBlockComment
	stateStringLiteral
	stateCharLiteral
	stateTemplateLiteral
)

// Strip removes the requested constructs. Doc comments are `/** ... */`
// blocks and `///` lines; plain comment stripping subsumes them.
func (strategy *cFamilyStrategy) Strip(source string, options Options) string {
	result := source
	if options.StripComments || options.StripDocComments {
		docOnly := options.StripDocComments && !options.StripComments
		result = stripCFamilyComments(result, docOnly)
	}
	if options.StripImports {
		result = cFamilyImportLinePattern.ReplaceAllString(result, "")
	}
	return result
}

// stripCFamilyComments walks the source byte by byte. When docOnly is set,
// only `/** */` blocks and `///` line comments are removed.
func stripCFamilyComments(source string, docOnly bool) string {
	var builder strings.Builder
	builder.Grow(len(source))
	state := stateCode
	commentStart := 0
	commentIsDoc := false

	index := 0
	for index < len(source) {
		current := source[index]
		next := byte(0)
		if index+1 < len(source) {
			next = source[index+1]
		}

		switch state {
		case stateCode:
			switch {
			case current == '/' && next == '/':
				state = stateLineComment
				commentStart = index
				commentIsDoc = index+2 < len(source) && source[index+2] == '/'
				index += 2
				continue
			case current == '/' && next == '*':
				state = stateBlockComment
				commentStart = index
				commentIsDoc = index+2 < len(source) && source[index+2] == '*'
				index += 2
				continue
			case current == '"':
				state = stateStringLiteral
			case current == '\'':
				state = stateCharLiteral
			case current == '`':
				state = stateTemplateLiteral
			}
			builder.WriteByte(current)
			index++
		case stateLineComment:
			if current == '\n' {
				if docOnly && !commentIsDoc {
					builder.WriteString(source[commentStart:index])
				} else {
					trimCommentIndent(&builder)
				}
				builder.WriteByte('\n')
				state = stateCode
			}
			index++
		case stateBlockComment:
			if current == '*' && next == '/' {
				if docOnly && !commentIsDoc {
					builder.WriteString(source[commentStart : index+2])
				} else {
					trimCommentIndent(&builder)
				}
				state = stateCode
				index += 2
				continue
			}
			index++
		case stateStringLiteral:
			builder.WriteByte(current)
			if current == '\\' && index+1 < len(source) {
				builder.WriteByte(next)
				index += 2
				continue
			}
			if current == '"' {
				state = stateCode
			}
			index++
		case stateCharLiteral:
			builder.WriteByte(current)
			if current == '\\' && index+1 < len(source) {
				builder.WriteByte(next)
				index += 2
				continue
			}
			if current == '\'' {
				state = stateCode
			}
			index++
		case stateTemplateLiteral:
			builder.WriteByte(current)
			if current == '`' {
				state = stateCode
			}
			index++
		}
	}
	if state == stateLineComment && docOnly && !commentIsDoc {
		builder.WriteString(source[commentStart:])
	}
	return builder.String()
}

// trimCommentIndent drops whitespace already emitted for a line whose only
// content was a removed comment.
func trimCommentIndent(builder *strings.Builder) {
	written := builder.String()
	lineStart := strings.LastIndexByte(written, '\n') + 1
	if strings.TrimSpace(written[lineStart:]) != "" {
		return
	}
	trimmed := written[:lineStart]
	builder.Reset()
	builder.Grow(len(trimmed))
	builder.WriteString(trimmed)
}
