package clean

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

const (
	goCommentNodeType = "comment"
	goImportNodeType  = "import_declaration"
)

// goDeclarationNodeTypes lists node types a doc comment can attach to.
var goDeclarationNodeTypes = map[string]struct{}{
	"function_declaration": {},
	"method_declaration":   {},
	"type_declaration":     {},
	"const_declaration":    {},
	"var_declaration":      {},
}

// goStrategy strips Go constructs using a tree-sitter syntax tree, so string
// literals can never be mistaken for comments.
type goStrategy struct {
	parser *sitter.Parser
}

func newGoStrategy() *goStrategy {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	return &goStrategy{parser: parser}
}

// byteRange is a half-open [start, end) span scheduled for removal.
type byteRange struct {
	start uint32
	end   uint32
}

// Strip removes the requested constructs from Go source. Parse failures
// return the source unchanged.
func (strategy *goStrategy) Strip(source string, options Options) string {
	sourceBytes := []byte(source)
	tree := strategy.parser.Parse(nil, sourceBytes)
	if tree == nil {
		return source
	}

	var removals []byteRange
	collectGoRemovals(tree.RootNode(), sourceBytes, options, &removals)
	if len(removals) == 0 {
		return source
	}
	return removeRanges(sourceBytes, removals)
}

// collectGoRemovals walks the tree gathering the byte ranges of comments,
// doc comments, and import declarations selected by options.
func collectGoRemovals(node *sitter.Node, source []byte, options Options, removals *[]byteRange) {
	childCount := int(node.ChildCount())
	var pendingComments []*sitter.Node
	for childIndex := 0; childIndex < childCount; childIndex++ {
		child := node.Child(childIndex)
		switch {
		case child.Type() == goCommentNodeType:
			pendingComments = append(pendingComments, child)
			if options.StripComments {
				*removals = append(*removals, nodeRange(child))
			}
			continue
		case child.Type() == goImportNodeType:
			if options.StripImports {
				*removals = append(*removals, nodeRange(child))
			}
		default:
			if options.StripDocComments && !options.StripComments {
				if _, isDeclaration := goDeclarationNodeTypes[child.Type()]; isDeclaration {
					appendDocCommentRun(pendingComments, child, removals)
				}
			}
		}
		pendingComments = nil
		collectGoRemovals(child, source, options, removals)
	}
}

// appendDocCommentRun marks a contiguous comment run as removable when its
// last comment ends on the line directly above the declaration.
func appendDocCommentRun(comments []*sitter.Node, declaration *sitter.Node, removals *[]byteRange) {
	if len(comments) == 0 {
		return
	}
	lastComment := comments[len(comments)-1]
	if lastComment.EndPoint().Row+1 != declaration.StartPoint().Row {
		return
	}
	runStart := len(comments) - 1
	for runStart > 0 && comments[runStart-1].EndPoint().Row+1 == comments[runStart].StartPoint().Row {
		runStart--
	}
	for _, comment := range comments[runStart:] {
		*removals = append(*removals, nodeRange(comment))
	}
}

func nodeRange(node *sitter.Node) byteRange {
	return byteRange{start: node.StartByte(), end: node.EndByte()}
}

// removeRanges deletes the given byte ranges from source. A removal that
// leaves only whitespace on its line takes the whole line with it.
func removeRanges(source []byte, removals []byteRange) string {
	sort.Slice(removals, func(left, right int) bool {
		return removals[left].start < removals[right].start
	})
	var builder strings.Builder
	builder.Grow(len(source))
	cursor := uint32(0)
	for _, removal := range removals {
		if removal.start < cursor {
			continue
		}
		builder.Write(source[cursor:removal.start])
		cursor = removal.end
		if lineIsBlankAround(source, removal) {
			cursor = skipPastNewline(source, removal.end)
			trimTrailingLineWhitespace(&builder)
		}
	}
	builder.Write(source[cursor:])
	return builder.String()
}

// lineIsBlankAround reports whether only whitespace precedes the removal on
// its starting line.
func lineIsBlankAround(source []byte, removal byteRange) bool {
	position := removal.start
	for position > 0 && source[position-1] != '\n' {
		if source[position-1] != ' ' && source[position-1] != '\t' {
			return false
		}
		position--
	}
	return true
}

func skipPastNewline(source []byte, position uint32) uint32 {
	for position < uint32(len(source)) {
		if source[position] == '\n' {
			return position + 1
		}
		if source[position] != ' ' && source[position] != '\t' && source[position] != '\r' {
			return position
		}
		position++
	}
	return position
}

// trimTrailingLineWhitespace drops indentation already written for a line
// whose only content was removed.
func trimTrailingLineWhitespace(builder *strings.Builder) {
	written := builder.String()
	trimmed := strings.TrimRight(written, " \t")
	if len(trimmed) == len(written) {
		return
	}
	builder.Reset()
	builder.Grow(len(trimmed))
	builder.WriteString(trimmed)
}
