package clean

import "regexp"

// regexStrategy strips constructs using a per-language regex table.
type regexStrategy struct {
	commentPattern    *regexp.Regexp
	docCommentPattern *regexp.Regexp
	importPattern     *regexp.Regexp
}

var (
	hashCommentLinePattern  = regexp.MustCompile(`(?m)^\s*#.*$\n?`)
	hashCommentTrailPattern = regexp.MustCompile(`(?m)[ \t]+#[^'"]*$`)
	pythonDocstringPattern  = regexp.MustCompile(`(?ms)^\s*("""|''').*?("""|''')\s*$\n?`)
	pythonImportPattern     = regexp.MustCompile(`(?m)^\s*(import\s+.*|from\s+\S+\s+import\s+.*)$\n?`)
)

// newPythonStrategy builds the regex table for Python: hash comments,
// docstrings as the doc-comment equivalent, and import statements.
func newPythonStrategy() *regexStrategy {
	return &regexStrategy{
		commentPattern:    hashCommentLinePattern,
		docCommentPattern: pythonDocstringPattern,
		importPattern:     pythonImportPattern,
	}
}

// newHashCommentStrategy builds the regex table shared by shell, YAML, TOML,
// and Ruby sources, which only distinguish hash comments.
func newHashCommentStrategy() *regexStrategy {
	return &regexStrategy{
		commentPattern: hashCommentLinePattern,
	}
}

// Strip applies the requested table entries in order: doc comments, comments,
// imports.
func (strategy *regexStrategy) Strip(source string, options Options) string {
	result := source
	if options.StripDocComments && strategy.docCommentPattern != nil {
		result = strategy.docCommentPattern.ReplaceAllString(result, "")
	}
	if options.StripComments && strategy.commentPattern != nil {
		result = strategy.commentPattern.ReplaceAllString(result, "")
		result = hashCommentTrailPattern.ReplaceAllString(result, "")
	}
	if options.StripImports && strategy.importPattern != nil {
		result = strategy.importPattern.ReplaceAllString(result, "")
	}
	return result
}
