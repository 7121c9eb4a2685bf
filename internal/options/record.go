// Package options parses context token lists into option records and merges
// records along the context tree.
package options

// Record is the flat option set of one context. Fields fall into five merge
// categories: list fields append and deduplicate, boolean fields OR, numeric
// fields override when present, string fields override when non-empty, and
// non-inherited fields always keep the child's own value.
type Record struct {
	// List fields.
	AddTokens         []string
	ExcludeTokens     []string
	IncludeSuffixes   []string
	ExcludeSuffixes   []string
	ReplaceSpecs      []string
	PreserveSpecs     []string
	LocalAssignments  []string
	GlobalAssignments []string

	// Boolean fields.
	CleanComments    bool
	StripDocComments bool
	StripImports     bool
	ListOnly         bool
	RelativePaths    bool
	EchoStdout       bool
	KeepFirstLine    bool

	// Tri-state flag pairs, raw as parsed. Normalize resolves each pair into
	// a single presence-tracked setting; the setting inherits as
	// override-if-present so a child can re-enable what a parent disabled.
	ShowHeadersFlag *bool
	HideHeadersFlag *bool
	KeepBlankFlag   *bool
	StripBlankFlag  *bool

	// Resolved tri-state settings; nil means neither pair member appeared.
	HeadersResolved    *bool
	BlankStripResolved *bool

	// Effective booleans produced by Normalize.
	ShowHeaders bool
	StripBlank  bool

	// Numeric fields.
	SliceStart *int
	SliceCount *int
	CrawlDepth *int
	MaxTokens  *int

	// String fields.
	Model              string
	ChildTemplatePath  string
	SystemPromptPath   string
	WorkingDirectory   string
	WorkspaceDirectory string

	// Non-inherited fields.
	OutputPath    string
	GenerateOnce  bool
	TemplatePath  string
	CopyClipboard bool
}

// Normalize resolves tri-state flag pairs into single effective booleans.
// The negative flag wins when both members of a pair are present.
func (record *Record) Normalize() {
	if record.HideHeadersFlag != nil && *record.HideHeadersFlag {
		disabled := false
		record.HeadersResolved = &disabled
	} else if record.ShowHeadersFlag != nil && *record.ShowHeadersFlag {
		enabled := true
		record.HeadersResolved = &enabled
	}
	record.ShowHeaders = true
	if record.HeadersResolved != nil {
		record.ShowHeaders = *record.HeadersResolved
	}

	if record.StripBlankFlag != nil && *record.StripBlankFlag {
		strip := true
		record.BlankStripResolved = &strip
	} else if record.KeepBlankFlag != nil && *record.KeepBlankFlag {
		keep := false
		record.BlankStripResolved = &keep
	}
	record.StripBlank = false
	if record.BlankStripResolved != nil {
		record.StripBlank = *record.BlankStripResolved
	}
}

// CrawlDepthValue returns the effective crawl depth, defaulting to zero.
func (record *Record) CrawlDepthValue() int {
	if record.CrawlDepth == nil {
		return 0
	}
	return *record.CrawlDepth
}

// Clone returns a deep copy of the record.
func (record *Record) Clone() *Record {
	copied := *record
	copied.AddTokens = cloneStrings(record.AddTokens)
	copied.ExcludeTokens = cloneStrings(record.ExcludeTokens)
	copied.IncludeSuffixes = cloneStrings(record.IncludeSuffixes)
	copied.ExcludeSuffixes = cloneStrings(record.ExcludeSuffixes)
	copied.ReplaceSpecs = cloneStrings(record.ReplaceSpecs)
	copied.PreserveSpecs = cloneStrings(record.PreserveSpecs)
	copied.LocalAssignments = cloneStrings(record.LocalAssignments)
	copied.GlobalAssignments = cloneStrings(record.GlobalAssignments)
	copied.ShowHeadersFlag = cloneBool(record.ShowHeadersFlag)
	copied.HideHeadersFlag = cloneBool(record.HideHeadersFlag)
	copied.KeepBlankFlag = cloneBool(record.KeepBlankFlag)
	copied.StripBlankFlag = cloneBool(record.StripBlankFlag)
	copied.HeadersResolved = cloneBool(record.HeadersResolved)
	copied.BlankStripResolved = cloneBool(record.BlankStripResolved)
	copied.SliceStart = cloneInt(record.SliceStart)
	copied.SliceCount = cloneInt(record.SliceCount)
	copied.CrawlDepth = cloneInt(record.CrawlDepth)
	copied.MaxTokens = cloneInt(record.MaxTokens)
	return &copied
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	copied := make([]string, len(values))
	copy(copied, values)
	return copied
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
