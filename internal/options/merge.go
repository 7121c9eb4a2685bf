package options

import "github.com/temirov/weave/internal/utils"

// mergePolicy is the closed set of per-field merge laws.
type mergePolicy int

const (
	policyListAppend mergePolicy = iota
	policyBooleanOr
	policyNumericOverride
	policyStringOverride
	policyTriStateOverride
)

// fieldMergeRule binds one record field to its merge policy through a typed
// accessor. Exactly one accessor is non-nil, matching the policy. Fields
// absent from this table are non-inherited and keep the child's own value.
type fieldMergeRule struct {
	identifier string
	policy     mergePolicy
	list       func(*Record) *[]string
	boolean    func(*Record) *bool
	numeric    func(*Record) **int
	text       func(*Record) *string
	triState   func(*Record) **bool
}

var fieldMergeRules = []fieldMergeRule{
	{identifier: "add", policy: policyListAppend, list: func(record *Record) *[]string { return &record.AddTokens }},
	{identifier: "exclude", policy: policyListAppend, list: func(record *Record) *[]string { return &record.ExcludeTokens }},
	{identifier: "suffix", policy: policyListAppend, list: func(record *Record) *[]string { return &record.IncludeSuffixes }},
	{identifier: "skip-suffix", policy: policyListAppend, list: func(record *Record) *[]string { return &record.ExcludeSuffixes }},
	{identifier: "replace", policy: policyListAppend, list: func(record *Record) *[]string { return &record.ReplaceSpecs }},
	{identifier: "preserve", policy: policyListAppend, list: func(record *Record) *[]string { return &record.PreserveSpecs }},
	{identifier: "var", policy: policyListAppend, list: func(record *Record) *[]string { return &record.LocalAssignments }},
	{identifier: "global", policy: policyListAppend, list: func(record *Record) *[]string { return &record.GlobalAssignments }},

	{identifier: "clean", policy: policyBooleanOr, boolean: func(record *Record) *bool { return &record.CleanComments }},
	{identifier: "strip-docs", policy: policyBooleanOr, boolean: func(record *Record) *bool { return &record.StripDocComments }},
	{identifier: "strip-imports", policy: policyBooleanOr, boolean: func(record *Record) *bool { return &record.StripImports }},
	{identifier: "list-only", policy: policyBooleanOr, boolean: func(record *Record) *bool { return &record.ListOnly }},
	{identifier: "relative", policy: policyBooleanOr, boolean: func(record *Record) *bool { return &record.RelativePaths }},
	{identifier: "stdout", policy: policyBooleanOr, boolean: func(record *Record) *bool { return &record.EchoStdout }},
	{identifier: "keep-first", policy: policyBooleanOr, boolean: func(record *Record) *bool { return &record.KeepFirstLine }},

	{identifier: "headers", policy: policyTriStateOverride, triState: func(record *Record) **bool { return &record.HeadersResolved }},
	{identifier: "blank", policy: policyTriStateOverride, triState: func(record *Record) **bool { return &record.BlankStripResolved }},

	{identifier: "start", policy: policyNumericOverride, numeric: func(record *Record) **int { return &record.SliceStart }},
	{identifier: "count", policy: policyNumericOverride, numeric: func(record *Record) **int { return &record.SliceCount }},
	{identifier: "crawl-depth", policy: policyNumericOverride, numeric: func(record *Record) **int { return &record.CrawlDepth }},
	{identifier: "max-tokens", policy: policyNumericOverride, numeric: func(record *Record) **int { return &record.MaxTokens }},

	{identifier: "model", policy: policyStringOverride, text: func(record *Record) *string { return &record.Model }},
	{identifier: "child-template", policy: policyStringOverride, text: func(record *Record) *string { return &record.ChildTemplatePath }},
	{identifier: "system-prompt", policy: policyStringOverride, text: func(record *Record) *string { return &record.SystemPromptPath }},
	{identifier: "dir", policy: policyStringOverride, text: func(record *Record) *string { return &record.WorkingDirectory }},
	{identifier: "workspace", policy: policyStringOverride, text: func(record *Record) *string { return &record.WorkspaceDirectory }},
}

// Merge combines a parent's effective record with a child's own record into
// the child's effective record and normalizes tri-state pairs. Neither input
// is mutated. A nil parent yields the normalized child alone, which is the
// root case.
func Merge(parentEffective *Record, childOwn *Record) *Record {
	result := childOwn.Clone()
	result.Normalize()
	if parentEffective == nil {
		return result
	}
	for _, rule := range fieldMergeRules {
		switch rule.policy {
		case policyListAppend:
			parentValues := *rule.list(parentEffective)
			childValues := *rule.list(result)
			merged := make([]string, 0, len(parentValues)+len(childValues))
			merged = append(merged, parentValues...)
			merged = append(merged, childValues...)
			*rule.list(result) = utils.DeduplicateStrings(merged)
		case policyBooleanOr:
			*rule.boolean(result) = *rule.boolean(parentEffective) || *rule.boolean(result)
		case policyNumericOverride:
			if *rule.numeric(result) == nil {
				*rule.numeric(result) = cloneInt(*rule.numeric(parentEffective))
			}
		case policyStringOverride:
			if *rule.text(result) == "" {
				*rule.text(result) = *rule.text(parentEffective)
			}
		case policyTriStateOverride:
			if *rule.triState(result) == nil {
				*rule.triState(result) = cloneBool(*rule.triState(parentEffective))
			}
		}
	}
	result.Normalize()
	return result
}
