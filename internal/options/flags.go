package options

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// AddFlagShort is the short add-path flag emitted for bare tokens.
	AddFlagShort = "-a"
	// VarFlagShort declares a context-local variable assignment.
	VarFlagShort = "-v"
	// VarFlagLong declares a context-local variable assignment.
	VarFlagLong = "--var"
	// GlobalFlagShort declares a variable assignment visible to descendants.
	GlobalFlagShort = "-g"
	// GlobalFlagLong declares a variable assignment visible to descendants.
	GlobalFlagLong = "--global"

	assignmentSeparator = "="

	unknownFlagWarningTemplate      = "unknown flag %q ignored"
	malformedAssignmentTemplate     = "malformed assignment %q ignored (expected NAME=VAL)"
	invalidNumericValueTemplate     = "invalid numeric value %q ignored"
	missingFlagValueWarningTemplate = "flag %s is missing its value"
)

// FlagSpec describes one directive flag: its canonical long name, aliases,
// whether it consumes a following value, and how a parsed value lands on a
// Record.
type FlagSpec struct {
	Name       string
	Aliases    []string
	TakesValue bool
	assign     func(record *Record, value string) error
}

var flagSpecs = []FlagSpec{
	{Name: "--add", Aliases: []string{AddFlagShort}, TakesValue: true,
		assign: appendTo(func(record *Record) *[]string { return &record.AddTokens })},
	{Name: "--exclude", Aliases: []string{"-x"}, TakesValue: true,
		assign: appendTo(func(record *Record) *[]string { return &record.ExcludeTokens })},
	{Name: "--suffix", Aliases: []string{"-s"}, TakesValue: true,
		assign: appendTo(func(record *Record) *[]string { return &record.IncludeSuffixes })},
	{Name: "--skip-suffix", Aliases: []string{"-S"}, TakesValue: true,
		assign: appendTo(func(record *Record) *[]string { return &record.ExcludeSuffixes })},
	{Name: "--replace", Aliases: []string{"-r"}, TakesValue: true,
		assign: appendTo(func(record *Record) *[]string { return &record.ReplaceSpecs })},
	{Name: "--preserve", Aliases: []string{"-P"}, TakesValue: true,
		assign: appendTo(func(record *Record) *[]string { return &record.PreserveSpecs })},
	{Name: VarFlagLong, Aliases: []string{VarFlagShort}, TakesValue: true,
		assign: appendAssignment(func(record *Record) *[]string { return &record.LocalAssignments })},
	{Name: GlobalFlagLong, Aliases: []string{GlobalFlagShort}, TakesValue: true,
		assign: appendAssignment(func(record *Record) *[]string { return &record.GlobalAssignments })},

	{Name: "--clean", assign: setBool(func(record *Record) *bool { return &record.CleanComments })},
	{Name: "--strip-docs", assign: setBool(func(record *Record) *bool { return &record.StripDocComments })},
	{Name: "--strip-imports", assign: setBool(func(record *Record) *bool { return &record.StripImports })},
	{Name: "--list-only", assign: setBool(func(record *Record) *bool { return &record.ListOnly })},
	{Name: "--relative", assign: setBool(func(record *Record) *bool { return &record.RelativePaths })},
	{Name: "--stdout", assign: setBool(func(record *Record) *bool { return &record.EchoStdout })},
	{Name: "--keep-first", assign: setBool(func(record *Record) *bool { return &record.KeepFirstLine })},

	{Name: "--headers", assign: setTriState(func(record *Record) **bool { return &record.ShowHeadersFlag })},
	{Name: "--no-headers", assign: setTriState(func(record *Record) **bool { return &record.HideHeadersFlag })},
	{Name: "--keep-blank", assign: setTriState(func(record *Record) **bool { return &record.KeepBlankFlag })},
	{Name: "--strip-blank", assign: setTriState(func(record *Record) **bool { return &record.StripBlankFlag })},

	{Name: "--start", TakesValue: true, assign: setInt(func(record *Record) **int { return &record.SliceStart })},
	{Name: "--count", TakesValue: true, assign: setInt(func(record *Record) **int { return &record.SliceCount })},
	{Name: "--crawl-depth", TakesValue: true, assign: setInt(func(record *Record) **int { return &record.CrawlDepth })},
	{Name: "--max-tokens", TakesValue: true, assign: setInt(func(record *Record) **int { return &record.MaxTokens })},

	{Name: "--model", TakesValue: true, assign: setString(func(record *Record) *string { return &record.Model })},
	{Name: "--child-template", TakesValue: true, assign: setString(func(record *Record) *string { return &record.ChildTemplatePath })},
	{Name: "--system-prompt", TakesValue: true, assign: setString(func(record *Record) *string { return &record.SystemPromptPath })},
	{Name: "--dir", TakesValue: true, assign: setString(func(record *Record) *string { return &record.WorkingDirectory })},
	{Name: "--workspace", TakesValue: true, assign: setString(func(record *Record) *string { return &record.WorkspaceDirectory })},

	{Name: "--output", Aliases: []string{"-o"}, TakesValue: true,
		assign: setString(func(record *Record) *string { return &record.OutputPath })},
	{Name: "--generate", assign: setBool(func(record *Record) *bool { return &record.GenerateOnce })},
	{Name: "--template", Aliases: []string{"-t"}, TakesValue: true,
		assign: setString(func(record *Record) *string { return &record.TemplatePath })},
	{Name: "--copy", assign: setBool(func(record *Record) *bool { return &record.CopyClipboard })},
}

// flagIndex maps every canonical name and alias onto its spec.
var flagIndex = buildFlagIndex()

func buildFlagIndex() map[string]*FlagSpec {
	index := make(map[string]*FlagSpec, len(flagSpecs)*2)
	for specPosition := range flagSpecs {
		spec := &flagSpecs[specPosition]
		index[spec.Name] = spec
		for _, alias := range spec.Aliases {
			index[alias] = spec
		}
	}
	return index
}

// LookupFlag resolves a token to its flag specification.
func LookupFlag(token string) (*FlagSpec, bool) {
	spec, found := flagIndex[token]
	return spec, found
}

// FlagTakesValue reports whether the token is a known flag that consumes a value.
func FlagTakesValue(token string) bool {
	spec, found := flagIndex[token]
	return found && spec.TakesValue
}

// CanonicalFlagName returns the canonical long name for a flag token, or the
// token itself when unknown.
func CanonicalFlagName(token string) string {
	if spec, found := flagIndex[token]; found {
		return spec.Name
	}
	return token
}

// IsAssignmentFlag reports whether the token declares a variable assignment.
func IsAssignmentFlag(token string) bool {
	canonical := CanonicalFlagName(token)
	return canonical == VarFlagLong || canonical == GlobalFlagLong
}

// IsFlagToken reports whether the token carries the flag prefix.
func IsFlagToken(token string) bool {
	return strings.HasPrefix(token, "-") && token != "-"
}

// Resolve parses a context's token list into an option record. Unknown flags
// and malformed values are reported as warnings and skipped; bare tokens are
// treated as add paths. The returned record is not yet normalized.
func Resolve(tokens []string) (*Record, []string) {
	record := &Record{}
	var warnings []string
	index := 0
	for index < len(tokens) {
		token := tokens[index]
		if !IsFlagToken(token) {
			record.AddTokens = append(record.AddTokens, token)
			index++
			continue
		}
		spec, known := LookupFlag(token)
		if !known {
			warnings = append(warnings, fmt.Sprintf(unknownFlagWarningTemplate, token))
			index++
			if index < len(tokens) && !IsFlagToken(tokens[index]) {
				index++
			}
			continue
		}
		value := ""
		if spec.TakesValue {
			if index+1 >= len(tokens) {
				warnings = append(warnings, fmt.Sprintf(missingFlagValueWarningTemplate, spec.Name))
				index++
				continue
			}
			value = tokens[index+1]
			index += 2
		} else {
			index++
		}
		if assignError := spec.assign(record, value); assignError != nil {
			warnings = append(warnings, assignError.Error())
		}
	}
	return record, warnings
}

func appendTo(field func(*Record) *[]string) func(*Record, string) error {
	return func(record *Record, value string) error {
		if value == "" {
			return nil
		}
		target := field(record)
		*target = append(*target, value)
		return nil
	}
}

func appendAssignment(field func(*Record) *[]string) func(*Record, string) error {
	return func(record *Record, value string) error {
		if value == "" {
			return nil
		}
		if !strings.Contains(value, assignmentSeparator) {
			return fmt.Errorf(malformedAssignmentTemplate, value)
		}
		target := field(record)
		*target = append(*target, value)
		return nil
	}
}

func setBool(field func(*Record) *bool) func(*Record, string) error {
	return func(record *Record, _ string) error {
		*field(record) = true
		return nil
	}
}

func setTriState(field func(*Record) **bool) func(*Record, string) error {
	return func(record *Record, _ string) error {
		enabled := true
		*field(record) = &enabled
		return nil
	}
}

func setInt(field func(*Record) **int) func(*Record, string) error {
	return func(record *Record, value string) error {
		parsed, parseError := strconv.Atoi(strings.TrimSpace(value))
		if parseError != nil {
			return fmt.Errorf(invalidNumericValueTemplate, value)
		}
		*field(record) = &parsed
		return nil
	}
}

func setString(field func(*Record) *string) func(*Record, string) error {
	return func(record *Record, value string) error {
		if value != "" {
			*field(record) = value
		}
		return nil
	}
}
