package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	specDelimiter       = '/'
	specEscapeCharacter = '\\'
)

// replaceRule is one compiled `/pattern/replacement/` substitution.
type replaceRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// parseReplaceSpecs compiles replace specs, logging and skipping malformed
// entries.
func parseReplaceSpecs(specs []string, logger *zap.Logger) []replaceRule {
	var rules []replaceRule
	for _, spec := range specs {
		segments, segmentError := splitSlashSegments(spec)
		if segmentError != nil || len(segments) != 2 {
			logger.Warn("skipping malformed replace spec", zap.String("spec", spec))
			continue
		}
		pattern, compileError := regexp.Compile(segments[0])
		if compileError != nil {
			logger.Warn("skipping invalid replace pattern",
				zap.String("spec", spec), zap.Error(compileError))
			continue
		}
		rules = append(rules, replaceRule{pattern: pattern, replacement: segments[1]})
	}
	return rules
}

// parsePreserveSpecs compiles preserve specs (`/pattern/`), logging and
// skipping malformed entries.
func parsePreserveSpecs(specs []string, logger *zap.Logger) []*regexp.Regexp {
	var rules []*regexp.Regexp
	for _, spec := range specs {
		segments, segmentError := splitSlashSegments(spec)
		if segmentError != nil || len(segments) < 1 || segments[0] == "" {
			logger.Warn("skipping malformed preserve spec", zap.String("spec", spec))
			continue
		}
		pattern, compileError := regexp.Compile(segments[0])
		if compileError != nil {
			logger.Warn("skipping invalid preserve pattern",
				zap.String("spec", spec), zap.Error(compileError))
			continue
		}
		rules = append(rules, pattern)
	}
	return rules
}

// splitSlashSegments splits a `/a/b/` style spec into its segments, honoring
// `\/` escapes inside segments.
func splitSlashSegments(spec string) ([]string, error) {
	if len(spec) < 2 || spec[0] != specDelimiter {
		return nil, fmt.Errorf("spec %q must start with %q", spec, string(specDelimiter))
	}
	var segments []string
	var current strings.Builder
	escaped := false
	for _, character := range spec[1:] {
		switch {
		case escaped:
			if character != rune(specDelimiter) {
				current.WriteByte(specEscapeCharacter)
			}
			current.WriteRune(character)
			escaped = false
		case character == rune(specEscapeCharacter):
			escaped = true
		case character == rune(specDelimiter):
			segments = append(segments, current.String())
			current.Reset()
		default:
			current.WriteRune(character)
		}
	}
	if escaped || current.Len() > 0 {
		return nil, fmt.Errorf("spec %q is not terminated", spec)
	}
	return segments, nil
}

// applyReplaceRules applies every replace rule in order. Regions matched by a
// preserve rule are shielded with placeholders before substitution and
// restored afterwards.
func applyReplaceRules(content string, rules []replaceRule, preserveRules []*regexp.Regexp) string {
	if len(rules) == 0 {
		return content
	}

	var preservedRegions []string
	shielded := content
	for _, preservePattern := range preserveRules {
		shielded = preservePattern.ReplaceAllStringFunc(shielded, func(region string) string {
			placeholder := fmt.Sprintf("\x00%d\x00", len(preservedRegions))
			preservedRegions = append(preservedRegions, region)
			return placeholder
		})
	}

	for _, rule := range rules {
		shielded = rule.pattern.ReplaceAllString(shielded, rule.replacement)
	}

	for regionIndex := len(preservedRegions) - 1; regionIndex >= 0; regionIndex-- {
		placeholder := fmt.Sprintf("\x00%d\x00", regionIndex)
		shielded = strings.Replace(shielded, placeholder, preservedRegions[regionIndex], 1)
	}
	return shielded
}
