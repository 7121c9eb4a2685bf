package pipeline

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestSplitSlashSegments(testingHandle *testing.T) {
	segments, splitError := splitSlashSegments(`/old/new/`)
	if splitError != nil {
		testingHandle.Fatalf("unexpected split error: %v", splitError)
	}
	if !reflect.DeepEqual(segments, []string{"old", "new"}) {
		testingHandle.Fatalf("unexpected segments %v", segments)
	}
}

func TestSplitSlashSegmentsEscapedDelimiter(testingHandle *testing.T) {
	segments, splitError := splitSlashSegments(`/a\/b/c/`)
	if splitError != nil {
		testingHandle.Fatalf("unexpected split error: %v", splitError)
	}
	if !reflect.DeepEqual(segments, []string{"a/b", "c"}) {
		testingHandle.Fatalf("unexpected segments %v", segments)
	}
}

func TestSplitSlashSegmentsRejectsMalformedSpecs(testingHandle *testing.T) {
	for _, spec := range []string{"old/new/", "/unterminated", "/"} {
		if _, splitError := splitSlashSegments(spec); splitError == nil {
			testingHandle.Fatalf("expected %q to be rejected", spec)
		}
	}
}

func TestParseReplaceSpecsSkipsMalformed(testingHandle *testing.T) {
	rules := parseReplaceSpecs([]string{"/good/better/", "broken", "/three/part/extra/"}, zap.NewNop())
	if len(rules) != 1 {
		testingHandle.Fatalf("expected only the well-formed spec, got %d rules", len(rules))
	}
}

func TestApplyReplaceRulesOrder(testingHandle *testing.T) {
	rules := parseReplaceSpecs([]string{"/cat/dog/", "/dog/bird/"}, zap.NewNop())
	result := applyReplaceRules("a cat here", rules, nil)
	if result != "a bird here" {
		testingHandle.Fatalf("expected rules to apply in order, got %q", result)
	}
}

func TestApplyReplaceRulesPreserveShield(testingHandle *testing.T) {
	rules := parseReplaceSpecs([]string{"/err/fault/"}, zap.NewNop())
	preserves := parsePreserveSpecs([]string{"/error_code/"}, zap.NewNop())
	result := applyReplaceRules("err in error_code and err", rules, preserves)
	if result != "fault in error_code and fault" {
		testingHandle.Fatalf("expected the preserved region to survive, got %q", result)
	}
}
