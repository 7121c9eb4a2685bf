package directive_test

import (
	"strings"
	"testing"

	"github.com/temirov/weave/internal/directive"
)

const parserTestSourceName = "directives.weave"

func TestParseBuildsContextTree(testingHandle *testing.T) {
	directiveText := strings.Join([]string{
		"-s .go",
		"./shared",
		"",
		"[api]",
		"./api -x ./api/vendor",
		"",
		"[docs] # documentation bundle",
		"./docs --no-headers",
	}, "\n")

	rootNode, warnings, parseError := directive.Parse(strings.NewReader(directiveText), parserTestSourceName)
	if parseError != nil {
		testingHandle.Fatalf("unexpected parse error: %v", parseError)
	}
	if len(warnings) != 0 {
		testingHandle.Fatalf("unexpected warnings: %v", warnings)
	}
	expectedRootTokens := []string{"-s", ".go", "-a", "./shared"}
	if len(rootNode.Tokens) != len(expectedRootTokens) {
		testingHandle.Fatalf("expected root tokens %v, got %v", expectedRootTokens, rootNode.Tokens)
	}
	for index, token := range expectedRootTokens {
		if rootNode.Tokens[index] != token {
			testingHandle.Fatalf("expected root tokens %v, got %v", expectedRootTokens, rootNode.Tokens)
		}
	}
	if len(rootNode.Children) != 2 {
		testingHandle.Fatalf("expected 2 children, got %d", len(rootNode.Children))
	}
	if rootNode.Children[0].Name != "api" || rootNode.Children[1].Name != "docs" {
		testingHandle.Fatalf("unexpected child names %q and %q", rootNode.Children[0].Name, rootNode.Children[1].Name)
	}
	apiTokens := rootNode.Children[0].Tokens
	if len(apiTokens) != 4 || apiTokens[0] != "-a" || apiTokens[1] != "./api" || apiTokens[2] != "-x" || apiTokens[3] != "./api/vendor" {
		testingHandle.Fatalf("unexpected api tokens %v", apiTokens)
	}
}

func TestParseRejectsUnterminatedHeader(testingHandle *testing.T) {
	_, _, parseError := directive.Parse(strings.NewReader("[api\n./api\n"), parserTestSourceName)
	if parseError == nil {
		testingHandle.Fatal("expected an unterminated header error")
	}
}

func TestParseRejectsEmptyHeaderName(testingHandle *testing.T) {
	_, _, parseError := directive.Parse(strings.NewReader("[]\n"), parserTestSourceName)
	if parseError == nil {
		testingHandle.Fatal("expected an empty header name error")
	}
}

func TestParseCollectsTokenizeWarnings(testingHandle *testing.T) {
	directiveText := "-v \"NOTE=unclosed\n[api]\n./api\n"
	rootNode, warnings, parseError := directive.Parse(strings.NewReader(directiveText), parserTestSourceName)
	if parseError != nil {
		testingHandle.Fatalf("unexpected parse error: %v", parseError)
	}
	if len(warnings) != 1 {
		testingHandle.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if len(rootNode.Tokens) != 0 {
		testingHandle.Fatalf("expected the failing line to contribute no tokens, got %v", rootNode.Tokens)
	}
	if len(rootNode.Children) != 1 || rootNode.Children[0].Name != "api" {
		testingHandle.Fatal("expected parsing to continue after the warning")
	}
}
