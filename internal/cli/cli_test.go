package cli

import (
	"reflect"
	"testing"

	"github.com/temirov/weave/internal/directive"
)

func TestSplitArguments(testingHandle *testing.T) {
	parsedLine, splitError := splitArguments([]string{
		"-f", "prompts.weave",
		"--config", "custom.yaml",
		"./src", "-s", ".go", "--clean",
	})
	if splitError != nil {
		testingHandle.Fatalf("unexpected split error: %v", splitError)
	}
	if parsedLine.directiveFilePath != "prompts.weave" {
		testingHandle.Fatalf("unexpected directive path %q", parsedLine.directiveFilePath)
	}
	if parsedLine.configurationFilePath != "custom.yaml" {
		testingHandle.Fatalf("unexpected configuration path %q", parsedLine.configurationFilePath)
	}
	if !reflect.DeepEqual(parsedLine.rootTokens, []string{"./src", "-s", ".go", "--clean"}) {
		testingHandle.Fatalf("unexpected root tokens %v", parsedLine.rootTokens)
	}
}

func TestSplitArgumentsVersionAndHelp(testingHandle *testing.T) {
	parsedLine, splitError := splitArguments([]string{"--version"})
	if splitError != nil || !parsedLine.showVersion {
		testingHandle.Fatalf("expected the version flag, got %+v (%v)", parsedLine, splitError)
	}
	parsedLine, splitError = splitArguments([]string{"-h"})
	if splitError != nil || !parsedLine.showHelp {
		testingHandle.Fatalf("expected the help flag, got %+v (%v)", parsedLine, splitError)
	}
}

func TestSplitArgumentsMissingValue(testingHandle *testing.T) {
	if _, splitError := splitArguments([]string{"./src", "-f"}); splitError == nil {
		testingHandle.Fatal("expected an error for a value-less --file")
	}
}

func TestValidateTreeRejectsFileFlagInDirectives(testingHandle *testing.T) {
	rootNode := &directive.ContextNode{
		Children: []*directive.ContextNode{
			{Name: "api", Tokens: []string{"--file", "other.weave"}},
		},
	}
	if validationError := validateTree(rootNode, false); validationError == nil {
		testingHandle.Fatal("expected the --file token to be rejected")
	}
}

func TestValidateTreeRejectsNestedGenerate(testingHandle *testing.T) {
	rootNode := &directive.ContextNode{
		Tokens: []string{"--generate"},
		Children: []*directive.ContextNode{
			{Name: "api", Children: []*directive.ContextNode{
				{Name: "inner", Tokens: []string{"--generate"}},
			}},
		},
	}
	if validationError := validateTree(rootNode, false); validationError == nil {
		testingHandle.Fatal("expected nested --generate to be rejected")
	}
}

func TestValidateTreeAllowsSiblingGenerate(testingHandle *testing.T) {
	rootNode := &directive.ContextNode{
		Children: []*directive.ContextNode{
			{Name: "api", Tokens: []string{"--generate"}},
			{Name: "docs", Tokens: []string{"--generate"}},
		},
	}
	if validationError := validateTree(rootNode, false); validationError != nil {
		testingHandle.Fatalf("expected sibling --generate to be allowed: %v", validationError)
	}
}
