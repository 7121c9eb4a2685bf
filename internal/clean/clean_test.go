package clean_test

import (
	"strings"
	"testing"

	"github.com/temirov/weave/internal/clean"
)

func TestStripBlankLines(testingHandle *testing.T) {
	source := "first\n\n  \t\nsecond\n"
	stripped := clean.StripBlankLines(source)
	if stripped != "first\nsecond" {
		testingHandle.Fatalf("unexpected result %q", stripped)
	}
}

func TestApplyWithoutRequestIsIdentity(testingHandle *testing.T) {
	registry := clean.NewRegistry()
	source := "# comment\nvalue = 1\n"
	if registry.Apply("settings.toml", source, clean.Options{}) != source {
		testingHandle.Fatal("expected unchanged source when nothing is requested")
	}
}

func TestApplyUnknownSuffixIsIdentity(testingHandle *testing.T) {
	registry := clean.NewRegistry()
	source := "% comment\n"
	if registry.Apply("paper.tex", source, clean.Options{StripComments: true}) != source {
		testingHandle.Fatal("expected unchanged source for an unregistered suffix")
	}
}

func TestPythonStrategy(testingHandle *testing.T) {
	registry := clean.NewRegistry()
	source := strings.Join([]string{
		`"""Module docstring."""`,
		"import os",
		"from sys import argv",
		"# a comment",
		"value = 1  # trailing",
		"print(value)",
	}, "\n")

	cleaned := registry.Apply("script.py", source, clean.Options{
		StripComments:    true,
		StripDocComments: true,
		StripImports:     true,
	})
	if strings.Contains(cleaned, "docstring") {
		testingHandle.Fatalf("expected the docstring to be removed, got %q", cleaned)
	}
	if strings.Contains(cleaned, "import") {
		testingHandle.Fatalf("expected imports to be removed, got %q", cleaned)
	}
	if strings.Contains(cleaned, "comment") || strings.Contains(cleaned, "trailing") {
		testingHandle.Fatalf("expected comments to be removed, got %q", cleaned)
	}
	if !strings.Contains(cleaned, "value = 1") || !strings.Contains(cleaned, "print(value)") {
		testingHandle.Fatalf("expected code to survive, got %q", cleaned)
	}
}

func TestHashStrategyKeepsCodeLines(testingHandle *testing.T) {
	registry := clean.NewRegistry()
	source := "# header\nkey: value # trailing note\nother: 2\n"
	cleaned := registry.Apply("config.yaml", source, clean.Options{StripComments: true})
	if strings.Contains(cleaned, "header") || strings.Contains(cleaned, "trailing") {
		testingHandle.Fatalf("expected comments to be removed, got %q", cleaned)
	}
	if !strings.Contains(cleaned, "key: value") || !strings.Contains(cleaned, "other: 2") {
		testingHandle.Fatalf("expected values to survive, got %q", cleaned)
	}
}

func TestCFamilyStrategy(testingHandle *testing.T) {
	registry := clean.NewRegistry()
	source := strings.Join([]string{
		"/** Doc block. */",
		`#include <stdio.h>`,
		"// line comment",
		"int main() {",
		`  printf("not // a comment");`,
		"  return 0; /* block */",
		"}",
	}, "\n")

	cleaned := registry.Apply("main.c", source, clean.Options{
		StripComments:    true,
		StripDocComments: true,
		StripImports:     true,
	})
	if strings.Contains(cleaned, "Doc block") || strings.Contains(cleaned, "line comment") || strings.Contains(cleaned, "block */") {
		testingHandle.Fatalf("expected comments to be removed, got %q", cleaned)
	}
	if strings.Contains(cleaned, "#include") {
		testingHandle.Fatalf("expected the include to be removed, got %q", cleaned)
	}
	if !strings.Contains(cleaned, `printf("not // a comment");`) {
		testingHandle.Fatalf("expected string contents to survive, got %q", cleaned)
	}
	if !strings.Contains(cleaned, "return 0;") {
		testingHandle.Fatalf("expected code to survive, got %q", cleaned)
	}
}

func TestCFamilyDocOnly(testingHandle *testing.T) {
	registry := clean.NewRegistry()
	source := "/// doc line\n// plain comment\nlet x = 1;\n"
	cleaned := registry.Apply("lib.rs", source, clean.Options{StripDocComments: true})
	if strings.Contains(cleaned, "doc line") {
		testingHandle.Fatalf("expected the doc comment to be removed, got %q", cleaned)
	}
	if !strings.Contains(cleaned, "plain comment") {
		testingHandle.Fatalf("expected the plain comment to survive, got %q", cleaned)
	}
}

func TestGoStrategy(testingHandle *testing.T) {
	registry := clean.NewRegistry()
	source := strings.Join([]string{
		"package sample",
		"",
		"import \"fmt\"",
		"",
		"// Greet prints a greeting.",
		"func Greet() {",
		"\t// say hello",
		"\tfmt.Println(\"hello\")",
		"}",
	}, "\n")

	cleaned := registry.Apply("sample.go", source, clean.Options{
		StripComments:    true,
		StripDocComments: true,
		StripImports:     true,
	})
	if strings.Contains(cleaned, "Greet prints") || strings.Contains(cleaned, "say hello") {
		testingHandle.Fatalf("expected comments to be removed, got %q", cleaned)
	}
	if strings.Contains(cleaned, "import") {
		testingHandle.Fatalf("expected the import to be removed, got %q", cleaned)
	}
	if !strings.Contains(cleaned, "func Greet() {") || !strings.Contains(cleaned, "fmt.Println") {
		testingHandle.Fatalf("expected code to survive, got %q", cleaned)
	}
}

func TestGoStrategyDocOnly(testingHandle *testing.T) {
	registry := clean.NewRegistry()
	source := strings.Join([]string{
		"package sample",
		"",
		"// Exported is documented.",
		"func Exported() {",
		"\t// inner note",
		"}",
	}, "\n")

	cleaned := registry.Apply("sample.go", source, clean.Options{StripDocComments: true})
	if strings.Contains(cleaned, "Exported is documented") {
		testingHandle.Fatalf("expected the doc comment to be removed, got %q", cleaned)
	}
	if !strings.Contains(cleaned, "// inner note") {
		testingHandle.Fatalf("expected the inner comment to survive, got %q", cleaned)
	}
}
