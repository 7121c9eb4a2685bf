package utils_test

import (
	"testing"

	"github.com/temirov/weave/internal/utils"
)

func TestDeduplicateStrings(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "preserves first occurrence", input: []string{"a", "b", "a", "c", "b"}, expected: []string{"a", "b", "c"}},
		{name: "no duplicates", input: []string{"x", "y"}, expected: []string{"x", "y"}},
		{name: "empty input", input: nil, expected: nil},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subtestHandle *testing.T) {
			result := utils.DeduplicateStrings(testCase.input)
			if len(result) != len(testCase.expected) {
				subtestHandle.Fatalf("expected %v, got %v", testCase.expected, result)
			}
			for index, value := range testCase.expected {
				if result[index] != value {
					subtestHandle.Fatalf("expected %v, got %v", testCase.expected, result)
				}
			}
		})
	}
}

func TestContainsString(testingHandle *testing.T) {
	values := []string{"alpha", "beta"}
	if !utils.ContainsString(values, "beta") {
		testingHandle.Fatal("expected a match for beta")
	}
	if utils.ContainsString(values, "gamma") {
		testingHandle.Fatal("expected no match for gamma")
	}
}

func TestIsBinary(testingHandle *testing.T) {
	if utils.IsBinary([]byte("plain text\n")) {
		testingHandle.Fatal("expected text to be non-binary")
	}
	if !utils.IsBinary([]byte{0x00, 0x01, 0xff}) {
		testingHandle.Fatal("expected a null byte to mark binary content")
	}
	if utils.IsBinary(nil) {
		testingHandle.Fatal("expected empty content to be non-binary")
	}
	if !utils.IsBinary([]byte{0xc3, 0x28}) {
		testingHandle.Fatal("expected invalid UTF-8 to mark binary content")
	}
}
