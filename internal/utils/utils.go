// Package utils provides shared helpers for logging, deduplication, binary
// detection, and build metadata.
package utils

// DeduplicateStrings removes duplicate values from a slice while preserving
// the first occurrence of each value.
func DeduplicateStrings(values []string) []string {
	valueSet := make(map[string]struct{}, len(values))
	var result []string
	for _, value := range values {
		if _, exists := valueSet[value]; exists {
			continue
		}
		valueSet[value] = struct{}{}
		result = append(result, value)
	}
	return result
}

// ContainsString reports whether the slice contains the exact value.
func ContainsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
