// Package pipeline transforms and concatenates discovered files: per-file
// line slicing, language-aware cleaning, regex replace with preserve shields,
// and header banners.
package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/weave/internal/clean"
	"github.com/temirov/weave/internal/readers"
	"github.com/temirov/weave/internal/types"
)

// Settings configures one concatenation pass. SeenHeaderPaths is shared
// run-scoped state: a banner is emitted only for the first appearance of a
// resolved path within a run.
type Settings struct {
	ShowHeaders     bool
	RelativePaths   bool
	BaseDirectory   string
	ListOnly        bool
	SliceStart      *int
	SliceCount      *int
	KeepFirstLine   bool
	StripBlank      bool
	CleanOptions    clean.Options
	ReplaceSpecs    []string
	PreserveSpecs   []string
	IncludeSuffixes []string
	ExcludeSuffixes []string
	SeenHeaderPaths map[string]struct{}
}

// Pipeline owns the reader and cleaning registries used per file.
type Pipeline struct {
	readerRegistry *readers.Registry
	cleanRegistry  *clean.Registry
	logger         *zap.Logger
}

// New constructs a Pipeline.
func New(readerRegistry *readers.Registry, cleanRegistry *clean.Registry, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		readerRegistry: readerRegistry,
		cleanRegistry:  cleanRegistry,
		logger:         logger,
	}
}

// Concatenate renders the ordered file list into one text according to
// settings. Unreadable files are logged and skipped; the pass continues.
func (pipeline *Pipeline) Concatenate(files []string, settings Settings) string {
	replaceRules := parseReplaceSpecs(settings.ReplaceSpecs, pipeline.logger)
	preserveRules := parsePreserveSpecs(settings.PreserveSpecs, pipeline.logger)

	var builder strings.Builder
	for _, filePath := range files {
		fileName := filepath.Base(filePath)
		if !suffixAccepted(fileName, settings.IncludeSuffixes, settings.ExcludeSuffixes) {
			continue
		}
		displayPath := pipeline.displayPath(filePath, settings)
		if settings.ListOnly {
			builder.WriteString(displayPath)
			builder.WriteByte('\n')
			continue
		}

		content, readError := pipeline.readerRegistry.Read(filePath)
		if readError != nil {
			pipeline.logger.Warn("skipping unreadable file",
				zap.String("path", filePath), zap.Error(readError))
			continue
		}

		content = sliceLines(content, settings.SliceStart, settings.SliceCount, settings.KeepFirstLine)
		content = pipeline.cleanRegistry.Apply(filePath, content, settings.CleanOptions)
		if settings.StripBlank {
			content = clean.StripBlankLines(content)
		}
		content = applyReplaceRules(content, replaceRules, preserveRules)

		if settings.ShowHeaders {
			resolvedPath := resolveHeaderKey(filePath)
			if _, seen := settings.SeenHeaderPaths[resolvedPath]; !seen {
				settings.SeenHeaderPaths[resolvedPath] = struct{}{}
				builder.WriteString(fmt.Sprintf("%s %s %s\n", types.HeaderDelimiter, displayPath, types.HeaderDelimiter))
			}
		}
		builder.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}

// displayPath renders the path for banners and list output.
func (pipeline *Pipeline) displayPath(filePath string, settings Settings) string {
	if settings.RelativePaths && settings.BaseDirectory != "" {
		if relativePath, relativeError := filepath.Rel(settings.BaseDirectory, filePath); relativeError == nil {
			return relativePath
		}
	}
	return filePath
}

func resolveHeaderKey(filePath string) string {
	if absolutePath, absoluteError := filepath.Abs(filePath); absoluteError == nil {
		return filepath.Clean(absolutePath)
	}
	return filePath
}

// suffixAccepted applies include-wins-over-exclude semantics: a non-empty
// include list gates admission, and any exclude-suffix match rejects
// regardless.
func suffixAccepted(fileName string, includeSuffixes []string, excludeSuffixes []string) bool {
	if len(includeSuffixes) > 0 {
		matched := false
		for _, suffix := range includeSuffixes {
			if strings.HasSuffix(fileName, suffix) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, suffix := range excludeSuffixes {
		if strings.HasSuffix(fileName, suffix) {
			return false
		}
	}
	return true
}

// sliceLines applies a 1-based inclusive line range. The keep-first override
// prepends the first physical line, with the duplicate-guard applying only
// when the range does not already start at line 1.
func sliceLines(content string, sliceStart *int, sliceCount *int, keepFirstLine bool) string {
	if sliceStart == nil && sliceCount == nil {
		return content
	}
	trailingNewline := strings.HasSuffix(content, "\n")
	trimmed := strings.TrimSuffix(content, "\n")
	lines := strings.Split(trimmed, "\n")

	start := 1
	if sliceStart != nil && *sliceStart > 0 {
		start = *sliceStart
	}
	count := len(lines)
	if sliceCount != nil && *sliceCount >= 0 {
		count = *sliceCount
	}

	lowIndex := start - 1
	if lowIndex > len(lines) {
		lowIndex = len(lines)
	}
	highIndex := lowIndex + count
	if highIndex > len(lines) {
		highIndex = len(lines)
	}
	sliced := lines[lowIndex:highIndex]

	if keepFirstLine && start > 1 && len(lines) > 0 {
		sliced = append([]string{lines[0]}, sliced...)
	}

	result := strings.Join(sliced, "\n")
	if trailingNewline && result != "" {
		result += "\n"
	}
	return result
}
