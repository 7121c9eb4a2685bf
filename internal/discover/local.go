package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/weave/internal/types"
	"github.com/temirov/weave/internal/utils"
)

// discoverLocal resolves local include tokens against the working directory
// and walks directories into ordered file lists. Missing paths are logged and
// skipped.
func (discoverer *Discoverer) discoverLocal(request Request) []string {
	excludedPaths, excludedPatterns := resolveLocalExcludes(request.Buckets.LocalExcludes, request.WorkingDirectory)

	var files []string
	for _, includeToken := range request.Buckets.LocalIncludes {
		validatedPath, validationError := validateLocalPath(request.WorkingDirectory, includeToken)
		if validationError != nil {
			discoverer.logger.Warn("skipping missing local path",
				zap.String("path", includeToken), zap.Error(validationError))
			continue
		}
		if !validatedPath.IsDir {
			if !isExcluded(validatedPath.AbsolutePath, excludedPaths, excludedPatterns) {
				files = append(files, validatedPath.AbsolutePath)
			}
			continue
		}
		walkError := filepath.WalkDir(validatedPath.AbsolutePath, func(currentPath string, entry fs.DirEntry, entryError error) error {
			if entryError != nil {
				discoverer.logger.Warn("skipping unreadable entry",
					zap.String("path", currentPath), zap.Error(entryError))
				return nil
			}
			if entry.IsDir() {
				if _, skipped := skippedDirectoryNames[entry.Name()]; skipped {
					return filepath.SkipDir
				}
				if isExcluded(currentPath, excludedPaths, excludedPatterns) {
					return filepath.SkipDir
				}
				return nil
			}
			if isExcluded(currentPath, excludedPaths, excludedPatterns) {
				return nil
			}
			files = append(files, currentPath)
			return nil
		})
		if walkError != nil {
			discoverer.logger.Warn("walking directory failed",
				zap.String("path", validatedPath.AbsolutePath), zap.Error(walkError))
		}
	}
	return files
}

// validateLocalPath resolves an include token against the working directory
// and stats it, yielding a path known to exist.
func validateLocalPath(workingDirectory string, includeToken string) (types.ValidatedPath, error) {
	resolvedPath := resolveAgainst(workingDirectory, includeToken)
	pathInformation, statError := os.Stat(resolvedPath)
	if statError != nil {
		return types.ValidatedPath{}, statError
	}
	return types.ValidatedPath{AbsolutePath: resolvedPath, IsDir: pathInformation.IsDir()}, nil
}

// resolveAgainst makes a path absolute relative to the base directory.
func resolveAgainst(baseDirectory string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(baseDirectory, path))
}

// resolveLocalExcludes splits exclude tokens into resolved path prefixes and
// base-name glob patterns.
func resolveLocalExcludes(excludeTokens []string, workingDirectory string) ([]string, []string) {
	var excludedPaths []string
	var excludedPatterns []string
	for _, excludeToken := range excludeTokens {
		if strings.ContainsAny(excludeToken, "*?[") {
			excludedPatterns = append(excludedPatterns, excludeToken)
			continue
		}
		excludedPaths = append(excludedPaths, resolveAgainst(workingDirectory, excludeToken))
	}
	return excludedPaths, excludedPatterns
}

// isExcluded reports whether the path equals or descends from an excluded
// path, or whose base name matches an excluded pattern.
func isExcluded(path string, excludedPaths []string, excludedPatterns []string) bool {
	if utils.ContainsString(excludedPaths, path) {
		return true
	}
	for _, excludedPath := range excludedPaths {
		if strings.HasPrefix(path, excludedPath+string(filepath.Separator)) {
			return true
		}
	}
	baseName := filepath.Base(path)
	for _, pattern := range excludedPatterns {
		if matched, matchError := filepath.Match(pattern, baseName); matchError == nil && matched {
			return true
		}
	}
	return false
}
