package discover

import (
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/weave/internal/types"
	"github.com/temirov/weave/internal/utils"
)

const branchSelectorMarker = "#"

// gitSpec is one parsed repository reference.
type gitSpec struct {
	Remote string
	Branch string
}

// parseGitSpec splits an optional branch selector off a repository token.
func parseGitSpec(token string) gitSpec {
	if markerIndex := strings.Index(token, branchSelectorMarker); markerIndex > 0 {
		return gitSpec{Remote: token[:markerIndex], Branch: token[markerIndex+1:]}
	}
	return gitSpec{Remote: token}
}

// discoverGit shallow-clones each Git spec into the workspace clone cache and
// walks the clone into an ordered file list. Clone failures are logged and
// the spec is skipped.
func (discoverer *Discoverer) discoverGit(request Request) []string {
	excludedSpecs := make(map[string]struct{}, len(request.Buckets.GitExcludes))
	for _, excludeToken := range request.Buckets.GitExcludes {
		excludedSpecs[excludeToken] = struct{}{}
	}

	var files []string
	for _, includeToken := range utils.DeduplicateStrings(request.Buckets.GitIncludes) {
		if _, excluded := excludedSpecs[includeToken]; excluded {
			continue
		}
		cloneDirectory, cloneError := discoverer.ensureClone(includeToken, request.WorkspaceDirectory)
		if cloneError != nil {
			discoverer.logger.Warn("skipping unreachable repository",
				zap.String("spec", includeToken), zap.Error(cloneError))
			continue
		}
		files = append(files, collectCloneFiles(cloneDirectory)...)
	}
	return files
}

// ensureClone returns the cached clone directory for the spec, performing a
// shallow clone on first use.
func (discoverer *Discoverer) ensureClone(token string, workspaceDirectory string) (string, error) {
	if cloneDirectory, cached := discoverer.cloneCache[token]; cached {
		return cloneDirectory, nil
	}

	spec := parseGitSpec(token)
	cloneDirectory := filepath.Join(workspaceDirectory, types.GitCacheDirectoryName, cacheKey(token))
	if _, statError := os.Stat(cloneDirectory); statError == nil {
		discoverer.cloneCache[token] = cloneDirectory
		return cloneDirectory, nil
	}
	if mkdirError := os.MkdirAll(filepath.Dir(cloneDirectory), 0o755); mkdirError != nil {
		return "", mkdirError
	}

	arguments := []string{"clone", "--depth", "1", "--single-branch"}
	if spec.Branch != "" {
		arguments = append(arguments, "--branch", spec.Branch)
	}
	arguments = append(arguments, spec.Remote, cloneDirectory)

	// #nosec G204
	cloneCommand := exec.Command("git", arguments...)
	cloneCommand.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if output, runError := cloneCommand.CombinedOutput(); runError != nil {
		os.RemoveAll(cloneDirectory)
		discoverer.logger.Debug("git clone output", zap.ByteString("output", output))
		return "", runError
	}
	discoverer.cloneCache[token] = cloneDirectory
	return cloneDirectory, nil
}

// collectCloneFiles walks a clone directory, skipping the Git metadata
// directory.
func collectCloneFiles(cloneDirectory string) []string {
	var files []string
	_ = filepath.WalkDir(cloneDirectory, func(currentPath string, entry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return nil
		}
		if entry.IsDir() {
			if _, skipped := skippedDirectoryNames[entry.Name()]; skipped {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, currentPath)
		return nil
	})
	return files
}
