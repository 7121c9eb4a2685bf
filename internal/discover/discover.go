// Package discover resolves include tokens into local file paths through four
// channels: the local filesystem, Git shallow clones, direct URL fetches, and
// URL crawls.
//
// Channel failures are contained: an unreachable remote or failed fetch is
// logged, the offending item is skipped, and discovery continues.
package discover

import (
	"crypto/sha1"
	"crypto/tls"
	"encoding/hex"
	"net/http"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/weave/internal/classify"
	"github.com/temirov/weave/internal/types"
)

const requestTimeout = 20 * time.Second

// skippedDirectoryNames are never entered while walking directories.
var skippedDirectoryNames = map[string]struct{}{
	".git":                        {},
	types.GitCacheDirectoryName:   {},
	types.FetchCacheDirectoryName: {},
}

// Request describes one context's discovery inputs.
type Request struct {
	Buckets            classify.Buckets
	WorkingDirectory   string
	WorkspaceDirectory string
	CrawlDepth         int
}

// Summary holds per-channel results in the fixed output order: local,
// fetched, crawled, then Git.
type Summary struct {
	LocalFiles   []string
	FetchedFiles []string
	CrawledFiles []string
	GitFiles     []string
}

// Files concatenates the channel results in their fixed order, removing
// duplicates while preserving first occurrence.
func (summary Summary) Files() []string {
	seen := make(map[string]struct{})
	var ordered []string
	for _, channelFiles := range [][]string{summary.LocalFiles, summary.FetchedFiles, summary.CrawledFiles, summary.GitFiles} {
		for _, filePath := range channelFiles {
			if _, duplicate := seen[filePath]; duplicate {
				continue
			}
			seen[filePath] = struct{}{}
			ordered = append(ordered, filePath)
		}
	}
	return ordered
}

// Discoverer queries the four channels for one top-level run. The clone cache
// it holds is scoped to the Discoverer's lifetime, so constructing one per run
// resets the cache by construction.
type Discoverer struct {
	logger     *zap.Logger
	httpClient *http.Client
	cloneCache map[string]string
}

// NewDiscoverer constructs a run-scoped Discoverer. TLS verification is
// disabled when the insecure-TLS environment key is set.
func NewDiscoverer(logger *zap.Logger) *Discoverer {
	transport := &http.Transport{}
	if os.Getenv(types.InsecureTLSEnvironmentKey) != "" {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402
	}
	return &Discoverer{
		logger:     logger,
		httpClient: &http.Client{Timeout: requestTimeout, Transport: transport},
		cloneCache: make(map[string]string),
	}
}

// Discover queries all four channels synchronously and returns their results.
// Per-channel ordering is lexicographic by resolved path.
func (discoverer *Discoverer) Discover(request Request) Summary {
	summary := Summary{
		LocalFiles:   discoverer.discoverLocal(request),
		FetchedFiles: discoverer.discoverFetch(request),
		CrawledFiles: discoverer.discoverCrawl(request),
		GitFiles:     discoverer.discoverGit(request),
	}
	sort.Strings(summary.LocalFiles)
	sort.Strings(summary.FetchedFiles)
	sort.Strings(summary.CrawledFiles)
	sort.Strings(summary.GitFiles)
	return summary
}

// cacheKey derives a stable short hash for cache file and directory names.
func cacheKey(value string) string {
	digest := sha1.Sum([]byte(value)) // #nosec G401
	return hex.EncodeToString(digest[:])[:12]
}
