package discover

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/weave/internal/types"
)

const (
	defaultFetchExtension  = ".txt"
	htmlFetchExtension     = ".html"
	maxFetchResponseBytes  = 8 << 20 // 8 MiB
	fetchUserAgentValue    = "weave-fetcher"
	userAgentHeaderName    = "User-Agent"
	contentTypeHeaderName  = "Content-Type"
	htmlContentTypePattern = "text/html"
)

// discoverFetch downloads each direct-fetch URL into the workspace fetch
// cache and returns the cached file paths. Failed fetches are logged and
// skipped; an existing cache entry is reused.
func (discoverer *Discoverer) discoverFetch(request Request) []string {
	var files []string
	for _, fetchURL := range request.Buckets.FetchIncludes {
		cachedPath, fetchError := discoverer.fetchIntoCache(fetchURL, request.WorkspaceDirectory)
		if fetchError != nil {
			discoverer.logger.Warn("skipping failed fetch",
				zap.String("url", fetchURL), zap.Error(fetchError))
			continue
		}
		files = append(files, cachedPath)
	}
	return files
}

// fetchIntoCache downloads one URL into the fetch cache, or reuses the cached
// copy when present.
func (discoverer *Discoverer) fetchIntoCache(fetchURL string, workspaceDirectory string) (string, error) {
	cacheDirectory := filepath.Join(workspaceDirectory, types.FetchCacheDirectoryName)
	if mkdirError := os.MkdirAll(cacheDirectory, 0o755); mkdirError != nil {
		return "", mkdirError
	}
	cachedPath := filepath.Join(cacheDirectory, cacheKey(fetchURL)+fetchExtension(fetchURL))
	if _, statError := os.Stat(cachedPath); statError == nil {
		return cachedPath, nil
	}

	request, requestError := http.NewRequest(http.MethodGet, fetchURL, nil)
	if requestError != nil {
		return "", requestError
	}
	request.Header.Set(userAgentHeaderName, fetchUserAgentValue)

	response, responseError := discoverer.httpClient.Do(request)
	if responseError != nil {
		return "", responseError
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s for %s", response.Status, fetchURL)
	}

	body, readError := io.ReadAll(io.LimitReader(response.Body, maxFetchResponseBytes))
	if readError != nil {
		return "", readError
	}
	if strings.Contains(response.Header.Get(contentTypeHeaderName), htmlContentTypePattern) &&
		!strings.HasSuffix(cachedPath, htmlFetchExtension) {
		cachedPath = filepath.Join(cacheDirectory, cacheKey(fetchURL)+htmlFetchExtension)
	}
	if writeError := os.WriteFile(cachedPath, body, 0o644); writeError != nil {
		return "", writeError
	}
	return cachedPath, nil
}

// fetchExtension derives a cache file extension from the URL path.
func fetchExtension(fetchURL string) string {
	parsedURL, parseError := url.Parse(fetchURL)
	if parseError != nil {
		return defaultFetchExtension
	}
	if extension := path.Ext(parsedURL.Path); extension != "" && len(extension) <= 8 {
		return extension
	}
	return defaultFetchExtension
}
