package discover

import (
	"net/url"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	maxCrawlPages    = 25
	maxLinksPerPage  = 40
	anchorSelector   = "a[href]"
	hrefAttributeKey = "href"
)

// crawlItem is one queued page with its remaining depth.
type crawlItem struct {
	pageURL string
	depth   int
}

// discoverCrawl performs a bounded same-host breadth-first crawl from each
// seed URL, caching pages under the workspace fetch cache and returning
// the cached file paths.
func (discoverer *Discoverer) discoverCrawl(request Request) []string {
	var files []string
	for _, seedURL := range request.Buckets.CrawlIncludes {
		files = append(files, discoverer.crawlSeed(seedURL, request.CrawlDepth, request.WorkspaceDirectory)...)
	}
	return files
}

// crawlSeed walks one seed breadth-first: pages at depth zero are fetched but
// not expanded, and only links on the seed's host are followed.
func (discoverer *Discoverer) crawlSeed(seedURL string, depth int, workspaceDirectory string) []string {
	parsedSeed, parseError := url.Parse(seedURL)
	if parseError != nil {
		discoverer.logger.Warn("skipping invalid crawl seed",
			zap.String("url", seedURL), zap.Error(parseError))
		return nil
	}
	seedHost := parsedSeed.Hostname()

	visited := make(map[string]struct{})
	queue := []crawlItem{{pageURL: seedURL, depth: depth}}
	var files []string

	for len(queue) > 0 && len(visited) < maxCrawlPages {
		item := queue[0]
		queue = queue[1:]
		normalized := normalizePageURL(item.pageURL)
		if _, seen := visited[normalized]; seen {
			continue
		}
		visited[normalized] = struct{}{}

		cachedPath, pageLinks, pageError := discoverer.fetchPage(normalized, workspaceDirectory)
		if pageError != nil {
			discoverer.logger.Warn("skipping failed crawl page",
				zap.String("url", normalized), zap.Error(pageError))
			continue
		}
		files = append(files, cachedPath)

		if item.depth <= 0 {
			continue
		}
		for _, pageLink := range pageLinks {
			linkURL, linkError := url.Parse(pageLink)
			if linkError != nil {
				continue
			}
			resolvedLink := parsedSeed.ResolveReference(linkURL)
			if resolvedLink.Scheme != "http" && resolvedLink.Scheme != "https" {
				continue
			}
			if resolvedLink.Hostname() != seedHost {
				continue
			}
			queue = append(queue, crawlItem{pageURL: resolvedLink.String(), depth: item.depth - 1})
		}
	}
	return files
}

// fetchPage downloads one page into the fetch cache and extracts its anchor
// targets.
func (discoverer *Discoverer) fetchPage(pageURL string, workspaceDirectory string) (string, []string, error) {
	cachedPath, fetchError := discoverer.fetchIntoCache(pageURL, workspaceDirectory)
	if fetchError != nil {
		return "", nil, fetchError
	}

	fileHandle, openError := os.Open(cachedPath)
	if openError != nil {
		return "", nil, openError
	}
	defer fileHandle.Close()

	document, parseError := goquery.NewDocumentFromReader(fileHandle)
	if parseError != nil {
		return cachedPath, nil, nil
	}
	var pageLinks []string
	document.Find(anchorSelector).EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if hrefValue, present := anchor.Attr(hrefAttributeKey); present {
			trimmedValue := strings.TrimSpace(hrefValue)
			if trimmedValue != "" && !strings.HasPrefix(trimmedValue, "#") {
				pageLinks = append(pageLinks, trimmedValue)
			}
		}
		return len(pageLinks) < maxLinksPerPage
	})
	return cachedPath, pageLinks, nil
}

// normalizePageURL drops fragments so the visited set deduplicates pages.
func normalizePageURL(pageURL string) string {
	if fragmentIndex := strings.Index(pageURL, "#"); fragmentIndex >= 0 {
		return pageURL[:fragmentIndex]
	}
	return pageURL
}
