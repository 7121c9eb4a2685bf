// Package classify routes raw include and exclude tokens to discovery
// channels.
package classify

import (
	"net/url"
	"strings"
)

// Bucket identifies the discovery channel a token is routed to.
type Bucket int

const (
	// BucketLocal routes a token to the local filesystem channel.
	BucketLocal Bucket = iota
	// BucketGit routes a token to the Git shallow-clone channel.
	BucketGit
	// BucketFetch routes a token to the direct URL fetch channel.
	BucketFetch
	// BucketCrawl routes a token to the URL crawl channel.
	BucketCrawl
)

const (
	sshLoginPrefix       = "git@"
	gitRepositorySuffix  = ".git"
	branchSelectorMarker = "#"
	httpScheme           = "http"
	httpsScheme          = "https"
)

// knownForgeHosts lists HTTP(S) hosts treated as code forges.
var knownForgeHosts = map[string]struct{}{
	"github.com":    {},
	"gitlab.com":    {},
	"bitbucket.org": {},
	"codeberg.org":  {},
}

// Matcher is an externally registered classification policy. It reports a
// bucket and true when it claims the token.
type Matcher func(token string) (Bucket, bool)

// Classifier buckets tokens using registered matchers followed by the default
// heuristics.
type Classifier struct {
	matchers []Matcher
}

// NewClassifier constructs a Classifier with only the default heuristics.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// RegisterMatcher installs an external matcher ahead of the default
// heuristics. Matchers run in registration order; the first claim wins.
func (classifier *Classifier) RegisterMatcher(matcher Matcher) {
	classifier.matchers = append(classifier.matchers, matcher)
}

// Classify routes one token. Registered matchers are consulted first; then
// Git heuristics; then plain HTTP(S) URLs go to the fetch bucket at crawl
// depth zero and the crawl bucket otherwise; everything else is a local path.
func (classifier *Classifier) Classify(token string, crawlDepth int) Bucket {
	for _, matcher := range classifier.matchers {
		if bucket, claimed := matcher(token); claimed {
			return bucket
		}
	}
	if isGitSpec(token) {
		return BucketGit
	}
	if isHTTPURL(token) {
		if crawlDepth > 0 {
			return BucketCrawl
		}
		return BucketFetch
	}
	return BucketLocal
}

// Buckets holds the per-channel include and exclude token lists of one
// context after classification.
type Buckets struct {
	LocalIncludes []string
	GitIncludes   []string
	FetchIncludes []string
	CrawlIncludes []string
	LocalExcludes []string
	GitExcludes   []string
}

// Partition classifies every include and exclude token. URL exclusions have
// no dedicated store; they are realized by removing the same token from the
// fetch and crawl include lists.
func (classifier *Classifier) Partition(includeTokens []string, excludeTokens []string, crawlDepth int) Buckets {
	var buckets Buckets
	for _, token := range includeTokens {
		switch classifier.Classify(token, crawlDepth) {
		case BucketGit:
			buckets.GitIncludes = append(buckets.GitIncludes, token)
		case BucketFetch:
			buckets.FetchIncludes = append(buckets.FetchIncludes, token)
		case BucketCrawl:
			buckets.CrawlIncludes = append(buckets.CrawlIncludes, token)
		default:
			buckets.LocalIncludes = append(buckets.LocalIncludes, token)
		}
	}
	for _, token := range excludeTokens {
		switch classifier.Classify(token, crawlDepth) {
		case BucketGit:
			buckets.GitExcludes = append(buckets.GitExcludes, token)
		case BucketFetch, BucketCrawl:
			buckets.FetchIncludes = removeToken(buckets.FetchIncludes, token)
			buckets.CrawlIncludes = removeToken(buckets.CrawlIncludes, token)
		default:
			buckets.LocalExcludes = append(buckets.LocalExcludes, token)
		}
	}
	return buckets
}

func removeToken(tokens []string, target string) []string {
	var kept []string
	for _, token := range tokens {
		if token != target {
			kept = append(kept, token)
		}
	}
	return kept
}

// isGitSpec applies the Git heuristics: an SSH-style login, a branch-selector
// marker, a Git repository suffix, or an HTTP(S) URL on a known code forge.
func isGitSpec(token string) bool {
	if strings.HasPrefix(token, sshLoginPrefix) {
		return true
	}
	withoutBranch := token
	if markerIndex := strings.Index(token, branchSelectorMarker); markerIndex >= 0 {
		if markerIndex > 0 {
			return true
		}
		withoutBranch = token[:markerIndex]
	}
	if strings.HasSuffix(withoutBranch, gitRepositorySuffix) {
		return true
	}
	if !isHTTPURL(withoutBranch) {
		return false
	}
	parsedURL, parseError := url.Parse(withoutBranch)
	if parseError != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(parsedURL.Hostname()), "www.")
	_, isForge := knownForgeHosts[host]
	return isForge
}

// isHTTPURL reports whether the token is a plain HTTP(S) URL.
func isHTTPURL(token string) bool {
	lowered := strings.ToLower(token)
	return strings.HasPrefix(lowered, httpScheme+"://") || strings.HasPrefix(lowered, httpsScheme+"://")
}
