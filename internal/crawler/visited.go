package crawler

import (
	"net/url"
	"strings"
	"sync"
)

// VisitedSet records the URLs claimed during one crawl run. The only way in
// is TryClaim, so membership check and insert can never be split.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedSet returns an empty set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// TryClaim marks rawURL as visited and reports whether this call claimed it.
// URLs are compared in canonical form; URLs that cannot be crawled are never
// claimed.
func (v *VisitedSet) TryClaim(rawURL string) bool {
	key := normalizeURL(rawURL)
	if key == "" {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	return true
}

// Len returns the number of claimed URLs.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}

// normalizeURL cleans up a URL for deduplication.
func normalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	// Only crawl http/https
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if parsed.Host == "" {
		return ""
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""

	parsed.Path = strings.TrimRight(parsed.Path, "/")
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	parsed.RawPath = ""

	return parsed.String()
}
