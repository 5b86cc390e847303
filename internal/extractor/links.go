package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ramkansal/docfang/internal/profile"
)

// DiscoverLinks returns up to limit same-host links found under the profile's
// navigation selector, in document order. Links that fail to resolve or are
// not http(s) are skipped.
func DiscoverLinks(doc *goquery.Document, baseURL string, p profile.Profile, limit int) []string {
	var links []string
	if doc == nil || limit <= 0 || p.Nav() == nil {
		return links
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return links
	}

	doc.FindMatcher(p.Nav()).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, exists := s.Attr("href")
		if !exists {
			return true
		}

		resolved := resolveURL(base, strings.TrimSpace(href))
		if resolved == nil || resolved.Hostname() != base.Hostname() {
			return true
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return true
		}

		links = append(links, resolved.String())
		return len(links) < limit
	})

	return links
}

// resolveURL resolves a potentially relative URL against a base URL.
func resolveURL(base *url.URL, raw string) *url.URL {
	ref, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	return base.ResolveReference(ref)
}
