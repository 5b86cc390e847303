package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const breadcrumbSelector = ".breadcrumb li, .breadcrumbs a"

// sectionInfo is the resolved section/subsection pair of a page.
type sectionInfo struct {
	section    *string
	subsection *string
}

// sectionStrategy derives section info from one source. ok is false when the
// source has too little data.
type sectionStrategy func(doc *goquery.Document, pageURL string) (sectionInfo, bool)

// sectionStrategies are tried in order: breadcrumbs first, then the URL path.
var sectionStrategies = []sectionStrategy{
	breadcrumbSection,
	pathSection,
}

func resolveSection(doc *goquery.Document, pageURL string) sectionInfo {
	for _, strategy := range sectionStrategies {
		if info, ok := strategy(doc, pageURL); ok {
			return info
		}
	}
	return sectionInfo{}
}

func breadcrumbSection(doc *goquery.Document, _ string) (sectionInfo, bool) {
	var crumbs []string
	doc.Find(breadcrumbSelector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			crumbs = append(crumbs, text)
		}
	})
	return fromTrail(crumbs)
}

func pathSection(_ *goquery.Document, pageURL string) (sectionInfo, bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return sectionInfo{}, false
	}

	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, humanize(seg))
		}
	}
	return fromTrail(segments)
}

// fromTrail maps a navigation trail to section (second-to-last) and
// subsection (last, only for trails of three or more).
func fromTrail(trail []string) (sectionInfo, bool) {
	n := len(trail)
	if n < 2 {
		return sectionInfo{}, false
	}
	info := sectionInfo{section: strPtr(trail[n-2])}
	if n > 2 {
		info.subsection = strPtr(trail[n-1])
	}
	return info, true
}

// humanize turns a URL slug into title-cased words: "getting-started" -> "Getting Started".
func humanize(slug string) string {
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

// tagRules are matched against the lower-cased title, content and section.
var tagRules = []struct {
	tag     string
	pattern *regexp.Regexp
}{
	{"api", regexp.MustCompile(`\bapi\b|\bendpoint\b|\brest\b`)},
	{"tutorial", regexp.MustCompile(`\btutorial\b|\bguide\b|\bwalkthrough\b`)},
	{"reference", regexp.MustCompile(`\breference\b|\bdocs\b|\bdocumentation\b`)},
	{"installation", regexp.MustCompile(`\binstall\b|\bsetup\b|\bconfiguration\b`)},
	{"authentication", regexp.MustCompile(`\bauth\b|\blogin\b|\btoken\b|\bsecurity\b`)},
	{"database", regexp.MustCompile(`\bdatabase\b|\bsql\b|\bmongo\b|\bmysql\b`)},
	{"frontend", regexp.MustCompile(`\bfrontend\b|\bui\b|\bjavascript\b|\breact\b`)},
	{"backend", regexp.MustCompile(`\bbackend\b|\bserver\b|\bnode\b|\bpython\b`)},
	{"mobile", regexp.MustCompile(`\bmobile\b|\bios\b|\bandroid\b|\bapp\b`)},
	{"deployment", regexp.MustCompile(`\bdeploy\b|\bproduction\b|\bhosting\b`)},
}

// ExtractTags classifies a page into topic tags. The result order follows
// tagRules and is the same for identical input.
func ExtractTags(title, content string, section *string) []string {
	sec := ""
	if section != nil {
		sec = *section
	}
	text := strings.ToLower(title + " " + content + " " + sec)

	tags := []string{}
	for _, rule := range tagRules {
		if rule.pattern.MatchString(text) {
			tags = append(tags, rule.tag)
		}
	}
	return tags
}
