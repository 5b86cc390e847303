package extractor

import (
	"bytes"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/ramkansal/docfang/internal/profile"
	"github.com/ramkansal/docfang/pkg/plugin"
)

const (
	// DefaultTitle is used when the title selector matches nothing. A matched
	// but blank title stays empty.
	DefaultTitle = "Documentation Page"

	// MinContentLength rejects navigation-only and placeholder pages.
	MinContentLength = 100
)

var (
	// ErrContentTooShort marks a page skipped for having too little body text.
	// It is a content-quality skip, not a failure.
	ErrContentTooShort = errors.New("content too short")

	// ErrParse is returned when a page cannot be parsed or the profile is unusable.
	ErrParse = errors.New("parse error")
)

// Extractor turns parsed documentation pages into DocumentationPage records.
type Extractor struct {
	now func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the clock used for ScrapedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseDocument parses raw markup into a queryable document.
func ParseDocument(body []byte) (*goquery.Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.Wrap(ErrParse, "empty document")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(ErrParse, "%v", err)
	}
	return doc, nil
}

// Extract builds the page record for doc. It returns ErrContentTooShort when
// the main content is below MinContentLength characters.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string, p profile.Profile) (*plugin.DocumentationPage, error) {
	if doc == nil {
		return nil, errors.Wrap(ErrParse, "nil document")
	}
	if !p.Valid() {
		return nil, errors.Wrapf(ErrParse, "profile %q has no compiled selectors", p.Name())
	}

	title := DefaultTitle
	if match := doc.FindMatcher(p.Title()).First(); match.Length() > 0 {
		title = strings.TrimSpace(match.Text())
	}

	content := joinText(doc.FindMatcher(p.Content()).First(), "\n")
	if n := utf8.RuneCountInString(content); n < MinContentLength {
		return nil, errors.Wrapf(ErrContentTooShort, "%s: %d characters", pageURL, n)
	}

	sec := resolveSection(doc, pageURL)

	return &plugin.DocumentationPage{
		URL:          pageURL,
		Title:        title,
		Content:      content,
		Section:      sec.section,
		Subsection:   sec.subsection,
		APIEndpoints: extractEndpoints(doc, p),
		CodeExamples: extractCodeExamples(doc, p),
		Tags:         ExtractTags(title, content, sec.section),
		ScrapedAt:    strconv.FormatInt(e.now().Unix(), 10),
	}, nil
}

// joinText joins every descendant text node of the selection with sep and
// trims the result.
func joinText(s *goquery.Selection, sep string) string {
	var parts []string
	for _, n := range s.Nodes {
		collectText(n, &parts)
	}
	return strings.TrimSpace(strings.Join(parts, sep))
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		*parts = append(*parts, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

func strPtr(s string) *string { return &s }
