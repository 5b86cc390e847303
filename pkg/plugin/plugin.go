// Package plugin defines the public types and interfaces for docfang.
// External tools can import this package to consume crawl reports or to
// plug in their own fetchers and output writers without forking the project.
package plugin

import (
	"context"
	"io"
	"time"
)

// ---------- Core Data Types ----------

// PageData represents a fetched page before extraction.
type PageData struct {
	URL           string        `json:"url"`
	FinalURL      string        `json:"final_url"`
	StatusCode    int           `json:"status_code"`
	Body          []byte        `json:"-"`
	ContentType   string        `json:"content_type"`
	FetchedAt     time.Time     `json:"fetched_at"`
	FetchDuration time.Duration `json:"fetch_duration"`
	ResponseSize  int           `json:"response_size"`
}

// CodeExample is a code sample found on a documentation page.
type CodeExample struct {
	Language    string  `json:"language"`
	Code        string  `json:"code"`
	Description *string `json:"description"`
}

// APIParameter describes a single parameter of an API endpoint.
// Required is always false: the supported platforms expose no reliable marker for it.
type APIParameter struct {
	Name        string `json:"name"`
	Type        string `json:"param_type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// APIEndpoint is an endpoint block extracted from an API reference page.
type APIEndpoint struct {
	Method         string         `json:"method"`
	Path           string         `json:"path"`
	Description    string         `json:"description"`
	Parameters     []APIParameter `json:"parameters"`
	ResponseFormat *string        `json:"response_format"`
	CodeExamples   []CodeExample  `json:"code_examples"`
}

// DocumentationPage is the structured record produced for one extracted page.
type DocumentationPage struct {
	URL          string        `json:"url"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	Section      *string       `json:"section"`
	Subsection   *string       `json:"subsection"`
	APIEndpoints []APIEndpoint `json:"api_endpoints"`
	CodeExamples []CodeExample `json:"code_examples"`
	LastUpdated  *string       `json:"last_updated"`
	Tags         []string      `json:"tags"`
	ScrapedAt    string        `json:"scraped_at"`
}

// Report is the final aggregated output of a crawl run.
type Report struct {
	Platform   string               `json:"platform"`
	TotalPages int                  `json:"total_pages"`
	Analysis   map[string]any       `json:"analysis"`
	ScrapedAt  string               `json:"scraped_at"`
	Pages      []*DocumentationPage `json:"pages"`
}

// ---------- Event Types ----------

// CrawlEvent represents a real-time event emitted by the crawler.
type CrawlEvent struct {
	Type    EventType
	URL     string
	Page    *DocumentationPage
	Error   error
	Stats   *CrawlStats
	Message string
}

// EventType identifies the kind of event.
type EventType int

const (
	EventPageQueued EventType = iota
	EventPageStarted
	EventPageDone
	EventPageSkipped
	EventPageError
	EventCrawlStarted
	EventCrawlFinished
)

// String returns a short lowercase name for the event type.
func (t EventType) String() string {
	switch t {
	case EventPageQueued:
		return "queued"
	case EventPageStarted:
		return "started"
	case EventPageDone:
		return "done"
	case EventPageSkipped:
		return "skipped"
	case EventPageError:
		return "error"
	case EventCrawlStarted:
		return "crawl_started"
	case EventCrawlFinished:
		return "crawl_finished"
	default:
		return "unknown"
	}
}

// CrawlStats holds real-time crawl statistics.
type CrawlStats struct {
	PagesQueued  int           `json:"pages_queued"`
	PagesScraped int           `json:"pages_scraped"`
	PagesSkipped int           `json:"pages_skipped"`
	PagesErrored int           `json:"pages_errored"`
	CodeExamples int           `json:"code_examples"`
	APIEndpoints int           `json:"api_endpoints"`
	Elapsed      time.Duration `json:"elapsed"`
	PagesPerSec  float64       `json:"pages_per_sec"`
}

// ---------- Plugin Interfaces ----------

// Fetcher defines how pages are retrieved.
type Fetcher interface {
	// Name returns a human-readable identifier for this fetcher.
	Name() string

	// Fetch retrieves the page at the given URL. A non-success status is an error.
	Fetch(ctx context.Context, url string) (*PageData, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// OutputWriter defines how a finished report is serialized.
type OutputWriter interface {
	// Name returns a human-readable identifier for this writer.
	Name() string

	// Extension is the file extension used when the report is saved, including the dot.
	Extension() string

	// Write serializes the report to w.
	Write(w io.Writer, report *Report) error
}
