package crawler

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/ramkansal/docfang/internal/extractor"
	"github.com/ramkansal/docfang/internal/profile"
	"github.com/ramkansal/docfang/pkg/plugin"
)

// DefaultUserAgent identifies docfang to documentation servers.
const DefaultUserAgent = "DocFang/1.0 (Documentation Research)"

// CrawlConfig holds all configuration for a crawl session.
type CrawlConfig struct {
	// Platform selects the extraction profile.
	Platform string

	// Crawl control
	Delay       time.Duration
	Concurrency int

	// Request options
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int
	Headers     []string

	// Profiles adds or overrides extraction profiles by platform key.
	Profiles map[string]profile.Definition
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *CrawlConfig {
	return &CrawlConfig{
		Platform:    profile.Generic,
		Delay:       time.Second,
		Concurrency: 10,
		UserAgent:   DefaultUserAgent,
		Timeout:     30 * time.Second,
		MaxBodySize: 10 << 20, // 10MB
	}
}

// Option customizes a Crawler.
type Option func(*Crawler)

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f plugin.Fetcher) Option {
	return func(c *Crawler) {
		c.fetch = f
	}
}

// WithLogger sets the logger used for per-page diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Crawler) {
		c.logger = l
	}
}

// WithRegistry supplies a prebuilt profile registry. CrawlConfig.Profiles is
// ignored when set.
func WithRegistry(r *profile.Registry) Option {
	return func(c *Crawler) {
		c.registry = r
	}
}

// WithExtractor replaces the page extractor.
func WithExtractor(e *extractor.Extractor) Option {
	return func(c *Crawler) {
		c.extract = e
	}
}
