package crawler

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ramkansal/docfang/internal/extractor"
	"github.com/ramkansal/docfang/internal/fetcher"
	"github.com/ramkansal/docfang/internal/profile"
	"github.com/ramkansal/docfang/pkg/plugin"
)

var (
	// ErrInvalidMaxPages is returned when the page cap is below one.
	ErrInvalidMaxPages = errors.New("max pages must be at least 1")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrAlreadyRun is returned when Run is called twice on the same Crawler.
	ErrAlreadyRun = errors.New("crawler already run")
)

// Crawler is the core engine that orchestrates fetching and extraction.
type Crawler struct {
	config   *CrawlConfig
	fetch    plugin.Fetcher
	registry *profile.Registry
	extract  *extractor.Extractor
	logger   *log.Logger
	events   chan plugin.CrawlEvent

	visited *VisitedSet

	// Stats
	stats     plugin.CrawlStats
	statsMu   sync.Mutex
	startTime time.Time

	// Control
	ran     bool
	runMu   sync.Mutex
	stopped bool
	stopMu  sync.Mutex
}

// New creates a new Crawler with the given configuration.
func New(config *CrawlConfig, opts ...Option) *Crawler {
	if config == nil {
		config = DefaultConfig()
	}
	c := &Crawler{
		config:  config,
		events:  make(chan plugin.CrawlEvent, 1000),
		visited: NewVisitedSet(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the event channel. It is closed when Run returns.
func (c *Crawler) Events() <-chan plugin.CrawlEvent {
	return c.events
}

// Init initializes the components not supplied through options.
func (c *Crawler) Init() error {
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}

	if c.registry == nil {
		reg, err := profile.NewRegistry(c.config.Profiles)
		if err != nil {
			return errors.Wrap(err, "building profile registry")
		}
		c.registry = reg
	}

	if c.extract == nil {
		c.extract = extractor.New()
	}

	if c.fetch == nil {
		c.fetch = fetcher.NewHTTPFetcher(fetcher.HTTPFetcherConfig{
			UserAgent:   c.config.UserAgent,
			Timeout:     c.config.Timeout,
			MaxBodySize: c.config.MaxBodySize,
			Headers:     c.config.Headers,
		})
	}

	return nil
}

// Profile returns the extraction profile the crawl will use.
func (c *Crawler) Profile() profile.Profile {
	return c.registry.Lookup(c.config.Platform)
}

// Run crawls up to maxPages pages starting at baseURL. It blocks until every
// task has finished and returns the extracted pages in frontier order.
//
// Per-page failures are logged and reported as events; they never fail the
// run. When ctx is cancelled, the pages extracted so far are returned
// together with ctx.Err().
func (c *Crawler) Run(ctx context.Context, baseURL string, maxPages int) ([]*plugin.DocumentationPage, error) {
	c.runMu.Lock()
	if c.ran {
		c.runMu.Unlock()
		return nil, ErrAlreadyRun
	}
	c.ran = true
	c.runMu.Unlock()

	defer close(c.events)

	if maxPages < 1 {
		return nil, errors.Wrapf(ErrInvalidMaxPages, "got %d", maxPages)
	}
	if err := validateBaseURL(baseURL); err != nil {
		return nil, err
	}
	if err := c.Init(); err != nil {
		return nil, err
	}

	c.startTime = time.Now()
	p := c.Profile()

	c.emit(plugin.CrawlEvent{
		Type:    plugin.EventCrawlStarted,
		URL:     baseURL,
		Message: fmt.Sprintf("Starting %s crawl of %s", p.Name(), baseURL),
	})

	frontier := c.buildFrontier(ctx, baseURL, maxPages, p)

	results := make([]*plugin.DocumentationPage, len(frontier))

	concurrency := c.config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, u := range frontier {
		if c.isStopped() || ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = c.processURL(ctx, u, p)
			return nil
		})
	}
	_ = g.Wait()

	pages := make([]*plugin.DocumentationPage, 0, len(results))
	for _, page := range results {
		if page != nil {
			pages = append(pages, page)
		}
	}

	stats := c.getStats()
	c.emit(plugin.CrawlEvent{
		Type:    plugin.EventCrawlFinished,
		Stats:   stats,
		Message: fmt.Sprintf("Crawl complete. %d pages scraped, %d skipped, %d errors.", stats.PagesScraped, stats.PagesSkipped, stats.PagesErrored),
	})

	return pages, ctx.Err()
}

// Stop signals the crawler to stop gracefully. Tasks already started finish.
func (c *Crawler) Stop() {
	c.stopMu.Lock()
	defer c.stopMu.Unlock()
	c.stopped = true
}

func (c *Crawler) isStopped() bool {
	c.stopMu.Lock()
	defer c.stopMu.Unlock()
	return c.stopped
}

// buildFrontier returns the base URL followed by up to maxPages-1 links
// discovered on it. Discovery problems shrink the frontier to the base URL.
func (c *Crawler) buildFrontier(ctx context.Context, baseURL string, maxPages int, p profile.Profile) []string {
	frontier := []string{baseURL}

	if maxPages > 1 {
		links, err := c.discover(ctx, baseURL, maxPages-1, p)
		if err != nil {
			c.logger.Warn("link discovery failed, crawling base URL only", "url", baseURL, "err", err)
		}
		frontier = append(frontier, links...)
	}
	if len(frontier) > maxPages {
		frontier = frontier[:maxPages]
	}

	c.statsMu.Lock()
	c.stats.PagesQueued = len(frontier)
	c.statsMu.Unlock()

	for _, u := range frontier {
		c.emit(plugin.CrawlEvent{
			Type: plugin.EventPageQueued,
			URL:  u,
		})
	}
	c.logger.Debug("frontier built", "urls", len(frontier))

	return frontier
}

func (c *Crawler) discover(ctx context.Context, baseURL string, limit int, p profile.Profile) ([]string, error) {
	data, err := c.fetch.Fetch(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	doc, err := extractor.ParseDocument(data.Body)
	if err != nil {
		return nil, err
	}
	return extractor.DiscoverLinks(doc, baseURL, p, limit), nil
}

// processURL claims, fetches and extracts a single URL. It returns nil for
// every outcome other than a successfully extracted page.
func (c *Crawler) processURL(ctx context.Context, pageURL string, p profile.Profile) *plugin.DocumentationPage {
	if !c.visited.TryClaim(pageURL) {
		c.skip(pageURL, "already visited")
		return nil
	}

	c.emit(plugin.CrawlEvent{
		Type: plugin.EventPageStarted,
		URL:  pageURL,
	})

	if !c.wait(ctx) {
		c.fail(pageURL, ctx.Err())
		return nil
	}

	data, err := c.fetch.Fetch(ctx, pageURL)
	if err != nil {
		c.fail(pageURL, err)
		return nil
	}

	doc, err := extractor.ParseDocument(data.Body)
	if err != nil {
		c.fail(pageURL, err)
		return nil
	}

	page, err := c.extract.Extract(doc, pageURL, p)
	if err != nil {
		if errors.Is(err, extractor.ErrContentTooShort) {
			c.skip(pageURL, err.Error())
			return nil
		}
		c.fail(pageURL, err)
		return nil
	}

	c.statsMu.Lock()
	c.stats.PagesScraped++
	c.stats.CodeExamples += len(page.CodeExamples)
	c.stats.APIEndpoints += len(page.APIEndpoints)
	c.statsMu.Unlock()

	c.logger.Debug("page scraped", "url", pageURL, "title", page.Title)
	c.emit(plugin.CrawlEvent{
		Type:  plugin.EventPageDone,
		URL:   pageURL,
		Page:  page,
		Stats: c.getStats(),
	})

	return page
}

// wait sleeps for the configured per-request delay. It reports false when
// ctx is cancelled first.
func (c *Crawler) wait(ctx context.Context) bool {
	if c.config.Delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(c.config.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (c *Crawler) skip(pageURL, reason string) {
	c.statsMu.Lock()
	c.stats.PagesSkipped++
	c.statsMu.Unlock()

	c.logger.Debug("page skipped", "url", pageURL, "reason", reason)
	c.emit(plugin.CrawlEvent{
		Type:    plugin.EventPageSkipped,
		URL:     pageURL,
		Message: reason,
	})
}

func (c *Crawler) fail(pageURL string, err error) {
	c.statsMu.Lock()
	c.stats.PagesErrored++
	c.statsMu.Unlock()

	c.logger.Debug("page failed", "url", pageURL, "err", err)
	c.emit(plugin.CrawlEvent{
		Type:    plugin.EventPageError,
		URL:     pageURL,
		Error:   err,
		Message: fmt.Sprintf("Error scraping %s: %v", pageURL, err),
	})
}

// emit sends an event to the event channel (non-blocking).
func (c *Crawler) emit(event plugin.CrawlEvent) {
	select {
	case c.events <- event:
	default:
		// consumer too slow, drop
	}
}

// getStats returns a copy of the current stats.
func (c *Crawler) getStats() *plugin.CrawlStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	statsCopy := c.stats
	if !c.startTime.IsZero() {
		statsCopy.Elapsed = time.Since(c.startTime)
		if s := statsCopy.Elapsed.Seconds(); s > 0 {
			statsCopy.PagesPerSec = float64(statsCopy.PagesScraped) / s
		}
	}
	return &statsCopy
}

// Stats returns a snapshot of the crawl counters.
func (c *Crawler) Stats() plugin.CrawlStats {
	return *c.getStats()
}

// Close releases all resources.
func (c *Crawler) Close() error {
	if c.fetch != nil {
		return c.fetch.Close()
	}
	return nil
}

func validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return errors.Wrapf(ErrInvalidBaseURL, "%q: %v", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Wrapf(ErrInvalidBaseURL, "%q: want an absolute http(s) URL", baseURL)
	}
	return nil
}
