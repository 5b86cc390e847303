package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/pkg/errors"

	"github.com/ramkansal/docfang/pkg/plugin"
)

// StatusError reports a response with a non-success status code.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPFetcher uses Colly for fast, efficient HTTP-only page fetching.
type HTTPFetcher struct {
	collector *colly.Collector
	headers   []header
}

type header struct {
	key   string
	value string
}

// HTTPFetcherConfig holds configuration for the HTTP fetcher.
type HTTPFetcherConfig struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int
	// Headers are extra request headers in "Key: Value" form.
	Headers []string
}

// NewHTTPFetcher creates a new Colly-based HTTP fetcher.
func NewHTTPFetcher(cfg HTTPFetcherConfig) *HTTPFetcher {
	c := colly.NewCollector(
		colly.Async(false), // concurrency is controlled by the crawler
		colly.AllowURLRevisit(),
	)
	c.IgnoreRobotsTxt = true
	// success is decided in Fetch, not by colly's status check
	c.ParseHTTPErrorResponse = true

	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}

	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}

	if cfg.MaxBodySize > 0 {
		c.MaxBodySize = cfg.MaxBodySize
	}

	return &HTTPFetcher{
		collector: c,
		headers:   parseHeaders(cfg.Headers),
	}
}

// parseHeaders splits "Key: Value" strings. Malformed entries are ignored.
func parseHeaders(raw []string) []header {
	var out []header
	for _, h := range raw {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		out = append(out, header{key: key, value: strings.TrimSpace(parts[1])})
	}
	return out
}

func (f *HTTPFetcher) Name() string { return "http" }

// Fetch retrieves targetURL. Transport failures, timeouts and non-success
// statuses are returned as errors; a status error is a *StatusError.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*plugin.PageData, error) {
	start := time.Now()

	page := &plugin.PageData{
		URL:       targetURL,
		FinalURL:  targetURL,
		FetchedAt: start,
	}

	if err := ctx.Err(); err != nil {
		return page, err
	}

	// Clone the collector for this individual fetch so we get clean state.
	// Callbacks are not cloned.
	c := f.collector.Clone()
	c.Context = ctx

	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		for _, h := range f.headers {
			r.Headers.Set(h.key, h.value)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.FinalURL = r.Request.URL.String()
		page.ContentType = r.Headers.Get("Content-Type")
		if !isSuccess(r.StatusCode) {
			fetchErr = &StatusError{URL: targetURL, StatusCode: r.StatusCode}
			return
		}
		page.Body = r.Body
		page.ResponseSize = len(r.Body)
	})

	// transport failures only; statuses are handled in OnResponse
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			page.StatusCode = r.StatusCode
		}
		fetchErr = errors.Wrapf(err, "fetch %s", targetURL)
	})

	visitErr := c.Visit(targetURL)
	c.Wait()

	page.FetchDuration = time.Since(start)

	switch {
	case fetchErr != nil:
		return page, fetchErr
	case visitErr != nil:
		return page, errors.Wrapf(visitErr, "fetch %s", targetURL)
	case ctx.Err() != nil:
		return page, errors.Wrapf(ctx.Err(), "fetch %s", targetURL)
	}

	return page, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func (f *HTTPFetcher) Close() error {
	return nil
}
