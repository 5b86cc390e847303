package crawler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramkansal/docfang/internal/fetcher"
	"github.com/ramkansal/docfang/pkg/plugin"
)

const (
	base   = "https://docs.example.com/"
	filler = "This guide walks through the configuration options that control how the documentation server renders every page."
)

// fakeFetcher serves canned pages and records every request.
type fakeFetcher struct {
	pages  map[string]string
	delays map[string]time.Duration
	fail   map[string]error
	wait   time.Duration

	mu    sync.Mutex
	calls []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(ctx context.Context, u string) (*plugin.PageData, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, u)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	time.Sleep(f.wait + f.delays[u])

	if err, ok := f.fail[u]; ok {
		return nil, err
	}
	body, ok := f.pages[u]
	if !ok {
		return nil, &fetcher.StatusError{URL: u, StatusCode: 404}
	}
	return &plugin.PageData{URL: u, FinalURL: u, StatusCode: 200, Body: []byte(body)}, nil
}

func (f *fakeFetcher) Close() error { return nil }

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func docPage(title string, links ...string) string {
	var nav strings.Builder
	for _, l := range links {
		fmt.Fprintf(&nav, `<a href="%s">%s</a>`, l, l)
	}
	return `<html><body><nav>` + nav.String() + `</nav><main><h1>` + title + `</h1><p>` + filler + `</p></main></body></html>`
}

func newTestCrawler(f *fakeFetcher, concurrency int) *Crawler {
	return New(&CrawlConfig{
		Platform:    "generic",
		Concurrency: concurrency,
	}, WithFetcher(f))
}

func drain(c *Crawler) []plugin.CrawlEvent {
	var events []plugin.CrawlEvent
	for ev := range c.Events() {
		events = append(events, ev)
	}
	return events
}

func TestCrawler_Run(t *testing.T) {
	t.Parallel()

	site := func() *fakeFetcher {
		pages := map[string]string{}
		pages[base] = docPage("Home", "/guide/a", "/guide/b", "https://other.example.com/x", "/guide/c", "/guide/short", "/guide/missing")
		pages[base+"guide/a"] = docPage("A")
		pages[base+"guide/b"] = docPage("B")
		pages[base+"guide/c"] = docPage("C")
		pages[base+"guide/short"] = `<main><h1>Short</h1><p>tiny</p></main>`
		return &fakeFetcher{pages: pages}
	}

	t.Run("single page makes no discovery fetch", func(t *testing.T) {
		t.Parallel()

		f := site()
		c := newTestCrawler(f, 4)

		pages, err := c.Run(context.Background(), base, 1)
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, base, pages[0].URL)
		assert.Equal(t, 1, f.callCount())
	})

	t.Run("crawls the frontier and skips failures", func(t *testing.T) {
		t.Parallel()

		f := site()
		c := newTestCrawler(f, 4)

		pages, err := c.Run(context.Background(), base, 10)
		require.NoError(t, err)

		urls := make([]string, 0, len(pages))
		for _, p := range pages {
			urls = append(urls, p.URL)
		}
		assert.Equal(t, []string{base, base + "guide/a", base + "guide/b", base + "guide/c"}, urls)

		// discovery + six frontier URLs
		assert.Equal(t, 7, f.callCount())
		for _, call := range f.calls {
			assert.NotContains(t, call, "other.example.com")
		}

		stats := c.Stats()
		assert.Equal(t, 6, stats.PagesQueued)
		assert.Equal(t, 4, stats.PagesScraped)
		assert.Equal(t, 1, stats.PagesSkipped)
		assert.Equal(t, 1, stats.PagesErrored)
	})

	t.Run("frontier is capped by max pages", func(t *testing.T) {
		t.Parallel()

		f := site()
		c := newTestCrawler(f, 4)

		pages, err := c.Run(context.Background(), base, 3)
		require.NoError(t, err)
		require.Len(t, pages, 3)
		assert.Equal(t, base+"guide/b", pages[2].URL)
		assert.Equal(t, 4, f.callCount())
	})

	t.Run("results keep frontier order", func(t *testing.T) {
		t.Parallel()

		f := site()
		f.delays = map[string]time.Duration{
			base + "guide/a": 60 * time.Millisecond,
			base + "guide/b": 30 * time.Millisecond,
		}
		c := newTestCrawler(f, 10)

		pages, err := c.Run(context.Background(), base, 4)
		require.NoError(t, err)
		require.Len(t, pages, 4)
		assert.Equal(t, "Home", pages[0].Title)
		assert.Equal(t, "A", pages[1].Title)
		assert.Equal(t, "B", pages[2].Title)
		assert.Equal(t, "C", pages[3].Title)
	})
}

func TestCrawler_RunDeduplicates(t *testing.T) {
	t.Parallel()

	pages := map[string]string{}
	pages[base] = docPage("Home", "/", "/#top", "/guide", "/guide/")
	pages[base+"#top"] = docPage("Home")
	pages[base+"guide"] = docPage("Guide")
	pages[base+"guide/"] = docPage("Guide")

	f := &fakeFetcher{pages: pages}
	c := newTestCrawler(f, 4)

	got, err := c.Run(context.Background(), base, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	stats := c.Stats()
	assert.Equal(t, 5, stats.PagesQueued)
	assert.Equal(t, 3, stats.PagesSkipped)
	// discovery + one fetch per canonical URL
	assert.Equal(t, 3, f.callCount())
}

func TestCrawler_RunIgnoresNonHTTPLinks(t *testing.T) {
	t.Parallel()

	pages := map[string]string{}
	pages[base] = docPage("Home", "ftp://docs.example.com/files", "/a")
	pages[base+"a"] = docPage("A")

	f := &fakeFetcher{pages: pages}
	c := newTestCrawler(f, 2)

	got, err := c.Run(context.Background(), base, 5)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	stats := c.Stats()
	assert.Equal(t, 2, stats.PagesQueued)
	assert.Equal(t, 0, stats.PagesSkipped)
	for _, ev := range drain(c) {
		assert.NotEqual(t, plugin.EventPageSkipped, ev.Type, ev.URL)
	}
}

func TestCrawler_RunConcurrencyLimit(t *testing.T) {
	t.Parallel()

	links := make([]string, 0, 20)
	pages := map[string]string{}
	for i := range 20 {
		path := fmt.Sprintf("/p/%d", i)
		links = append(links, path)
		pages[base+path[1:]] = docPage(path)
	}
	pages[base] = docPage("Home", links...)

	f := &fakeFetcher{pages: pages, wait: 20 * time.Millisecond}
	c := newTestCrawler(f, 3)

	got, err := c.Run(context.Background(), base, 21)
	require.NoError(t, err)
	assert.Len(t, got, 21)
	assert.LessOrEqual(t, f.maxInFlight.Load(), int32(3))
	assert.Greater(t, f.maxInFlight.Load(), int32(1))
}

func TestCrawler_RunDelay(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{base: docPage("Home")}}
	c := New(&CrawlConfig{Platform: "generic", Concurrency: 1, Delay: 50 * time.Millisecond}, WithFetcher(f))

	start := time.Now()
	pages, err := c.Run(context.Background(), base, 1)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestCrawler_RunDiscoveryFailure(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{fail: map[string]error{base: errors.New("connection reset")}}
	c := newTestCrawler(f, 4)

	pages, err := c.Run(context.Background(), base, 5)
	require.NoError(t, err)
	assert.Empty(t, pages)
	assert.Equal(t, 2, f.callCount())
	assert.Equal(t, 1, c.Stats().PagesErrored)
}

func TestCrawler_RunErrors(t *testing.T) {
	t.Parallel()

	t.Run("invalid max pages", func(t *testing.T) {
		t.Parallel()

		c := newTestCrawler(&fakeFetcher{}, 1)
		_, err := c.Run(context.Background(), base, 0)
		assert.True(t, errors.Is(err, ErrInvalidMaxPages))
		assert.Empty(t, drain(c))
	})

	t.Run("invalid base URL", func(t *testing.T) {
		t.Parallel()

		for _, u := range []string{"ftp://docs.example.com", "/relative", "://bad"} {
			c := newTestCrawler(&fakeFetcher{}, 1)
			_, err := c.Run(context.Background(), u, 5)
			assert.True(t, errors.Is(err, ErrInvalidBaseURL), u)
		}
	})

	t.Run("second run", func(t *testing.T) {
		t.Parallel()

		c := newTestCrawler(&fakeFetcher{pages: map[string]string{base: docPage("Home")}}, 1)
		_, err := c.Run(context.Background(), base, 1)
		require.NoError(t, err)

		_, err = c.Run(context.Background(), base, 1)
		assert.True(t, errors.Is(err, ErrAlreadyRun))
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f := &fakeFetcher{pages: map[string]string{base: docPage("Home", "/a")}}
		c := newTestCrawler(f, 1)

		pages, err := c.Run(ctx, base, 5)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Empty(t, pages)
	})
}

func TestCrawler_Events(t *testing.T) {
	t.Parallel()

	pages := map[string]string{}
	pages[base] = docPage("Home", "/a", "/b")
	pages[base+"a"] = docPage("A")

	f := &fakeFetcher{pages: pages}
	c := newTestCrawler(f, 2)

	_, err := c.Run(context.Background(), base, 3)
	require.NoError(t, err)

	events := drain(c)
	require.NotEmpty(t, events)
	assert.Equal(t, plugin.EventCrawlStarted, events[0].Type)

	last := events[len(events)-1]
	assert.Equal(t, plugin.EventCrawlFinished, last.Type)
	require.NotNil(t, last.Stats)
	assert.Equal(t, 2, last.Stats.PagesScraped)
	assert.Equal(t, 1, last.Stats.PagesErrored)

	counts := map[plugin.EventType]int{}
	for _, ev := range events {
		counts[ev.Type]++
		if ev.Type == plugin.EventPageDone {
			assert.NotNil(t, ev.Page)
		}
		if ev.Type == plugin.EventPageError {
			var statusErr *fetcher.StatusError
			assert.True(t, errors.As(ev.Error, &statusErr))
		}
	}
	assert.Equal(t, 3, counts[plugin.EventPageQueued])
	assert.Equal(t, 3, counts[plugin.EventPageStarted])
	assert.Equal(t, 2, counts[plugin.EventPageDone])
	assert.Equal(t, 1, counts[plugin.EventPageError])
}

func TestCrawler_Stop(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{base: docPage("Home", "/a", "/b")}}
	c := newTestCrawler(f, 1)
	c.Stop()

	pages, err := c.Run(context.Background(), base, 3)
	require.NoError(t, err)
	assert.Empty(t, pages)
	// only the discovery fetch
	assert.Equal(t, 1, f.callCount())
}
