package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramkansal/docfang/internal/crawler"
	"github.com/ramkansal/docfang/internal/profile"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.docfang.yaml")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfigNotFound))
		assert.Nil(t, cfg)
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `crawl:
  delay: 0.25
  concurrency: 4
  timeout: 20s
  user_agent: "Research/2.0"
  max_body_size: 1048576
  headers:
    Accept-Language: en
output:
  dir: out
  format: markdown
  db: /tmp/docfang.db
profiles:
  mkdocs:
    content_selector: ".md-content"
    title_selector: "h1"
    code_selector: "pre code"
    navigation_selector: ".md-nav a"
`)

		f, err := LoadConfigFile(path)
		require.NoError(t, err)

		require.NotNil(t, f.Crawl.Delay)
		assert.InDelta(t, 0.25, *f.Crawl.Delay, 1e-9)
		assert.Equal(t, 4, f.Crawl.Concurrency)
		assert.Equal(t, 20*time.Second, f.Crawl.Timeout)
		assert.Equal(t, "Research/2.0", f.Crawl.UserAgent)
		assert.Equal(t, 1048576, f.Crawl.MaxBodySize)
		assert.Equal(t, map[string]string{"Accept-Language": "en"}, f.Crawl.Headers)

		assert.Equal(t, "out", f.Output.Dir)
		assert.Equal(t, "markdown", f.Output.Format)
		assert.Equal(t, "/tmp/docfang.db", f.Output.DB)

		require.Contains(t, f.Profiles, "mkdocs")
		assert.Equal(t, ".md-nav a", f.Profiles["mkdocs"].Nav)
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(writeConfig(t, `invalid: yaml: content: [}`))
		assert.Error(t, err)
	})

	t.Run("rejects invalid profile", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `profiles:
  broken:
    content_selector: "main["
    title_selector: "h1"
    code_selector: "pre"
    navigation_selector: "nav a"
`)
		_, err := LoadConfigFile(path)
		assert.True(t, errors.Is(err, profile.ErrInvalidProfile))
	})

	t.Run("rejects negative delay", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(writeConfig(t, "crawl:\n  delay: -1\n"))
		assert.True(t, errors.Is(err, ErrInvalidDelay))
	})

	t.Run("empty file is valid", func(t *testing.T) {
		t.Parallel()

		f, err := LoadConfigFile(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Nil(t, f.Crawl.Delay)
	})
}

func TestFileValidate(t *testing.T) {
	t.Parallel()

	neg := -0.5
	tests := []struct {
		name string
		file File
		want error
	}{
		{"zero value", File{}, nil},
		{"negative delay", File{Crawl: CrawlSection{Delay: &neg}}, ErrInvalidDelay},
		{"negative concurrency", File{Crawl: CrawlSection{Concurrency: -1}}, ErrInvalidConcurrency},
		{"negative timeout", File{Crawl: CrawlSection{Timeout: -time.Second}}, ErrInvalidTimeout},
		{"negative body size", File{Crawl: CrawlSection{MaxBodySize: -1}}, ErrInvalidMaxBodySize},
		{"unknown format", File{Output: OutputSection{Format: "yaml"}}, ErrInvalidFormat},
		{"missing selector", File{Profiles: map[string]profile.Definition{"x": {Content: "main"}}}, profile.ErrInvalidProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.file.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("overrides set values", func(t *testing.T) {
		t.Parallel()

		delay := 0.5
		f := File{
			Crawl: CrawlSection{
				Delay:       &delay,
				Concurrency: 3,
				Timeout:     5 * time.Second,
				UserAgent:   "Custom/1.0",
				MaxBodySize: 1024,
				Headers:     map[string]string{"B": "2", "A": "1"},
			},
			Profiles: map[string]profile.Definition{
				"mkdocs": {Content: "main", Title: "h1", Code: "pre", Nav: "nav a"},
			},
		}

		cfg := crawler.DefaultConfig()
		cfg.Headers = []string{"X-Flag: yes"}
		f.Apply(cfg)

		assert.Equal(t, 500*time.Millisecond, cfg.Delay)
		assert.Equal(t, 3, cfg.Concurrency)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, "Custom/1.0", cfg.UserAgent)
		assert.Equal(t, 1024, cfg.MaxBodySize)
		assert.Equal(t, []string{"A: 1", "B: 2", "X-Flag: yes"}, cfg.Headers)
		assert.Contains(t, cfg.Profiles, "mkdocs")
	})

	t.Run("keeps defaults for unset values", func(t *testing.T) {
		t.Parallel()

		cfg := crawler.DefaultConfig()
		(&File{}).Apply(cfg)
		assert.Equal(t, crawler.DefaultConfig(), cfg)
	})

	t.Run("zero delay is honored", func(t *testing.T) {
		t.Parallel()

		zero := 0.0
		cfg := crawler.DefaultConfig()
		(&File{Crawl: CrawlSection{Delay: &zero}}).Apply(cfg)
		assert.Equal(t, time.Duration(0), cfg.Delay)
	})
}

func TestValidateCrawl(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateCrawl(crawler.DefaultConfig()))

	cfg := crawler.DefaultConfig()
	cfg.Concurrency = 0
	assert.True(t, errors.Is(ValidateCrawl(cfg), ErrInvalidConcurrency))

	cfg = crawler.DefaultConfig()
	cfg.Timeout = 0
	assert.True(t, errors.Is(ValidateCrawl(cfg), ErrInvalidTimeout))

	cfg = crawler.DefaultConfig()
	cfg.Delay = -time.Second
	assert.True(t, errors.Is(ValidateCrawl(cfg), ErrInvalidDelay))
}

func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		path := writeConfig(t, "crawl: {}")
		assert.Equal(t, path, FindConfigFile(path))
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		assert.Equal(t, "", FindConfigFile("/nonexistent/path/config.yaml"))
	})

	t.Run("finds file in the working directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("crawl: {}"), 0o600))
		t.Chdir(dir)

		found := FindConfigFile("")
		assert.Equal(t, DefaultConfigFile, filepath.Base(found))
	})
}

func TestSeconds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1500*time.Millisecond, Seconds(1.5))
	assert.Equal(t, time.Duration(0), Seconds(0))
}
