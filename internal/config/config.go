// Package config loads the optional docfang YAML configuration file and
// validates crawl settings.
package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"

	"github.com/ramkansal/docfang/internal/crawler"
	"github.com/ramkansal/docfang/internal/profile"
)

// AppName is used for XDG directory names.
const AppName = "docfang"

// File represents the structure of the configuration file.
//
//	crawl:
//	  delay: 0.5
//	  concurrency: 4
//	  timeout: 20s
//	  headers:
//	    Accept-Language: en
//	output:
//	  dir: scraping_results
//	  format: markdown
//	profiles:
//	  mkdocs:
//	    content_selector: ".md-content"
//	    title_selector: "h1"
//	    code_selector: "pre code"
//	    navigation_selector: ".md-nav a"
type File struct {
	Crawl    CrawlSection                  `yaml:"crawl,omitempty"`
	Output   OutputSection                 `yaml:"output,omitempty"`
	Profiles map[string]profile.Definition `yaml:"profiles,omitempty"`
}

// CrawlSection holds crawl defaults. Zero values mean "not set".
type CrawlSection struct {
	// Delay is the per-request delay in seconds. Fractions are allowed.
	Delay       *float64          `yaml:"delay,omitempty"`
	Concurrency int               `yaml:"concurrency,omitempty"`
	Timeout     time.Duration     `yaml:"timeout,omitempty"`
	UserAgent   string            `yaml:"user_agent,omitempty"`
	MaxBodySize int               `yaml:"max_body_size,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
}

// OutputSection holds report output defaults.
type OutputSection struct {
	Dir    string `yaml:"dir,omitempty"`
	Format string `yaml:"format,omitempty"`
	// DB is the SQLite archive path. Empty disables archiving.
	DB string `yaml:"db,omitempty"`
}

// XDGConfigDir returns the docfang config directory.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGDataDir returns the docfang data directory.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the file for values that can never work.
func (f *File) Validate() error {
	if f.Crawl.Delay != nil && *f.Crawl.Delay < 0 {
		return errors.Wrapf(ErrInvalidDelay, "crawl.delay: %v", *f.Crawl.Delay)
	}
	if f.Crawl.Concurrency < 0 {
		return errors.Wrapf(ErrInvalidConcurrency, "crawl.concurrency: %d", f.Crawl.Concurrency)
	}
	if f.Crawl.Timeout < 0 {
		return errors.Wrapf(ErrInvalidTimeout, "crawl.timeout: %s", f.Crawl.Timeout)
	}
	if f.Crawl.MaxBodySize < 0 {
		return errors.Wrapf(ErrInvalidMaxBodySize, "crawl.max_body_size: %d", f.Crawl.MaxBodySize)
	}
	if f.Output.Format != "" {
		if err := ValidateFormat(f.Output.Format); err != nil {
			return err
		}
	}
	for name, def := range f.Profiles {
		if _, err := profile.Compile(name, def); err != nil {
			return errors.Wrap(err, "profiles")
		}
	}
	return nil
}

// Apply copies every value set in the file onto cfg.
func (f *File) Apply(cfg *crawler.CrawlConfig) {
	c := f.Crawl
	if c.Delay != nil {
		cfg.Delay = Seconds(*c.Delay)
	}
	if c.Concurrency > 0 {
		cfg.Concurrency = c.Concurrency
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	if c.UserAgent != "" {
		cfg.UserAgent = c.UserAgent
	}
	if c.MaxBodySize > 0 {
		cfg.MaxBodySize = c.MaxBodySize
	}
	if len(c.Headers) > 0 {
		cfg.Headers = append(HeaderList(c.Headers), cfg.Headers...)
	}

	if len(f.Profiles) > 0 {
		if cfg.Profiles == nil {
			cfg.Profiles = make(map[string]profile.Definition, len(f.Profiles))
		}
		for name, def := range f.Profiles {
			cfg.Profiles[name] = def
		}
	}
}

// ValidateCrawl checks a fully merged crawl configuration.
func ValidateCrawl(cfg *crawler.CrawlConfig) error {
	if cfg.Delay < 0 {
		return errors.Wrapf(ErrInvalidDelay, "%s", cfg.Delay)
	}
	if cfg.Concurrency < 1 {
		return errors.Wrapf(ErrInvalidConcurrency, "%d", cfg.Concurrency)
	}
	if cfg.Timeout <= 0 {
		return errors.Wrapf(ErrInvalidTimeout, "%s", cfg.Timeout)
	}
	if cfg.MaxBodySize < 0 {
		return errors.Wrapf(ErrInvalidMaxBodySize, "%d", cfg.MaxBodySize)
	}
	return nil
}

// ValidateFormat accepts the output format names and their short aliases.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case "json", "markdown", "md", "text", "txt":
		return nil
	}
	return errors.Wrapf(ErrInvalidFormat, "%q", format)
}

// Seconds converts fractional seconds to a duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// HeaderList renders a header map as sorted "Key: Value" strings.
func HeaderList(headers map[string]string) []string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s: %s", k, headers[k]))
	}
	return out
}
