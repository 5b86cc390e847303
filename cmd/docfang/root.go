package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ramkansal/docfang/internal/config"
	"github.com/ramkansal/docfang/internal/crawler"
	"github.com/ramkansal/docfang/internal/output"
)

// defaultMaxPages is used when the max_pages argument is not a number.
const defaultMaxPages = 20

var errMissingArgs = errors.New("requires <platform> <base_url> <max_pages>")

// NewRootCmd creates the root command for docfang.
func NewRootCmd() *cobra.Command {
	defaults := crawler.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "docfang <platform> <base_url> <max_pages>",
		Short: "Crawl a documentation site and extract structured pages",
		Long: `docfang crawls a documentation site starting at base_url, extracts the
title, content, code examples, API endpoints, section and tags of every page,
and saves an aggregated report.

The platform selects the extraction profile (run "docfang profiles" for the
list). Unknown platforms fall back to the generic profile. The crawl visits
base_url plus up to max_pages-1 same-host links discovered on it; a
max_pages that is not a number defaults to 20.

Examples:
  docfang sphinx https://docs.example.com/ 50
  docfang gitbook https://book.example.com/ 10 --format markdown
  docfang generic https://example.com/docs/ 25 --delay 0.2 -H "Accept-Language: en"`,
		Version:       getVersion(),
		Args:          validateArgs,
		RunE:          runCrawlCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug logs and per-page details")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: ./.docfang.yaml or $XDG_CONFIG_HOME/docfang/config.yaml)")
	cmd.PersistentFlags().String("db", "", "SQLite archive path for crawl history")

	// Crawl flags
	cmd.Flags().Float64("delay", defaults.Delay.Seconds(), "Delay before each request in seconds")
	cmd.Flags().Int("concurrency", defaults.Concurrency, "Maximum number of requests in flight")
	cmd.Flags().DurationP("timeout", "t", defaults.Timeout, "Per-request timeout")
	cmd.Flags().String("user-agent", "", "Custom User-Agent header (default \""+crawler.DefaultUserAgent+"\")")
	cmd.Flags().StringArrayP("header", "H", nil, `Extra request header in "Key: Value" form (repeatable)`)

	// Output flags
	cmd.Flags().String("output-dir", output.DefaultDir, "Directory the report is saved to")
	cmd.Flags().StringP("output", "o", "", "Report file name (default documentation_scrape_<platform>_<unix>.<ext>)")
	cmd.Flags().StringP("format", "f", output.FormatJSON, "Report format: json, markdown or text")
	cmd.Flags().Bool("archive", false, "Archive the run in the SQLite history database")
	cmd.Flags().BoolP("silent", "s", false, "Suppress all output except errors")

	cmd.AddCommand(NewProfilesCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\n  %s %s\n\n", clr(true, "red", "ERROR:"), err)
		os.Exit(1)
	}
}

// validateArgs prints the usage when positional arguments are missing.
func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 3 {
		_ = cmd.Usage()
		return errors.Wrapf(errMissingArgs, "got %d argument(s)", len(args))
	}
	return cobra.MaximumNArgs(3)(cmd, args)
}

// parseMaxPages parses the max_pages argument, defaulting when it is not a
// number. Values below one are passed through and rejected by the crawler.
func parseMaxPages(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultMaxPages
	}
	return n
}

// loadConfig finds and loads the configuration file. A missing file is only
// an error when --config names it explicitly.
func loadConfig(cmd *cobra.Command) (*config.File, error) {
	explicit, _ := cmd.Flags().GetString("config")

	path := config.FindConfigFile(explicit)
	if path == "" {
		if explicit != "" {
			return nil, errors.Wrap(config.ErrConfigNotFound, explicit)
		}
		return &config.File{}, nil
	}
	return config.LoadConfigFile(path)
}

// newLogger builds the diagnostic logger. Per-page progress goes through the
// console instead.
func newLogger(w io.Writer, verbose, silent bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "docfang",
	})
	switch {
	case verbose:
		logger.SetLevel(log.DebugLevel)
	case silent:
		logger.SetLevel(log.WarnLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
