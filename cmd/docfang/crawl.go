package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ramkansal/docfang/internal/config"
	"github.com/ramkansal/docfang/internal/crawler"
	"github.com/ramkansal/docfang/internal/output"
	"github.com/ramkansal/docfang/internal/profile"
	"github.com/ramkansal/docfang/internal/report"
	"github.com/ramkansal/docfang/internal/store"
	"github.com/ramkansal/docfang/pkg/plugin"
)

// crawlJob is everything runCrawlCmd needs after flags and the config file
// have been merged.
type crawlJob struct {
	platform string
	baseURL  string
	maxPages int

	cfg       *crawler.CrawlConfig
	writer    plugin.OutputWriter
	outputDir string
	fileName  string
	dbPath    string
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	silent, _ := cmd.Flags().GetBool("silent")
	noColor, _ := cmd.Flags().GetBool("no-color")

	job, err := buildJob(cmd, args)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), verbose, silent)

	registry, err := profile.NewRegistry(job.cfg.Profiles)
	if err != nil {
		return errors.Wrap(err, "configuration error")
	}
	if !registry.Has(job.platform) {
		logger.Warn("unknown platform, using generic profile", "platform", job.platform)
	}

	if !noColor {
		enableANSI()
	}
	ui := &console{out: cmd.OutOrStdout(), color: !noColor, verbose: verbose, silent: silent}

	c := crawler.New(job.cfg, crawler.WithLogger(logger), crawler.WithRegistry(registry))
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle Ctrl+C
	sig := make(chan os.Signal, 1)
	registerSignals(sig)
	defer signal.Stop(sig)
	go func() {
		select {
		case <-sig:
			ui.interrupted()
			c.Stop()
			cancel()
		case <-ctx.Done():
		}
	}()

	ui.start(job)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range c.Events() {
			ui.handleEvent(event)
		}
	}()

	pages, runErr := c.Run(ctx, job.baseURL, job.maxPages)
	<-done

	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		logger.Warn("crawl interrupted, saving partial results", "pages", len(pages))
	default:
		return runErr
	}

	rep := report.Build(job.platform, pages, time.Now())

	path, err := output.Save(job.outputDir, job.fileName, rep, job.writer)
	if err != nil {
		return errors.Wrap(err, "saving report")
	}
	ui.saved(path, len(rep.Pages))

	if job.dbPath != "" {
		archive(logger, ui, job.dbPath, job.baseURL, rep)
	}

	return nil
}

// buildJob merges built-in defaults, the config file and the flags the
// user set, in that order. The platform key is lower-cased once here so the
// profile, the report and the file name agree.
func buildJob(cmd *cobra.Command, args []string) (*crawlJob, error) {
	file, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	job := &crawlJob{
		platform: strings.ToLower(strings.TrimSpace(args[0])),
		baseURL:  args[1],
		maxPages: parseMaxPages(args[2]),
	}

	cfg := crawler.DefaultConfig()
	file.Apply(cfg)
	cfg.Platform = job.platform
	if err := applyCrawlFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := config.ValidateCrawl(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration error")
	}
	job.cfg = cfg

	format := file.Output.Format
	if cmd.Flags().Changed("format") || format == "" {
		format, _ = cmd.Flags().GetString("format")
	}
	job.writer, err = output.WriterFor(format)
	if err != nil {
		return nil, errors.Wrap(err, "configuration error")
	}

	job.outputDir = file.Output.Dir
	if cmd.Flags().Changed("output-dir") || job.outputDir == "" {
		job.outputDir, _ = cmd.Flags().GetString("output-dir")
	}

	job.fileName, _ = cmd.Flags().GetString("output")
	if job.fileName == "" {
		job.fileName = output.DefaultFileName(job.platform, job.writer.Extension(), time.Now())
	}

	job.dbPath, err = archivePath(cmd, file)
	if err != nil {
		return nil, err
	}

	return job, nil
}

// applyCrawlFlags copies the crawl flags the user actually set onto cfg so
// that unset flags never mask config file values.
func applyCrawlFlags(cmd *cobra.Command, cfg *crawler.CrawlConfig) error {
	flags := cmd.Flags()

	if flags.Changed("delay") {
		delay, err := flags.GetFloat64("delay")
		if err != nil {
			return err
		}
		if delay < 0 {
			return errors.Wrapf(config.ErrInvalidDelay, "--delay %v", delay)
		}
		cfg.Delay = config.Seconds(delay)
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if flags.Changed("header") {
		headers, _ := flags.GetStringArray("header")
		cfg.Headers = append(cfg.Headers, headers...)
	}
	return nil
}

// archivePath resolves where the run is archived. --db wins over the config
// file; --archive alone uses the default XDG location. Empty means the run
// is not archived.
func archivePath(cmd *cobra.Command, file *config.File) (string, error) {
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		return db, nil
	}
	if file.Output.DB != "" {
		return file.Output.DB, nil
	}
	if enabled, _ := cmd.Flags().GetBool("archive"); enabled {
		return store.DefaultPath()
	}
	return "", nil
}

// archive stores the report in the SQLite history. Failures are logged and
// never fail the run: the report file is already on disk.
func archive(logger *log.Logger, ui *console, dbPath, baseURL string, rep *plugin.Report) {
	db, err := store.Open(dbPath)
	if err != nil {
		logger.Warn("could not open history database", "path", dbPath, "err", err)
		return
	}
	defer func() { _ = db.Close() }()

	id, err := db.SaveReport(context.Background(), baseURL, rep)
	if err != nil {
		logger.Warn("could not archive run", "path", dbPath, "err", err)
		return
	}
	ui.archived(id, dbPath)
}
