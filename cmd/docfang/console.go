package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ramkansal/docfang/pkg/plugin"
)

// console renders crawl progress from the event stream.
type console struct {
	out     io.Writer
	color   bool
	verbose bool
	silent  bool
}

func (c *console) clr(color, text string) string {
	return clr(c.color, color, text)
}

func (c *console) printf(format string, args ...any) {
	if c.silent {
		return
	}
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) start(job *crawlJob) {
	if c.silent {
		return
	}
	c.banner()
	c.printf("\n  %s %s\n", c.clr("cyan", "Target:"), job.baseURL)
	c.printf("  %s %s  %s %d  %s %d  %s %s\n\n",
		c.clr("dim", "Platform:"), job.platform,
		c.clr("dim", "Max pages:"), job.maxPages,
		c.clr("dim", "Threads:"), job.cfg.Concurrency,
		c.clr("dim", "Delay:"), fmtDur(job.cfg.Delay),
	)
}

func (c *console) handleEvent(event plugin.CrawlEvent) {
	switch event.Type {
	case plugin.EventPageStarted:
		if c.verbose {
			c.printf("  %s %s\n", c.clr("dim", "○"), c.clr("dim", event.URL))
		}

	case plugin.EventPageDone:
		if event.Page == nil {
			return
		}
		p := event.Page
		c.printf("  %s [%s] %s %s\n",
			c.clr("green", "●"),
			c.clr("cyan", p.Title),
			p.URL,
			itemCountStr(c, p),
		)
		if !c.verbose {
			return
		}
		if p.Section != nil {
			section := *p.Section
			if p.Subsection != nil {
				section += " / " + *p.Subsection
			}
			c.printf("      %s %s\n", c.clr("dim", "├─ section:"), section)
		}
		for _, ep := range p.APIEndpoints {
			c.printf("      %s %s %s\n", c.clr("dim", "├─ api:"), ep.Method, ep.Path)
		}
		if len(p.Tags) > 0 {
			c.printf("      %s %s\n", c.clr("dim", "├─ tags:"), strings.Join(p.Tags, ", "))
		}

	case plugin.EventPageSkipped:
		c.printf("  %s %s %s\n", c.clr("yellow", "–"), event.URL, c.clr("dim", "("+event.Message+")"))

	case plugin.EventPageError:
		c.printf("  %s %s\n", c.clr("red", "✗"), event.Message)

	case plugin.EventCrawlStarted, plugin.EventPageQueued:
		// already printed in start()

	case plugin.EventCrawlFinished:
		if event.Stats == nil {
			return
		}
		s := event.Stats
		c.printf("\n  %s\n", strings.Repeat("─", 50))
		c.printf("  %s Crawl complete\n", c.clr("green", "✓"))
		c.printf("    Pages:  %s scraped, %s skipped, %s errors (of %d queued)\n",
			c.clr("cyan", fmt.Sprintf("%d", s.PagesScraped)),
			c.clr("yellow", fmt.Sprintf("%d", s.PagesSkipped)),
			c.clr("red", fmt.Sprintf("%d", s.PagesErrored)),
			s.PagesQueued,
		)
		c.printf("    Items:  %s code examples, %s API endpoints in %s (%.1f pages/sec)\n",
			c.clr("yellow", fmt.Sprintf("%d", s.CodeExamples)),
			c.clr("yellow", fmt.Sprintf("%d", s.APIEndpoints)),
			fmtDur(s.Elapsed),
			s.PagesPerSec,
		)
	}
}

func (c *console) saved(path string, pages int) {
	c.printf("    Output: %s %s\n", c.clr("green", path), c.clr("dim", fmt.Sprintf("(%d pages)", pages)))
}

func (c *console) archived(id int64, dbPath string) {
	c.printf("    Archive: run %s in %s\n", c.clr("cyan", fmt.Sprintf("#%d", id)), dbPath)
	c.printf("\n")
}

func (c *console) interrupted() {
	c.printf("\n\n%s Interrupt received, stopping...\n", c.clr("yellow", "!"))
}

func itemCountStr(c *console, p *plugin.DocumentationPage) string {
	var parts []string
	if n := len(p.CodeExamples); n > 0 {
		parts = append(parts, fmt.Sprintf("code:%d", n))
	}
	if n := len(p.APIEndpoints); n > 0 {
		parts = append(parts, fmt.Sprintf("api:%d", n))
	}
	if n := len(p.Tags); n > 0 {
		parts = append(parts, fmt.Sprintf("tags:%d", n))
	}
	if len(parts) == 0 {
		return ""
	}
	return c.clr("dim", "["+strings.Join(parts, " ")+"]")
}

func (c *console) banner() {
	fang := `
  ██████╗  ██████╗  ██████╗███████╗ █████╗ ███╗   ██╗ ██████╗
  ██╔══██╗██╔═══██╗██╔════╝██╔════╝██╔══██╗████╗  ██║██╔════╝
  ██║  ██║██║   ██║██║     █████╗  ███████║██╔██╗ ██║██║  ███╗
  ██║  ██║██║   ██║██║     ██╔══╝  ██╔══██║██║╚██╗██║██║   ██║
  ██████╔╝╚██████╔╝╚██████╗██║     ██║  ██║██║ ╚████║╚██████╔╝
  ╚═════╝  ╚═════╝  ╚═════╝╚═╝     ╚═╝  ╚═╝╚═╝  ╚═══╝ ╚═════╝`
	c.printf("%s\n", c.clr("cyan", fang))
	c.printf("  %s  %s\n", c.clr("dim", "Documentation crawler and extractor"), c.clr("dim", getVersion()))
	c.printf("  %s\n", c.clr("dim", strings.Repeat("─", 62)))
}

// ---------- Utilities ----------

func fmtDur(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}

var ansiCodes = map[string]string{
	"red":    "\033[31m",
	"green":  "\033[32m",
	"yellow": "\033[33m",
	"cyan":   "\033[36m",
	"dim":    "\033[2m",
	"bold":   "\033[1m",
	"reset":  "\033[0m",
}

// clr wraps text in an ANSI color when enabled is set.
func clr(enabled bool, color, text string) string {
	if !enabled {
		return text
	}
	code, ok := ansiCodes[color]
	if !ok {
		return text
	}
	return code + text + ansiCodes["reset"]
}
