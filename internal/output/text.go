package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/ramkansal/docfang/internal/report"
	"github.com/ramkansal/docfang/pkg/plugin"
)

// TextWriter writes the report as plain text, mirroring the terminal output
// (without ANSI color codes).
type TextWriter struct{}

// NewTextWriter creates a new plain-text output writer.
func NewTextWriter() *TextWriter {
	return &TextWriter{}
}

func (w *TextWriter) Name() string      { return FormatText }
func (w *TextWriter) Extension() string { return ".txt" }

func (w *TextWriter) Write(out io.Writer, r *plugin.Report) error {
	var b strings.Builder

	// Banner
	b.WriteString("\n  DOCFANG\n")
	b.WriteString("  Documentation crawler and extractor\n")
	b.WriteString("  " + strings.Repeat("-", 58) + "\n\n")

	b.WriteString(fmt.Sprintf("  Platform: %s\n", r.Platform))
	b.WriteString(fmt.Sprintf("  Scraped:  %s\n\n", r.ScrapedAt))

	// Page results
	for _, p := range r.Pages {
		b.WriteString(fmt.Sprintf("  [%s] %s %s\n", p.Title, p.URL, pageCounts(p)))
		if p.Section != nil {
			b.WriteString("      +-- section: " + *p.Section)
			if p.Subsection != nil {
				b.WriteString(" / " + *p.Subsection)
			}
			b.WriteString("\n")
		}
		for _, ep := range p.APIEndpoints {
			b.WriteString(fmt.Sprintf("      +-- api: %s %s\n", ep.Method, ep.Path))
		}
		if len(p.Tags) > 0 {
			b.WriteString("      +-- tags: " + strings.Join(p.Tags, ", ") + "\n")
		}
	}

	// Summary
	a := report.Analysis(r.Analysis)
	b.WriteString("\n  " + strings.Repeat("-", 50) + "\n")
	b.WriteString("  Crawl complete\n")
	b.WriteString(fmt.Sprintf("    Pages:  %d scraped\n", r.TotalPages))
	b.WriteString(fmt.Sprintf("    Items:  %d code examples, %d API endpoints\n",
		a.Int(report.KeyTotalCodeExamples), a.Int(report.KeyTotalAPIEndpoints)))
	if n := a.Int(report.KeyAvgContentLength); n > 0 {
		b.WriteString(fmt.Sprintf("    Avg:    %d characters per page\n", n))
	}

	if langs := countRows(a.Counts(report.KeyProgrammingLanguages)); len(langs) > 0 {
		parts := make([]string, 0, len(langs))
		for _, row := range langs {
			parts = append(parts, row[0]+":"+row[1])
		}
		b.WriteString("    Langs:  " + strings.Join(parts, ", ") + "\n")
	}
	b.WriteString("\n")

	_, err := io.WriteString(out, b.String())
	return err
}

// ---------- helpers ----------

func pageCounts(p *plugin.DocumentationPage) string {
	var parts []string
	if n := len(p.CodeExamples); n > 0 {
		parts = append(parts, fmt.Sprintf("code:%d", n))
	}
	if n := len(p.APIEndpoints); n > 0 {
		parts = append(parts, fmt.Sprintf("api:%d", n))
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " ") + "]"
}
