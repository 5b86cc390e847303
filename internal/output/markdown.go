package output

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/ramkansal/docfang/internal/report"
	"github.com/ramkansal/docfang/pkg/plugin"
)

// maxSnippetLines bounds the code shown per example.
const maxSnippetLines = 20

// MarkdownWriter renders the report as a Markdown document.
type MarkdownWriter struct{}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

func (w *MarkdownWriter) Name() string      { return FormatMarkdown }
func (w *MarkdownWriter) Extension() string { return ".md" }

func (w *MarkdownWriter) Write(out io.Writer, r *plugin.Report) error {
	md := markdown.NewMarkdown(out)

	md.H1("Documentation Scrape: " + r.Platform)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Platform", r.Platform},
			{"Pages", strconv.Itoa(r.TotalPages)},
			{"Scraped At", r.ScrapedAt},
		},
	})
	md.PlainText("")

	w.writeAnalysis(md, report.Analysis(r.Analysis))

	if len(r.Pages) > 0 {
		md.H2("Pages")
		md.PlainText("")
		for _, page := range r.Pages {
			w.writePage(md, page)
		}
	}

	return md.Build()
}

func (w *MarkdownWriter) writeAnalysis(md *markdown.Markdown, a report.Analysis) {
	if len(a) == 0 {
		return
	}

	md.H2("Analysis")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Statistic", "Value"},
		Rows: [][]string{
			{"Total pages", strconv.Itoa(a.Int(report.KeyTotalPages))},
			{"Code examples", strconv.Itoa(a.Int(report.KeyTotalCodeExamples))},
			{"API endpoints", strconv.Itoa(a.Int(report.KeyTotalAPIEndpoints))},
			{"Average content length", strconv.Itoa(a.Int(report.KeyAvgContentLength))},
		},
	})
	md.PlainText("")

	breakdowns := []struct {
		title string
		key   string
	}{
		{"Sections", report.KeySections},
		{"Tags", report.KeyTags},
		{"Languages", report.KeyProgrammingLanguages},
	}
	for _, b := range breakdowns {
		counts := a.Counts(b.key)
		if len(counts) == 0 {
			continue
		}
		md.PlainText("### " + b.title)
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Name", "Count"},
			Rows:   countRows(counts),
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writePage(md *markdown.Markdown, page *plugin.DocumentationPage) {
	md.PlainText("### " + page.Title)
	md.PlainText("")

	info := []string{"URL: " + page.URL}
	if page.Section != nil {
		info = append(info, "Section: "+*page.Section)
	}
	if page.Subsection != nil {
		info = append(info, "Subsection: "+*page.Subsection)
	}
	if len(page.Tags) > 0 {
		info = append(info, "Tags: "+strings.Join(page.Tags, ", "))
	}
	md.BulletList(info...)
	md.PlainText("")

	if len(page.APIEndpoints) > 0 {
		rows := make([][]string, 0, len(page.APIEndpoints))
		for _, ep := range page.APIEndpoints {
			rows = append(rows, []string{ep.Method, "`" + ep.Path + "`", ep.Description, strconv.Itoa(len(ep.Parameters))})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Method", "Path", "Description", "Parameters"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	for _, ex := range page.CodeExamples {
		if ex.Description != nil {
			md.PlainText(*ex.Description)
			md.PlainText("")
		}
		md.CodeBlocks(markdown.SyntaxHighlight(ex.Language), snippet(ex.Code))
		md.PlainText("")
	}
}

// countRows returns name/count rows, highest count first.
func countRows(counts map[string]int) [][]string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(counts[name])})
	}
	return rows
}

func snippet(code string) string {
	lines := strings.Split(code, "\n")
	if len(lines) <= maxSnippetLines {
		return code
	}
	return strings.Join(lines[:maxSnippetLines], "\n") + "\n..."
}
