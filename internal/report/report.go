// Package report aggregates extracted pages into cross-page statistics and
// assembles the final crawl report.
package report

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/ramkansal/docfang/pkg/plugin"
)

// Analysis keys.
const (
	KeyTotalPages           = "total_pages"
	KeySections             = "sections"
	KeyTags                 = "tags"
	KeyTotalCodeExamples    = "total_code_examples"
	KeyProgrammingLanguages = "programming_languages"
	KeyTotalAPIEndpoints    = "total_api_endpoints"
	KeyAvgContentLength     = "avg_content_length"
)

// Analysis maps a statistic name to its value. Counts are int and
// breakdowns are map[string]int.
type Analysis map[string]any

// Analyze computes statistics over pages. An empty input yields an empty
// Analysis. Nil entries are ignored.
func Analyze(pages []*plugin.DocumentationPage) Analysis {
	analysis := Analysis{}

	sections := map[string]int{}
	tags := map[string]int{}
	languages := map[string]int{}
	var total, codeCount, endpoints, chars int

	for _, page := range pages {
		if page == nil {
			continue
		}
		total++

		if page.Section != nil {
			sections[*page.Section]++
		}
		for _, tag := range page.Tags {
			tags[tag]++
		}

		codeCount += len(page.CodeExamples)
		for _, ex := range page.CodeExamples {
			languages[ex.Language]++
		}

		endpoints += len(page.APIEndpoints)
		chars += utf8.RuneCountInString(page.Content)
	}

	if total == 0 {
		return analysis
	}

	analysis[KeyTotalPages] = total
	analysis[KeySections] = sections
	analysis[KeyTags] = tags
	analysis[KeyTotalCodeExamples] = codeCount
	analysis[KeyProgrammingLanguages] = languages
	analysis[KeyTotalAPIEndpoints] = endpoints
	analysis[KeyAvgContentLength] = chars / total

	return analysis
}

// Build assembles the report for a finished crawl.
func Build(platform string, pages []*plugin.DocumentationPage, now time.Time) *plugin.Report {
	if pages == nil {
		pages = []*plugin.DocumentationPage{}
	}
	return &plugin.Report{
		Platform:   platform,
		TotalPages: len(pages),
		Analysis:   Analyze(pages),
		ScrapedAt:  strconv.FormatInt(now.Unix(), 10),
		Pages:      pages,
	}
}

// Int returns the integer statistic stored under key, or 0.
func (a Analysis) Int(key string) int {
	v, _ := a[key].(int)
	return v
}

// Counts returns the breakdown stored under key, or nil.
func (a Analysis) Counts(key string) map[string]int {
	v, _ := a[key].(map[string]int)
	return v
}
