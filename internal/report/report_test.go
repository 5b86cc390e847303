package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramkansal/docfang/internal/report"
	"github.com/ramkansal/docfang/pkg/plugin"
)

func strPtr(s string) *string { return &s }

func samplePages() []*plugin.DocumentationPage {
	return []*plugin.DocumentationPage{
		{
			URL:     "https://docs.example.com/guide/install",
			Content: strings.Repeat("a", 120),
			Section: strPtr("Guide"),
			Tags:    []string{"tutorial", "installation"},
			CodeExamples: []plugin.CodeExample{
				{Language: "bash", Code: "npm install -g tools"},
				{Language: "python", Code: "print('hello')"},
			},
		},
		{
			URL:     "https://docs.example.com/guide/auth",
			Content: strings.Repeat("é", 101),
			Section: strPtr("Guide"),
			Tags:    []string{"tutorial", "authentication"},
			CodeExamples: []plugin.CodeExample{
				{Language: "bash", Code: "export TOKEN=abc"},
			},
		},
		{
			URL:     "https://api.example.com/docs",
			Content: strings.Repeat("b", 200),
			Tags:    []string{"api"},
			APIEndpoints: []plugin.APIEndpoint{
				{Method: "GET", Path: "/pets"},
				{Method: "POST", Path: "/pets"},
			},
		},
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields empty analysis", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, report.Analyze(nil))
		assert.Empty(t, report.Analyze([]*plugin.DocumentationPage{}))
	})

	t.Run("computes statistics", func(t *testing.T) {
		t.Parallel()

		a := report.Analyze(samplePages())

		assert.Equal(t, 3, a.Int(report.KeyTotalPages))
		assert.Equal(t, map[string]int{"Guide": 2}, a.Counts(report.KeySections))
		assert.Equal(t, map[string]int{
			"tutorial":       2,
			"installation":   1,
			"authentication": 1,
			"api":            1,
		}, a.Counts(report.KeyTags))
		assert.Equal(t, 3, a.Int(report.KeyTotalCodeExamples))
		assert.Equal(t, map[string]int{"bash": 2, "python": 1}, a.Counts(report.KeyProgrammingLanguages))
		assert.Equal(t, 2, a.Int(report.KeyTotalAPIEndpoints))
		// (120 + 101 + 200) / 3
		assert.Equal(t, 140, a.Int(report.KeyAvgContentLength))
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, report.Analyze(samplePages()), report.Analyze(samplePages()))
	})

	t.Run("ignores nil pages", func(t *testing.T) {
		t.Parallel()

		a := report.Analyze([]*plugin.DocumentationPage{nil})
		assert.Empty(t, a)
	})
}

func TestBuild(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)

	t.Run("assembles report", func(t *testing.T) {
		t.Parallel()

		pages := samplePages()
		r := report.Build("gitbook", pages, now)

		assert.Equal(t, "gitbook", r.Platform)
		assert.Equal(t, 3, r.TotalPages)
		assert.Equal(t, "1700000000", r.ScrapedAt)
		assert.Equal(t, pages, r.Pages)
		require.NotNil(t, r.Analysis)
		assert.Equal(t, 3, r.Analysis[report.KeyTotalPages])
	})

	t.Run("no pages", func(t *testing.T) {
		t.Parallel()

		r := report.Build("generic", nil, now)
		assert.Equal(t, 0, r.TotalPages)
		assert.NotNil(t, r.Pages)
		assert.Empty(t, r.Analysis)
	})
}
