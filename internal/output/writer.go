// Package output serializes crawl reports and persists them to disk.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ramkansal/docfang/pkg/plugin"
)

// DefaultDir is the directory reports are saved to when none is given.
const DefaultDir = "scraping_results"

// Formats accepted by WriterFor.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// ErrUnknownFormat is returned by WriterFor for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")

// WriterFor returns the writer for a format name. "md" and "txt" are
// accepted as aliases.
func WriterFor(format string) (plugin.OutputWriter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, "":
		return NewJSONWriter(), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(), nil
	case FormatText, "txt":
		return NewTextWriter(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q (want json, markdown or text)", format)
	}
}

// DefaultFileName returns documentation_scrape_<platform>_<unix><ext>.
func DefaultFileName(platform, ext string, now time.Time) string {
	return fmt.Sprintf("documentation_scrape_%s_%d%s", platform, now.Unix(), ext)
}

// Save writes report into dir/name using w and returns the file path. The
// directory is created when missing. An empty dir means DefaultDir.
func Save(dir, name string, report *plugin.Report, w plugin.OutputWriter) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if name == "" {
		return "", errors.New("empty output file name")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", dir)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", path)
	}

	if err := w.Write(f, report); err != nil {
		_ = f.Close()
		return "", errors.Wrapf(err, "writing %s report", w.Name())
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "closing %s", path)
	}

	return path, nil
}
