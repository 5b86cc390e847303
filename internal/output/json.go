package output

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/ramkansal/docfang/pkg/plugin"
)

// JSONWriter writes the report as pretty-printed JSON.
type JSONWriter struct {
	indent string
}

// NewJSONWriter creates a JSONWriter with two-space indentation.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{indent: "  "}
}

func (w *JSONWriter) Name() string      { return FormatJSON }
func (w *JSONWriter) Extension() string { return ".json" }

func (w *JSONWriter) Write(out io.Writer, report *plugin.Report) error {
	data, err := json.MarshalIndent(report, "", w.indent)
	if err != nil {
		return errors.Wrap(err, "marshaling report")
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}
