package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitemaps/internal/database"
	"github.com/nao1215/sitemaps/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is stamped into every document.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion sets the tool version recorded in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps run reports with output metadata.
type JSONReport struct {
	// Version is the sitemaps version that generated this document.
	Version string `json:"version,omitempty"`

	// Reports holds one report per target, in input order.
	Reports []*model.HostReport `json:"reports"`

	// Summaries holds the Summary of each report, aligned with Reports.
	Summaries []model.Summary `json:"summaries"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(reports []*model.HostReport, version string) *JSONReport {
	summaries := make([]model.Summary, 0, len(reports))
	for _, r := range reports {
		summaries = append(summaries, r.Summary())
	}
	if reports == nil {
		reports = make([]*model.HostReport, 0)
	}
	return &JSONReport{
		Version:   version,
		Reports:   reports,
		Summaries: summaries,
	}
}

// JSONDiff is the JSON form of a run comparison.
type JSONDiff struct {
	Version string `json:"version,omitempty"`
	Target  string `json:"target"`
	*database.Diff
}

// Write outputs the reports wrapped with metadata.
func (w *JSONWriter) Write(reports []*model.HostReport) (int, error) {
	return w.writeJSON(NewJSONReport(reports, w.version))
}

// WriteDiff outputs the diff in JSON format.
func (w *JSONWriter) WriteDiff(target string, diff *database.Diff) (int, error) {
	return w.writeJSON(JSONDiff{Version: w.version, Target: target, Diff: diff})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
