package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/sitemaps/internal/database"
	"github.com/nao1215/sitemaps/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the reports of one invocation, one per target.
	// Returns the number of bytes written and any error encountered.
	Write(reports []*model.HostReport) (int, error)

	// WriteDiff outputs the difference between two runs of a target.
	WriteDiff(target string, diff *database.Diff) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the reports to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(reports []*model.HostReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(reports)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteDiff outputs the diff to all configured Writers.
func (m *MultiWriter) WriteDiff(target string, diff *database.Diff) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDiff(target, diff)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

const dateLayout = "2006-01-02 15:04:05 MST"

// entryFields formats the optional fields of e, using "-" for unset ones.
func entryFields(e model.Entry) (lastmod, changefreq, priority string) {
	lastmod, changefreq, priority = "-", "-", "-"
	if t, ok := e.LastModified(); ok {
		lastmod = t.Format(time.RFC3339)
	}
	if f := e.ChangeFrequency(); f.IsSet() {
		changefreq = f.String()
	}
	if p, ok := e.Priority(); ok {
		priority = strconv.FormatFloat(p, 'f', 1, 64)
	}
	return lastmod, changefreq, priority
}

// sourceText describes where the sitemap URL of a report came from.
func sourceText(s model.Source) string {
	switch s {
	case model.SourceDirect:
		return "given directly"
	case model.SourceRobots:
		return "robots.txt"
	case model.SourceProbe:
		return "conventional path"
	default:
		return "-"
	}
}

// frequencyOrder lists summary keys in protocol order, unset last.
func frequencyOrder() []string {
	keys := make([]string, 0, len(model.ChangeFrequencies)+1)
	for _, f := range model.ChangeFrequencies {
		keys = append(keys, f.String())
	}
	return append(keys, "unset")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
