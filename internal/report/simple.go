package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitemaps/internal/database"
	"github.com/nao1215/sitemaps/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEntries lists every entry location under each report.
	showEntries bool

	// verbose adds the optional fields of each listed entry.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEntries lists the entry locations of each report.
func WithShowEntries(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEntries = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:  newBaseWriter(output),
		showEntries: true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the reports in human-readable format.
func (w *SimpleWriter) Write(reports []*model.HostReport) (int, error) {
	var sb strings.Builder

	for _, report := range reports {
		w.writeHeader(&sb, report)
		w.writeSummary(&sb, report)
		w.writeSitemaps(&sb, report)
		w.writeEntries(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteDiff outputs the diff in human-readable format.
func (w *SimpleWriter) WriteDiff(target string, diff *database.Diff) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "CHANGES FOR "+strings.ToUpper(target))
	sb.WriteString(fmt.Sprintf("Previous run: %s\n", diff.PreviousID))
	sb.WriteString(fmt.Sprintf("Current run:  %s\n\n", diff.CurrentID))

	if diff.IsEmpty() {
		sb.WriteString("  No changes\n\n")
		return w.output.Write([]byte(sb.String()))
	}

	for _, section := range []struct {
		mark string
		locs []string
	}{
		{"+", diff.Added},
		{"-", diff.Removed},
		{"~", diff.Modified},
	} {
		for _, loc := range section.locs {
			sb.WriteString(fmt.Sprintf("  %s %s\n", section.mark, loc))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %d added, %d removed, %d modified\n\n",
		len(diff.Added), len(diff.Removed), len(diff.Modified)))

	return w.output.Write([]byte(sb.String()))
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the target and run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.HostReport) {
	writeBanner(sb, "SITEMAP REPORT: "+report.Target)

	if report.SitemapURL != "" {
		sb.WriteString(fmt.Sprintf("Sitemap:     %s\n", report.SitemapURL))
		sb.WriteString(fmt.Sprintf("Found via:   %s\n", sourceText(report.Source)))
	}
	sb.WriteString(fmt.Sprintf("Run:         %s\n", report.ID))
	sb.WriteString(fmt.Sprintf("Started:     %s\n", report.StartedAt.Format(dateLayout)))
	sb.WriteString(fmt.Sprintf("Duration:    %s\n", report.Duration))

	if report.Failed() {
		sb.WriteString(fmt.Sprintf("Status:      ERROR - %s\n", report.Error))
	} else {
		sb.WriteString("Status:      Complete\n")
	}
	sb.WriteString("\n")
}

// writeSummary writes entry counts and the change frequency breakdown.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.HostReport) {
	if report.Failed() {
		return
	}
	summary := report.Summary()

	writeSection(sb, "SUMMARY")
	sb.WriteString(fmt.Sprintf("  ENTRIES:   %d\n", summary.Entries))
	sb.WriteString(fmt.Sprintf("  SITEMAPS:  %d\n", summary.Sitemaps))
	if !summary.NewestLastModified.IsZero() {
		sb.WriteString(fmt.Sprintf("  NEWEST:    %s\n", summary.NewestLastModified.Format(dateLayout)))
	}
	sb.WriteString("\n")

	for _, key := range frequencyOrder() {
		if n := summary.ChangeFrequencies[key]; n > 0 {
			sb.WriteString(fmt.Sprintf("  %-9s %d\n", key+":", n))
		}
	}
	sb.WriteString("\n")
}

// writeSitemaps lists the child sitemaps of an index root.
func (w *SimpleWriter) writeSitemaps(sb *strings.Builder, report *model.HostReport) {
	if report.Result == nil || !report.Result.IsIndex() {
		return
	}

	writeSection(sb, "CHILD SITEMAPS")
	for _, ref := range report.Result.Sitemaps {
		sb.WriteString(fmt.Sprintf("  [+] %s\n", ref.Loc()))
	}
	sb.WriteString("\n")
}

// writeEntries lists entry locations, with their fields when verbose.
func (w *SimpleWriter) writeEntries(sb *strings.Builder, report *model.HostReport) {
	if !w.showEntries || report.Result == nil || len(report.Result.Entries) == 0 {
		return
	}

	writeSection(sb, "ENTRIES")
	for _, e := range report.Result.Entries {
		sb.WriteString(fmt.Sprintf("  * %s\n", e.Loc()))
		if w.verbose {
			lastmod, changefreq, priority := entryFields(e)
			sb.WriteString(fmt.Sprintf("    lastmod: %s  changefreq: %s  priority: %s\n", lastmod, changefreq, priority))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sitemaps\n")
	sb.WriteString("https://github.com/nao1215/sitemaps\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
