package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/sitemaps/internal/database"
	"github.com/nao1215/sitemaps/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the reports in Markdown format.
func (w *MarkdownWriter) Write(reports []*model.HostReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Sitemap Report")
	md.PlainText("")

	for _, report := range reports {
		w.writeHeader(md, report)
		if report.Failed() {
			md.Cautionf("Run failed: %s", report.Error)
			md.PlainText("")
			continue
		}
		w.writeSummary(md, report)
		w.writeSitemaps(md, report)
		w.writeEntries(md, report)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteDiff outputs the diff in Markdown format.
func (w *MarkdownWriter) WriteDiff(target string, diff *database.Diff) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Sitemap Changes: " + target)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Previous Run", "`" + diff.PreviousID + "`"},
			{"Current Run", "`" + diff.CurrentID + "`"},
			{"Added", strconv.Itoa(len(diff.Added))},
			{"Removed", strconv.Itoa(len(diff.Removed))},
			{"Modified", strconv.Itoa(len(diff.Modified))},
		},
	})
	md.PlainText("")

	if diff.IsEmpty() {
		md.Tip("No changes between the two runs.")
		md.PlainText("")
	}

	for _, section := range []struct {
		title string
		locs  []string
	}{
		{"Added", diff.Added},
		{"Removed", diff.Removed},
		{"Modified", diff.Modified},
	} {
		if len(section.locs) == 0 {
			continue
		}
		md.H2(section.title)
		md.PlainText("")
		md.BulletList(section.locs...)
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.HostReport) {
	md.H2(report.Target)
	md.PlainText("")

	sitemapURL := "-"
	if report.SitemapURL != "" {
		sitemapURL = "`" + report.SitemapURL + "`"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Sitemap", sitemapURL},
			{"Found Via", sourceText(report.Source)},
			{"Run", "`" + report.ID + "`"},
			{"Started", report.StartedAt.Format(dateLayout)},
			{"Duration", report.Duration.String()},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.HostReport) string {
	if report.Failed() {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// writeSummary writes the change frequency table and chart.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.HostReport) {
	summary := report.Summary()

	md.H3("Summary")
	md.PlainText("")

	rows := [][]string{
		{"Entries", strconv.Itoa(summary.Entries)},
		{"Child Sitemaps", strconv.Itoa(summary.Sitemaps)},
	}
	for _, key := range frequencyOrder() {
		if n := summary.ChangeFrequencies[key]; n > 0 {
			rows = append(rows, []string{"changefreq " + key, strconv.Itoa(n)})
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary.Entries > 0 {
		w.writePieChart(md, summary)
	} else {
		md.Note("The sitemap contained no entries that passed the filter.")
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart of the change frequencies.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Change Frequency Distribution"),
		piechart.WithShowData(true),
	)

	for _, key := range frequencyOrder() {
		if n := summary.ChangeFrequencies[key]; n > 0 {
			chart.LabelAndIntValue(key, uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeSitemaps lists the child sitemaps of an index root.
func (w *MarkdownWriter) writeSitemaps(md *markdown.Markdown, report *model.HostReport) {
	if report.Result == nil || !report.Result.IsIndex() {
		return
	}

	md.H3("Child Sitemaps")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Result.Sitemaps))
	for _, ref := range report.Result.Sitemaps {
		lastmod := "-"
		if t, ok := ref.LastModified(); ok {
			lastmod = t.Format(dateLayout)
		}
		rows = append(rows, []string{ref.Loc(), lastmod})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Location", "Last Modified"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeEntries writes a table of entries with their optional fields.
func (w *MarkdownWriter) writeEntries(md *markdown.Markdown, report *model.HostReport) {
	if report.Result == nil || len(report.Result.Entries) == 0 {
		return
	}

	md.H3("Entries")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Result.Entries))
	for _, e := range report.Result.Entries {
		lastmod, changefreq, priority := entryFields(e)
		rows = append(rows, []string{truncateString(e.Loc(), 80), lastmod, changefreq, priority})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Location", "Last Modified", "Change Frequency", "Priority"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitemaps](https://github.com/nao1215/sitemaps)*")
}
