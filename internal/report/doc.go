// Package report renders run reports for people and tools.
//
// Three writers share the Writer interface:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with a change frequency chart, for sharing
//
// Each writer also renders the difference between two stored runs.
package report
