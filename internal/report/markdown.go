package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/corpusfind/corpusfind/internal/model"
)

// MarkdownWriter outputs crawl results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownMaxDisplay caps the number of rendered entry rows. Zero or
// a negative value renders everything.
func WithMarkdownMaxDisplay(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.maxDisplay = n
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the full result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeEntries(md, result)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl settings and summary counters.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Corpus Crawl Report")
	md.PlainText("")

	pattern := result.Pattern
	if pattern == "" {
		pattern = "(none)"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root URL", "`" + result.RootURL + "`"},
			{"Pattern", "`" + pattern + "`"},
			{"Max depth", strconv.Itoa(result.MaxDepth)},
			{"Files", strconv.Itoa(result.Files)},
			{"Directories", strconv.Itoa(result.Directories)},
			{"Crawl date", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", result.Elapsed.String()},
			{"Status", statusText(result)},
		},
	})
	md.PlainText("")

	if result.FailedBranches > 0 {
		md.Warningf(
			"%d directory branch(es) could not be read; the listing below may be incomplete.",
			result.FailedBranches,
		)
		md.PlainText("")
	}
}

// statusText summarizes the crawl outcome in one cell.
func statusText(result *model.CrawlResult) string {
	if result.FailedBranches > 0 {
		return "⚠️ Partial (" + strconv.Itoa(result.FailedBranches) + " failed branches)"
	}
	if result.Total() == 0 {
		return "✅ Complete (no matches)"
	}
	return "✅ Complete"
}

// writeEntries writes the entry table.
func (w *MarkdownWriter) writeEntries(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Entries")
	md.PlainText("")

	if result.Total() == 0 {
		md.PlainText("No entries matched.")
		return
	}

	entries, elided := w.visible(result.Entries)
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = e.URL
		}
		if e.URL != "" {
			name = "[" + name + "](" + e.URL + ")"
		}
		rows = append(rows, []string{
			name,
			string(e.Kind),
			orDash(e.Size),
			orDash(e.LastModified),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Name", "Kind", "Size", "Last Modified"},
		Rows:   rows,
	})

	if elided > 0 {
		md.PlainText("")
		md.PlainTextf("... and %d more entries.", elided)
	}
}
