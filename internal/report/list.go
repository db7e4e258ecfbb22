package report

import (
	"io"
	"strings"

	"github.com/corpusfind/corpusfind/internal/model"
)

// ListWriter outputs one entry URL per line.
// This format is designed for piping into xargs, wget, or shell loops,
// so it stays free of decoration and never elides entries.
type ListWriter struct {
	baseWriter

	// summary controls whether the closing summary block is rendered.
	// Off by default so piped output stays clean.
	summary bool
}

// ListWriterOption configures a ListWriter.
type ListWriterOption func(*ListWriter)

// WithListSummary appends the summary block after the URLs.
func WithListSummary(show bool) ListWriterOption {
	return func(w *ListWriter) {
		w.summary = show
	}
}

// NewListWriter creates a ListWriter that outputs to the given writer.
func NewListWriter(output io.Writer, opts ...ListWriterOption) *ListWriter {
	w := &ListWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs every entry URL, one per line.
func (w *ListWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	for _, e := range result.Entries {
		if e.URL == "" {
			continue
		}
		sb.WriteString(e.URL)
		sb.WriteString("\n")
	}

	if w.summary {
		w.writeSummary(&sb, result)
	}

	return io.WriteString(w.output, sb.String())
}
