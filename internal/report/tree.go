package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/corpusfind/corpusfind/internal/model"
)

// TreeWriter outputs entries as an indented hierarchy mirroring the
// server's directory layout. Depth is derived from each entry's URL
// relative to the crawl root, so the tree renders correctly even though
// the result is a flat stream.
type TreeWriter struct {
	baseWriter
}

// TreeWriterOption configures a TreeWriter.
type TreeWriterOption func(*TreeWriter)

// WithTreeMaxDisplay caps the number of rendered entries. Zero or a
// negative value renders everything.
func WithTreeMaxDisplay(n int) TreeWriterOption {
	return func(w *TreeWriter) {
		w.maxDisplay = n
	}
}

// NewTreeWriter creates a TreeWriter that outputs to the given writer.
func NewTreeWriter(output io.Writer, opts ...TreeWriterOption) *TreeWriter {
	w := &TreeWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the result as an indented tree rooted at the crawl URL.
func (w *TreeWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	entries, elided := w.visible(result.Entries)
	if len(entries) > 0 {
		sb.WriteString(result.RootURL)
		sb.WriteString("\n")
		for _, e := range entries {
			fmt.Fprintf(&sb, "%s%s\n", strings.Repeat("  ", treeDepth(result.RootURL, e)), renderName(e))
		}
	}
	if elided > 0 {
		fmt.Fprintf(&sb, "... and %d more (use --max-display to show more)\n", elided)
	}

	w.writeSummary(&sb, result)

	return io.WriteString(w.output, sb.String())
}

// treeDepth counts how many directory levels below the root an entry
// sits. Entries outside the root (absolute hrefs to another host) render
// at the first level.
func treeDepth(rootURL string, e model.Entry) int {
	rel, ok := strings.CutPrefix(e.URL, rootURL)
	if !ok || rel == "" {
		return 1
	}
	rel = strings.TrimSuffix(rel, "/")
	return strings.Count(rel, "/") + 1
}
