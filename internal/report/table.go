package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/corpusfind/corpusfind/internal/model"
)

// TableWriter outputs entries in aligned columns for terminal display.
// Long results are elided after maxDisplay rows; the summary always
// reports the full counts.
type TableWriter struct {
	baseWriter
}

// TableWriterOption configures a TableWriter.
type TableWriterOption func(*TableWriter)

// WithTableMaxDisplay caps the number of rendered rows. Zero or a
// negative value renders everything.
func WithTableMaxDisplay(n int) TableWriterOption {
	return func(w *TableWriter) {
		w.maxDisplay = n
	}
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer, opts ...TableWriterOption) *TableWriter {
	w := &TableWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the result as an aligned table.
func (w *TableWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	entries, elided := w.visible(result.Entries)
	if len(entries) > 0 {
		tw := tabwriter.NewWriter(&sb, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKIND\tSIZE\tLAST MODIFIED")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				renderName(e),
				e.Kind,
				orDash(e.Size),
				orDash(e.LastModified),
			)
		}
		if err := tw.Flush(); err != nil {
			return 0, err
		}
	}
	if elided > 0 {
		fmt.Fprintf(&sb, "... and %d more (use --max-display to show more)\n", elided)
	}

	w.writeSummary(&sb, result)

	return io.WriteString(w.output, sb.String())
}

// renderName colors directory names so they stand out the way ls output
// does. The color library disables itself on non-terminal outputs.
func renderName(e model.Entry) string {
	name := e.Name
	if name == "" {
		name = e.URL
	}
	if e.IsDir() {
		return color.CyanString(name)
	}
	return name
}

// orDash substitutes "-" for empty display columns.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
