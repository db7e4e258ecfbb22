package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/corpusfind/corpusfind/internal/model"
)

// Writer defines the interface for crawl result output.
// Implementations render results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write renders the result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.CrawlResult) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write crawl results, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(result *model.CrawlResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for result writers.
type baseWriter struct {
	output io.Writer

	// maxDisplay caps how many entries are rendered; 0 or less means all.
	maxDisplay int
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// visible returns the entries to render and the number elided.
func (b baseWriter) visible(entries []model.Entry) ([]model.Entry, int) {
	if b.maxDisplay <= 0 || len(entries) <= b.maxDisplay {
		return entries, 0
	}
	return entries[:b.maxDisplay], len(entries) - b.maxDisplay
}

// writeSummary renders the closing summary block. The wording keeps
// "nothing matched" and "branches failed" distinct so an empty result
// from a flaky mirror is not mistaken for a clean miss.
func (b baseWriter) writeSummary(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")

	if result.Total() == 0 {
		if result.Pattern != "" {
			fmt.Fprintf(sb, "No entries matched %q under %s\n", result.Pattern, result.RootURL)
		} else {
			fmt.Fprintf(sb, "No entries found under %s\n", result.RootURL)
		}
	} else {
		fmt.Fprintf(sb, "Found %s entries (%s files, %s directories) under %s\n",
			humanize.Comma(int64(result.Total())),
			humanize.Comma(int64(result.Files)),
			humanize.Comma(int64(result.Directories)),
			result.RootURL,
		)
	}

	if result.FailedBranches > 0 {
		fmt.Fprintf(sb, "%s %d directory branch(es) could not be read; results may be incomplete\n",
			color.YellowString("warning:"), result.FailedBranches)
	}

	if result.Elapsed > 0 {
		fmt.Fprintf(sb, "Crawl took %s\n", result.Elapsed.Round(time.Millisecond))
	}
}
