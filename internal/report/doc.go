// Package report renders crawl results for humans and tools.
//
// This package contains writers for different output formats:
//   - ListWriter: one URL per line, pipe-friendly
//   - TableWriter: aligned columns for terminal display
//   - TreeWriter: indented hierarchy mirroring the server layout
//   - MarkdownWriter: Markdown for documentation and sharing
//
// Design decision: We separate result rendering from result data
// structures (which are in the model package) so new output formats can
// be added without touching the crawl pipeline.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
