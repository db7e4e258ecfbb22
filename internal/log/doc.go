// Package log provides corpusfind's structured logging setup.
//
// Logging is built on log/slog. The one addition is TruncatingHandler, a
// handler wrapper that clips oversized attribute values before they reach
// the underlying handler: crawl logging naturally wants to attach page
// bodies and long URLs to warnings, and an unclipped listing page can be
// hundreds of kilobytes of noise per log line.
package log
