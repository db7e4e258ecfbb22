// Package model defines the core data types shared across corpusfind.
//
// The central type is Entry, an immutable record describing one file or
// directory discovered in a server's directory listing. Entries are created
// by the listing parser, streamed by the walker, and consumed by the
// reporter, downloader, and database layers.
//
// The package also provides Glob, a compiled shell-style filename pattern
// used to filter entries, and CrawlResult, the aggregate outcome of one
// walk invocation.
package model
