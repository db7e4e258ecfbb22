// Package database provides SQLite-based storage for crawl history.
//
// This package implements the CrawlDB, which stores:
//   - Crawl sessions with their settings and summary counters
//   - Every entry yielded by a session's walk
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Crawl history is small and local; a server database buys nothing
// 4. WAL mode provides good concurrent read performance
package database
