// Package download fetches matched corpus files to local disk.
//
// The Manager downloads the file entries of a crawl result with a bounded
// worker pool. Individual download failures are recorded per file rather
// than aborting the batch, mirroring how the walker contains branch
// failures: a mirror that drops one connection should not cost the other
// forty files. Files that already exist locally are skipped unless force
// mode is on, so interrupted batches can be resumed by re-running the
// same command.
package download
