// Package main provides the entry point for the corpusfind CLI.
//
// corpusfind crawls Apache-style directory listings on machine-translation
// corpus servers, filters the discovered files with shell globs, and
// optionally bulk-downloads the matches.
//
// Usage:
//
//	corpusfind crawl https://www.statmt.org/europarl/v10/ --pattern "*.tsv.gz"
//	corpusfind get --dataset europarl-v10 --dir ./corpora
//
// See --help for all available options.
package main

// main is the entry point for corpusfind.
func main() {
	Execute()
}
