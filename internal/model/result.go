package model

import "time"

// CrawlResult aggregates the outcome of one walk invocation. It is the
// interface between the walker's entry stream and the reporters, the
// downloader, and the database layer.
//
// A summary built from a CrawlResult must let the user distinguish
// "0 results found" from "errors occurred during traversal", which is why
// FailedBranches is carried alongside the entries.
type CrawlResult struct {
	// RootURL is the URL the walk started from.
	RootURL string `json:"root_url"`

	// Pattern is the glob pattern the walk filtered with, empty for none.
	Pattern string `json:"pattern,omitempty"`

	// MaxDepth is the depth bound the walk ran with.
	MaxDepth int `json:"max_depth"`

	// Entries holds every yielded entry in the order it was received.
	// Order within one directory branch is the listing order; order across
	// sibling branches is not guaranteed.
	Entries []Entry `json:"entries"`

	// Files and Directories count the yielded entries by kind.
	Files       int `json:"files"`
	Directories int `json:"directories"`

	// FailedBranches counts directory branches that were abandoned after a
	// fetch or parse failure. The walk completes regardless; this count is
	// how the failure surfaces to the user.
	FailedBranches int `json:"failed_branches"`

	// StartedAt and Elapsed describe when and how long the walk ran.
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// NewCrawlResult creates an empty result for a walk that starts now.
func NewCrawlResult(rootURL, pattern string, maxDepth int) *CrawlResult {
	return &CrawlResult{
		RootURL:   rootURL,
		Pattern:   pattern,
		MaxDepth:  maxDepth,
		StartedAt: time.Now(),
	}
}

// Add appends a yielded entry and updates the kind counters.
func (r *CrawlResult) Add(e Entry) {
	r.Entries = append(r.Entries, e)
	if e.IsDir() {
		r.Directories++
	} else {
		r.Files++
	}
}

// Total returns the number of yielded entries.
func (r *CrawlResult) Total() int {
	return len(r.Entries)
}
