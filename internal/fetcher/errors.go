package fetcher

import "fmt"

// FetchError reports that a page could not be retrieved after all retry
// attempts were exhausted. It wraps the error from the final attempt.
//
// The walker treats a FetchError from the root of a walk as fatal and a
// FetchError from any descendant branch as a contained, logged failure.
type FetchError struct {
	// URL is the URL whose retrieval failed.
	URL string

	// Err is the error from the last attempt.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause so callers can use errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}
