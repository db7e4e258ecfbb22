// Package fetcher retrieves directory-listing pages over HTTP.
//
// The Client wraps a plain HTTP GET with three behaviors the walker relies
// on:
//
//   - Bounded retry: failed attempts (transport errors and non-2xx
//     statuses) are retried up to MaxRetries times, with the delay before
//     attempt n+1 scaled linearly as RetryDelay × n. The final failure is
//     wrapped in a FetchError carrying the URL and the last cause.
//   - Memoization: successful page bodies are cached per URL in a bounded
//     LRU cache, so repeated fetches of the same URL within one walk cost
//     a single network call.
//   - Single-flight: concurrent fetches of the same URL are collapsed into
//     one in-flight request; the duplicates wait for its result.
package fetcher
