// Package walker traverses directory-listing trees concurrently.
//
// # Traversal model
//
// A Walker starts from a root URL and explores the tree of listing pages
// beneath it: each node is fetched and parsed through a Source, matching
// file entries are streamed to the caller immediately, and every
// subdirectory is descended into concurrently. Three mechanisms keep the
// traversal finite and safe:
//
//   - a depth bound: nodes deeper than MaxDepth are silently skipped,
//   - a shared visited set: each URL is entered at most once per walk,
//     closing cycles formed by listings that link back to ancestors,
//   - a fetch semaphore: the number of simultaneous in-flight fetches is
//     capped so wide trees cannot fan out without bound.
//
// # Ordering and failure semantics
//
// Within one directory node, files and pattern-matching directory names
// are yielded in listing order before any descent begins, so consumers see
// progress without waiting on subtrees. Across sibling branches the merge
// order is arbitrary.
//
// A fetch or parse failure at the root is fatal to the walk. The same
// failure in any descendant branch is logged, counted, and contained:
// sibling branches continue and the walk always runs to completion with
// whatever was gathered.
package walker
