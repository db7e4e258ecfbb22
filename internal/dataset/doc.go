// Package dataset maps well-known corpus identifiers to crawl settings.
//
// The registry lets users say "corpusfind crawl --dataset europarl-v10"
// instead of remembering statmt.org layout details. Every dataset —
// built-in or declared in the profile file — is validated when the
// registry is constructed, so lookups at crawl time cannot hand the
// walker a malformed root URL.
package dataset
