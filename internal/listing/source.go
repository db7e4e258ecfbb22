package listing

import "github.com/corpusfind/corpusfind/internal/fetcher"

// ApacheSource is the production listing source: the HTTP fetcher combined
// with the Apache fancy-index parser. The embedded types together satisfy
// the walker's Source interface.
//
// Design decision: The walker depends on a small capability interface
// (fetch a page, parse a page) rather than on this concrete type, so tests
// and future listing formats can substitute their own source without a
// class-hierarchy style base type.
type ApacheSource struct {
	*fetcher.Client
	*Parser
}

// NewApacheSource creates a source backed by the given fetch client.
func NewApacheSource(client *fetcher.Client) *ApacheSource {
	return &ApacheSource{
		Client: client,
		Parser: NewParser(),
	}
}
