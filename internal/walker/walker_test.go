package walker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/corpusfind/corpusfind/internal/fetcher"
	"github.com/corpusfind/corpusfind/internal/listing"
	"github.com/corpusfind/corpusfind/internal/model"
)

// fakeSource serves a pre-built tree of listings without any network.
// Fetch returns the node URL itself as "content"; Parse looks the node up.
type fakeSource struct {
	mu      sync.Mutex
	tree    map[string][]model.Entry
	broken  map[string]bool
	fetches map[string]int
}

func newFakeSource(tree map[string][]model.Entry) *fakeSource {
	return &fakeSource{
		tree:    tree,
		broken:  make(map[string]bool),
		fetches: make(map[string]int),
	}
}

func (s *fakeSource) Fetch(_ context.Context, url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[url]++
	if s.broken[url] {
		return "", &fetcher.FetchError{URL: url, Err: errors.New("unexpected status 503")}
	}
	if _, ok := s.tree[url]; !ok {
		return "", &fetcher.FetchError{URL: url, Err: errors.New("unexpected status 404")}
	}
	return url, nil
}

func (s *fakeSource) Parse(content, _ string) ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree[content], nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func file(base, name string) model.Entry {
	return model.Entry{URL: base + name, Name: name, Kind: model.KindFile}
}

func dir(base, name string) model.Entry {
	return model.Entry{URL: base + name, Name: name, Kind: model.KindDirectory}
}

// collect drains a walk into a slice of names plus the root error.
func collect(t *testing.T, w *Walker, rootURL string) ([]string, error) {
	t.Helper()

	entries, errc := w.Walk(context.Background(), rootURL)
	var names []string
	for e := range entries {
		names = append(names, e.Name)
	}
	return names, <-errc
}

const root = "https://corpus.example.org/data/"

// TestWalkDepthZero tests that maxDepth 0 yields nothing regardless of
// tree shape.
func TestWalkDepthZero(t *testing.T) {
	t.Parallel()

	src := newFakeSource(map[string][]model.Entry{
		root: {file(root, "a.txt"), dir(root, "sub/")},
	})
	w := New(src, WithMaxDepth(0), WithLogger(quietLogger()))

	names, err := collect(t, w, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected zero entries, got %v", names)
	}
	if got := src.fetches[root]; got != 0 {
		t.Errorf("expected no fetches at depth 0, got %d", got)
	}
}

// TestWalkSeededRootIsNoOp tests cycle safety: a root pre-seeded into the
// visited set yields nothing.
func TestWalkSeededRootIsNoOp(t *testing.T) {
	t.Parallel()

	src := newFakeSource(map[string][]model.Entry{
		root: {file(root, "a.txt")},
	})
	w := New(src, WithMaxDepth(3), WithVisited(root), WithLogger(quietLogger()))

	names, err := collect(t, w, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected zero entries for seeded root, got %v", names)
	}
}

// TestWalkPatternFilter tests glob filtering of files and directories.
func TestWalkPatternFilter(t *testing.T) {
	t.Parallel()

	src := newFakeSource(map[string][]model.Entry{
		root:          {file(root, "file1.txt"), file(root, "file2.csv"), dir(root, "dir/")},
		root + "dir/": {},
	})
	g, err := model.CompileGlob("*.txt")
	if err != nil {
		t.Fatal(err)
	}
	w := New(src, WithMaxDepth(3), WithPattern(g), WithLogger(quietLogger()))

	names, werr := collect(t, w, root)
	if werr != nil {
		t.Fatalf("unexpected error: %v", werr)
	}
	if len(names) != 1 || names[0] != "file1.txt" {
		t.Errorf("expected exactly [file1.txt], got %v", names)
	}

	// The non-matching directory is still descended into.
	if got := src.fetches[root+"dir/"]; got != 1 {
		t.Errorf("expected dir/ to be fetched once, got %d", got)
	}
}

// TestWalkMatchingDirectoryIsYielded tests that directory names matching
// the pattern are yielded as entries in their own right.
func TestWalkMatchingDirectoryIsYielded(t *testing.T) {
	t.Parallel()

	src := newFakeSource(map[string][]model.Entry{
		root:         {dir(root, "v10/"), dir(root, "tools/")},
		root + "v10/":   {file(root+"v10/", "de-en.tsv.gz")},
		root + "tools/": {},
	})
	g, err := model.CompileGlob("v1*")
	if err != nil {
		t.Fatal(err)
	}
	w := New(src, WithMaxDepth(3), WithPattern(g), WithLogger(quietLogger()))

	names, werr := collect(t, w, root)
	if werr != nil {
		t.Fatalf("unexpected error: %v", werr)
	}
	if len(names) != 1 || names[0] != "v10/" {
		t.Errorf("expected exactly [v10/], got %v", names)
	}
}

// TestWalkDepthBound tests that descent stops exactly at maxDepth levels
// below the root.
func TestWalkDepthBound(t *testing.T) {
	t.Parallel()

	l1 := root + "l1/"
	l2 := l1 + "l2/"
	src := newFakeSource(map[string][]model.Entry{
		root: {file(root, "top.txt"), dir(root, "l1/")},
		l1:   {file(l1, "mid.txt"), dir(l1, "l2/")},
		l2:   {file(l2, "deep.txt")},
	})
	w := New(src, WithMaxDepth(2), WithLogger(quietLogger()))

	names, err := collect(t, w, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(names)
	want := []string{"l1/", "l2/", "mid.txt", "top.txt"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, names)
	}
	if src.fetches[l2] != 0 {
		t.Errorf("expected l2 to stay unfetched beyond the depth bound, got %d fetches", src.fetches[l2])
	}
}

// TestWalkCycleTermination tests that listings linking back to ancestors
// do not loop.
func TestWalkCycleTermination(t *testing.T) {
	t.Parallel()

	sub := root + "sub/"
	src := newFakeSource(map[string][]model.Entry{
		root: {dir(root, "sub/"), file(root, "a.txt")},
		sub: {
			{URL: root, Name: "parent/", Kind: model.KindDirectory},
			file(sub, "b.txt"),
		},
	})
	w := New(src, WithMaxDepth(10), WithLogger(quietLogger()))

	names, err := collect(t, w, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(names)
	want := "a.txt,b.txt,parent/,sub/"
	if strings.Join(names, ",") != want {
		t.Errorf("expected %s, got %v", want, names)
	}
	if src.fetches[root] != 1 {
		t.Errorf("expected root fetched exactly once, got %d", src.fetches[root])
	}
}

// TestWalkPartialFailureContainment tests that one broken subdirectory
// does not abort the walk: the healthy sibling's entries still arrive.
func TestWalkPartialFailureContainment(t *testing.T) {
	t.Parallel()

	good := root + "good/"
	bad := root + "bad/"
	src := newFakeSource(map[string][]model.Entry{
		root: {dir(root, "bad/"), dir(root, "good/")},
		good: {file(good, "ok1.txt"), file(good, "ok2.txt")},
	})
	src.broken[bad] = true

	w := New(src, WithMaxDepth(3), WithLogger(quietLogger()))

	names, err := collect(t, w, root)
	if err != nil {
		t.Fatalf("expected walk to complete despite broken branch, got %v", err)
	}
	sort.Strings(names)
	want := "bad/,good/,ok1.txt,ok2.txt"
	if strings.Join(names, ",") != want {
		t.Errorf("expected %s, got %v", want, names)
	}

	stats := w.Stats()
	if stats.FailedBranches != 1 {
		t.Errorf("expected 1 failed branch, got %d", stats.FailedBranches)
	}
}

// TestWalkRootFailureIsFatal tests that a root fetch failure surfaces to
// the caller instead of being contained.
func TestWalkRootFailureIsFatal(t *testing.T) {
	t.Parallel()

	src := newFakeSource(map[string][]model.Entry{})
	src.broken[root] = true

	w := New(src, WithMaxDepth(3), WithLogger(quietLogger()))
	names, err := collect(t, w, root)
	if err == nil {
		t.Fatal("expected root failure to be returned")
	}
	var fe *fetcher.FetchError
	if !errors.As(err, &fe) {
		t.Errorf("expected *FetchError, got %T: %v", err, err)
	}
	if len(names) != 0 {
		t.Errorf("expected no entries, got %v", names)
	}
}

// TestWalkFilesBeforeDescent tests that a node's own entries are yielded
// before anything from its subdirectories.
func TestWalkFilesBeforeDescent(t *testing.T) {
	t.Parallel()

	sub := root + "sub/"
	src := newFakeSource(map[string][]model.Entry{
		root: {file(root, "first.txt"), dir(root, "sub/"), file(root, "second.txt")},
		sub:  {file(sub, "nested.txt")},
	})
	w := New(src, WithMaxDepth(3), WithLogger(quietLogger()))

	names, err := collect(t, w, root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"first.txt", "sub/", "second.txt", "nested.txt"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("expected order %v, got %v", want, names)
	}
}

// TestWalkCancellation tests that cancelling the context stops the stream
// and reports the context error.
func TestWalkCancellation(t *testing.T) {
	t.Parallel()

	src := newFakeSource(map[string][]model.Entry{
		root: {file(root, "a.txt"), file(root, "b.txt")},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := New(src, WithMaxDepth(3), WithLogger(quietLogger()))
	entries, errc := w.Walk(ctx, root)
	for range entries { //nolint:revive // draining the stream
	}
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestWalkAgainstHTTPServer exercises the production source end to end:
// real fetcher, real parser, httptest listings.
func TestWalkAgainstHTTPServer(t *testing.T) {
	t.Parallel()

	// Three header rows and a footer row frame the listing rows; the
	// first listing row doubles as the parent-directory row slot.
	page := func(rows string) string {
		return `<html><body><table>` +
			`<tr><th></th><th>Name</th><th>Last modified</th><th>Size</th><th>Description</th></tr>` +
			`<tr><th colspan="5"><hr></th></tr>` +
			`<tr><th colspan="5"></th></tr>` +
			rows +
			`<tr><th colspan="5"><hr></th></tr></table></body></html>`
	}
	row := func(href, name, size string) string {
		return `<tr><td></td><td><a href="` + href + `">` + name + `</a></td>` +
			`<td>2020-01-27 15:34</td><td>` + size + `</td><td>&nbsp;</td></tr>`
	}

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/v10/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page(row("de-en.tsv.gz", "de-en.tsv.gz", "187M")+row("txt/", "txt/", "-")))
	})
	mux.HandleFunc("/v10/txt/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page(row("cs-en.tsv.gz", "cs-en.tsv.gz", "98M")))
	})

	g, err := model.CompileGlob("*.tsv.gz")
	if err != nil {
		t.Fatal(err)
	}
	src := listing.NewApacheSource(fetcher.New(WithTestRetries()...))
	w := New(src, WithMaxDepth(3), WithPattern(g), WithLogger(quietLogger()))

	names, werr := collect(t, w, srv.URL+"/v10/")
	if werr != nil {
		t.Fatalf("unexpected error: %v", werr)
	}
	sort.Strings(names)
	want := "cs-en.tsv.gz,de-en.tsv.gz"
	if strings.Join(names, ",") != want {
		t.Errorf("expected %s, got %v", want, names)
	}
}

// WithTestRetries keeps integration tests fast: one attempt, no delay.
func WithTestRetries() []fetcher.Option {
	return []fetcher.Option{fetcher.WithMaxRetries(1)}
}
