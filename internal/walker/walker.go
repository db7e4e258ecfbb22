package walker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/corpusfind/corpusfind/internal/model"
)

// Default walker settings.
const (
	// DefaultMaxDepth allows descent three levels below the root, which
	// covers every statmt.org corpus layout seen in practice.
	DefaultMaxDepth = 3

	// DefaultConcurrency caps simultaneous in-flight listing fetches.
	// Ten parallel requests keeps wide trees moving without hammering a
	// single academic mirror.
	DefaultConcurrency = 10

	// entryBuffer is the output channel buffer. Large enough that one
	// directory's worth of files rarely blocks the producing branch.
	entryBuffer = 64
)

// Source abstracts fetching and parsing one listing page. Any listing
// format that can produce entries for a URL can drive the walker; the
// production implementation is listing.ApacheSource.
type Source interface {
	// Fetch returns the raw page content for url.
	Fetch(ctx context.Context, url string) (string, error)

	// Parse converts page content into entries, resolving links against
	// baseURL.
	Parse(content, baseURL string) ([]model.Entry, error)
}

// Walker performs one concurrent, depth-bounded, cycle-safe traversal at
// a time. A Walker may be reused for sequential walks; each Walk builds a
// fresh visited set scoped to that invocation.
type Walker struct {
	source      Source
	pattern     *model.Glob
	maxDepth    int
	concurrency int
	logger      *slog.Logger
	seeds       []string

	// sem bounds simultaneous in-flight fetches across all branches.
	sem *semaphore.Weighted

	// mu protects visited and failedBranches during a walk.
	mu             sync.Mutex
	visited        map[string]struct{}
	failedBranches int
}

// Option configures a Walker.
type Option func(*Walker)

// WithPattern filters yielded entries by a compiled glob. Entries that do
// not match are still descended into when they are directories; they are
// just not yielded. A nil glob yields everything.
func WithPattern(g *model.Glob) Option {
	return func(w *Walker) {
		w.pattern = g
	}
}

// WithMaxDepth bounds descent below the root. Zero means the root listing
// itself is out of bounds and a walk yields nothing.
func WithMaxDepth(depth int) Option {
	return func(w *Walker) {
		w.maxDepth = depth
	}
}

// WithConcurrency caps simultaneous in-flight fetches.
func WithConcurrency(n int) Option {
	return func(w *Walker) {
		if n < 1 {
			n = 1
		}
		w.concurrency = n
	}
}

// WithLogger sets the logger used for branch-failure warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// WithVisited pre-seeds the visited set of every walk with the given
// URLs. Seeded URLs are never entered, so seeding the root makes a walk a
// no-op.
func WithVisited(urls ...string) Option {
	return func(w *Walker) {
		w.seeds = append(w.seeds, urls...)
	}
}

// New creates a Walker over the given source.
func New(source Source, opts ...Option) *Walker {
	w := &Walker{
		source:      source,
		maxDepth:    DefaultMaxDepth,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = slog.Default()
	}
	w.sem = semaphore.NewWeighted(int64(w.concurrency))

	return w
}

// Stats describes a completed (or cancelled) walk.
type Stats struct {
	// Visited is the number of directory URLs entered, seeds included.
	Visited int

	// FailedBranches is the number of branches abandoned after a fetch or
	// parse failure.
	FailedBranches int
}

// Stats returns the counters of the most recent walk.
func (w *Walker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{
		Visited:        len(w.visited),
		FailedBranches: w.failedBranches,
	}
}

// Walk traverses the listing tree rooted at rootURL.
//
// Entries are streamed on the first channel as they are discovered; the
// channel closes when the traversal completes, is cancelled, or fails at
// the root. The second channel delivers at most one error — a fetch or
// parse failure of the root itself, or the context's error on
// cancellation — and closes with the entry channel. Failures below the
// root never appear there; they are logged and counted in Stats.
//
// The stream is single-pass and non-restartable: every produced entry
// reflects live network calls, so replaying requires a fresh Walk.
func (w *Walker) Walk(ctx context.Context, rootURL string) (<-chan model.Entry, <-chan error) {
	entries := make(chan model.Entry, entryBuffer)
	errc := make(chan error, 1)

	w.mu.Lock()
	w.visited = make(map[string]struct{}, len(w.seeds)+1)
	for _, u := range w.seeds {
		w.visited[u] = struct{}{}
	}
	w.failedBranches = 0
	w.mu.Unlock()

	go func() {
		defer close(entries)
		defer close(errc)

		// The root listing sits one level below the root URL itself, so
		// depth 1 here makes MaxDepth 0 mean "no traversal allowed".
		if err := w.walk(ctx, rootURL, 1, entries); err != nil {
			errc <- err
		}
	}()

	return entries, errc
}

// walk visits one directory node and fans out into its subdirectories.
// The returned error is the node's own failure; callers decide whether it
// is fatal (root) or contained (branch).
func (w *Walker) walk(ctx context.Context, url string, depth int, out chan<- model.Entry) error {
	if depth > w.maxDepth {
		return nil
	}
	if !w.markVisited(url) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := w.fetchBounded(ctx, url)
	if err != nil {
		return err
	}
	parsed, err := w.source.Parse(content, url)
	if err != nil {
		return err
	}

	// Yield files and matching directory names in listing order before
	// any descent, so consumers see progress without waiting on subtrees.
	var dirs []model.Entry
	for _, e := range parsed {
		if e.IsDir() {
			dirs = append(dirs, e)
		}
		if !w.pattern.Match(e.Name) {
			continue
		}
		select {
		case out <- e:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var wg sync.WaitGroup
	for _, dir := range dirs {
		if dir.URL == "" {
			// Anchorless rows cannot be descended into.
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.walk(ctx, dir.URL, depth+1, out); err != nil {
				w.recordBranchFailure(dir.URL, err)
			}
		}()
	}
	wg.Wait()

	return nil
}

// fetchBounded runs one fetch under the concurrency semaphore.
func (w *Walker) fetchBounded(ctx context.Context, url string) (string, error) {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer w.sem.Release(1)
	return w.source.Fetch(ctx, url)
}

// markVisited enters url into the visited set. It returns false when the
// URL was already present. Insertion happens before descending into the
// node, so even concurrent branches reaching the same URL enter it at
// most once.
func (w *Walker) markVisited(url string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.visited[url]; ok {
		return false
	}
	w.visited[url] = struct{}{}
	return true
}

// recordBranchFailure logs and counts one abandoned branch. Cancellation
// is not a branch failure: the walk as a whole is being torn down.
func (w *Walker) recordBranchFailure(url string, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}

	w.mu.Lock()
	w.failedBranches++
	w.mu.Unlock()

	w.logger.Warn("branch failed, continuing walk",
		"url", url,
		"error", err,
	)
}
