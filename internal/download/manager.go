package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/corpusfind/corpusfind/internal/model"
)

const (
	// DefaultMaxWorkers is the default number of concurrent downloads.
	DefaultMaxWorkers = 4

	// DefaultMaxRetries is the default number of attempts per file.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base delay between download attempts.
	// The actual delay grows linearly with the attempt number.
	DefaultRetryDelay = 1 * time.Second

	// partialSuffix marks in-progress downloads. A crash leaves the
	// partial file behind instead of a truncated corpus file.
	partialSuffix = ".partial"
)

// Result describes the outcome of one file download.
type Result struct {
	// URL is the source URL.
	URL string

	// Path is the local destination path.
	Path string

	// Bytes is the number of bytes written (or the existing size when skipped).
	Bytes int64

	// Skipped is true when the file already existed and force mode was off.
	Skipped bool

	// Err is the final error after retries, nil on success.
	Err error
}

// Manager downloads corpus files concurrently.
type Manager struct {
	client     *http.Client
	logger     *slog.Logger
	maxWorkers int
	maxRetries int
	retryDelay time.Duration
	force      bool

	// sleep is swapped out in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxWorkers sets the number of concurrent downloads.
func WithMaxWorkers(n int) Option {
	return func(m *Manager) { m.maxWorkers = n }
}

// WithMaxRetries sets the number of attempts per file.
func WithMaxRetries(n int) Option {
	return func(m *Manager) { m.maxRetries = n }
}

// WithRetryDelay sets the base delay between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(m *Manager) { m.retryDelay = d }
}

// WithForce re-downloads files that already exist locally.
func WithForce(force bool) Option {
	return func(m *Manager) { m.force = force }
}

// WithLogger sets the logger for download progress.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithHTTPClient replaces the HTTP client. Mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) { m.client = client }
}

// NewManager creates a download manager.
//
// Design decision: The manager owns its own HTTP client with a tuned
// transport instead of sharing the fetcher's client because:
//  1. Listing fetches want a short timeout; multi-gigabyte corpus files do not
//  2. Downloads benefit from keep-alive connection reuse against one host
//  3. Cancellation still works through the request context
func NewManager(opts ...Option) *Manager {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: DefaultMaxWorkers * 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	m := &Manager{
		client:     &http.Client{Transport: transport},
		logger:     slog.Default(),
		maxWorkers: DefaultMaxWorkers,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DownloadAll downloads every file entry into targetDir. Directory
// entries are ignored. One result is returned per file, in input order.
// A per-file failure is recorded in its Result; only cancellation or an
// unusable target directory aborts the batch.
func (m *Manager) DownloadAll(ctx context.Context, entries []model.Entry, targetDir string) ([]Result, error) {
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	files := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e)
		}
	}

	m.logger.Info("starting downloads",
		"files", len(files),
		"workers", m.maxWorkers,
		"dir", targetDir,
	)

	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.maxWorkers)

	for i, entry := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			results[i] = m.downloadWithRetry(ctx, entry, targetDir)
			if err := results[i].Err; err != nil {
				m.logger.Warn("download failed",
					"url", entry.URL,
					"error", err,
				)
				// Recorded per file so the rest of the batch continues.
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// downloadWithRetry runs downloadOne up to maxRetries times with a
// linearly growing delay between attempts.
func (m *Manager) downloadWithRetry(ctx context.Context, entry model.Entry, targetDir string) Result {
	var res Result
	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		res = m.downloadOne(ctx, entry, targetDir)
		if res.Err == nil || ctx.Err() != nil {
			return res
		}
		if attempt < m.maxRetries {
			if err := m.sleep(ctx, time.Duration(attempt)*m.retryDelay); err != nil {
				res.Err = err
				return res
			}
		}
	}
	return res
}

// downloadOne fetches a single file into targetDir via a temporary file.
func (m *Manager) downloadOne(ctx context.Context, entry model.Entry, targetDir string) Result {
	res := Result{URL: entry.URL}

	name := localName(entry)
	if name == "" {
		res.Err = fmt.Errorf("cannot derive a file name from %q", entry.URL)
		return res
	}
	res.Path = filepath.Join(targetDir, name)

	if !m.force {
		if fi, err := os.Stat(res.Path); err == nil && fi.Size() > 0 {
			m.logger.Debug("skipping existing file", "path", res.Path)
			res.Bytes = fi.Size()
			res.Skipped = true
			return res
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.URL, nil)
	if err != nil {
		res.Err = fmt.Errorf("failed to create request: %w", err)
		return res
	}

	resp, err := m.client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("request failed: %w", err)
		return res
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		res.Err = fmt.Errorf("unexpected status: %s", resp.Status)
		return res
	}

	tmp := res.Path + partialSuffix
	out, err := os.Create(tmp)
	if err != nil {
		res.Err = fmt.Errorf("failed to create file: %w", err)
		return res
	}

	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		res.Err = fmt.Errorf("failed to write %s: %w", res.Path, err)
		return res
	}

	if err := os.Rename(tmp, res.Path); err != nil {
		os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		res.Err = fmt.Errorf("failed to finalize %s: %w", res.Path, err)
		return res
	}

	res.Bytes = n
	m.logger.Info("downloaded",
		"name", name,
		"size", humanize.Bytes(uint64(n)),
	)
	return res
}

// localName derives the destination file name for an entry. The listing
// name is preferred; the URL path is the fallback for rows whose anchor
// text was elided by the server.
func localName(entry model.Entry) string {
	if entry.Name != "" {
		return path.Base(entry.Name)
	}
	u, err := url.Parse(entry.URL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
