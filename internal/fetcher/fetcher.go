package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

// Default fetcher settings.
const (
	// DefaultMaxRetries is the number of fetch attempts per URL. The value
	// matches the crawler this tool replaces; corpus mirrors are flaky
	// enough that a single attempt loses real results.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base delay between attempts. The delay
	// before attempt n+1 is DefaultRetryDelay × n, so back-to-back
	// failures wait progressively longer without the runaway growth of
	// pure exponential backoff.
	DefaultRetryDelay = 1 * time.Second

	// DefaultTimeout is the fixed per-request timeout. Directory listings
	// are small; 30 seconds covers slow academic mirrors with margin.
	DefaultTimeout = 30 * time.Second

	// DefaultCacheSize bounds the per-URL page cache. 1000 listings is
	// far more than any sane walk revisits while keeping worst-case
	// memory use predictable.
	DefaultCacheSize = 1000

	// DefaultMaxBodySize caps how much of a response body is read.
	// Listing pages are a few hundred KB at most; the cap prevents a
	// misconfigured URL pointing at a corpus archive from being slurped
	// into memory.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultUserAgent identifies corpusfind in HTTP requests so mirror
	// operators can recognize the traffic in their logs.
	DefaultUserAgent = "corpusfind/1.0 (+https://github.com/corpusfind/corpusfind)"
)

// Client fetches listing pages with retry and per-URL memoization.
// It is safe for concurrent use by the walker's branch goroutines.
type Client struct {
	httpClient  *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxBodySize int64
	userAgent   string
	cache       *pageCache
	group       singleflight.Group

	// sleep waits between retry attempts. Overridable in tests so retry
	// schedules can be asserted without real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithMaxRetries sets the number of fetch attempts per URL. Values below
// one are clamped to one attempt.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		c.maxRetries = n
	}
}

// WithRetryDelay sets the base delay between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithTimeout sets the fixed per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithCacheSize bounds the per-URL page cache.
func WithCacheSize(n int) Option {
	return func(c *Client) {
		c.cache = newPageCache(n)
	}
}

// WithMaxBodySize caps how many bytes of a response body are read.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient replaces the underlying HTTP client. Useful for tests and
// for callers that need transport tuning.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client with the default settings, adjusted by opts.
// Redirects are followed (net/http default) and no authentication is sent.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxBodySize: DefaultMaxBodySize,
		userAgent:   DefaultUserAgent,
		cache:       newPageCache(DefaultCacheSize),
		sleep:       sleepContext,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch returns the body of the listing page at url.
//
// Repeated fetches of the same URL within the Client's lifetime are served
// from the cache after the first success. Concurrent fetches of the same
// URL share one in-flight request. A failure after all retry attempts is
// returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	if body, ok := c.cache.get(url); ok {
		return body, nil
	}

	v, err, _ := c.group.Do(url, func() (any, error) {
		// A duplicate may have populated the cache while this call waited
		// on the singleflight lock.
		if body, ok := c.cache.get(url); ok {
			return body, nil
		}
		body, err := c.fetchWithRetry(ctx, url)
		if err != nil {
			return "", err
		}
		c.cache.put(url, body)
		return body, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// CachedPages returns the number of pages currently memoized.
func (c *Client) CachedPages() int {
	return c.cache.len()
}

// fetchWithRetry runs the bounded retry loop around single attempts.
// On the final failed attempt the underlying error is propagated inside a
// FetchError instead of scheduling another delay.
func (c *Client) fetchWithRetry(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		body, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}
		if err := c.sleep(ctx, time.Duration(attempt)*c.retryDelay); err != nil {
			return "", &FetchError{URL: url, Err: err}
		}
	}
	return "", &FetchError{URL: url, Err: lastErr}
}

// fetchOnce performs a single HTTP GET attempt.
func (c *Client) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck // Close error on read path is not actionable

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
