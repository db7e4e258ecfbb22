package download

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corpusfind/corpusfind/internal/model"
)

// newTestManager creates a quiet manager with no real sleeping between retries.
func newTestManager(opts ...Option) *Manager {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	m := NewManager(opts...)
	m.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return m
}

func fileEntry(url, name string) model.Entry {
	return model.Entry{URL: url, Name: name, Kind: model.KindFile}
}

// TestDownloadAll tests that file entries are written to disk and
// directory entries are ignored.
func TestDownloadAll(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("content of " + r.URL.Path))
	}))
	defer srv.Close()

	dir := t.TempDir()
	entries := []model.Entry{
		fileEntry(srv.URL+"/europarl-v10.cs-en.tsv.gz", "europarl-v10.cs-en.tsv.gz"),
		{URL: srv.URL + "/training/", Name: "training/", Kind: model.KindDirectory},
		fileEntry(srv.URL+"/europarl-v10.de-en.tsv.gz", "europarl-v10.de-en.tsv.gz"),
	}

	m := newTestManager()
	results, err := m.DownloadAll(context.Background(), entries, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (directories ignored), got %d", len(results))
	}

	for _, res := range results {
		if res.Err != nil {
			t.Errorf("unexpected download error for %s: %v", res.URL, res.Err)
		}
		data, err := os.ReadFile(res.Path)
		if err != nil {
			t.Fatalf("expected downloaded file at %s: %v", res.Path, err)
		}
		if len(data) == 0 || int64(len(data)) != res.Bytes {
			t.Errorf("expected %d bytes at %s, got %d", res.Bytes, res.Path, len(data))
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "training")); !os.IsNotExist(err) {
		t.Error("expected no local file for the directory entry")
	}
}

// TestDownloadAllSkipsExisting tests resume behavior: existing files are
// not re-fetched unless force mode is on.
func TestDownloadAllSkipsExisting(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("fresh content"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "news-commentary-v18.en.gz")
	if err := os.WriteFile(path, []byte("already here"), 0600); err != nil {
		t.Fatal(err)
	}

	entries := []model.Entry{fileEntry(srv.URL+"/news-commentary-v18.en.gz", "news-commentary-v18.en.gz")}

	m := newTestManager()
	results, err := m.DownloadAll(context.Background(), entries, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !results[0].Skipped {
		t.Error("expected existing file to be skipped")
	}
	if got := requests.Load(); got != 0 {
		t.Errorf("expected no requests for a skipped file, got %d", got)
	}

	// Force mode re-downloads.
	m = newTestManager(WithForce(true))
	results, err = m.DownloadAll(context.Background(), entries, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Skipped {
		t.Error("expected force mode to re-download")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fresh content" {
		t.Errorf("expected file to be replaced, got %q", data)
	}
}

// TestDownloadAllContainsFailures tests that one failing file does not
// abort the batch.
func TestDownloadAllContainsFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.gz" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	entries := []model.Entry{
		fileEntry(srv.URL+"/missing.gz", "missing.gz"),
		fileEntry(srv.URL+"/present.gz", "present.gz"),
	}

	m := newTestManager(WithMaxRetries(1))
	results, err := m.DownloadAll(context.Background(), entries, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}

	if results[0].Err == nil {
		t.Error("expected an error for the missing file")
	}
	if results[1].Err != nil {
		t.Errorf("expected the second file to succeed, got %v", results[1].Err)
	}
}

// TestDownloadRetries tests that transient server errors are retried.
func TestDownloadRetries(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("second time lucky"))
	}))
	defer srv.Close()

	entries := []model.Entry{fileEntry(srv.URL+"/flaky.gz", "flaky.gz")}

	m := newTestManager(WithMaxRetries(3))
	results, err := m.DownloadAll(context.Background(), entries, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Err != nil {
		t.Errorf("expected retry to succeed, got %v", results[0].Err)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}

// TestDownloadNoPartialLeftovers tests that failed downloads do not leave
// partial files behind.
func TestDownloadNoPartialLeftovers(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Claim more bytes than we send, then cut the connection.
		w.Header().Set("Content-Length", "1000000")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("short"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		if hj, ok := w.(http.Hijacker); ok {
			conn, _, err := hj.Hijack()
			if err == nil {
				conn.Close()
			}
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	entries := []model.Entry{fileEntry(srv.URL+"/truncated.gz", "truncated.gz")}

	m := newTestManager(WithMaxRetries(1))
	results, err := m.DownloadAll(context.Background(), entries, dir)
	if err != nil {
		t.Fatalf("unexpected batch error: %v", err)
	}
	if results[0].Err == nil {
		t.Fatal("expected the truncated download to fail")
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no leftover files, got %v", matches)
	}
}

// TestLocalName tests destination name derivation.
func TestLocalName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry model.Entry
		want  string
	}{
		{
			name:  "listing name preferred",
			entry: model.Entry{URL: "https://example.org/a/b.gz", Name: "b.gz"},
			want:  "b.gz",
		},
		{
			name:  "falls back to URL path",
			entry: model.Entry{URL: "https://example.org/a/c.gz"},
			want:  "c.gz",
		},
		{
			name:  "path traversal stripped from name",
			entry: model.Entry{URL: "https://example.org/a.gz", Name: "../../etc/passwd"},
			want:  "passwd",
		},
		{
			name:  "bare host has no name",
			entry: model.Entry{URL: "https://example.org/"},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := localName(tt.entry); got != tt.want {
				t.Errorf("localName() = %q, want %q", got, tt.want)
			}
		})
	}
}
