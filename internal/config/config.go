package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Where a value mirrors the fetcher's or
// walker's own default the constant here is the one the CLI documents.
const (
	// DefaultMaxDepth allows descent three levels below the root, enough
	// for every statmt.org corpus layout without runaway traversal.
	DefaultMaxDepth = 3

	// MinMaxDepth and MaxMaxDepth bound the --max-depth flag. Zero would
	// always yield nothing; more than ten levels indicates a misconfigured
	// root rather than a corpus tree.
	MinMaxDepth = 1
	MaxMaxDepth = 10

	// DefaultMaxDisplay is how many discovered entries the reporters show
	// before eliding the rest.
	DefaultMaxDisplay = 20

	// DefaultMaxRetries and DefaultRetryDelay configure the fetch retry
	// loop: up to three attempts, with the delay before attempt n+1
	// scaled as DefaultRetryDelay × n.
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second

	// DefaultTimeout is the fixed per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency caps simultaneous in-flight listing fetches.
	DefaultConcurrency = 10

	// DefaultCacheSize bounds the per-URL page cache.
	DefaultCacheSize = 1000

	// DefaultMaxWorkers is the number of concurrent bulk downloads.
	DefaultMaxWorkers = 4

	// AppName is used for XDG directory paths.
	AppName = "corpusfind"
)

// Output formats accepted by the --format flag.
const (
	FormatList     = "list"
	FormatTable    = "table"
	FormatTree     = "tree"
	FormatMarkdown = "markdown"
)

// Config holds all options for a crawl or download run.
//
// Design decision: A single flat struct instead of nested sub-structs.
// The option count is manageable, and nesting would add complexity
// without benefit.
type Config struct {
	// RootURL is the directory-listing URL the walk starts from.
	RootURL string

	// Pattern is the shell glob filtering entry names. Empty matches all.
	Pattern string

	// MaxDepth bounds descent below the root, within [MinMaxDepth,
	// MaxMaxDepth].
	MaxDepth int

	// MaxDisplay is how many entries the reporters render before eliding.
	MaxDisplay int

	// OutputFormat selects the terminal renderer: list, table, or tree.
	// markdown is accepted for file output.
	OutputFormat string

	// OutputFile, when set, additionally writes a markdown report there.
	OutputFile string

	// MaxRetries and RetryDelay configure the fetch retry loop.
	MaxRetries int
	RetryDelay time.Duration

	// Timeout is the fixed per-request HTTP timeout.
	Timeout time.Duration

	// Concurrency caps simultaneous in-flight listing fetches.
	Concurrency int

	// CacheSize bounds the fetcher's per-URL page cache.
	CacheSize int

	// DBDir, when set, enables persisting crawl results to the SQLite
	// store in that directory.
	DBDir string

	// SaveToDB records whether results should be persisted.
	SaveToDB bool

	// Verbose enables debug-level logging.
	Verbose bool

	// DownloadDir is where the bulk downloader writes files.
	DownloadDir string

	// MaxWorkers is the number of concurrent bulk downloads.
	MaxWorkers int

	// Force re-downloads files that already exist locally.
	Force bool

	// ProfilePath is the path to the YAML profile file, empty for the
	// default search locations.
	ProfilePath string

	// Profiles holds server profiles loaded from the profile file.
	Profiles *File
}

// New creates a Config with default values.
//
// Design decision: A constructor instead of relying on zero values,
// because most defaults are non-zero and the constructor doubles as
// documentation of what they are.
func New() *Config {
	return &Config{
		MaxDepth:     DefaultMaxDepth,
		MaxDisplay:   DefaultMaxDisplay,
		OutputFormat: FormatList,
		MaxRetries:   DefaultMaxRetries,
		RetryDelay:   DefaultRetryDelay,
		Timeout:      DefaultTimeout,
		Concurrency:  DefaultConcurrency,
		CacheSize:    DefaultCacheSize,
		MaxWorkers:   DefaultMaxWorkers,
	}
}

// Validate checks the configuration before any network activity.
// It returns a *ConfigError describing the first invalid field.
func (c *Config) Validate() error {
	if c.RootURL == "" {
		return &ConfigError{Field: "url", Reason: "a root listing URL is required"}
	}
	u, err := url.Parse(c.RootURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ConfigError{Field: "url", Reason: "must be an absolute http or https URL"}
	}

	if c.MaxDepth < MinMaxDepth || c.MaxDepth > MaxMaxDepth {
		return &ConfigError{Field: "max-depth", Reason: "must be between 1 and 10"}
	}
	if c.MaxDisplay < 1 {
		return &ConfigError{Field: "max-display", Reason: "must be positive"}
	}

	switch c.OutputFormat {
	case FormatList, FormatTable, FormatTree, FormatMarkdown:
	default:
		return &ConfigError{Field: "format", Reason: "must be one of list, table, tree, markdown"}
	}

	if c.MaxRetries < 1 {
		return &ConfigError{Field: "retries", Reason: "must be at least 1"}
	}
	if c.RetryDelay <= 0 {
		return &ConfigError{Field: "retry-delay", Reason: "must be positive"}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "timeout", Reason: "must be positive"}
	}
	if c.Concurrency < 1 {
		return &ConfigError{Field: "concurrency", Reason: "must be positive"}
	}
	if c.CacheSize < 1 {
		return &ConfigError{Field: "cache-size", Reason: "must be positive"}
	}
	if c.MaxWorkers < 1 {
		return &ConfigError{Field: "workers", Reason: "must be positive"}
	}

	return nil
}

// ApplyProfile overlays the matching server profile, if any, onto fields
// the user left at their defaults.
func (c *Config) ApplyProfile() {
	if c.Profiles == nil {
		return
	}
	u, err := url.Parse(c.RootURL)
	if err != nil {
		return
	}
	p := c.Profiles.ServerProfile(strings.ToLower(u.Host))
	if c.Pattern == "" && p.Pattern != "" {
		c.Pattern = p.Pattern
	}
	if c.MaxDepth == DefaultMaxDepth && p.Depth != 0 {
		c.MaxDepth = p.Depth
	}
}

// XDGDataDir returns the XDG data directory for corpusfind, used as the
// default location of the crawl database.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for corpusfind, used as the
// default download directory.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}
