package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/corpusfind/corpusfind/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl sessions.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all sessions rather
// than one file per crawl. This keeps history queries ("what did the last
// europarl crawl find?") in one place and simplifies backup.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "corpusfind.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Crawl sessions record one walk invocation each
	CREATE TABLE IF NOT EXISTS crawl_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root_url TEXT NOT NULL,
		pattern TEXT NOT NULL DEFAULT '',
		max_depth INTEGER NOT NULL,
		files INTEGER NOT NULL DEFAULT 0,
		directories INTEGER NOT NULL DEFAULT 0,
		failed_branches INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_root ON crawl_sessions(root_url);
	CREATE INDEX IF NOT EXISTS idx_sessions_created ON crawl_sessions(created_at);

	-- Entries store what each session's walk yielded
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES crawl_sessions(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		size TEXT NOT NULL DEFAULT '',
		last_modified TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_entries_session ON entries(session_id);
	CREATE INDEX IF NOT EXISTS idx_entries_name ON entries(name);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SessionMetadata summarizes one stored crawl session without its entries.
type SessionMetadata struct {
	// ID is the unique identifier of the session in the database.
	ID int64

	// RootURL is the URL the walk started from.
	RootURL string

	// Pattern is the glob pattern the walk filtered with, empty for none.
	Pattern string

	// MaxDepth is the depth bound the walk ran with.
	MaxDepth int

	// Files, Directories, and FailedBranches are the session's counters.
	Files          int
	Directories    int
	FailedBranches int

	// StartedAt is when the walk started.
	StartedAt time.Time

	// Elapsed is how long the walk took.
	Elapsed time.Duration
}

// SaveResult stores a crawl result as a new session with all its entries.
// It returns the new session's ID. Session row and entries are written in
// one transaction so a partial save never appears in history.
func (cdb *CrawlDB) SaveResult(ctx context.Context, result *model.CrawlResult) (int64, error) {
	if result == nil {
		return 0, errors.New("nil crawl result")
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
	INSERT INTO crawl_sessions (root_url, pattern, max_depth, files, directories, failed_branches, started_at, elapsed_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.RootURL,
		result.Pattern,
		result.MaxDepth,
		result.Files,
		result.Directories,
		result.FailedBranches,
		result.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		result.Elapsed.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}

	sessionID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read session id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO entries (session_id, url, name, kind, size, last_modified, description)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // best-effort close

	for _, e := range result.Entries {
		if _, err := stmt.ExecContext(ctx,
			sessionID,
			e.URL,
			e.Name,
			string(e.Kind),
			e.Size,
			e.LastModified,
			e.Description,
		); err != nil {
			return 0, fmt.Errorf("failed to insert entry %q: %w", e.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}
	return sessionID, nil
}

// ListSessions returns metadata for all stored sessions, newest first.
func (cdb *CrawlDB) ListSessions(ctx context.Context) ([]SessionMetadata, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT id, root_url, pattern, max_depth, files, directories, failed_branches, started_at, elapsed_ms
	FROM crawl_sessions
	ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var results []SessionMetadata
	for rows.Next() {
		var meta SessionMetadata
		var startedAt string
		var elapsedMS int64

		if err := rows.Scan(
			&meta.ID,
			&meta.RootURL,
			&meta.Pattern,
			&meta.MaxDepth,
			&meta.Files,
			&meta.Directories,
			&meta.FailedBranches,
			&startedAt,
			&elapsedMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		meta.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, meta)
	}

	return results, rows.Err()
}

// EntriesBySession returns the entries of one session in insertion order.
// A missing session yields an empty slice, not an error.
func (cdb *CrawlDB) EntriesBySession(ctx context.Context, sessionID int64) ([]model.Entry, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT url, name, kind, size, last_modified, description
	FROM entries
	WHERE session_id = ?
	ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var e model.Entry
		var kind string
		if err := rows.Scan(&e.URL, &e.Name, &kind, &e.Size, &e.LastModified, &e.Description); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Kind = model.Kind(kind)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// LatestSessionForRoot returns the most recent session for a root URL,
// or nil when the root has never been crawled.
func (cdb *CrawlDB) LatestSessionForRoot(ctx context.Context, rootURL string) (*SessionMetadata, error) {
	row := cdb.db.QueryRowContext(ctx, `
	SELECT id, root_url, pattern, max_depth, files, directories, failed_branches, started_at, elapsed_ms
	FROM crawl_sessions
	WHERE root_url = ?
	ORDER BY id DESC
	LIMIT 1
	`, rootURL)

	var meta SessionMetadata
	var startedAt string
	var elapsedMS int64

	err := row.Scan(
		&meta.ID,
		&meta.RootURL,
		&meta.Pattern,
		&meta.MaxDepth,
		&meta.Files,
		&meta.Directories,
		&meta.FailedBranches,
		&startedAt,
		&elapsedMS,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	meta.StartedAt = parseTimestamp(startedAt)
	meta.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return &meta, nil
}

// DeleteSession removes a session and its entries.
func (cdb *CrawlDB) DeleteSession(ctx context.Context, sessionID int64) error {
	// ON DELETE CASCADE needs foreign keys enabled per connection; delete
	// entries explicitly so the behavior does not depend on the pragma.
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM crawl_sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return tx.Commit()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
