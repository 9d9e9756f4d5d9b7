package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/linkex/internal/model"
)

// FileName is the name of the history database file inside the data directory.
const FileName = "linkex.db"

// ErrRunNotFound is returned when a run ID does not exist in the history.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores saved runs in a SQLite database.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database inside dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		base TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL,
		filter TEXT NOT NULL DEFAULT '',
		content_hash TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		candidates INTEGER NOT NULL DEFAULT 0,
		duplicates INTEGER NOT NULL DEFAULT 0,
		filtered_out INTEGER NOT NULL DEFAULT 0,
		links_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_hash ON runs(content_hash);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun inserts run and sets run.ID to the new row ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) error {
	links := run.Links
	if links == nil {
		links = []string{}
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("failed to serialize links: %w", err)
	}

	ts := run.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
	INSERT INTO runs (source, base, mode, filter, content_hash, timestamp, candidates, duplicates, filtered_out, links_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		run.Source,
		run.Base,
		run.Mode,
		run.Filter,
		run.ContentHash,
		ts.UTC().Format(time.RFC3339Nano),
		run.Candidates,
		run.Duplicates,
		run.FilteredOut,
		string(linksJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run id: %w", err)
	}
	run.ID = id

	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run. Links are loaded for each run.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	query := `
	SELECT id, source, base, mode, filter, content_hash, timestamp, candidates, duplicates, filtered_out, links_json
	FROM runs
	ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*model.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun retrieves a single run by ID. It returns ErrRunNotFound when no
// row has that ID.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	query := `
	SELECT id, source, base, mode, filter, content_hash, timestamp, candidates, duplicates, filtered_out, links_json
	FROM runs
	WHERE id = ?
	`

	run, err := scanRun(hdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// CountByContentHash returns how many saved runs were made over input with
// the given digest.
func (hdb *HistoryDB) CountByContentHash(ctx context.Context, hash string) (int, error) {
	var n int
	err := hdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE content_hash = ?", hash).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var (
		run       model.Run
		timestamp string
		linksJSON string
	)

	err := row.Scan(
		&run.ID,
		&run.Source,
		&run.Base,
		&run.Mode,
		&run.Filter,
		&run.ContentHash,
		&timestamp,
		&run.Candidates,
		&run.Duplicates,
		&run.FilteredOut,
		&linksJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Timestamp = parseTimestamp(timestamp)
	if err := json.Unmarshal([]byte(linksJSON), &run.Links); err != nil {
		return nil, fmt.Errorf("failed to parse links of run %d: %w", run.ID, err)
	}

	return &run, nil
}

// timestampFormats contains the timestamp formats the runs table may hold.
// Rows written by SaveRun use RFC3339Nano; the others cover rows edited by hand.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
