// Package history keeps an audit trail of the commands the application ran.
// Entries are stored in a SQLite database in the user's data directory.
// The on-screen log is not stored; only one row per finished command.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yllada/kde-theme-backup/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id             TEXT PRIMARY KEY,
	action         TEXT NOT NULL,
	backup         TEXT NOT NULL DEFAULT '',
	argv           TEXT NOT NULL,
	exit_code      INTEGER NOT NULL,
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL,
	archive_digest TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS operations_finished_at ON operations(finished_at);
`

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one finished command.
type Entry struct {
	ID       string
	Action   string
	Backup   string
	Args     []string
	ExitCode int
	Started  time.Time
	Finished time.Time
	// ArchiveDigest is the BLAKE2b-256 of an imported archive, hex encoded.
	ArchiveDigest string
}

// Succeeded reports whether the command exited with status 0.
func (e Entry) Succeeded() bool {
	return e.ExitCode == 0
}

// Duration returns how long the command ran.
func (e Entry) Duration() time.Duration {
	return e.Finished.Sub(e.Started)
}

// Store persists entries in SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// DefaultPath returns ~/.local/share/kde-theme-backup/history.db.
func DefaultPath() (string, error) {
	dataDir, err := common.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, common.HistoryFileName), nil
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts an entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	argv, err := json.Marshal(e.Args)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO operations (id, action, backup, argv, exit_code, started_at, finished_at, archive_digest)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Action, e.Backup, string(argv), e.ExitCode,
		e.Started.UTC().Format(timeLayout),
		e.Finished.UTC().Format(timeLayout),
		e.ArchiveDigest,
	)
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx,
		`SELECT id, action, backup, argv, exit_code, started_at, finished_at, archive_digest
		 FROM operations ORDER BY finished_at DESC LIMIT ?`, limit)
}

// ForBackup returns the entries that touched the named backup, newest first.
func (s *Store) ForBackup(ctx context.Context, name string) ([]Entry, error) {
	return s.query(ctx,
		`SELECT id, action, backup, argv, exit_code, started_at, finished_at, archive_digest
		 FROM operations WHERE backup = ? ORDER BY finished_at DESC`, name)
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var argv, started, finished string
		if err := rows.Scan(&e.ID, &e.Action, &e.Backup, &argv, &e.ExitCode, &started, &finished, &e.ArchiveDigest); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(argv), &e.Args); err != nil {
			return nil, fmt.Errorf("corrupt argv in history entry %s: %w", e.ID, err)
		}
		e.Started, _ = time.Parse(timeLayout, started)
		e.Finished, _ = time.Parse(timeLayout, finished)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
