// Package history keeps a small per-user record of completed downloads in
// SQLite. It is strictly best-effort: a broken or missing database never
// affects a run.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const busyTimeout = 5000 // milliseconds

// Entry is one recorded download.
type Entry struct {
	AnimeTitle   string
	Episode      int
	DownloadedAt time.Time
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns ~/.local/pahedl/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, ".local", "pahedl", "history.db"), nil
}

// Open creates the database and schema if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "create data directory")
	}

	// SQLite URI paths need forward slashes on Windows.
	dbPath := path
	if runtime.GOOS == "windows" {
		dbPath = strings.ReplaceAll(path, `\`, "/")
	}
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=%d", dbPath, busyTimeout)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open history database")
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE IF NOT EXISTS downloads (
			anime_title   TEXT    NOT NULL,
			episode       INTEGER NOT NULL,
			downloaded_at TIMESTAMP NOT NULL,
			PRIMARY KEY (anime_title, episode)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "initialize history schema")
	}

	return &Store{db: db}, nil
}

// Record upserts a completed download.
func (s *Store) Record(animeTitle string, episode int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO downloads (anime_title, episode, downloaded_at) VALUES (?, ?, ?)`,
		animeTitle, episode, time.Now().UTC(),
	)
	return errors.Wrap(err, "record download")
}

// Recent returns the most recently downloaded episodes, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT anime_title, episode, downloaded_at FROM downloads ORDER BY downloaded_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.AnimeTitle, &e.Episode, &e.DownloadedAt); err != nil {
			return nil, errors.Wrap(err, "scan history row")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
