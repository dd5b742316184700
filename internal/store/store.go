package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion is stored in PRAGMA user_version.
// Version 1 added the partial unique index on created record ids.
const currentSchemaVersion = 1

// Store is the durable event log. It implements feed.Log.
//
// A single pooled connection serializes writers inside this process;
// immediate transactions serialize them across processes sharing the file.
type Store struct {
	db   *sql.DB
	path string
}

// connParams are go-sqlite3 DSN options applied to every connection the
// pool opens. _txlock=immediate makes BEGIN take the write lock, so Append's
// tail check and insert cannot interleave with another process's append.
var connParams = [][2]string{
	{"_journal_mode", "WAL"},
	{"_synchronous", "NORMAL"},
	{"_busy_timeout", "5000"},
	{"_foreign_keys", "on"},
	{"_txlock", "immediate"},
}

// dsn builds the go-sqlite3 data source name for path.
func dsn(path string) string {
	q := url.Values{}
	for _, p := range connParams {
		q.Set(p[0], p[1])
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

// Open creates or opens the event log at path and brings its schema up to
// date. Opening an existing log is safe from several processes at once.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open event log %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, path: path}
	if err := s.Ping(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("event log %s: %w", path, err)
	}
	return s, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database file can be reached.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("event log %s unreachable: %w", s.path, err)
	}
	return nil
}

// migrations[i] upgrades a log from user_version i to i+1.
var migrations = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_created_record
	 ON events(record_id) WHERE kind = 'created'`,
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for v := version; v < currentSchemaVersion; v++ {
		if _, err := db.Exec(migrations[v]); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// pragma reads a connection pragma as text.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read pragma %s: %w", name, err)
	}
	return value, nil
}
