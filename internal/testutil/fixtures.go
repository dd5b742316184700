package testutil

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/recordregistry/internal/feed"
	"github.com/roach88/recordregistry/internal/logging"
	"github.com/roach88/recordregistry/internal/record"
	"github.com/roach88/recordregistry/internal/store"
)

// Principals used across tests. Alice owns things; Mallory tries to change them.
const (
	Alice   record.Principal = "alice"
	Bob     record.Principal = "bob"
	Mallory record.Principal = "mallory"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return logging.Discard()
}

// OpenStore opens a SQLite store in a per-test temp directory and closes it
// on cleanup. Returns the store and its path so tests can reopen it.
func OpenStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

// MemoryFeed returns a feed over a fresh in-memory log.
func MemoryFeed() (*feed.Feed, *feed.MemoryLog) {
	log := feed.NewMemoryLog()
	return feed.New(log, feed.WithLogger(DiscardLogger())), log
}
