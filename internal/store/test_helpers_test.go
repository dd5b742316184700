package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/recordregistry/internal/record"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testAt = time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

// sealedChain seals evs as consecutive feed events starting at seq 1.
func sealedChain(t *testing.T, evs ...record.Event) []record.Event {
	t.Helper()
	out := make([]record.Event, 0, len(evs))
	prev := ""
	for i, ev := range evs {
		sealed, err := record.Seal(ev, int64(i+1), prev)
		if err != nil {
			t.Fatalf("Seal() failed: %v", err)
		}
		out = append(out, sealed)
		prev = sealed.Hash
	}
	return out
}
