package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// EventIDGenerator produces unique event ids.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type EventIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 event ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns deterministic ids with a prefix: "evt-1", "evt-2", ...
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedGenerator creates a generator whose ids start with prefix.
func NewFixedGenerator(prefix string) *FixedGenerator {
	return &FixedGenerator{prefix: prefix}
}

func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
