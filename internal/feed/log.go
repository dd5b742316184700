package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/recordregistry/internal/record"
)

var (
	// ErrConflict is returned by a Log when an appended event does not
	// directly follow the current tail (another writer got there first).
	ErrConflict = errors.New("feed: sequence conflict")

	// ErrBrokenChain is returned when stored events fail hash verification
	// or skip a sequence number.
	ErrBrokenChain = errors.New("feed: broken event chain")
)

// Log is the durable substrate behind a Feed.
//
//go:generate mockgen -source=log.go -destination=mocks/mocks.go -package=mocks Log
type Log interface {
	// Append durably stores ev. ev.Seq must equal the current tail + 1.
	Append(ctx context.Context, ev record.Event) error

	// Since returns every event with Seq >= from, ordered by Seq.
	// Returns an empty slice (not nil) when there are none.
	Since(ctx context.Context, from int64) ([]record.Event, error)
}

// MemoryLog is an in-process Log. Events are lost when the process exits.
type MemoryLog struct {
	mu     sync.RWMutex
	events []record.Event
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (l *MemoryLog) Append(_ context.Context, ev record.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if want := int64(len(l.events)) + 1; ev.Seq != want {
		return fmt.Errorf("%w: got seq %d, want %d", ErrConflict, ev.Seq, want)
	}
	l.events = append(l.events, ev)
	return nil
}

func (l *MemoryLog) Since(_ context.Context, from int64) ([]record.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if from < 1 {
		from = 1
	}
	if from > int64(len(l.events)) {
		return []record.Event{}, nil
	}
	return append([]record.Event{}, l.events[from-1:]...), nil
}

// Len returns the number of stored events.
func (l *MemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
