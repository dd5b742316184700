package registry

import (
	"fmt"

	"github.com/roach88/recordregistry/internal/record"
)

// State is the registry's in-memory state: records by id and the next id
// to assign.
//
// INVARIANTS:
//   - nextID == 1 + number of records ever created
//   - every key of records lies in [1, nextID-1]
//   - owner and createdAt of a stored record never change
type State struct {
	records map[int64]record.Record
	nextID  int64
}

// NewState returns an empty state whose first id is 1.
func NewState() *State {
	return &State{
		records: make(map[int64]record.Record),
		nextID:  1,
	}
}

// NextID returns the id the next created record will receive.
func (s *State) NextID() int64 {
	return s.nextID
}

// Count returns the number of records ever created.
func (s *State) Count() int64 {
	return s.nextID - 1
}

// Get returns a copy of the record with the given id.
func (s *State) Get(id int64) (record.Record, bool) {
	if id < 1 || id >= s.nextID {
		return record.Record{}, false
	}
	rec, ok := s.records[id]
	return rec, ok
}

// CheckUpdate validates an update without applying it.
// The owner check is exact identity equality.
func (s *State) CheckUpdate(caller record.Principal, id int64) error {
	rec, ok := s.Get(id)
	if !ok {
		return notFound(id)
	}
	if rec.Owner != caller {
		return notOwner(id, caller)
	}
	return nil
}

// Apply folds one event into the state. It is used both for live mutations
// and for replay, so it re-checks the invariants an event must satisfy.
func (s *State) Apply(ev record.Event) error {
	switch ev.Kind {
	case record.KindCreated:
		if ev.RecordID != s.nextID {
			return fmt.Errorf("%w: seq %d creates record %d, want %d", ErrCorruptLog, ev.Seq, ev.RecordID, s.nextID)
		}
		if ev.Owner == "" {
			return fmt.Errorf("%w: seq %d creates record %d without an owner", ErrCorruptLog, ev.Seq, ev.RecordID)
		}
		s.records[ev.RecordID] = record.Record{
			ID:        ev.RecordID,
			Data:      ev.Data,
			Owner:     ev.Owner,
			CreatedAt: ev.At,
		}
		s.nextID++
	case record.KindUpdated:
		rec, ok := s.Get(ev.RecordID)
		if !ok {
			return fmt.Errorf("%w: seq %d updates unknown record %d", ErrCorruptLog, ev.Seq, ev.RecordID)
		}
		rec.Data = ev.Data
		s.records[ev.RecordID] = rec
	default:
		return fmt.Errorf("%w: seq %d has unknown kind %q", ErrCorruptLog, ev.Seq, ev.Kind)
	}
	return nil
}
