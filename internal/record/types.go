package record

import (
	"fmt"
	"time"
)

// Record is a single registry entry.
// ID, Owner and CreatedAt never change after creation; Data is replaced on update.
type Record struct {
	ID        int64     `json:"id"`
	Data      string    `json:"data"`
	Owner     Principal `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// EventKind distinguishes the two event variants.
type EventKind string

const (
	// KindCreated is emitted once per record, when it is created.
	KindCreated EventKind = "created"
	// KindUpdated is emitted for every accepted update.
	KindUpdated EventKind = "updated"
)

// ParseEventKind converts a textual kind into an EventKind.
func ParseEventKind(s string) (EventKind, error) {
	switch EventKind(s) {
	case KindCreated, KindUpdated:
		return EventKind(s), nil
	default:
		return "", fmt.Errorf("unknown event kind %q: must be %q or %q", s, KindCreated, KindUpdated)
	}
}

// Event is an immutable entry in the feed.
//
// Created events carry Owner and the initial Data. Updated events carry the
// new Data and leave Owner empty.
type Event struct {
	Seq      int64     `json:"seq"`
	ID       string    `json:"id"`
	Kind     EventKind `json:"kind"`
	RecordID int64     `json:"record_id"`
	Owner    Principal `json:"owner,omitempty"`
	Data     string    `json:"data"`
	At       time.Time `json:"at"`
	PrevHash string    `json:"prev_hash"`
	Hash     string    `json:"hash"`
}

// NewCreated builds an unsequenced Created event.
func NewCreated(eventID string, recordID int64, owner Principal, data string, at time.Time) Event {
	return Event{
		ID:       eventID,
		Kind:     KindCreated,
		RecordID: recordID,
		Owner:    owner,
		Data:     data,
		At:       Timestamp(at),
	}
}

// NewUpdated builds an unsequenced Updated event.
func NewUpdated(eventID string, recordID int64, newData string, at time.Time) Event {
	return Event{
		ID:       eventID,
		Kind:     KindUpdated,
		RecordID: recordID,
		Data:     newData,
		At:       Timestamp(at),
	}
}

// Matches reports whether the event passes a kind filter.
// An empty filter matches everything.
func (e Event) Matches(kinds []EventKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// Timestamp strips the monotonic reading and location from t so that a value
// round-trips through storage (unix nanoseconds) unchanged.
func Timestamp(t time.Time) time.Time {
	return time.Unix(0, t.UnixNano()).UTC()
}
