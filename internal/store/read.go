package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/recordregistry/internal/record"
)

// Since returns every event with seq >= from, ordered by seq.
// Returns an empty slice (not nil) if there are none.
func (s *Store) Since(ctx context.Context, from int64) ([]record.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, event_id, kind, record_id, owner, data, at_unix_nano, prev_hash, hash
		FROM events
		WHERE seq >= ?
		ORDER BY seq ASC
	`, from)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []record.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// Tail returns the seq of the last stored event, or 0 for an empty log.
func (s *Store) Tail(ctx context.Context) (int64, error) {
	var tail int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&tail); err != nil {
		return 0, fmt.Errorf("read tail: %w", err)
	}
	return tail, nil
}

// CountRecords returns the number of created events, which is the number
// of records ever created.
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE kind = 'created'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// ReadRecordEvents returns the events for one record id in seq order.
func (s *Store) ReadRecordEvents(ctx context.Context, recordID int64) ([]record.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, event_id, kind, record_id, owner, data, at_unix_nano, prev_hash, hash
		FROM events
		WHERE record_id = ?
		ORDER BY seq ASC
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("query record events: %w", err)
	}
	defer rows.Close()

	events := []record.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (record.Event, error) {
	var (
		ev       record.Event
		kind     string
		owner    string
		unixNano int64
	)
	err := rows.Scan(&ev.Seq, &ev.ID, &kind, &ev.RecordID, &owner, &ev.Data, &unixNano, &ev.PrevHash, &ev.Hash)
	if err != nil {
		return record.Event{}, fmt.Errorf("scan event: %w", err)
	}
	ev.Kind = record.EventKind(kind)
	ev.Owner = record.Principal(owner)
	ev.At = time.Unix(0, unixNano).UTC()
	return ev, nil
}
