package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/recordregistry/internal/feed"
	"github.com/roach88/recordregistry/internal/record"
)

// Append inserts ev at the tail of the log.
//
// The tail check and the insert share one transaction, so two processes
// racing for the same seq cannot both succeed. A stale seq, a reused event
// id or a second created event for a record id all return feed.ErrConflict.
func (s *Store) Append(ctx context.Context, ev record.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append event: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var tail int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&tail); err != nil {
		return fmt.Errorf("append event: read tail: %w", err)
	}
	if ev.Seq != tail+1 {
		return fmt.Errorf("append event: %w: got seq %d, want %d", feed.ErrConflict, ev.Seq, tail+1)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events
		(seq, event_id, kind, record_id, owner, data, at_unix_nano, prev_hash, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ev.Seq,
		ev.ID,
		string(ev.Kind),
		ev.RecordID,
		string(ev.Owner),
		ev.Data,
		ev.At.UnixNano(),
		ev.PrevHash,
		ev.Hash,
	)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("append event: %w: %v", feed.ErrConflict, err)
		}
		return fmt.Errorf("append event: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append event: commit: %w", err)
	}
	return nil
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
