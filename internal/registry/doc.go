// Package registry is the single-owner record registry.
//
// A Registry holds the current State (records by id plus the next id) and
// mutates it only through Create and Update. Every accepted mutation is
// appended to the event feed before it is applied, under one write lock:
//
//	catch up from the log -> validate -> append event -> apply to state
//
// so a reader either sees neither the new state nor the event, or both.
// Rejected calls (ErrNotOwner, ErrRecordNotFound) change nothing and emit
// nothing.
//
// State is never persisted on its own. Open rebuilds it by replaying the
// feed, which is what makes the feed the single source of truth.
package registry
