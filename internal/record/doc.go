// Package record defines the registry's data model: principals, records and
// the events that describe every change to them.
//
// This package imports nothing internal. Every other package builds on it.
//
// Key constraints:
//   - Record ids are 1-based int64 values, never reused
//   - An event's Seq is its position in the feed (logical clock); wall time
//     (At) is informational and never used for ordering
//   - Event hashes chain each event to its predecessor so rewrites of the
//     append-only log are detectable
package record
