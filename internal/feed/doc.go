// Package feed is the registry's append-only event feed.
//
// A Feed stamps each event with its sequence number and chain hash, appends
// it to a durable Log, and broadcasts a copy to every live Subscription.
//
// # Ordering
//
// Appends are serialized by the feed's mutex, so events reach the Log and
// every subscriber in a single total order. Sequence numbers start at 1 and
// have no gaps; a Log must refuse an event whose Seq is not tail+1 with
// ErrConflict.
//
// # Subscribers
//
// Each Subscription owns an unbounded queue and a pump goroutine. Broadcast
// only enqueues, so a slow reader never blocks the writer or other readers.
// Cancelling the subscription's context or calling Close stops delivery and
// closes its channel; the Log and other subscribers are unaffected.
package feed
