package feed

import "sync/atomic"

// Clock is the feed's logical clock: the sequence number of the last
// event it has appended or verified.
//
// Only the feed advances it, under the feed mutex; the atomic lets Tail be
// read without taking that mutex.
type Clock struct {
	seq atomic.Int64
}

// NewClockAt creates a clock positioned at start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the sequence number the next event will receive.
func (c *Clock) Next() int64 {
	return c.seq.Load() + 1
}

// Advance moves the clock to seq.
func (c *Clock) Advance(seq int64) {
	c.seq.Store(seq)
}

// Current returns the last assigned sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
