package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a thread-safe wall clock for tests. Each call to Now
// returns the previous value advanced by a fixed step, so record creation
// times are predictable and strictly increasing.
type DeterministicClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// DefaultStart is the first time returned by NewDeterministicClock.
var DefaultStart = time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

// NewDeterministicClock creates a clock starting at DefaultStart and
// advancing one second per call.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(DefaultStart, time.Second)
}

// NewDeterministicClockAt creates a clock starting at start and advancing by step.
func NewDeterministicClockAt(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{next: start, step: step}
}

// Now returns the current time and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

// Peek returns the time the next call to Now will return, without advancing.
func (c *DeterministicClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// Reset moves the clock back to start.
func (c *DeterministicClock) Reset(start time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = start
}
