package testutil

import (
	"sync"
	"testing"
	"time"
)

func TestDeterministicClock_Steps(t *testing.T) {
	c := NewDeterministicClock()

	first := c.Now()
	second := c.Now()

	if !first.Equal(DefaultStart) {
		t.Errorf("first Now() = %v, want %v", first, DefaultStart)
	}
	if got := second.Sub(first); got != time.Second {
		t.Errorf("step = %v, want 1s", got)
	}
	if !c.Peek().Equal(DefaultStart.Add(2 * time.Second)) {
		t.Errorf("Peek() = %v", c.Peek())
	}
}

func TestDeterministicClock_Reset(t *testing.T) {
	c := NewDeterministicClockAt(DefaultStart, time.Minute)
	c.Now()
	c.Now()

	c.Reset(DefaultStart)
	if got := c.Now(); !got.Equal(DefaultStart) {
		t.Errorf("Now() after Reset = %v, want %v", got, DefaultStart)
	}
}

func TestDeterministicClock_ConcurrentCallsAreUnique(t *testing.T) {
	c := NewDeterministicClock()
	const n = 100

	var (
		mu   sync.Mutex
		seen = make(map[time.Time]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts := c.Now()
			mu.Lock()
			seen[ts] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("got %d unique times, want %d", len(seen), n)
	}
}
