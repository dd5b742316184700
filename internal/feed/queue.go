package feed

import (
	"context"
	"sync"

	"github.com/roach88/recordregistry/internal/record"
)

// eventQueue is an unbounded FIFO of events for a single subscriber.
//
// Enqueue never blocks, so the broadcasting writer is never held up by a
// slow reader. The signal channel (buffered, size 1) coalesces wakeups for
// the pump goroutine.
type eventQueue struct {
	mu     sync.Mutex
	events []record.Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]record.Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e record.Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front event without blocking.
func (q *eventQueue) TryDequeue() (record.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return record.Event{}, false
	}

	e := q.events[0]
	q.events[0] = record.Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Dequeue blocks until an event is available, the queue is closed and
// drained, or ctx is done.
func (q *eventQueue) Dequeue(ctx context.Context) (record.Event, bool) {
	for {
		if e, ok := q.TryDequeue(); ok {
			return e, true
		}

		q.mu.Lock()
		done := q.closed && len(q.events) == 0
		q.mu.Unlock()
		if done {
			return record.Event{}, false
		}

		select {
		case <-ctx.Done():
			return record.Event{}, false
		case <-q.signal:
		}
	}
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close stops further enqueues and wakes any blocked Dequeue.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
