package feed

import (
	"context"
	"iter"
	"sync"

	"github.com/roach88/recordregistry/internal/record"
)

// Subscription is one subscriber's view of the feed.
//
// Thread-safety: all methods are safe for concurrent use.
type Subscription struct {
	kinds  []record.EventKind
	queue  *eventQueue
	out    chan record.Event
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	onClose   func(*Subscription)

	mu      sync.Mutex
	lastSeq int64 // highest seq offered, for dedupe across backlog and live events
	err     error
}

func newSubscription(parent context.Context, kinds []record.EventKind, onClose func(*Subscription)) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	s := &Subscription{
		kinds:   append([]record.EventKind(nil), kinds...),
		queue:   newEventQueue(),
		out:     make(chan record.Event),
		ctx:     ctx,
		cancel:  cancel,
		onClose: onClose,
	}
	go s.pump()
	return s
}

// Events returns the delivery channel. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan record.Event {
	return s.out
}

// All returns the subscription as a lazy sequence. The sequence ends when the
// subscription is closed; breaking out of a range over it closes the
// subscription.
func (s *Subscription) All() iter.Seq[record.Event] {
	return func(yield func(record.Event) bool) {
		for ev := range s.out {
			if !yield(ev) {
				s.Close()
				return
			}
		}
	}
}

// Close stops delivery and releases the subscriber's queue.
// Calling Close more than once is a no-op.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.queue.Close()
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

// Err returns the error that ended the subscription, if any.
// A subscription ended by Close or context cancellation has no error.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Pending returns the number of events queued but not yet received.
func (s *Subscription) Pending() int {
	return s.queue.Len()
}

// offer queues ev unless it was already offered or fails the kind filter.
// Reports whether ev was queued.
func (s *Subscription) offer(ev record.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Seq <= s.lastSeq {
		return false
	}
	s.lastSeq = ev.Seq
	if !ev.Matches(s.kinds) {
		return false
	}
	return s.queue.Enqueue(ev)
}

// skipThrough marks every event up to seq as already offered.
func (s *Subscription) skipThrough(seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeq = seq
}

func (s *Subscription) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.Close()
}

func (s *Subscription) pump() {
	defer close(s.out)
	defer s.Close()

	for s.ctx.Err() == nil {
		ev, ok := s.queue.Dequeue(s.ctx)
		if !ok {
			return
		}
		select {
		case s.out <- ev:
		case <-s.ctx.Done():
			return
		}
	}
}
