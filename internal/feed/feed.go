package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/recordregistry/internal/metrics"
	"github.com/roach88/recordregistry/internal/record"
)

// Feed is the ordered, broadcast view over a Log.
//
// A Feed starts at sequence 0 and learns the Log's contents through Refresh.
// Owners that share a Log with other writers (another process on the same
// SQLite file) must Refresh before Append; Append fails with ErrConflict
// otherwise.
type Feed struct {
	log     Log
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex // serializes Append, Refresh and subscriber registration
	clock *Clock
	head  string // hash of the event at clock.Current()
	subs  map[*Subscription]struct{}
}

// Option configures a Feed.
type Option func(*Feed)

// WithLogger sets the feed's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Feed) {
		f.logger = l
	}
}

// WithMetrics records subscriber and delivery metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Feed) {
		f.metrics = m
	}
}

// New creates a Feed over log.
func New(log Log, opts ...Option) *Feed {
	f := &Feed{
		log:    log,
		logger: slog.Default(),
		clock:  NewClockAt(0),
		subs:   make(map[*Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Tail returns the sequence number of the last event this feed has appended
// or verified.
func (f *Feed) Tail() int64 {
	return f.clock.Current()
}

// Append seals ev (sequence number and chain hash), stores it durably and
// broadcasts it. The returned event is the stored one.
//
// If the Log rejects the event nothing is broadcast and the feed position is
// unchanged.
func (f *Feed) Append(ctx context.Context, ev record.Event) (record.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sealed, err := record.Seal(ev, f.clock.Next(), f.head)
	if err != nil {
		return record.Event{}, fmt.Errorf("seal event: %w", err)
	}

	if err := f.log.Append(ctx, sealed); err != nil {
		return record.Event{}, fmt.Errorf("append event %d: %w", sealed.Seq, err)
	}

	f.advance(sealed)
	f.broadcast(sealed)

	f.logger.Debug("event appended",
		"seq", sealed.Seq,
		"kind", sealed.Kind,
		"record_id", sealed.RecordID,
	)
	return sealed, nil
}

// Refresh reads events appended to the Log since this feed's tail, verifies
// them, broadcasts them and returns them in order.
//
// Verification is all-or-nothing: if any event breaks the chain the feed
// position is unchanged and ErrBrokenChain is returned.
func (f *Feed) Refresh(ctx context.Context) ([]record.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	evs, err := f.log.Since(ctx, f.clock.Next())
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	next, prev := f.clock.Next(), f.head
	for _, ev := range evs {
		if err := checkLink(next, prev, ev); err != nil {
			f.logger.Warn("event chain verification failed", "seq", ev.Seq, "error", err)
			return nil, err
		}
		next, prev = ev.Seq+1, ev.Hash
	}

	for _, ev := range evs {
		f.advance(ev)
		f.broadcast(ev)
	}
	return evs, nil
}

// History returns every stored event with Seq >= from, in order, up to the
// Log's current tail.
func (f *Feed) History(ctx context.Context, from int64) ([]record.Event, error) {
	evs, err := f.log.Since(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return evs, nil
}

// Verify walks the whole Log and checks sequence continuity and the hash
// chain. Returns the number of events verified.
func (f *Feed) Verify(ctx context.Context) (int64, error) {
	evs, err := f.log.Since(ctx, 1)
	if err != nil {
		return 0, fmt.Errorf("read feed: %w", err)
	}

	next, prev := int64(1), ""
	for _, ev := range evs {
		if err := checkLink(next, prev, ev); err != nil {
			return next - 1, err
		}
		next, prev = ev.Seq+1, ev.Hash
	}
	return next - 1, nil
}

// Subscribe delivers every event appended or refreshed after the call,
// optionally filtered by kind.
//
// "After" is measured against the Log, not this feed's tail: events another
// writer stored before the call are skipped even though this feed has not
// refreshed them yet. If the Log cannot be read the cut-off falls back to
// the feed's tail.
func (f *Feed) Subscribe(ctx context.Context, kinds ...record.EventKind) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	cutoff := f.clock.Current()
	if pending, err := f.log.Since(ctx, f.clock.Next()); err != nil {
		f.logger.Warn("subscribe: reading log tail failed", "error", err)
	} else if n := len(pending); n > 0 {
		cutoff = max(cutoff, pending[n-1].Seq)
	}

	s := f.register(ctx, kinds)
	s.skipThrough(cutoff)
	return s
}

// SubscribeFrom delivers stored events with Seq >= from, then live events,
// with no gap and no duplicate between the two. Nothing before from is
// delivered, even when from is past the current tail.
func (f *Feed) SubscribeFrom(ctx context.Context, from int64, kinds ...record.EventKind) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	backlog, err := f.log.Since(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("read backlog: %w", err)
	}

	s := f.register(ctx, kinds)
	if from > 1 {
		s.skipThrough(from - 1)
	}
	for _, ev := range backlog {
		if s.offer(ev) {
			f.metrics.IncrementEventsDelivered(string(ev.Kind))
		}
	}
	return s, nil
}

// Poll follows the Log directly, checking it for new events every interval.
// Unlike Subscribe it sees events written by other processes without a
// Refresh. The subscription ends with Err set if a read fails or the chain
// is broken.
func (f *Feed) Poll(ctx context.Context, from int64, every time.Duration, kinds ...record.EventKind) *Subscription {
	s := newSubscription(ctx, kinds, nil)
	go f.poll(s, from, every)
	return s
}

func (f *Feed) poll(s *Subscription, from int64, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	next := max(from, 1)
	prev, chained := "", next == 1
	for {
		evs, err := f.log.Since(s.ctx, next)
		if err != nil {
			if s.ctx.Err() == nil {
				s.fail(fmt.Errorf("poll feed: %w", err))
			}
			return
		}

		for _, ev := range evs {
			if ev.Seq != next || (chained && record.VerifyLink(prev, ev) != nil) {
				s.fail(fmt.Errorf("%w: at seq %d", ErrBrokenChain, ev.Seq))
				return
			}
			if s.offer(ev) {
				f.metrics.IncrementEventsDelivered(string(ev.Kind))
			}
			next, prev, chained = ev.Seq+1, ev.Hash, true
		}

		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// register must be called with f.mu held.
func (f *Feed) register(ctx context.Context, kinds []record.EventKind) *Subscription {
	s := newSubscription(ctx, kinds, f.unregister)
	f.subs[s] = struct{}{}
	f.metrics.SubscriberAdded()
	return s
}

func (f *Feed) unregister(s *Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.subs[s]; ok {
		delete(f.subs, s)
		f.metrics.SubscriberRemoved()
	}
}

// advance must be called with f.mu held.
func (f *Feed) advance(ev record.Event) {
	f.clock.Advance(ev.Seq)
	f.head = ev.Hash
}

// broadcast must be called with f.mu held.
func (f *Feed) broadcast(ev record.Event) {
	for s := range f.subs {
		if s.offer(ev) {
			f.metrics.IncrementEventsDelivered(string(ev.Kind))
		}
	}
}

func checkLink(wantSeq int64, prevHash string, ev record.Event) error {
	if ev.Seq != wantSeq {
		return fmt.Errorf("%w: got seq %d, want %d", ErrBrokenChain, ev.Seq, wantSeq)
	}
	if err := record.VerifyLink(prevHash, ev); err != nil {
		return fmt.Errorf("%w: %v", ErrBrokenChain, err)
	}
	return nil
}
