package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/recordregistry/internal/feed"
	"github.com/roach88/recordregistry/internal/metrics"
	"github.com/roach88/recordregistry/internal/record"
)

// Registry is the single-writer record store.
//
// Thread-safety model:
//   - Create, Update, Refresh: serialized by the write lock
//   - Get, Count: take the read lock, never observe a half-applied mutation
type Registry struct {
	mu    sync.RWMutex
	state *State
	feed  *feed.Feed
	fault error // set when replay hits a corrupt log; every later write fails with it

	now     func() time.Time
	ids     EventIDGenerator
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the source of CreatedAt and event timestamps.
// Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithEventIDs sets the event id generator. Default: UUIDv7Generator.
func WithEventIDs(g EventIDGenerator) Option {
	return func(r *Registry) {
		r.ids = g
	}
}

// WithMetrics records create/update counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithLogger sets the registry's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// Open rebuilds a Registry by replaying every event in f.
//
// Returns an error wrapping ErrCorruptLog if the events contradict the
// registry invariants, or feed.ErrBrokenChain if the hash chain is broken.
func Open(ctx context.Context, f *feed.Feed, opts ...Option) (*Registry, error) {
	r := &Registry{
		state:  NewState(),
		feed:   f,
		now:    time.Now,
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.catchUp(ctx); err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	r.logger.Info("registry opened",
		"records", r.state.Count(),
		"tail", f.Tail(),
	)
	return r, nil
}

// Feed returns the registry's event feed.
func (r *Registry) Feed() *feed.Feed {
	return r.feed
}

// Create stores a new record owned by caller and returns its id.
// Ids are assigned 1, 2, 3, ... with no gaps.
func (r *Registry) Create(ctx context.Context, caller record.Principal, data string) (int64, error) {
	if caller == "" {
		return 0, fmt.Errorf("create record: %w", record.ErrEmptyPrincipal)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.catchUp(ctx); err != nil {
		return 0, fmt.Errorf("create record: %w", err)
	}

	id := r.state.NextID()
	ev, err := r.feed.Append(ctx, record.NewCreated(r.ids.Generate(), id, caller, data, r.now()))
	if err != nil {
		return 0, fmt.Errorf("create record %d: %w", id, err)
	}
	if err := r.apply(ev); err != nil {
		return 0, err
	}

	r.metrics.IncrementRecordsCreated()
	r.logger.Info("record created",
		"record_id", id,
		"owner", caller,
		"seq", ev.Seq,
	)
	return id, nil
}

// Update replaces the data of record id. Only the record's owner may update
// it; anyone else gets ErrNotOwner and nothing is emitted.
func (r *Registry) Update(ctx context.Context, caller record.Principal, id int64, newData string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.catchUp(ctx); err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}

	if err := r.state.CheckUpdate(caller, id); err != nil {
		r.rejected(err, id, caller)
		return err
	}

	ev, err := r.feed.Append(ctx, record.NewUpdated(r.ids.Generate(), id, newData, r.now()))
	if err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}
	if err := r.apply(ev); err != nil {
		return err
	}

	r.metrics.IncrementUpdatesApplied()
	r.logger.Info("record updated",
		"record_id", id,
		"caller", caller,
		"seq", ev.Seq,
	)
	return nil
}

// Get returns the record with the given id.
func (r *Registry) Get(id int64) (record.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.state.Get(id)
	if !ok {
		return record.Record{}, notFound(id)
	}
	return rec, nil
}

// Count returns the number of records ever created.
func (r *Registry) Count() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Count()
}

// Refresh applies events other writers appended to the shared log since
// the last call. Create and Update do this implicitly.
func (r *Registry) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.catchUp(ctx); err != nil {
		return fmt.Errorf("refresh registry: %w", err)
	}
	return nil
}

// catchUp must be called with r.mu held for writing.
func (r *Registry) catchUp(ctx context.Context) error {
	if r.fault != nil {
		return r.fault
	}

	evs, err := r.feed.Refresh(ctx)
	if err != nil {
		return err
	}
	for _, ev := range evs {
		if err := r.apply(ev); err != nil {
			return err
		}
	}
	return nil
}

// apply must be called with r.mu held for writing. A failure means the log
// and the state disagree; the registry refuses further writes.
func (r *Registry) apply(ev record.Event) error {
	if err := r.state.Apply(ev); err != nil {
		r.fault = err
		r.logger.Error("event replay failed", "seq", ev.Seq, "error", err)
		return err
	}
	return nil
}

func (r *Registry) rejected(err error, id int64, caller record.Principal) {
	reason := metrics.ReasonRecordNotFound
	if IsNotOwner(err) {
		reason = metrics.ReasonNotOwner
	}
	r.metrics.IncrementUpdatesRejected(reason)
	r.logger.Warn("update rejected",
		"record_id", id,
		"caller", caller,
		"code", CodeOf(err),
	)
}
