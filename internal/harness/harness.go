package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/recordregistry/internal/feed"
	"github.com/roach88/recordregistry/internal/logging"
	"github.com/roach88/recordregistry/internal/record"
	"github.com/roach88/recordregistry/internal/registry"
	"github.com/roach88/recordregistry/internal/testutil"
)

// Harness executes scenario steps against one registry.
type Harness struct {
	reg    *registry.Registry
	feed   *feed.Feed
	logger *slog.Logger
}

// Run executes a scenario against a fresh in-memory registry and returns
// the result. Expectation and assertion failures are reported in the
// result; the error is reserved for failures of the harness itself.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, logging.Discard())
}

// RunWithLogger is Run with the registry and feed logging to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	ctx := context.Background()

	f := feed.New(feed.NewMemoryLog(), feed.WithLogger(logger))
	reg, err := registry.Open(ctx, f,
		registry.WithClock(testutil.NewDeterministicClock().Now),
		registry.WithEventIDs(registry.NewFixedGenerator("evt")),
		registry.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	h := &Harness{reg: reg, feed: f, logger: logger}
	result := NewResult()

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i+1, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	evs, err := f.History(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	for _, ev := range evs {
		result.Events = append(result.Events, newFeedEvent(ev))
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, reg) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep runs one step, appends it to the trace and checks its expect
// clause. Registry rejections are outcomes, not errors.
func (h *Harness) executeStep(ctx context.Context, n int, step Step, result *Result) error {
	te := TraceEvent{
		Step:     n,
		Op:       step.Op,
		As:       step.As,
		RecordID: step.ID,
		Data:     step.Data,
	}

	var err error
	switch step.Op {
	case OpCreate:
		var caller record.Principal
		if caller, err = record.ParsePrincipal(step.As); err == nil {
			te.GotID, err = h.reg.Create(ctx, caller, step.Data)
		}
	case OpUpdate:
		var caller record.Principal
		if caller, err = record.ParsePrincipal(step.As); err == nil {
			err = h.reg.Update(ctx, caller, step.ID, step.Data)
		}
	case OpGet:
		var rec record.Record
		if rec, err = h.reg.Get(step.ID); err == nil {
			te.GotData, te.GotOwner = rec.Data, rec.Owner.String()
		}
	case OpCount:
		te.GotCount = h.reg.Count()
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	outcome, err := outcomeOf(err)
	if err != nil {
		return err
	}
	te.Outcome = outcome
	result.Trace = append(result.Trace, te)

	for _, msg := range checkExpect(te, step.Expect) {
		result.AddError(fmt.Sprintf("step %d (%s): %s", n, step.Op, msg))
	}

	h.logger.Debug("scenario step completed",
		"step", n,
		"op", step.Op,
		"outcome", outcome,
	)
	return nil
}

// outcomeOf maps a step error to its outcome. Errors that are not registry
// rejections are returned unchanged.
func outcomeOf(err error) (string, error) {
	switch {
	case err == nil:
		return OutcomeOK, nil
	case errors.Is(err, record.ErrEmptyPrincipal):
		return OutcomeInvalidPrincipal, nil
	case registry.CodeOf(err) != "":
		return string(registry.CodeOf(err)), nil
	default:
		return "", err
	}
}

func checkExpect(te TraceEvent, ex *Expect) []string {
	want := OutcomeOK
	if ex != nil && ex.Error != "" {
		want = ex.Error
	}
	if te.Outcome != want {
		return []string{fmt.Sprintf("expected outcome %s, got %s", want, te.Outcome)}
	}
	if ex == nil || te.Outcome != OutcomeOK {
		return nil
	}

	var msgs []string
	if ex.ID != nil && te.GotID != *ex.ID {
		msgs = append(msgs, fmt.Sprintf("expected id %d, got %d", *ex.ID, te.GotID))
	}
	if ex.Data != nil && te.GotData != *ex.Data {
		msgs = append(msgs, fmt.Sprintf("expected data %q, got %q", *ex.Data, te.GotData))
	}
	if ex.Owner != "" && te.GotOwner != ex.Owner {
		msgs = append(msgs, fmt.Sprintf("expected owner %q, got %q", ex.Owner, te.GotOwner))
	}
	if ex.Count != nil && te.GotCount != *ex.Count {
		msgs = append(msgs, fmt.Sprintf("expected count %d, got %d", *ex.Count, te.GotCount))
	}
	return msgs
}
