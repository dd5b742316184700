package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/recordregistry/internal/record"
)

// Step outcomes other than registry error codes.
const (
	OutcomeOK               = "ok"
	OutcomeInvalidPrincipal = "INVALID_PRINCIPAL"
)

// TraceEvent is one executed scenario step and what it returned.
type TraceEvent struct {
	Step     int    `json:"step"`
	Op       string `json:"op"`
	As       string `json:"as,omitempty"`
	RecordID int64  `json:"id,omitempty"`
	Data     string `json:"data,omitempty"`

	// Outcome is OutcomeOK, OutcomeInvalidPrincipal or a registry error code.
	Outcome string `json:"outcome"`

	GotID    int64  `json:"got_id,omitempty"`
	GotData  string `json:"got_data,omitempty"`
	GotOwner string `json:"got_owner,omitempty"`
	GotCount int64  `json:"got_count,omitempty"`
}

func (e TraceEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s", e.Step, e.Op)
	if e.Op == OpCreate || e.Op == OpUpdate {
		fmt.Fprintf(&b, " as=%q", e.As)
	}
	if e.Op == OpUpdate || e.Op == OpGet {
		fmt.Fprintf(&b, " id=%d", e.RecordID)
	}
	if e.Op == OpCreate || e.Op == OpUpdate {
		fmt.Fprintf(&b, " data=%q", e.Data)
	}
	fmt.Fprintf(&b, " => %s", e.Outcome)
	if e.Outcome != OutcomeOK {
		return b.String()
	}
	switch e.Op {
	case OpCreate:
		fmt.Fprintf(&b, " id=%d", e.GotID)
	case OpGet:
		fmt.Fprintf(&b, " data=%q owner=%q", e.GotData, e.GotOwner)
	case OpCount:
		fmt.Fprintf(&b, " count=%d", e.GotCount)
	}
	return b.String()
}

// FeedEvent is the part of a feed event that is stable across runs.
// Hashes, event ids and timestamps are left out.
type FeedEvent struct {
	Seq      int64            `json:"seq"`
	Kind     record.EventKind `json:"kind"`
	RecordID int64            `json:"record_id"`
	Owner    string           `json:"owner,omitempty"`
	Data     string           `json:"data"`
}

func newFeedEvent(ev record.Event) FeedEvent {
	return FeedEvent{
		Seq:      ev.Seq,
		Kind:     ev.Kind,
		RecordID: ev.RecordID,
		Owner:    ev.Owner.String(),
		Data:     ev.Data,
	}
}

func (e FeedEvent) String() string {
	if e.Kind == record.KindCreated {
		return fmt.Sprintf("#%d %s record=%d owner=%q data=%q", e.Seq, e.Kind, e.RecordID, e.Owner, e.Data)
	}
	return fmt.Sprintf("#%d %s record=%d data=%q", e.Seq, e.Kind, e.RecordID, e.Data)
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one entry per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Events is the feed history after the last step.
	Events []FeedEvent `json:"events"`

	// Errors holds expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Events: []FeedEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Render formats a result as the stable text compared against golden files.
func Render(name string, r *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	b.WriteString("steps:\n")
	for _, e := range r.Trace {
		fmt.Fprintf(&b, "  %s\n", e)
	}
	b.WriteString("events:\n")
	for _, e := range r.Events {
		fmt.Fprintf(&b, "  %s\n", e)
	}
	return b.String()
}
