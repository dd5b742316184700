package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/recordregistry/internal/record"
	"github.com/roach88/recordregistry/internal/registry"
)

// AssertionError is returned when an assertion fails.
// It includes the event history to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Events   []FeedEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nEvents:\n")
	for _, ev := range e.Events {
		fmt.Fprintf(&buf, "  %s\n", ev)
	}
	return buf.String()
}

// assertEventCount checks how many events (optionally of one kind) the
// feed holds.
func assertEventCount(events []FeedEvent, a Assertion) error {
	var n int64
	for _, ev := range events {
		if a.Kind == "" || string(ev.Kind) == a.Kind {
			n++
		}
	}
	if n == *a.Count {
		return nil
	}

	what := "events"
	if a.Kind != "" {
		what = a.Kind + " events"
	}
	return &AssertionError{
		Type:     AssertEventCount,
		Expected: fmt.Sprintf("%d %s", *a.Count, what),
		Actual:   fmt.Sprintf("%d %s", n, what),
		Events:   events,
	}
}

// assertEventOrder checks the exact sequence of event kinds.
func assertEventOrder(events []FeedEvent, a Assertion) error {
	got := make([]string, len(events))
	for i, ev := range events {
		got[i] = string(ev.Kind)
	}
	if strings.Join(got, ",") == strings.Join(a.Kinds, ",") {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventOrder,
		Expected: "[" + strings.Join(a.Kinds, ", ") + "]",
		Actual:   "[" + strings.Join(got, ", ") + "]",
		Events:   events,
	}
}

// assertFinalRecord reads a record from the registry and compares the
// fields the assertion sets.
func assertFinalRecord(events []FeedEvent, reg *registry.Registry, a Assertion) error {
	rec, err := reg.Get(a.ID)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalRecord,
			Expected: fmt.Sprintf("record %d", a.ID),
			Actual:   err.Error(),
			Events:   events,
		}
	}

	var diffs []string
	if a.Data != nil && rec.Data != *a.Data {
		diffs = append(diffs, fmt.Sprintf("data %q, want %q", rec.Data, *a.Data))
	}
	if a.Owner != "" && rec.Owner != record.Principal(a.Owner) {
		diffs = append(diffs, fmt.Sprintf("owner %q, want %q", rec.Owner, a.Owner))
	}
	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalRecord,
		Expected: formatRecordAssertion(a),
		Actual:   strings.Join(diffs, "; "),
		Events:   events,
	}
}

func formatRecordAssertion(a Assertion) string {
	parts := []string{fmt.Sprintf("id=%d", a.ID)}
	if a.Data != nil {
		parts = append(parts, fmt.Sprintf("data=%q", *a.Data))
	}
	if a.Owner != "" {
		parts = append(parts, fmt.Sprintf("owner=%q", a.Owner))
	}
	return strings.Join(parts, " ")
}

func assertFinalCount(events []FeedEvent, reg *registry.Registry, a Assertion) error {
	if n := reg.Count(); n != *a.Count {
		return &AssertionError{
			Type:     AssertFinalCount,
			Expected: fmt.Sprintf("count %d", *a.Count),
			Actual:   fmt.Sprintf("count %d", n),
			Events:   events,
		}
	}
	return nil
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, reg *registry.Registry) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertEventCount:
			err = assertEventCount(result.Events, a)
		case AssertEventOrder:
			err = assertEventOrder(result.Events, a)
		case AssertFinalRecord:
			err = assertFinalRecord(result.Events, reg, a)
		case AssertFinalCount:
			err = assertFinalCount(result.Events, reg, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %s", i, err.Error()))
		}
	}
	return errs
}
