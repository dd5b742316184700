package feed

import (
	"context"
	"testing"
	"time"

	"github.com/roach88/recordregistry/internal/record"
)

var testAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func created(id int64, owner record.Principal, data string) record.Event {
	return record.NewCreated("evt-c", id, owner, data, testAt)
}

func updated(id int64, data string) record.Event {
	return record.NewUpdated("evt-u", id, data, testAt)
}

// receive reads n events from sub or fails the test after a timeout.
func receive(t *testing.T, sub *Subscription, n int) []record.Event {
	t.Helper()
	got := make([]record.Event, 0, n)
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				t.Fatalf("subscription closed after %d of %d events", len(got), n)
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("timed out after %d of %d events", len(got), n)
		}
	}
	return got
}

// assertClosed waits for sub's channel to close.
func assertClosed(t *testing.T, sub *Subscription) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("subscription channel was not closed")
		}
	}
}

func mustAppend(t *testing.T, f *Feed, ev record.Event) record.Event {
	t.Helper()
	sealed, err := f.Append(context.Background(), ev)
	if err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	return sealed
}
