package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementRecordsCreated()
	m.IncrementRecordsCreated()
	m.IncrementUpdatesApplied()
	m.IncrementUpdatesRejected(ReasonNotOwner)
	m.IncrementEventsDelivered("created")
	m.SubscriberAdded()
	m.SubscriberAdded()
	m.SubscriberRemoved()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpdatesApplied))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpdatesRejected.WithLabelValues(ReasonNotOwner)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.UpdatesRejected.WithLabelValues(ReasonRecordNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDelivered.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Subscribers))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementRecordsCreated()
		m.IncrementUpdatesApplied()
		m.IncrementUpdatesRejected(ReasonNotOwner)
		m.IncrementEventsDelivered("updated")
		m.SubscriberAdded()
		m.SubscriberRemoved()
	})
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.IncrementRecordsCreated()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "recreg_records_created_total 1")
}
