// Package metrics holds the Prometheus instruments shared by the registry and
// its event feed. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rejection reasons used as the "reason" label on UpdatesRejected.
const (
	ReasonNotOwner       = "not_owner"
	ReasonRecordNotFound = "record_not_found"
)

type Metrics struct {
	RecordsCreated  prometheus.Counter
	UpdatesApplied  prometheus.Counter
	UpdatesRejected *prometheus.CounterVec
	EventsDelivered *prometheus.CounterVec
	Subscribers     prometheus.Gauge
}

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecordsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "recreg_records_created_total",
			Help: "Total number of records created",
		}),
		UpdatesApplied: f.NewCounter(prometheus.CounterOpts{
			Name: "recreg_updates_applied_total",
			Help: "Total number of record updates accepted",
		}),
		UpdatesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recreg_updates_rejected_total",
			Help: "Total number of record updates rejected, by reason",
		}, []string{"reason"}),
		EventsDelivered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recreg_feed_events_delivered_total",
			Help: "Total number of feed events queued for subscribers, by kind",
		}, []string{"kind"}),
		Subscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "recreg_feed_subscribers",
			Help: "Current number of live feed subscribers",
		}),
	}
}

func (m *Metrics) IncrementRecordsCreated() {
	if m == nil {
		return
	}
	m.RecordsCreated.Inc()
}

func (m *Metrics) IncrementUpdatesApplied() {
	if m == nil {
		return
	}
	m.UpdatesApplied.Inc()
}

func (m *Metrics) IncrementUpdatesRejected(reason string) {
	if m == nil {
		return
	}
	m.UpdatesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementEventsDelivered(kind string) {
	if m == nil {
		return
	}
	m.EventsDelivered.WithLabelValues(kind).Inc()
}

func (m *Metrics) SubscriberAdded() {
	if m == nil {
		return
	}
	m.Subscribers.Inc()
}

func (m *Metrics) SubscriberRemoved() {
	if m == nil {
		return
	}
	m.Subscribers.Dec()
}

// Handler exposes the gathered metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
