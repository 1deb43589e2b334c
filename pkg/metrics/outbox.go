package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outbox records publisher throughput.
type Outbox struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
	batch     prometheus.Histogram
}

// NewOutbox registers the outbox publisher metrics on the provided registerer.
func NewOutbox(reg prometheus.Registerer) *Outbox {
	if reg == nil {
		return &Outbox{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events delivered to Pub/Sub.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Outbox publish attempts that failed.",
	}, []string{"event_type"})
	batch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of one publish batch in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(published, failed, batch)
	return &Outbox{published: published, failed: failed, batch: batch}
}

func (o *Outbox) IncPublished(eventType string) {
	if o == nil || o.published == nil {
		return
	}
	o.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (o *Outbox) IncFailed(eventType string) {
	if o == nil || o.failed == nil {
		return
	}
	o.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (o *Outbox) ObserveBatch(d time.Duration) {
	if o == nil || o.batch == nil {
		return
	}
	o.batch.Observe(d.Seconds())
}
