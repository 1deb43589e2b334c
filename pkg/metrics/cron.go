package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cron records maintenance job outcomes.
type Cron struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	parked   prometheus.Gauge
}

// NewCron registers the maintenance worker metrics on the provided registerer.
func NewCron(reg prometheus.Registerer) *Cron {
	if reg == nil {
		return &Cron{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cron_job_runs_total",
		Help: "Maintenance job runs by outcome.",
	}, []string{"job", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_cron_job_duration_seconds",
		Help:    "Maintenance job duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	parked := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_outbox_parked_events",
		Help: "Outbox events that reached the attempt ceiling and are no longer published.",
	})
	reg.MustRegister(runs, duration, parked)
	return &Cron{runs: runs, duration: duration, parked: parked}
}

func (c *Cron) IncSuccess(job string) {
	if c == nil || c.runs == nil {
		return
	}
	c.runs.WithLabelValues(normalizeLabel(job), "success").Inc()
}

func (c *Cron) IncFailure(job string) {
	if c == nil || c.runs == nil {
		return
	}
	c.runs.WithLabelValues(normalizeLabel(job), "failure").Inc()
}

func (c *Cron) ObserveDuration(job string, d time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

func (c *Cron) SetParked(n int64) {
	if c == nil || c.parked == nil {
		return
	}
	c.parked.Set(float64(n))
}
