package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service.
//
// All metrics are prefixed with "talentflow_":
//   - talentflow_stage_transitions_total{outcome}
//   - talentflow_stage_commit_duration_seconds{outcome}
//   - talentflow_notifications_dropped_total
//   - talentflow_resumes_processed_total{status}
//   - talentflow_resume_queue_depth
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	TransitionsTotal     *prometheus.CounterVec
	CommitDuration       *prometheus.HistogramVec
	NotificationsDropped prometheus.Counter
	ResumesProcessed     *prometheus.CounterVec
	ResumeQueueDepth     prometheus.Gauge
}

// New creates the collectors and registers them with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "talentflow_stage_transitions_total",
				Help: "Stage transitions by outcome",
			},
			[]string{"outcome"}, // committed, noop, rolled_back, rejected
		),
		CommitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "talentflow_stage_commit_duration_seconds",
				Help:    "Duration of stage change store writes",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 13), // 1ms to ~4s
			},
			[]string{"outcome"},
		),
		NotificationsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "talentflow_notifications_dropped_total",
				Help: "Notifications dropped because the sink was not keeping up",
			},
		),
		ResumesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "talentflow_resumes_processed_total",
				Help: "Resume documents processed by final status",
			},
			[]string{"status"},
		),
		ResumeQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "talentflow_resume_queue_depth",
				Help: "Resume documents waiting in the worker queue",
			},
		),
	}
}

func (m *Metrics) ObserveTransition(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.CommitDuration.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) NotificationDropped() {
	if m == nil {
		return
	}
	m.NotificationsDropped.Inc()
}

func (m *Metrics) ResumeProcessed(status string) {
	if m == nil {
		return
	}
	m.ResumesProcessed.WithLabelValues(status).Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.ResumeQueueDepth.Set(float64(n))
}
