// Package metrics exposes Prometheus collectors for survey sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionMetrics counts and times question loads and answer submissions.
// It satisfies app.Recorder.
type SessionMetrics struct {
	loads             *prometheus.CounterVec
	submissions       *prometheus.CounterVec
	loadDuration      *prometheus.HistogramVec
	submitDuration    *prometheus.HistogramVec
	activeConnections prometheus.Gauge
}

// NewSessionMetrics creates the collectors and registers them with reg.
func NewSessionMetrics(reg prometheus.Registerer, namespace string) *SessionMetrics {
	m := &SessionMetrics{
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "question_loads_total",
				Help:      "Total number of question list loads by outcome",
			},
			[]string{"outcome"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answer_submissions_total",
				Help:      "Total number of answer submissions by outcome",
			},
			[]string{"outcome"},
		),
		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "question_load_duration_seconds",
				Help:      "Latency of question list loads",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		submitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "answer_submission_duration_seconds",
				Help:      "Latency of answer submissions",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_sessions_active",
			Help:      "Number of survey sessions attached to a websocket",
		}),
	}
	reg.MustRegister(m.loads, m.submissions, m.loadDuration, m.submitDuration, m.activeConnections)
	return m
}

func (m *SessionMetrics) ObserveLoad(outcome string, elapsed time.Duration) {
	m.loads.WithLabelValues(outcome).Inc()
	m.loadDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveSubmission records a submission. Blank drafts never reach the
// service, so they are counted without a latency sample.
func (m *SessionMetrics) ObserveSubmission(outcome string, elapsed time.Duration) {
	m.submissions.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		m.submitDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	}
}

func (m *SessionMetrics) SessionOpened() {
	m.activeConnections.Inc()
}

func (m *SessionMetrics) SessionClosed() {
	m.activeConnections.Dec()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
