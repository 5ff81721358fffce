// Package metrics exposes prometheus metrics for answered questions and
// live sessions.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/papercomputeco/sqlchat/pkg/conversation"
)

// Metrics holds the sqlchat collectors and the registry serving them.
type Metrics struct {
	registry *prometheus.Registry

	questionsTotal  *prometheus.CounterVec
	questionSeconds *prometheus.HistogramVec
	resultRows      prometheus.Histogram
	liveSessions    prometheus.Gauge
}

// New creates the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		questionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqlchat_questions_total",
				Help: "Total number of questions answered, by outcome.",
			},
			[]string{"outcome"},
		),
		questionSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sqlchat_question_duration_seconds",
				Help:    "End to end pipeline latency per question.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"outcome"},
		),
		resultRows: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sqlchat_result_rows",
				Help:    "Rows returned by successful statements.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		liveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sqlchat_live_sessions",
				Help: "Current number of open sessions.",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.questionsTotal,
		m.questionSeconds,
		m.resultRows,
		m.liveSessions,
	)

	return m
}

// Observe records one answered question. It satisfies conversation.Observer.
func (m *Metrics) Observe(_ context.Context, ex conversation.Exchange) {
	outcome := string(ex.Outcome)
	m.questionsTotal.WithLabelValues(outcome).Inc()
	m.questionSeconds.WithLabelValues(outcome).Observe(ex.Duration.Seconds())
	if ex.Outcome == conversation.OutcomeRows {
		m.resultRows.Observe(float64(ex.RowCount))
	}
}

// SessionOpened increments the live session gauge.
func (m *Metrics) SessionOpened() { m.liveSessions.Inc() }

// SessionClosed decrements the live session gauge.
func (m *Metrics) SessionClosed() { m.liveSessions.Dec() }

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
