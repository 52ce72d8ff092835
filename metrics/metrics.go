// Package metrics exposes the Prometheus counters and histograms the
// engine reports through after every submission, grounded on
// DimaJoyti-ai-agentic-crypto-browser's use of
// github.com/prometheus/client_golang.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nexusbook/matching"
)

// Metrics holds the counters/histogram incremented by engine.Engine.
// It registers itself against the supplied registerer so a caller can
// share one registry across the whole process (or pass
// prometheus.NewRegistry() for an isolated one in tests).
type Metrics struct {
	ordersTotal  *prometheus.CounterVec
	tradesTotal  *prometheus.CounterVec
	matchLatency *prometheus.HistogramVec
}

// New creates and registers the matching-engine metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ordersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nexusbook",
			Name:      "orders_total",
			Help:      "Orders submitted, by symbol and resulting status.",
		}, []string{"symbol", "status"}),
		tradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nexusbook",
			Name:      "trades_total",
			Help:      "Trades executed, by symbol.",
		}, []string{"symbol"}),
		matchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nexusbook",
			Name:      "match_latency_seconds",
			Help:      "Time spent inside the matcher for a single submission, by symbol.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"symbol"})}

	reg.MustRegister(m.ordersTotal, m.tradesTotal, m.matchLatency)
	return m
}

// ObserveSubmission records one completed submission's outcome.
func (m *Metrics) ObserveSubmission(symbol string, result matching.Result) {
	m.ordersTotal.WithLabelValues(symbol, result.Status.String()).Inc()
	if len(result.Trades) > 0 {
		m.tradesTotal.WithLabelValues(symbol).Add(float64(len(result.Trades)))
	}
}

// Timer starts a latency observation; call the returned func when the
// matching step for symbol has completed.
func (m *Metrics) Timer(symbol string) func() {
	start := time.Now()
	return func() {
		m.matchLatency.WithLabelValues(symbol).Observe(time.Since(start).Seconds())
	}
}
