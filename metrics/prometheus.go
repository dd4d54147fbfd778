// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = &PrometheusMetrics{}

// PrometheusMetrics implements Metrics with a private Prometheus registry.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	calls        *prometheus.CounterVec
	callErrors   *prometheus.CounterVec
	callLatency  *prometheus.HistogramVec
	unsupported  *prometheus.CounterVec
	transactions *prometheus.CounterVec
	gasUsed      prometheus.Histogram
}

// NewPrometheusMetrics creates the adapter metrics under [namespace].
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),

		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total number of adapter method calls",
			},
			[]string{"method"},
		),
		callErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "call_errors_total",
				Help:      "Total number of adapter method calls that returned an error",
			},
			[]string{"method"},
		),
		callLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_latency_seconds",
				Help:      "Latency of adapter method calls",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method"},
		),
		unsupported: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unsupported_calls_total",
				Help:      "Total number of calls to methods without a local implementation",
			},
			[]string{"method"},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Total number of submitted transactions by outcome",
			},
			[]string{"outcome"},
		),
		gasUsed: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transaction_gas_used",
				Help:      "Gas charged to executed transactions",
				Buckets:   prometheus.ExponentialBuckets(1000, 4, 10),
			},
		),
	}
	m.registry.MustRegister(
		m.calls,
		m.callErrors,
		m.callLatency,
		m.unsupported,
		m.transactions,
		m.gasUsed,
	)
	return m
}

func (m *PrometheusMetrics) ObserveCall(method string, duration time.Duration, err error) {
	m.calls.WithLabelValues(method).Inc()
	m.callLatency.WithLabelValues(method).Observe(duration.Seconds())
	if err != nil {
		m.callErrors.WithLabelValues(method).Inc()
	}
}

func (m *PrometheusMetrics) IncUnsupported(method string) {
	m.unsupported.WithLabelValues(method).Inc()
}

func (m *PrometheusMetrics) ObserveTransaction(outcome string, gasUsed uint64) {
	m.transactions.WithLabelValues(outcome).Inc()
	if outcome != OutcomeRejected {
		m.gasUsed.Observe(float64(gasUsed))
	}
}

// Registry returns the registry holding the adapter metrics.
func (m *PrometheusMetrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}
