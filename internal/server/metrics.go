package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prediction outcomes recorded by the predictions counter.
const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid_input"
	outcomeFailed  = "failed"
)

type metrics struct {
	predictions *prometheus.CounterVec
	latency     prometheus.Histogram
	handler     http.Handler
}

// newMetrics registers the prediction collectors on reg. A nil registry gets
// a private one so that several handlers can coexist in one process.
func newMetrics(reg *prometheus.Registry) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &metrics{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "instax",
			Name:      "predictions_total",
			Help:      "Predictions served, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "instax",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent scaling and predicting one request.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
	}
	reg.MustRegister(m.predictions, m.latency)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m
}

func (m *metrics) observe(endpoint, outcome string, elapsed time.Duration) {
	m.predictions.WithLabelValues(endpoint, outcome).Inc()
	if outcome != outcomeInvalid {
		m.latency.Observe(elapsed.Seconds())
	}
}
