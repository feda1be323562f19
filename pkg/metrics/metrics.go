// Package metrics defines the Prometheus collectors recorded while counting
// words and exposes them for scraping or as a node-exporter textfile.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for a wordfreq process.
type Metrics struct {
	ChunksReadTotal    prometheus.Counter
	BytesReadTotal     prometheus.Counter
	TokensCountedTotal prometheus.Counter
	DistinctWords      prometheus.Gauge
	PhaseDuration      *prometheus.HistogramVec
	RunsTotal          *prometheus.CounterVec
	SinkPublishTotal   *prometheus.CounterVec
}

// New creates all collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChunksReadTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordfreq_chunks_read_total",
				Help: "Total number of input chunks (or lines in line mode) read.",
			},
		),
		BytesReadTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordfreq_bytes_read_total",
				Help: "Total number of input bytes read.",
			},
		),
		TokensCountedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordfreq_tokens_counted_total",
				Help: "Total number of word tokens dispatched to the frequency table.",
			},
		),
		DistinctWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordfreq_distinct_words",
				Help: "Number of distinct words in the most recent frequency table.",
			},
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wordfreq_phase_duration_seconds",
				Help:    "Duration of each run phase (count, sort, write, publish, total).",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"phase"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordfreq_runs_total",
				Help: "Total file-processing runs by status.",
			},
			[]string{"status"},
		),
		SinkPublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordfreq_sink_publish_total",
				Help: "Report publish attempts by sink and status.",
			},
			[]string{"sink", "status"},
		),
	}

	reg.MustRegister(
		m.ChunksReadTotal,
		m.BytesReadTotal,
		m.TokensCountedTotal,
		m.DistinctWords,
		m.PhaseDuration,
		m.RunsTotal,
		m.SinkPublishTotal,
	)

	return m
}

// NewUnregistered returns collectors backed by a private registry, for
// callers that never expose them.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler returns the Prometheus scrape HTTP handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// WriteTextfile dumps every metric in g to path in the text exposition
// format, for pickup by the node-exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
