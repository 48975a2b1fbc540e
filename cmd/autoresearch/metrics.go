package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	runsTotal     *prometheus.CounterVec
	eventsTotal   *prometheus.CounterVec
	runDuration   prometheus.Histogram
	activeStreams prometheus.Gauge
}

// newMetrics registers the server metrics on reg. Tests pass their own
// registry so that servers can be created more than once.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoresearch_runs_total",
				Help: "Total number of research runs",
			},
			[]string{"status"}, // status: completed, no_report, disconnected, failed
		),
		eventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoresearch_events_total",
				Help: "Total number of progress events streamed to clients",
			},
			[]string{"type"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "autoresearch_run_duration_seconds",
				Help:    "Wall time of research runs in seconds",
				Buckets: []float64{1, 5, 10, 20, 30, 60, 120, 300},
			},
		),
		activeStreams: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "autoresearch_active_streams",
				Help: "Number of research streams currently open",
			},
		),
	}
}
