// Package metrics provides Prometheus metrics for monitoring.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tickermap/ticker"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	// Lookup metrics
	LookupAttempts  *prometheus.CounterVec
	ControllerState prometheus.Gauge

	// Mapping metrics
	MappingRecords *prometheus.GaugeVec
	SeededRecords  prometheus.Counter

	// Scrape metrics
	ScrapeResults *prometheus.CounterVec

	// Pipeline metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// New creates a Metrics instance registered on its own registry, together
// with the Go runtime and process collectors.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "tickermap"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		LookupAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "attempts_total",
			Help:      "Total number of symbol search calls by outcome",
		}, []string{"outcome"}),
		ControllerState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "exhausted",
			Help:      "1 when the provider quota is exhausted for the current run",
		}),

		MappingRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mapping",
			Name:      "records",
			Help:      "Number of mapping records by status after the last run",
		}, []string{"status"}),
		SeededRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mapping",
			Name:      "seeded_total",
			Help:      "Total number of reference tickers added from the universe",
		}),

		ScrapeResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scrape",
			Name:      "results_total",
			Help:      "Total number of scraped tickers by result",
		}, []string{"result"}),

		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of runs by command and status",
		}, []string{"command", "status"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Run duration in seconds",
			Buckets:   []float64{1, 10, 60, 300, 900, 1800, 3600, 7200},
		}, []string{"command"}),

		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last successful run",
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordAttempt counts one provider call.
func (m *Metrics) RecordAttempt(outcome string) {
	m.LookupAttempts.WithLabelValues(outcome).Inc()
}

// SetExhausted updates the controller state gauge.
func (m *Metrics) SetExhausted(exhausted bool) {
	if exhausted {
		m.ControllerState.Set(1)
		return
	}
	m.ControllerState.Set(0)
}

// SetMappingCounts publishes the per-status record counts. Statuses absent
// from counts are reported as zero.
func (m *Metrics) SetMappingCounts(counts map[ticker.Status]int) {
	for st := ticker.StatusUnresolved; st <= ticker.StatusTimedOut; st++ {
		m.MappingRecords.WithLabelValues(st.String()).Set(float64(counts[st]))
	}
}

// RecordScrape counts one scraped ticker.
func (m *Metrics) RecordScrape(result string) {
	m.ScrapeResults.WithLabelValues(result).Inc()
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(command, status string, durationSeconds float64, finishedUnix int64) {
	m.RunsTotal.WithLabelValues(command, status).Inc()
	m.RunDuration.WithLabelValues(command).Observe(durationSeconds)
	if status == "success" {
		m.LastSuccessfulRun.Set(float64(finishedUnix))
	}
}
