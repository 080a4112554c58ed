package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a fetch
// run and for the preview server. Each Metrics owns its registry, so it is
// safe to construct more than once (e.g. per test).
type Metrics struct {
	registry *prometheus.Registry

	RecordsFetched *prometheus.CounterVec   // labels: source
	RecordsSkipped *prometheus.CounterVec   // labels: source, reason={missing_id,inactive,invalid}
	Duplicates     *prometheus.CounterVec   // labels: source
	FetchErrors    *prometheus.CounterVec   // labels: source
	FetchDuration  *prometheus.HistogramVec // labels: source

	StationsWritten prometheus.Gauge
	LastSuccess     prometheus.Gauge
	LoadErrors      *prometheus.CounterVec // labels: loader

	HTTPRequests *prometheus.CounterVec // labels: method, code
}

// NewMetrics creates all metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RecordsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ubike",
			Name:      "records_fetched_total",
			Help:      "Raw station records returned by each source.",
		}, []string{"source"}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ubike",
			Name:      "records_skipped_total",
			Help:      "Records dropped during normalization by source and reason.",
		}, []string{"source", "reason"}),
		Duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ubike",
			Name:      "duplicate_stations_total",
			Help:      "Stations discarded because an earlier source already supplied the same sno.",
		}, []string{"source"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ubike",
			Name:      "fetch_errors_total",
			Help:      "Source fetches that failed and contributed no records.",
		}, []string{"source"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ubike",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one source fetch including authentication.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		StationsWritten: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ubike",
			Name:      "stations_written",
			Help:      "Stations in the most recently persisted snapshot.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ubike",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that persisted a snapshot.",
		}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ubike",
			Name:      "load_errors_total",
			Help:      "Snapshot sinks that failed to accept a run's stations.",
		}, []string{"loader"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ubike",
			Name:      "preview_requests_total",
			Help:      "Static file requests served by the preview server.",
		}, []string{"method", "code"}),
	}

	m.registry.MustRegister(
		m.RecordsFetched,
		m.RecordsSkipped,
		m.Duplicates,
		m.FetchErrors,
		m.FetchDuration,
		m.StationsWritten,
		m.LastSuccess,
		m.LoadErrors,
		m.HTTPRequests,
	)

	return m
}

// Gatherer returns the run metrics together with the default Go runtime and
// process collectors.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return prometheus.Gatherers{prometheus.DefaultGatherer, m.registry}
}

// WriteTextfile writes the run metrics in Prometheus text format, for
// node_exporter's textfile collector. Runtime collectors are left out.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
