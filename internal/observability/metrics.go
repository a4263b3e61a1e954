package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "climate_percentiles"

// Outcome labels for LocalitiesProcessed, ReportWrites, ReportPublishes and ArtifactLoads.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeMissing = "missing"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a percentile run.
type Metrics struct {
	LocalitiesProcessed *prometheus.CounterVec   // labels: category, outcome={ok,error,missing}
	FilesLocated        *prometheus.CounterVec   // labels: category
	LossyDecodes        prometheus.Counter
	SampleSize          *prometheus.HistogramVec // labels: category
	ReportWrites        *prometheus.CounterVec   // labels: outcome={ok,error}
	ReportPublishes     *prometheus.CounterVec   // labels: outcome={ok,error}

	RunDuration      prometheus.Gauge
	LastRunTimestamp prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates all run metrics and registers them with a dedicated
// registry, so tests can build as many as they need.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(m.collectors()...)
	return m
}

// WriteTextfile writes the run metrics in the node_exporter textfile format.
// The write goes through a temporary file, so scrapers never see a partial file.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func newMetrics() *Metrics {
	return &Metrics{
		LocalitiesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "localities_processed_total",
			Help:      "Localities handled per category by outcome.",
		}, []string{"category", "outcome"}),
		FilesLocated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_files_located_total",
			Help:      "Station files matched by code prefix, before first-file selection.",
		}, []string{"category"}),
		LossyDecodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lossy_decodes_total",
			Help:      "Station files containing C1 control bytes after Latin-1 decoding.",
		}),
		SampleSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "historical_sample_size",
			Help:      "Observations in the same calendar month as the latest reading.",
			Buckets:   []float64{1, 5, 10, 20, 30, 50, 75, 100, 150},
		}, []string{"category"}),
		ReportWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_writes_total",
			Help:      "Artifact writes by outcome.",
		}, []string{"outcome"}),
		ReportPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_publishes_total",
			Help:      "Artifact publications to Kafka by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.LocalitiesProcessed,
		m.FilesLocated,
		m.LossyDecodes,
		m.SampleSize,
		m.ReportWrites,
		m.ReportPublishes,
		m.RunDuration,
		m.LastRunTimestamp,
	}
}

// ServerMetrics holds the report server's metrics. Its registry also carries
// the Go runtime and process collectors, and backs GET /metrics.
type ServerMetrics struct {
	ArtifactLoads *prometheus.CounterVec // labels: outcome={ok,error,missing}
	CacheHits     prometheus.Counter

	registry *prometheus.Registry
}

// NewServerMetrics creates the server metrics on a dedicated registry.
func NewServerMetrics() *ServerMetrics {
	m := &ServerMetrics{
		ArtifactLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "artifact_loads_total",
			Help:      "Artifact reads for GET /api/percentiles by outcome.",
		}, []string{"outcome"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "artifact_cache_hits_total",
			Help:      "Artifact loads served from memory because the file was unchanged.",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ArtifactLoads,
		m.CacheHits,
	)
	return m
}

// Handler serves the server registry in the Prometheus exposition format.
func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
