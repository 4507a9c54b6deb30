package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for one ETL run.
// Each Metrics owns its registry, so constructing several (as tests do) never
// collides on registration.
type Metrics struct {
	registry *prometheus.Registry

	RecordsLoaded   *prometheus.CounterVec // labels: entity={neo,approach}
	RecordsRejected *prometheus.CounterVec // labels: entity={neo,approach}

	ApproachesLinked   prometheus.Counter
	ApproachesOrphaned prometheus.Counter

	RowsWritten *prometheus.CounterVec // labels: sink={csv,json,kafka,stdout}

	LoadDuration prometheus.Gauge
	RunDuration  prometheus.Gauge
}

// NewMetrics creates and registers all run metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RecordsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neo_etl",
			Name:      "records_loaded_total",
			Help:      "Source records turned into entities.",
		}, []string{"entity"}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neo_etl",
			Name:      "records_rejected_total",
			Help:      "Source records that failed validation.",
		}, []string{"entity"}),
		ApproachesLinked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "neo_etl",
			Name:      "approaches_linked_total",
			Help:      "Close approaches resolved to an NEO.",
		}),
		ApproachesOrphaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "neo_etl",
			Name:      "approaches_orphaned_total",
			Help:      "Close approaches whose designation matched no NEO.",
		}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neo_etl",
			Name:      "rows_written_total",
			Help:      "Approaches emitted, by sink.",
		}, []string{"sink"}),
		LoadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "neo_etl",
			Name:      "load_duration_seconds",
			Help:      "Duration of the last load and link phase.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "neo_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of the last query and write phase.",
		}),
	}

	m.registry.MustRegister(
		m.RecordsLoaded,
		m.RecordsRejected,
		m.ApproachesLinked,
		m.ApproachesOrphaned,
		m.RowsWritten,
		m.LoadDuration,
		m.RunDuration,
	)

	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile atomically writes the current metric values in the Prometheus
// text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
