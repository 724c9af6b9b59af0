package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Loader holds the Prometheus metrics of one loader run.
// A nil *Loader is valid and records nothing.
type Loader struct {
	rowsRead         *prometheus.CounterVec
	rowsDropped      *prometheus.CounterVec
	documentsWritten *prometheus.CounterVec
	batchDuration    *prometheus.HistogramVec
	stageDuration    *prometheus.GaugeVec
}

// NewLoader creates loader metrics and registers them with reg.
func NewLoader(reg prometheus.Registerer) *Loader {
	m := &Loader{
		rowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "umlsdex_loader",
			Name:      "rows_read_total",
			Help:      "Source rows read per table",
		}, []string{"table"}),

		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "umlsdex_loader",
			Name:      "rows_dropped_total",
			Help:      "Source rows skipped per table and reason",
		}, []string{"table", "reason"}),

		documentsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "umlsdex_loader",
			Name:      "documents_written_total",
			Help:      "Documents written to the store",
		}, []string{"collection"}),

		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "umlsdex_loader",
			Name:      "batch_duration_seconds",
			Help:      "Pipelined write batch duration",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"collection"}),

		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "umlsdex_loader",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage",
		}, []string{"stage"}),
	}

	reg.MustRegister(
		m.rowsRead, m.rowsDropped,
		m.documentsWritten, m.batchDuration,
		m.stageDuration,
	)

	return m
}

// RowRead counts one source row.
func (m *Loader) RowRead(table string) {
	if m == nil {
		return
	}
	m.rowsRead.WithLabelValues(table).Inc()
}

// RowDropped counts one skipped source row.
func (m *Loader) RowDropped(table, reason string) {
	if m == nil {
		return
	}
	m.rowsDropped.WithLabelValues(table, reason).Inc()
}

// BatchWritten records a successful write batch.
func (m *Loader) BatchWritten(collection string, size int, took time.Duration) {
	if m == nil {
		return
	}
	m.documentsWritten.WithLabelValues(collection).Add(float64(size))
	m.batchDuration.WithLabelValues(collection).Observe(took.Seconds())
}

// StageDone records how long a pipeline stage took.
func (m *Loader) StageDone(stage string, took time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Set(took.Seconds())
}
