package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	cycles      *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	rowsWritten *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

var (
	defaultOnce sync.Once
	defaultRec  *Recorder
)

// New returns the process-wide recorder. Collectors register with the default
// Prometheus registry exactly once.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRec = NewWithRegistry(prometheus.DefaultRegisterer)
	})
	return defaultRec
}

// NewWithRegistry builds a recorder on its own registry, for tests.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpulse_cycles_total",
				Help: "Completed loop cycles by loop and outcome",
			},
			[]string{"loop", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		rowsWritten: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpulse_rows_written_total",
				Help: "Rows written to the store by table and source",
			},
			[]string{"table", "source"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finpulse_last_price",
				Help: "Last recorded price for an instrument on a source",
			},
			[]string{"source", "ticker"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle records the outcome ("ok", "failed", "panic") of one loop cycle.
func (r *Recorder) RecordCycle(loop, outcome string) {
	r.cycles.WithLabelValues(loop, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRows records rows committed to a table.
func (r *Recorder) RecordRows(table, source string, n int) {
	if n <= 0 {
		return
	}
	r.rowsWritten.WithLabelValues(table, source).Add(float64(n))
}

// RecordLastPrice records the last price for an instrument.
func (r *Recorder) RecordLastPrice(source, ticker string, price float64) {
	r.lastPrice.WithLabelValues(source, ticker).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
