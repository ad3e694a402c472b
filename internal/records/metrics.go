package records

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the record pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	uploads      *prometheus.CounterVec
	mutations    *prometheus.CounterVec
	displayRows  prometheus.Gauge
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "seqtrack_uploads_total",
			Help: "Spreadsheet uploads by outcome.",
		}, []string{"outcome"}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "seqtrack_record_mutations_total",
			Help: "Record toggles, edits and deletes by operation and outcome.",
		}, []string{"op", "outcome"}),
		displayRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "seqtrack_display_rows",
			Help: "Display rows produced by the most recent listing.",
		}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seqtrack_http_request_duration_seconds",
			Help:    "A histogram of request timing, by route, method and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) upload(err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) mutation(op string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) rows(n int) {
	if m == nil {
		return
	}
	m.displayRows.Set(float64(n))
}
