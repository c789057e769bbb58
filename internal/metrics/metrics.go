// Package metrics holds the prometheus instruments of a Finder.
package metrics

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Stage labels.
const (
	StageParse   = "parse"
	StageResolve = "resolve"
	StageCompile = "compile"
	StageExecute = "execute"
	StageFilter  = "filter"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics groups the instruments registered on one registerer.
type Metrics struct {
	// Queries counts Find calls by engine and outcome.
	Queries *prometheus.CounterVec

	// StageDuration measures each pipeline stage.
	StageDuration *prometheus.HistogramVec

	// Errors counts failures by error kind (parse, binding, compile,
	// predicate, execution).
	Errors *prometheus.CounterVec

	// ResultRows measures result sizes by engine.
	ResultRows *prometheus.HistogramVec
}

// New registers a fresh set of instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Queries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motif_queries_total",
				Help: "Total number of motif queries",
			},
			[]string{"engine", "outcome"},
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "motif_stage_duration_seconds",
				Help: "Duration of query pipeline stages in seconds",
				// Parsing takes microseconds, large joins take seconds.
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"stage"},
		),
		Errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motif_errors_total",
				Help: "Total number of failed operations by error kind",
			},
			[]string{"kind"},
		),
		ResultRows: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "motif_result_rows",
				Help:    "Number of rows returned by motif queries",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"engine"},
		),
	}
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the instruments registered on the global registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// ObserveStage records the duration of one stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ObserveQuery records a finished query. rows is ignored on error.
func (m *Metrics) ObserveQuery(engine string, rows int, err error) {
	if err != nil {
		m.Queries.WithLabelValues(engine, OutcomeError).Inc()
		return
	}
	m.Queries.WithLabelValues(engine, OutcomeOK).Inc()
	m.ResultRows.WithLabelValues(engine).Observe(float64(rows))
}

// ObserveError counts one failure of the given kind.
func (m *Metrics) ObserveError(kind string) {
	m.Errors.WithLabelValues(kind).Inc()
}

// WriteText writes every metric family of g in the prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
