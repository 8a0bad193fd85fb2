// Package metrics provides Prometheus metrics for alttag pipeline runs.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/alttag/pkg/core"
	"github.com/aretw0/alttag/pkg/pipeline"
)

// Metrics holds all Prometheus metrics for alttag.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	ImagesRewritten prometheus.Counter
	PersistFailures prometheus.Counter
	LedgerRecords   prometheus.Gauge
	LedgerTotal     prometheus.Gauge
	StartTime       time.Time
}

// New creates the metrics on a fresh registry, so several instances can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	m := &Metrics{registry: reg, StartTime: time.Now()}

	m.RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alttag_pipeline_runs_total",
			Help: "Total number of pipeline runs by verdict and outcome",
		},
		[]string{"verdict", "outcome"},
	)

	m.RunDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alttag_pipeline_run_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	m.ImagesRewritten = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "alttag_images_rewritten_total",
			Help: "Total number of image elements whose alt text was changed",
		},
	)

	m.PersistFailures = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "alttag_persist_failures_total",
			Help: "Total number of failed document writes",
		},
	)

	m.LedgerRecords = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "alttag_ledger_records",
			Help: "Number of documents in the change ledger",
		},
	)

	m.LedgerTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "alttag_ledger_images_total",
			Help: "Sum of image counts across the change ledger",
		},
	)

	return m
}

// Observe implements pipeline.Observer.
func (m *Metrics) Observe(res pipeline.Result, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case res.Verdict.Skipped():
		outcome = "skipped"
	case res.Count == 0:
		outcome = "unchanged"
	}
	m.RunsTotal.WithLabelValues(res.Verdict.String(), outcome).Inc()
	m.RunDuration.WithLabelValues(res.Stage.String()).Observe(res.Duration.Seconds())

	if err == nil && res.Count > 0 {
		m.ImagesRewritten.Add(float64(res.Count))
	}
	if errors.Is(err, core.ErrPersist) {
		m.PersistFailures.Inc()
	}
}

// SetLedger records the current ledger size.
func (m *Metrics) SetLedger(records, total int) {
	m.LedgerRecords.Set(float64(records))
	m.LedgerTotal.Set(float64(total))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ pipeline.Observer = (*Metrics)(nil)
