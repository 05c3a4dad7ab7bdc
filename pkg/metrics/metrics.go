// Package metrics provides Prometheus metrics for the boardroom
// pipeline. A run increments counters as rows move through the stages;
// the manager can optionally serve a /metrics endpoint for CI scrapes.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus metrics for one pipeline run.
type Manager struct {
	namespace string
	subsystem string
	enabled   bool
	registry  *prometheus.Registry

	// Ingestion metrics.
	rowsIngested *prometheus.CounterVec // by source
	rowsRejected *prometheus.CounterVec // by reason
	rowsDeduped  prometheus.Counter

	// Promotion metrics.
	cleanRows   prometheus.Gauge
	logPromoted prometheus.Gauge // 1 when the run replaced the log

	// Scoring metrics.
	entitiesScored   prometheus.Gauge
	entitiesPromoted *prometheus.GaugeVec // by stars

	// Stage timing.
	stageDuration *prometheus.HistogramVec
}

// NewManager creates a metrics manager with configuration options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "boardroom",
		subsystem: "pipeline",
		enabled:   true,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.register()
	return m
}

func (m *Manager) register() {
	factory := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}

	m.rowsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("rows_ingested_total", "Raw rows read, by source kind.")),
		[]string{"source"})
	m.rowsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts(factory("rows_rejected_total", "Rows dropped during normalization, by reason.")),
		[]string{"reason"})
	m.rowsDeduped = prometheus.NewCounter(
		prometheus.CounterOpts(factory("rows_deduped_total", "Duplicate rows collapsed by identity merge.")))
	m.cleanRows = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("clean_rows", "Rows surviving validation in the last run.")))
	m.logPromoted = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("log_promoted", "Whether the last run replaced the observation log.")))
	m.entitiesScored = prometheus.NewGauge(
		prometheus.GaugeOpts(factory("entities_scored", "Entities holding any aggregated score.")))
	m.entitiesPromoted = prometheus.NewGaugeVec(
		prometheus.GaugeOpts(factory("entities_promoted", "Entities surviving gates, by star tier.")),
		[]string{"stars"})
	m.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_duration_seconds",
		Help:      "Wall time per pipeline stage.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	m.registry.MustRegister(
		m.rowsIngested, m.rowsRejected, m.rowsDeduped,
		m.cleanRows, m.logPromoted,
		m.entitiesScored, m.entitiesPromoted,
		m.stageDuration,
	)
}

// RowsIngested counts raw rows read from a source.
func (m *Manager) RowsIngested(source string, n int) {
	if m.enabled {
		m.rowsIngested.WithLabelValues(source).Add(float64(n))
	}
}

// RowRejected counts one dropped row by reason.
func (m *Manager) RowRejected(reason string) {
	if m.enabled {
		m.rowsRejected.WithLabelValues(reason).Inc()
	}
}

// RowsDeduped counts duplicates collapsed by the merge stage.
func (m *Manager) RowsDeduped(n int) {
	if m.enabled {
		m.rowsDeduped.Add(float64(n))
	}
}

// CleanRows records the validated row count of the run.
func (m *Manager) CleanRows(n int) {
	if m.enabled {
		m.cleanRows.Set(float64(n))
	}
}

// LogPromoted records whether the run replaced the observation log.
func (m *Manager) LogPromoted(promoted bool) {
	if !m.enabled {
		return
	}
	v := 0.0
	if promoted {
		v = 1.0
	}
	m.logPromoted.Set(v)
}

// EntitiesScored records how many entities held any score.
func (m *Manager) EntitiesScored(n int) {
	if m.enabled {
		m.entitiesScored.Set(float64(n))
	}
}

// EntitiesPromoted records gate survivors for one star tier.
func (m *Manager) EntitiesPromoted(stars string, n int) {
	if m.enabled {
		m.entitiesPromoted.WithLabelValues(stars).Set(float64(n))
	}
}

// ObserveStage records one stage's wall time.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// Serve exposes /metrics on addr until ctx is done. Used by CI runs
// that scrape the batch process; off unless an address is configured.
func (m *Manager) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Registry exposes the underlying registry for tests.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }
