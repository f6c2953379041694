package compiler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/hql/internal/dialect"
)

// Metrics holds the Prometheus collectors for compiles. A nil *Metrics
// records nothing.
type Metrics struct {
	CompilesTotal    *prometheus.CounterVec
	CompileDuration  *prometheus.HistogramVec
	DiagnosticsTotal *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CompilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hql_compiles_total",
				Help: "Total HQL compiles by dialect and outcome (ok, error).",
			},
			[]string{"dialect", "outcome"},
		),
		CompileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hql_compile_duration_seconds",
				Help:    "HQL compile latency in seconds.",
				Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
			},
			[]string{"dialect"},
		),
		DiagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hql_diagnostics_total",
				Help: "Diagnostics emitted by kind and level.",
			},
			[]string{"kind", "level"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hql_cache_lookups_total",
				Help: "Compile cache lookups by result (hit, miss).",
			},
			[]string{"result"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.CompilesTotal,
			m.CompileDuration,
			m.DiagnosticsTotal,
			m.CacheLookups,
		)
	}
	return m
}

func (m *Metrics) observe(name dialect.Name, res Result, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if len(res.Errors) > 0 {
		outcome = "error"
	}
	m.CompilesTotal.WithLabelValues(string(name), outcome).Inc()
	m.CompileDuration.WithLabelValues(string(name)).Observe(elapsed.Seconds())
	for _, d := range res.Warnings {
		m.DiagnosticsTotal.WithLabelValues(string(d.Kind), string(d.Level)).Inc()
	}
	for _, d := range res.Errors {
		m.DiagnosticsTotal.WithLabelValues(string(d.Kind), string(d.Level)).Inc()
	}
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}
