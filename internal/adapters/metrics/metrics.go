// Package metrics records polish counters with Prometheus.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/zerr"
)

const namespace = "polish"

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus implements ports.Metrics on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	cacheLookups *prometheus.CounterVec
	sweeps       *prometheus.CounterVec
	sweepItems   *prometheus.CounterVec
	saves        *prometheus.CounterVec
}

// New creates the collectors and registers them.
func New() *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Bulk sweeps by outcome.",
		}, []string{"outcome"}),
		sweepItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_items_total",
			Help:      "Documents processed by bulk sweeps.",
		}, []string{"result"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "On-save hook invocations by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(m.cacheLookups, m.sweeps, m.sweepItems, m.saves)
	return m
}

// Registry exposes the registry for scraping and tests.
func (m *Prometheus) Registry() *prometheus.Registry {
	return m.registry
}

// CacheHit records a cache hit.
func (m *Prometheus) CacheHit(cache string) {
	m.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

// CacheMiss records a cache miss.
func (m *Prometheus) CacheMiss(cache string) {
	m.cacheLookups.WithLabelValues(cache, "miss").Inc()
}

// ObserveSweep records a sweep outcome and its item counts.
func (m *Prometheus) ObserveSweep(report domain.SweepReport) {
	m.sweeps.WithLabelValues(report.Outcome.String()).Inc()
	m.sweepItems.WithLabelValues("succeeded").Add(float64(report.Succeeded))
	m.sweepItems.WithLabelValues("failed").Add(float64(report.Failed))
}

// ObserveSave records an on-save hook outcome.
func (m *Prometheus) ObserveSave(outcome string) {
	m.saves.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on listen until ctx is done.
func (m *Prometheus) Serve(ctx context.Context, listen string) error {
	lis, err := net.Listen("tcp", listen)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen for metrics"), "listen", listen)
	}
	return m.ServeListener(ctx, lis)
}

// ServeListener exposes /metrics on lis until ctx is done.
func (m *Prometheus) ServeListener(ctx context.Context, lis net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return zerr.Wrap(err, "metrics server failed")
	}
	return nil
}
