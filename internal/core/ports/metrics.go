package ports

import (
	"context"

	"go.trai.ch/polish/internal/core/domain"
)

// Metrics records operational counters.
type Metrics interface {
	// CacheHit records a lookup served from the named cache.
	CacheHit(cache string)
	// CacheMiss records a lookup that had to resolve.
	CacheMiss(cache string)
	// ObserveSweep records the outcome of a bulk sweep.
	ObserveSweep(report domain.SweepReport)
	// ObserveSave records an on-save hook outcome.
	ObserveSave(outcome string)
}

// MetricsExporter serves recorded metrics for scraping.
type MetricsExporter interface {
	// Serve exposes metrics on listen until ctx is done.
	Serve(ctx context.Context, listen string) error
}
