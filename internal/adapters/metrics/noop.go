package metrics

import "go.trai.ch/polish/internal/core/domain"

// NoOp discards every observation.
type NoOp struct{}

// CacheHit does nothing.
func (NoOp) CacheHit(string) {}

// CacheMiss does nothing.
func (NoOp) CacheMiss(string) {}

// ObserveSweep does nothing.
func (NoOp) ObserveSweep(domain.SweepReport) {}

// ObserveSave does nothing.
func (NoOp) ObserveSave(string) {}
