// Package pipeline implements pipeline metrics.
package pipeline

import (
	"sync/atomic"
)

// Metrics contains per-pipeline counters.
type Metrics struct {
	Received   atomic.Uint64
	Filtered   atomic.Uint64
	Skipped    atomic.Uint64
	Decoded    atomic.Uint64
	SinkErrors atomic.Uint64
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}
