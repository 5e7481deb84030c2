// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CapturePacketsTotal counts packets read from a source.
	CapturePacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atalkdump_capture_packets_total",
			Help: "Total number of packets read from a source",
		},
		[]string{"source"},
	)

	// CaptureDropsTotal counts packets dropped before decoding.
	CaptureDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atalkdump_capture_drops_total",
			Help: "Total number of packets dropped before decoding",
		},
		[]string{"source", "stage"},
	)

	// FramesTotal counts classified frames by kind.
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atalkdump_frames_total",
			Help: "Total number of frames by link-level kind",
		},
		[]string{"source", "kind"},
	)

	// DecodeEventsTotal counts decode outcomes per protocol.
	DecodeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atalkdump_decode_events_total",
			Help: "Total number of decode outcomes by protocol",
		},
		[]string{"protocol", "outcome"},
	)

	// DecodeLatencySeconds measures time spent decoding and printing a frame.
	DecodeLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atalkdump_decode_latency_seconds",
			Help:    "Latency of decoding one frame in seconds",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20), // 1µs to ~1s
		},
		[]string{"kind"},
	)

	// NamesCacheEntries tracks the size of the address name cache.
	NamesCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "atalkdump_names_cache_entries",
			Help: "Number of entries in the AppleTalk address name cache",
		},
	)

	// SinkErrorsTotal counts failed writes to an output.
	SinkErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atalkdump_sink_errors_total",
			Help: "Total number of output write errors",
		},
		[]string{"sink"},
	)
)

// Decode outcomes.
const (
	OutcomeDecoded   = "decoded"
	OutcomeTruncated = "truncated"
	OutcomeAnomaly   = "anomaly"
	OutcomeUnknown   = "unknown"
)

// DecodeObserver records decoder outcomes in DecodeEventsTotal.
type DecodeObserver struct{}

// NewDecodeObserver creates a decoder observer backed by the package
// counters.
func NewDecodeObserver() *DecodeObserver {
	return &DecodeObserver{}
}

func (DecodeObserver) Decoded(proto string) {
	DecodeEventsTotal.WithLabelValues(proto, OutcomeDecoded).Inc()
}

func (DecodeObserver) Truncated(proto string) {
	DecodeEventsTotal.WithLabelValues(proto, OutcomeTruncated).Inc()
}

func (DecodeObserver) Anomaly(proto string) {
	DecodeEventsTotal.WithLabelValues(proto, OutcomeAnomaly).Inc()
}

func (DecodeObserver) Unknown(proto string) {
	DecodeEventsTotal.WithLabelValues(proto, OutcomeUnknown).Inc()
}
