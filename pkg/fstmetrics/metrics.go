// Package fstmetrics provides Prometheus metrics for the fststore engine.
// Rewritten from pkg/metrics for this engine's domain (bytes written/read,
// blocks compressed per algorithm, operation latency) but keeping the same
// promauto-registered-at-package-init idiom.
package fstmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BytesWritten counts bytes written to data files by Store.Write.
	BytesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fstore",
		Name:      "bytes_written_total",
		Help:      "Total bytes written to fst-format files.",
	})

	// BytesRead is the counter for bytes read back from data files. No
	// code path in this module increments it.
	BytesRead = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fstore",
		Name:      "bytes_read_total",
		Help:      "Total bytes read from fst-format files.",
	})

	// BlocksCompressed is the counter for blocks handed to the codec
	// layer, labeled by algorithm tag ("none", "lz4", "zstd"). No code
	// path in this module increments it.
	BlocksCompressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fstore",
		Name:      "blocks_compressed_total",
		Help:      "Total blocks compressed, by algorithm.",
	}, []string{"algorithm"})

	// OperationDuration tracks Write/Meta/Read latency.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fstore",
		Name:      "operation_duration_seconds",
		Help:      "Duration of Write/Meta/Read calls.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
	}, []string{"operation"})

	// HashFailures is the counter for header hash mismatches, labeled by
	// the node that failed verification. No code path in this module
	// increments it.
	HashFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fstore",
		Name:      "hash_failures_total",
		Help:      "Total header-node hash verification failures.",
	}, []string{"node"})
)

// Timer measures an in-flight operation and records it to OperationDuration
// on Stop, mirroring the teacher package's timer-returns-duration idiom.
type Timer struct {
	operation string
	start     time.Time
}

// NewTimer starts timing operation.
func NewTimer(operation string) *Timer {
	return &Timer{operation: operation, start: time.Now()}
}

// Stop records the elapsed duration and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	OperationDuration.WithLabelValues(t.operation).Observe(elapsed.Seconds())
	return elapsed
}
