// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the ingest pipeline.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) covering counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metric calls are always safe even when no real
//     backend is configured.
//   - It mirrors the registry pattern used by the storage layer: the rest of
//     the codebase depends only on this interface while concrete metric
//     systems live in subpackages.
//
// The primary use case is instrumenting the per-dataset pipeline stages
// (fetch, reconcile, load) without coupling the runner to a specific metrics
// system such as Prometheus or Datadog.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage is a convenience for the common pattern:
// measure latency + success/failure per pipeline stage of a dataset.
func RecordStage(dataset, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"dataset": dataset,
		"stage":   stage,
		"status":  status,
	}

	backend.IncCounter("ingest_stage_total", 1, lbls)
	backend.ObserveHistogram("ingest_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given dataset and kind.
//
// Typical kinds mirror the reconcile/load summary fields, e.g.:
//   - "fetched"
//   - "rejected"
//   - "null_filled"
//   - "inserted"
func RecordRows(dataset, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("ingest_rows_total", float64(delta), Labels{
		"dataset": dataset,
		"kind":    kind,
	})
}

// RecordBatches increments a batch-level counter for the given dataset.
func RecordBatches(dataset string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("ingest_batches_total", float64(delta), Labels{
		"dataset": dataset,
	})
}
