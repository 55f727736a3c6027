// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the common ingest labels (dataset, stage, status) onto
//     Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead of
//     exposing an HTTP scrape endpoint. A batch pipeline exits when its run is
//     done, so there is nothing long-lived to scrape.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog, StatsD) without changes to the core
// pipeline.
package prompush

import (
	"fmt"

	"nytaxi/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	// Stage-level metrics
	stageCounter *prometheus.CounterVec // "ingest_stage_total"
	//stageHist    *prometheus.HistogramVec // "ingest_stage_duration_seconds"
	stageDuration *prometheus.SummaryVec // ingest_stage_duration_seconds (summary)

	// Row-level metrics
	rowCounter   *prometheus.CounterVec // "ingest_rows_total"
	batchCounter *prometheus.CounterVec // "ingest_batches_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" grouping for the whole pipeline run.
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "nytaxi_ingest"
	}

	reg := prometheus.NewRegistry()

	// One run ingests several datasets, so dataset is a dynamic label on
	// every collector; the Pushgateway "job" groups the run itself.
	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_stage_total",
			Help: "Total number of pipeline stage executions, partitioned by dataset, stage, and status.",
		},
		[]string{"dataset", "stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "ingest_stage_duration_seconds",
			Help:       "Duration of pipeline stages in seconds, partitioned by dataset, stage, and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"dataset", "stage", "status"},
	)

	// ROW metrics: kind (fetched, rejected, null_filled, inserted, ...).
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "Row-level counts per dataset and kind (fetched, rejected, inserted, etc.).",
		},
		[]string{"dataset", "kind"},
	)

	// BATCH metrics: COPY batches flushed per dataset.
	batchCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_batches_total",
			Help: "Total number of COPY batches flushed, partitioned by dataset.",
		},
		[]string{"dataset"},
	)

	if err := reg.Register(stageCounter); err != nil {
		return nil, fmt.Errorf("prompush: register stage counter: %w", err)
	}
	if err := reg.Register(stageDuration); err != nil {
		return nil, fmt.Errorf("prompush: register stage summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}
	if err := reg.Register(batchCounter); err != nil {
		return nil, fmt.Errorf("prompush: register batch counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
		batchCounter:  batchCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "ingest_stage_total":
		if b.stageCounter == nil {
			return
		}
		dataset := labels["dataset"]
		stage := labels["stage"]
		status := labels["status"]
		b.stageCounter.WithLabelValues(dataset, stage, status).Add(delta)

	case "ingest_rows_total":
		if b.rowCounter == nil {
			return
		}
		dataset := labels["dataset"]
		kind := labels["kind"]
		b.rowCounter.WithLabelValues(dataset, kind).Add(delta)

	case "ingest_batches_total":
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.WithLabelValues(labels["dataset"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "ingest_stage_duration_seconds" || b.stageDuration == nil {
		return
	}
	dataset := labels["dataset"]
	stage := labels["stage"]
	status := labels["status"]
	b.stageDuration.WithLabelValues(dataset, stage, status).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
