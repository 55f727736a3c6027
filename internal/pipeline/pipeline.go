// Package pipeline drives the ingest run: for each dataset descriptor it
// fetches the source file, reconciles it against the declared schema, and
// bulk-loads the typed rows into a freshly recreated destination table.
//
// Each dataset moves through a small state machine:
//
//	PENDING → FETCHING → RECONCILING → LOADING → DONE
//
// Any stage error moves the dataset to FAILED and aborts the run: no retry,
// and datasets after the failing one are never attempted. Datasets are
// independent of each other, so the optional parallel mode runs one worker
// per dataset behind a shared completion barrier; the first failure cancels
// the remaining workers.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"nytaxi/internal/dataset"
	"nytaxi/internal/fetch"
	"nytaxi/internal/metrics"
	"nytaxi/internal/reconcile"
	"nytaxi/internal/storage"
)

// DefaultBatchSize bounds COPY batch size when the config does not.
const DefaultBatchSize = 50000

// Stage names used in StageError and metric labels.
const (
	StageFetch     = "fetch"
	StageReconcile = "reconcile"
	StageLoad      = "load"
)

// State names the lifecycle position of one dataset within a run.
type State string

const (
	StatePending     State = "PENDING"
	StateFetching    State = "FETCHING"
	StateReconciling State = "RECONCILING"
	StateLoading     State = "LOADING"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// StageError wraps a stage failure with the dataset and stage that produced
// it, so the process exit message can name both.
type StageError struct {
	Dataset string
	Stage   string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("dataset %s: %s: %v", e.Dataset, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result records what happened to one dataset during a run.
type Result struct {
	Dataset string
	Table   string
	State   State

	// Skipped is true when the source was empty and the destination table
	// was left untouched.
	Skipped bool

	Fetched  int   // source rows before reconciliation
	Rejected int   // rows dropped because a cell failed its cast
	Inserted int64 // rows flushed to the destination table
	Batches  int64 // COPY batches flushed

	Elapsed time.Duration
}

// Config resolves the storage target and the shape of a run.
type Config struct {
	// Kind selects the storage backend, e.g. "postgres" or "sqlite".
	Kind string
	// DSN is the backend connection string.
	DSN string
	// BatchSize bounds COPY batch size; <=0 selects DefaultBatchSize.
	BatchSize int
	// Parallel runs one worker per dataset instead of the fixed order.
	Parallel bool
	// DryRun fetches and reconciles but never touches storage.
	DryRun bool
	// Fetch configures the HTTP client shared by all datasets.
	Fetch fetch.Config
}

// Runner executes dataset descriptors against one storage target.
type Runner struct {
	cfg    Config
	client *fetch.Client
}

// New builds a Runner, applying defaults for zero config values.
func New(cfg Config) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Runner{cfg: cfg, client: fetch.NewClient(cfg.Fetch)}
}

// counters holds run-wide statistics. Fields are updated atomically so the
// parallel mode can share one instance across workers.
type counters struct {
	fetched  atomic.Int64
	rejected atomic.Int64
	inserted atomic.Int64
	batches  atomic.Int64
	done     atomic.Int64
	skipped  atomic.Int64
}

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	fetchFn = fetch.Fetch

	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return storage.New(ctx, cfg)
	}
)

// Run executes every descriptor. The returned slice always has one Result
// per descriptor in input order; datasets never attempted stay PENDING. The
// first stage failure aborts the run and comes back as a *StageError.
func (r *Runner) Run(ctx context.Context, datasets []dataset.Descriptor) ([]Result, error) {
	results := make([]Result, len(datasets))
	for i, d := range datasets {
		results[i] = Result{Dataset: d.Name, Table: d.Table, State: StatePending}
	}

	for _, d := range datasets {
		if err := d.Validate(); err != nil {
			return results, err
		}
	}

	log.Printf("pipeline: starting datasets=%d storage.kind=%s batch=%d parallel=%v",
		len(datasets), r.cfg.Kind, r.cfg.BatchSize, r.cfg.Parallel)

	start := time.Now()
	var stats counters
	var runErr error

	if r.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, d := range datasets {
			i, d := i, d // capture
			g.Go(func() error {
				res, err := r.runOne(gctx, d, &stats)
				results[i] = res
				return err
			})
		}
		runErr = g.Wait()
	} else {
		for i, d := range datasets {
			res, err := r.runOne(ctx, d, &stats)
			results[i] = res
			if err != nil {
				runErr = err
				break
			}
		}
	}

	log.Printf("summary: datasets=%d done=%d skipped=%d fetched=%d rejected=%d inserted=%d batches=%d elapsed=%s",
		len(datasets), stats.done.Load(), stats.skipped.Load(), stats.fetched.Load(),
		stats.rejected.Load(), stats.inserted.Load(), stats.batches.Load(),
		time.Since(start).Truncate(time.Millisecond))

	return results, runErr
}

// runOne drives a single dataset through fetch → reconcile → load and
// reports its Result. Any error comes back wrapped as a *StageError.
func (r *Runner) runOne(ctx context.Context, d dataset.Descriptor, stats *counters) (Result, error) {
	res := Result{Dataset: d.Name, Table: d.Table, State: StatePending}
	start := time.Now()

	fail := func(stage string, err error) (Result, error) {
		res.State = StateFailed
		res.Elapsed = time.Since(start)
		return res, &StageError{Dataset: d.Name, Stage: stage, Err: err}
	}

	res.State = StateFetching
	log.Printf("dataset %s: fetching %s", d.Name, d.URL)
	fetchStart := time.Now()
	src, err := fetchFn(ctx, r.client, d.URL, d.Format)
	metrics.RecordStage(d.Name, StageFetch, err, time.Since(fetchStart))
	if err != nil {
		return fail(StageFetch, err)
	}
	res.Fetched = src.NumRows()
	stats.fetched.Add(int64(src.NumRows()))
	metrics.RecordRows(d.Name, "fetched", int64(src.NumRows()))
	log.Printf("dataset %s: fetched rows=%d cols=%d", d.Name, src.NumRows(), src.NumCols())

	// Empty source: nothing to load, leave the destination table as it is.
	if src.NumRows() == 0 {
		res.State = StateDone
		res.Skipped = true
		res.Elapsed = time.Since(start)
		stats.skipped.Add(1)
		log.Printf("dataset %s: source is empty, leaving table %s untouched", d.Name, d.Table)
		return res, nil
	}

	res.State = StateReconciling
	recStart := time.Now()
	typed, err := reconcile.Table(src, d.Schema)
	metrics.RecordStage(d.Name, StageReconcile, err, time.Since(recStart))
	if err != nil {
		return fail(StageReconcile, err)
	}
	logReconcile(d.Name, typed)
	res.Rejected = typed.Rejected
	stats.rejected.Add(int64(typed.Rejected))
	metrics.RecordRows(d.Name, "rejected", int64(typed.Rejected))

	if r.cfg.DryRun {
		res.State = StateDone
		res.Elapsed = time.Since(start)
		stats.done.Add(1)
		log.Printf("dataset %s: dry run, not touching table %s (fetched=%d rejected=%d typed=%d)",
			d.Name, d.Table, res.Fetched, res.Rejected, len(typed.Rows))
		return res, nil
	}

	res.State = StateLoading
	loadStart := time.Now()
	inserted, batches, err := r.load(ctx, d, typed)
	metrics.RecordStage(d.Name, StageLoad, err, time.Since(loadStart))
	if err != nil {
		return fail(StageLoad, err)
	}
	res.Inserted = inserted
	res.Batches = batches
	stats.inserted.Add(inserted)
	stats.batches.Add(batches)
	metrics.RecordRows(d.Name, "inserted", inserted)
	metrics.RecordBatches(d.Name, batches)

	res.State = StateDone
	res.Elapsed = time.Since(start)
	stats.done.Add(1)
	log.Printf("dataset %s: done table=%s fetched=%d rejected=%d inserted=%d elapsed=%s",
		d.Name, d.Table, res.Fetched, res.Rejected, res.Inserted,
		res.Elapsed.Truncate(time.Millisecond))
	return res, nil
}

// load opens the backend repository, recreates the destination table from the
// declared schema, flushes the typed rows in batches, and verifies the table
// count against the inserted total.
func (r *Runner) load(ctx context.Context, d dataset.Descriptor, typed *reconcile.TypedTable) (int64, int64, error) {
	columns := d.Schema.Names()

	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:    r.cfg.Kind,
		DSN:     r.cfg.DSN,
		Table:   d.Table,
		Columns: columns,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("init repo: %w", err)
	}
	defer repo.Close()

	if err := storage.RecreateTable(ctx, r.cfg.Kind, repo, d.Table, d.Schema); err != nil {
		return 0, 0, err
	}

	log.Printf("dataset %s: loading table=%s rows=%d batch=%d",
		d.Name, d.Table, len(typed.Rows), r.cfg.BatchSize)

	inserted, err := storage.LoadRows(ctx, columns, typed.Rows, r.cfg.BatchSize, repo.CopyFrom)
	if err != nil {
		return inserted, 0, err
	}

	got, err := repo.Count(ctx, d.Table)
	if err != nil {
		return inserted, 0, fmt.Errorf("verify count: %w", err)
	}
	if got != inserted {
		return inserted, 0, fmt.Errorf("row count mismatch: table %s has %d rows, loader flushed %d",
			d.Table, got, inserted)
	}

	batches := int64((len(typed.Rows) + r.cfg.BatchSize - 1) / r.cfg.BatchSize)
	return inserted, batches, nil
}

// logReconcile prints what the reconcile policy did: dropped source columns,
// null-filled declared columns, and a sample of rejected rows.
func logReconcile(name string, t *reconcile.TypedTable) {
	if len(t.Dropped) > 0 {
		log.Printf("dataset %s: dropping unknown source columns: %s", name, strings.Join(t.Dropped, ", "))
	}
	if len(t.NullFilled) > 0 {
		log.Printf("dataset %s: null-filling missing columns: %s", name, strings.Join(t.NullFilled, ", "))
	}
	if t.Rejected > 0 {
		log.Printf("dataset %s: rejected %d rows (showing first %d)", name, t.Rejected, len(t.RejectSamples))
		for i, s := range t.RejectSamples {
			log.Printf("  #%03d: %s", i+1, s)
		}
	}
}
