// Command ingest fetches the configured datasets and bulk-loads them into
// the selected storage backend, recreating each destination table from its
// declared column schema.
//
// With no flags it ingests the built-in targets into the local development
// database:
//
//	ingest
//	ingest -config configs/datasets.json -only zones -backend sqlite
//	ingest -dry-run -v
//
// The process exits non-zero on the first stage failure; the final log line
// names the dataset and the stage that failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"nytaxi/internal/config"
	"nytaxi/internal/fetch"
	"nytaxi/internal/metrics"
	"nytaxi/internal/metrics/datadog"
	"nytaxi/internal/metrics/prompush"
	"nytaxi/internal/pipeline"
	"nytaxi/internal/storage"

	// register all backends with the storage factory.
	// flags specify which to use but we build in support for all of them.
	_ "nytaxi/internal/storage/all"
)

func main() {
	var (
		cfgPath        string
		backend        string
		dsn            string
		batch          int
		parallel       bool
		only           string
		metricsBackend string
		pushgatewayURL string
		statsdAddr     string
		fetchTimeout   time.Duration
		dryRun         bool
		validate       bool
	)

	flag.StringVar(&cfgPath, "config", "", "datasets config JSON path (empty: built-in targets)")
	flag.StringVar(&backend, "backend", "postgres", "storage backend, one of: "+strings.Join(storage.ListKinds(), ", "))
	flag.StringVar(&dsn, "dsn", "", "connection string (empty: built from PG_* or SQLITE_PATH)")
	flag.IntVar(&batch, "batch", getenvInt("ETL_BATCH_SIZE", pipeline.DefaultBatchSize), "rows per insert batch")
	flag.BoolVar(&parallel, "parallel", false, "load datasets concurrently instead of in config order")
	flag.StringVar(&only, "only", "", "comma-separated dataset names to run (empty: all)")
	flag.StringVar(&metricsBackend, "metrics-backend", "none", "metrics backend (none, prometheus, datadog)")
	flag.StringVar(&pushgatewayURL, "pushgateway-url", "http://localhost:9091", "Prometheus Pushgateway base URL")
	flag.StringVar(&statsdAddr, "statsd-addr", "127.0.0.1:8125", "DogStatsD address")
	flag.DurationVar(&fetchTimeout, "fetch-timeout", 0, "per-download HTTP timeout (0: none)")
	flag.BoolVar(&dryRun, "dry-run", false, "fetch and reconcile but never touch storage")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	datasets, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if only != "" {
		if datasets, err = config.Filter(datasets, splitNames(only)); err != nil {
			log.Fatalf("%v", err)
		}
	}

	if dsn == "" && !dryRun {
		switch backend {
		case "sqlite":
			dsn = config.SQLiteDSN(config.SQLitePathFromEnv())
		default:
			dsn = config.PostgresFromEnv().DSN()
		}
	}

	cfg := config.Config{
		Datasets:     datasets,
		Backend:      backend,
		DSN:          dsn,
		BatchSize:    batch,
		Parallel:     parallel,
		FetchTimeout: fetchTimeout,
		DryRun:       dryRun,
		Metrics: config.Metrics{
			Backend:        metricsBackend,
			PushgatewayURL: pushgatewayURL,
			StatsdAddr:     statsdAddr,
		},
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Fatalf("configuration is invalid")
	}
	if validate {
		log.Printf("configuration is valid (%d datasets)", len(datasets))
		return
	}

	setupMetrics(cfg.Metrics, *verbose)

	if *verbose {
		log.Printf("run: backend=%s batch=%d parallel=%v dry_run=%v datasets=%s",
			backend, batch, parallel, dryRun, strings.Join(datasetNames(cfg), ","))
	}

	ctx := context.Background()
	start := time.Now()

	r := pipeline.New(pipeline.Config{
		Kind:      backend,
		DSN:       dsn,
		BatchSize: batch,
		Parallel:  parallel,
		DryRun:    dryRun,
		Fetch:     fetch.Config{Timeout: fetchTimeout},
	})
	_, runErr := r.Run(ctx, datasets)

	// Flush before deciding the exit path; log.Fatalf would skip defers.
	if err := metrics.Flush(); err != nil {
		log.Printf("metrics: flush error: %v", err)
	}
	if runErr != nil {
		log.Fatalf("%v", runErr)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// setupMetrics installs the selected metrics backend. A backend that fails
// to initialize downgrades to the nop default with a log line; metrics are
// never worth failing an ingest over.
func setupMetrics(m config.Metrics, verbose bool) {
	switch m.Backend {
	case "prometheus":
		b, err := prompush.NewBackend("", m.PushgatewayURL)
		if err != nil {
			log.Printf("metrics: prometheus init: %v; metrics disabled", err)
			return
		}
		log.Printf("metrics: backend=prometheus gateway=%s", m.PushgatewayURL)
		metrics.SetBackend(b)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:      m.StatsdAddr,
			Namespace: "nytaxi.",
		})
		if err != nil {
			log.Printf("metrics: datadog init: %v; metrics disabled", err)
			return
		}
		log.Printf("metrics: backend=datadog statsd=%s", m.StatsdAddr)
		metrics.SetBackend(b)

	default:
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", m.Backend)
		}
	}
}

// splitNames parses the -only list, dropping empty elements so trailing
// commas do not turn into lookups.
func splitNames(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func datasetNames(c config.Config) []string {
	out := make([]string, len(c.Datasets))
	for i, d := range c.Datasets {
		out[i] = d.Name
	}
	return out
}

// getenvInt reads an integer environment variable, returning def when the
// variable is unset or unparsable.
func getenvInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
