package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"nytaxi/internal/dataset"
	"nytaxi/internal/fetch"
	"nytaxi/internal/probe"
)

// main is the entrypoint for the schema probing CLI. It inspects the file at
// the given URL (a ranged sample for CSV, the embedded schema for parquet),
// infers a typed column list, and prints a one-element datasets config as
// JSON.
//
// The output is intended to be hand-reviewed and then used with cmd/ingest:
//
//	schemaprobe -url https://example.com/fhv_tripdata_2025-01.parquet > fhv.json
//	ingest -config fhv.json
func main() {
	var (
		flagURL = flag.String(
			"url",
			"",
			"URL of the source file (CSV or parquet)",
		)
		flagFormat = flag.String(
			"format",
			"",
			"Source format: csv|parquet; empty auto-detects from the URL extension",
		)
		flagName = flag.String(
			"name",
			"",
			"Logical dataset name; empty derives one from the URL file name",
		)
		flagTable = flag.String(
			"table",
			"",
			"Destination table name; empty reuses the dataset name",
		)
		flagBytes = flag.Int(
			"bytes",
			probe.DefaultSampleBytes,
			"Number of bytes to sample from the start of a CSV file",
		)
		flagRows = flag.Int(
			"rows",
			probe.DefaultSampleRows,
			"Maximum sampled rows fed to type inference",
		)
		flagTimeout = flag.Duration(
			"timeout",
			60*time.Second,
			"Overall probe timeout (parquet probes download the whole file)",
		)
		flagPretty = flag.Bool(
			"pretty",
			true,
			"Pretty-print JSON output",
		)
		flagInsecure = flag.Bool(
			"insecure",
			false,
			"Skip TLS certificate verification when sampling",
		)
	)
	flag.Parse()

	if *flagURL == "" {
		fmt.Fprintln(os.Stderr, "missing -url")
		flag.Usage()
		os.Exit(2)
	}

	var format dataset.Format
	if *flagFormat != "" {
		f, err := dataset.ParseFormat(*flagFormat)
		if err != nil {
			log.Fatalf("probe: %v", err)
		}
		format = f
	}

	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()

	d, err := probe.Suggest(ctx, *flagURL, probe.Options{
		Format:      format,
		Name:        *flagName,
		Table:       *flagTable,
		SampleBytes: *flagBytes,
		SampleRows:  *flagRows,
		Fetch:       fetch.Config{InsecureSkipVerify: *flagInsecure},
	})
	if err != nil {
		log.Fatalf("probe: %v", err)
	}

	// A one-element array, so the output is already in the shape -config wants.
	enc := json.NewEncoder(os.Stdout)
	if *flagPretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode([]*dataset.Descriptor{d}); err != nil {
		log.Fatalf("encode config: %v", err)
	}
}
