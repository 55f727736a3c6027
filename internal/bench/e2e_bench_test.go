package bench

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"nytaxi/internal/dataset"
	"nytaxi/internal/reconcile"
	"nytaxi/internal/schema"
	"nytaxi/internal/storage"
)

// quietLogs silences the per-batch progress lines for the duration of a
// benchmark so log formatting does not leak into the measurement.
func quietLogs(b *testing.B) {
	b.Helper()
	prev := log.Default().Writer()
	log.SetOutput(io.Discard)
	b.Cleanup(func() { log.SetOutput(prev) })
}

// BenchmarkEndToEnd exercises the hot path of the reconcile + batch loader
// pipeline in a simplified, in-memory setup.
//
// It focuses on:
//   - reconcile.Table: string → typed casting for realistic trip data
//   - storage.LoadRows: batching semantics feeding a fake copy function
//
// The goal is to approximate real-world throughput without involving I/O or
// actual database drivers.
// Run with:
//
//	go test -run=^$ -bench ^BenchmarkEndToEnd$ -cpuprofile cpu.out -memprofile mem.out -count=1
func BenchmarkEndToEnd(b *testing.B) {
	quietLogs(b)
	ctx := context.Background()

	// Columns mimic a small, realistic subset of the trip schema.
	sch := schema.Schema{
		{Name: "vendorid", Type: schema.TypeInteger},
		{Name: "tpep_pickup_datetime", Type: schema.TypeTimestamp},
		{Name: "trip_distance", Type: schema.TypeDecimal},
		{Name: "total_amount", Type: schema.TypeDecimal},
		{Name: "store_and_fwd_flag", Type: schema.TypeText},
	}

	// Producer: b.N rows with realistic string values, as a CSV fetch would
	// hand them over. Built before the timer so only reconcile + load count.
	src := dataset.NewTable([]string{
		"VendorID", "tpep_pickup_datetime", "trip_distance", "total_amount", "store_and_fwd_flag",
	})
	src.Rows = make([][]any, b.N)
	for i := 0; i < b.N; i++ {
		src.Rows[i] = []any{
			"2",
			"2025-11-07 14:23:05",
			"3.82",
			"21.50",
			"N",
		}
	}

	// Fake copyFn that just reports how many rows it would have inserted.
	// This isolates casting and batch-building costs from actual I/O.
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return int64(len(rows)), nil
	}

	b.ResetTimer()
	typed, err := reconcile.Table(src, sch)
	if err != nil {
		b.Fatalf("reconcile: %v", err)
	}
	n, err := storage.LoadRows(ctx, sch.Names(), typed.Rows, 4096, copyFn)
	b.StopTimer()

	if err != nil {
		b.Fatalf("LoadRows: %v", err)
	}
	if want := int64(b.N); n != want {
		b.Fatalf("inserted %d rows, want %d", n, want)
	}
}

// BenchmarkReconcileWide measures casting cost on the full yellow trip
// column set, where most cells are decimals.
func BenchmarkReconcileWide(b *testing.B) {
	quietLogs(b)
	sch := dataset.Defaults()[0].Schema

	names := make([]string, len(sch))
	row := make([]any, len(sch))
	for i, col := range sch {
		names[i] = col.Name
		switch col.Type {
		case schema.TypeInteger:
			row[i] = "142"
		case schema.TypeDecimal:
			row[i] = "12.35"
		case schema.TypeTimestamp:
			row[i] = "2025-11-07 14:23:05"
		default:
			row[i] = "N"
		}
	}

	const rows = 2000
	src := dataset.NewTable(names)
	src.Rows = make([][]any, rows)
	for i := range src.Rows {
		src.Rows[i] = row
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		typed, err := reconcile.Table(src, sch)
		if err != nil {
			b.Fatalf("reconcile: %v", err)
		}
		if len(typed.Rows) != rows {
			b.Fatalf("kept %d rows, want %d", len(typed.Rows), rows)
		}
	}
}

// BenchmarkLoadRowsBatchSizes compares flush overhead across batch sizes.
func BenchmarkLoadRowsBatchSizes(b *testing.B) {
	quietLogs(b)
	ctx := context.Background()
	columns := []string{"locationid", "borough", "zone", "service_zone"}

	const rows = 10000
	data := make([][]any, rows)
	for i := range data {
		data[i] = []any{int64(i + 1), "Queens", "Astoria", "Boro Zone"}
	}

	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		return int64(len(rows)), nil
	}

	for _, size := range []int{500, 5000, 50000} {
		b.Run(fmt.Sprintf("batch_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				n, err := storage.LoadRows(ctx, columns, data, size, copyFn)
				if err != nil {
					b.Fatalf("LoadRows: %v", err)
				}
				if n != rows {
					b.Fatalf("inserted %d rows, want %d", n, rows)
				}
			}
		})
	}
}
