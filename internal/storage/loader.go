// This file implements a generic, batched loader that slices typed rows into
// bulk-insert calls (CopyFn) of bounded size.
//
// Batching keeps per-call memory bounded on the driver side and gives the
// operator regular progress feedback: on every successful flush, a concise
// progress line is emitted with running totals and instantaneous rows/sec
// since the previous flush.

package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations should
// insert the provided rows (aligned to 'columns' order) and return the number
// of rows reported as inserted. In production this is Repository.CopyFrom; in
// tests a fake function can verify batching behavior.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadRows writes rows through copyFn in batches of at most batchSize and
// returns the total number of rows reported inserted. The first copy error
// stops the load; rows from batches that already succeeded stay loaded, so
// the caller decides whether a partial table is acceptable (the ingest
// pipeline recreates the table on the next run either way).
//
// Cancellation is checked between batches; a canceled context returns
// (total, ctx.Err()).
func LoadRows(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total       int64
		batches     int64
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	for off := 0; off < len(rows); off += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		end := off + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		n, err := copyFn(ctx, columns, rows[off:end])
		total += n
		if err != nil {
			log.Printf("loader: COPY failed batch=%d total=%d err=%v", batches+1, total, err)

			return total, err
		}

		// Progress log per successful batch.
		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		insertedSinceLast := total - lastTotal
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(insertedSinceLast) / sinceLast.Seconds()
		}
		log.Printf(
			"batch #%d: rps=%.0f inserted=%d total_inserted=%d elapsed=%s since_last=%s",
			batches,
			rps,
			n,
			total,
			now.Sub(start).Truncate(time.Millisecond),
			sinceLast.Truncate(time.Millisecond),
		)
		lastFlushTS = now
		lastTotal = total
	}

	return total, nil
}
