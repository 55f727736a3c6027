package fetch

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/apache/arrow/go/v10/parquet/file"
	"github.com/apache/arrow/go/v10/parquet/pqarrow"

	"nytaxi/internal/dataset"
)

// ParquetSchema retrieves the file at url and returns its arrow schema without
// materializing row data. Parquet keeps the schema in the footer, so the whole
// payload is still downloaded; it is spooled to a temp file and removed before
// returning.
func ParquetSchema(ctx context.Context, c *Client, url string) (*arrow.Schema, error) {
	resp, err := c.Get(ctx, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, &Error{URL: url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	f, size, digest, err := spool(url, resp.Body)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer os.Remove(f.Name())
	defer f.Close()

	pf, err := file.NewParquetReader(f)
	if err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("parquet: open: %w", err)}
	}
	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("parquet: arrow reader: %w", err)}
	}
	sch, err := reader.Schema()
	if err != nil {
		return nil, &Error{URL: url, Err: fmt.Errorf("parquet: schema: %w", err)}
	}
	log.Printf("fetch: %s: schema has %d fields, %d bytes, xxh3=%016x", url, len(sch.Fields()), size, digest)
	return sch, nil
}

// readParquet decodes a parquet file into a table with native cell types.
// The arrow table is materialized whole; trip extracts run a few million rows
// and the loader wants the full dataset anyway.
func readParquet(ctx context.Context, f *os.File) (*dataset.Table, error) {
	pf, err := file.NewParquetReader(f)
	if err != nil {
		return nil, fmt.Errorf("parquet: open: %w", err)
	}

	mem := memory.NewGoAllocator()
	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("parquet: arrow reader: %w", err)
	}
	table, err := reader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("parquet: read table: %w", err)
	}
	defer table.Release()

	fields := table.Schema().Fields()
	columns := make([]string, len(fields))
	for i, fld := range fields {
		columns[i] = fld.Name
	}

	rows := make([][]any, table.NumRows())
	for i := range rows {
		rows[i] = make([]any, len(columns))
	}

	for col := 0; col < len(columns); col++ {
		column := table.Column(col)
		rowIx := 0
		for _, chunk := range column.Data().Chunks() {
			n, err := copyChunk(rows, rowIx, col, chunk)
			if err != nil {
				return nil, fmt.Errorf("parquet: column %q: %w", columns[col], err)
			}
			rowIx += n
		}
		if int64(rowIx) != table.NumRows() {
			return nil, fmt.Errorf("parquet: column %q: %d values for %d rows", columns[col], rowIx, table.NumRows())
		}
	}

	return &dataset.Table{Columns: columns, Rows: rows}, nil
}

// copyChunk writes one arrow chunk's values into rows starting at rowIx and
// returns how many it wrote. Small integer widths widen to int64, float32 to
// float64, timestamps and dates become time.Time; nulls become nil.
func copyChunk(rows [][]any, rowIx, col int, chunk arrow.Array) (int, error) {
	n := chunk.Len()
	set := func(j int, v any) {
		if chunk.IsNull(j) {
			rows[rowIx+j][col] = nil
		} else {
			rows[rowIx+j][col] = v
		}
	}

	switch a := chunk.(type) {
	case *array.Int64:
		for j := 0; j < n; j++ {
			set(j, a.Value(j))
		}
	case *array.Int32:
		for j := 0; j < n; j++ {
			set(j, int64(a.Value(j)))
		}
	case *array.Int16:
		for j := 0; j < n; j++ {
			set(j, int64(a.Value(j)))
		}
	case *array.Int8:
		for j := 0; j < n; j++ {
			set(j, int64(a.Value(j)))
		}
	case *array.Uint64:
		for j := 0; j < n; j++ {
			set(j, a.Value(j))
		}
	case *array.Uint32:
		for j := 0; j < n; j++ {
			set(j, int64(a.Value(j)))
		}
	case *array.Uint16:
		for j := 0; j < n; j++ {
			set(j, int64(a.Value(j)))
		}
	case *array.Uint8:
		for j := 0; j < n; j++ {
			set(j, int64(a.Value(j)))
		}
	case *array.Float64:
		for j := 0; j < n; j++ {
			set(j, a.Value(j))
		}
	case *array.Float32:
		for j := 0; j < n; j++ {
			set(j, float64(a.Value(j)))
		}
	case *array.String:
		for j := 0; j < n; j++ {
			set(j, a.Value(j))
		}
	case *array.LargeString:
		for j := 0; j < n; j++ {
			set(j, a.Value(j))
		}
	case *array.Boolean:
		for j := 0; j < n; j++ {
			set(j, a.Value(j))
		}
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		for j := 0; j < n; j++ {
			set(j, a.Value(j).ToTime(unit))
		}
	case *array.Date32:
		for j := 0; j < n; j++ {
			set(j, a.Value(j).ToTime())
		}
	case *array.Date64:
		for j := 0; j < n; j++ {
			set(j, a.Value(j).ToTime())
		}
	default:
		return 0, fmt.Errorf("unsupported arrow type %s", chunk.DataType())
	}
	return n, nil
}
