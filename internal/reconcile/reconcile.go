// Package reconcile matches a fetched dataset against a declared column
// schema and casts every cell to its column's semantic type, producing rows
// ready for the bulk loader.
//
// The policy is built for sources that drift: monthly extracts add and drop
// columns without notice. Unrecognized source columns are dropped, missing
// optional columns are null-filled, and a row whose value cannot be cast is
// rejected and counted while the rest of the load continues. Only a missing
// required column fails the whole dataset.
package reconcile

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"nytaxi/internal/dataset"
	"nytaxi/internal/schema"
)

// rejectSampleLimit bounds how many per-row reasons are kept for the log.
const rejectSampleLimit = 10

// SchemaMismatchError reports declared required columns that the source does
// not carry.
type SchemaMismatchError struct {
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("source is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// TypedTable is the reconciled dataset: the declared schema plus rows of
// typed cells aligned to it, with accounting for what the policy did.
type TypedTable struct {
	Schema schema.Schema
	Rows   [][]any

	// SourceRows is the fetched row count before rejection.
	SourceRows int
	// Rejected counts rows dropped because a cell failed its cast.
	Rejected int
	// RejectSamples holds the first few rejection reasons.
	RejectSamples []string
	// NullFilled lists declared optional columns absent from the source.
	NullFilled []string
	// Dropped lists source columns with no declared counterpart.
	Dropped []string
}

// Table reconciles src against sch. Source names are normalized before
// matching, so header spelling and case differences do not matter. The cast
// plan is compiled once per column, then applied row by row.
func Table(src *dataset.Table, sch schema.Schema) (*TypedTable, error) {
	if err := sch.Validate(); err != nil {
		return nil, err
	}

	// Normalized source name -> column index; first occurrence wins.
	srcIdx := make(map[string]int, len(src.Columns))
	for i, name := range src.Columns {
		key := schema.NormalizeName(name)
		if _, dup := srcIdx[key]; dup {
			log.Printf("reconcile: duplicate source column %q (normalized %q), keeping first", name, key)
			continue
		}
		srcIdx[key] = i
	}

	out := &TypedTable{Schema: sch, SourceRows: src.NumRows()}

	// Destination -> source mapping; -1 means null-fill.
	colIx := make([]int, len(sch))
	var missingRequired []string
	for t, col := range sch {
		si, ok := srcIdx[col.Name]
		if !ok {
			colIx[t] = -1
			if col.Required {
				missingRequired = append(missingRequired, col.Name)
				continue
			}
			out.NullFilled = append(out.NullFilled, col.Name)
			continue
		}
		colIx[t] = si
		delete(srcIdx, col.Name)
	}
	if len(missingRequired) > 0 {
		return nil, &SchemaMismatchError{Missing: missingRequired}
	}
	for key := range srcIdx {
		out.Dropped = append(out.Dropped, key)
	}
	sort.Strings(out.Dropped)

	// Compile the per-column cast plan once; the row loop stays branch-light.
	casts := make([]func(any) (any, error), len(sch))
	for t, col := range sch {
		casts[t] = col.Cast
	}

	out.Rows = make([][]any, 0, src.NumRows())
	for _, srcRow := range src.Rows {
		row := make([]any, len(sch))
		ok := true
		for t := range sch {
			si := colIx[t]
			if si < 0 {
				continue // null-filled column
			}
			v, err := casts[t](srcRow[si])
			if err != nil {
				out.Rejected++
				if len(out.RejectSamples) < rejectSampleLimit {
					out.RejectSamples = append(out.RejectSamples, err.Error())
				}
				ok = false
				break
			}
			row[t] = v
		}
		if !ok {
			continue
		}
		out.Rows = append(out.Rows, row)
	}

	if len(out.NullFilled) > 0 {
		log.Printf("reconcile: null-filling missing columns: %s", strings.Join(out.NullFilled, ", "))
	}
	if len(out.Dropped) > 0 {
		log.Printf("reconcile: dropping unrecognized source columns: %s", strings.Join(out.Dropped, ", "))
	}
	if out.Rejected > 0 {
		log.Printf("reconcile: rejected %d of %d rows (showing first %d)", out.Rejected, out.SourceRows, len(out.RejectSamples))
		for i, s := range out.RejectSamples {
			log.Printf("  #%03d: %s", i+1, s)
		}
	}

	return out, nil
}
