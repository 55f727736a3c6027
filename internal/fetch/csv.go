package fetch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"nytaxi/internal/dataset"
)

const utf8BOM = "\uFEFF"

// readCSV decodes delimited text into an all-text table. The first record is
// the header; its names are kept as found (minus BOM and edge whitespace) so
// reconciliation can normalize and match them later.
//
// Robustness follows the bulk-load posture: rows whose field count differs
// from the header are dropped and counted, not fatal; a quoting error that
// csv cannot recover from fails the fetch.
func readCSV(r io.Reader) (*dataset.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: empty payload")
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	columns := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		columns[i] = strings.TrimSpace(h)
	}

	tbl := dataset.NewTable(columns)
	dropped := 0
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("csv: row %d: %w", tbl.NumRows()+dropped+2, err)
		}
		if len(rec) != len(columns) {
			dropped++
			continue
		}
		row := make([]any, len(rec))
		for i, cell := range rec {
			row[i] = cell
		}
		if err := tbl.Append(row); err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
	}
	if dropped > 0 {
		log.Printf("csv: dropped %d misaligned rows (header width %d)", dropped, len(columns))
	}
	return tbl, nil
}
