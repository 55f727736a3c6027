// Package dataset defines the units the pipeline works on: the in-memory
// tabular dataset a fetch produces, and the immutable descriptor that says
// where a dataset lives and what shape its destination table has.
package dataset

import (
	"fmt"
	"strings"

	"nytaxi/internal/schema"
)

// Format identifies the wire encoding of a source file.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// ParseFormat maps a configuration string onto a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parquet", "columnar":
		return FormatParquet, nil
	case "csv", "delimited":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown source format %q", s)
	}
}

// Table is an in-memory table of rows × columns as decoded from one source
// file. Column names are kept exactly as found; cells hold native values for
// columnar sources (int64, float64, string, bool, time.Time) and strings for
// delimited text. A nil cell is NULL. Tables live for one run and are
// discarded after the load.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NewTable returns an empty table with the given source column names.
func NewTable(columns []string) *Table {
	return &Table{Columns: columns}
}

// Append adds one row, enforcing the column width.
func (t *Table) Append(row []any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row width %d does not match %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// NumRows reports the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols reports the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// Descriptor declares one ingest target: where the file lives, how it is
// encoded, and the destination table with its column schema. Descriptors are
// immutable once built.
type Descriptor struct {
	Name   string        `json:"name"`
	URL    string        `json:"url"`
	Format Format        `json:"format"`
	Table  string        `json:"table"`
	Schema schema.Schema `json:"columns"`
}

// Validate reports the first problem that would make the descriptor unusable.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("descriptor has no name")
	}
	if d.URL == "" {
		return fmt.Errorf("dataset %s: no url", d.Name)
	}
	if _, err := ParseFormat(string(d.Format)); err != nil {
		return fmt.Errorf("dataset %s: %w", d.Name, err)
	}
	if d.Table == "" {
		return fmt.Errorf("dataset %s: no destination table", d.Name)
	}
	if err := d.Schema.Validate(); err != nil {
		return fmt.Errorf("dataset %s: %w", d.Name, err)
	}
	return nil
}
