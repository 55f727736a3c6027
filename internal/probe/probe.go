// Package probe suggests column schemas for dataset URLs so new sources can
// be added to the datasets config without hand-typing every column.
//
// CSV files are sampled with a ranged fetch and typed by value inspection: a
// column gets the narrowest type that every one of its non-empty sampled
// values satisfies, checked integer first, then decimal, then timestamp, with
// text as the fallback. Parquet files carry their own schema, so the arrow
// field types are mapped directly and no row data is decoded.
//
// The output is a suggestion, not a contract. A CSV sample sees only the head
// of the file, and a column that looks integer for the first half-megabyte
// may still carry text further down. Review before committing the config.
package probe

import (
	"context"
	"fmt"
	neturl "net/url"
	"path"
	"strings"

	"github.com/apache/arrow/go/v10/arrow"

	"nytaxi/internal/dataset"
	"nytaxi/internal/fetch"
	"nytaxi/internal/schema"
)

const (
	// DefaultSampleBytes is sized for a wide trip header plus a few thousand
	// rows, enough for stable inference without pulling a whole extract.
	DefaultSampleBytes = 512 << 10

	// DefaultSampleRows bounds inference work on dense samples.
	DefaultSampleRows = 5000
)

// Options control sampling and naming. The zero value works: format and name
// are derived from the URL and the sample sizes fall back to the defaults.
type Options struct {
	// Format of the payload. Empty derives it from the URL path extension.
	Format dataset.Format

	// Name for the dataset entry. Empty derives one from the URL file name;
	// the destination table defaults to the same value.
	Name string

	// Table overrides the destination table name.
	Table string

	// SampleBytes caps the ranged CSV sample. Zero means DefaultSampleBytes.
	SampleBytes int

	// SampleRows caps how many parsed rows feed inference. Zero means
	// DefaultSampleRows.
	SampleRows int

	// Fetch configures the HTTP client used for sampling.
	Fetch fetch.Config
}

// Suggest inspects the file at url and returns a ready-to-edit descriptor for
// the datasets config: name, format, destination table, and a typed column
// list. The descriptor is validated before it is returned, so the caller can
// marshal it straight into the config file.
func Suggest(ctx context.Context, url string, opt Options) (*dataset.Descriptor, error) {
	format := opt.Format
	if format == "" {
		f, err := detectFormat(url)
		if err != nil {
			return nil, err
		}
		format = f
	}

	name := opt.Name
	if name == "" {
		name = nameFromURL(url)
	}
	table := opt.Table
	if table == "" {
		table = name
	}

	client := fetch.NewClient(opt.Fetch)

	var (
		cols schema.Schema
		err  error
	)
	switch format {
	case dataset.FormatCSV:
		cols, err = suggestCSV(ctx, client, url, opt)
	case dataset.FormatParquet:
		cols, err = suggestParquet(ctx, client, url)
	default:
		return nil, fmt.Errorf("probe: unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	d := &dataset.Descriptor{Name: name, URL: url, Format: format, Table: table, Schema: cols}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("probe: suggested descriptor invalid: %w", err)
	}
	return d, nil
}

// detectFormat maps the URL path extension onto a payload format.
func detectFormat(rawURL string) (dataset.Format, error) {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("probe: parse url: %w", err)
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".parquet":
		return dataset.FormatParquet, nil
	case ".csv":
		return dataset.FormatCSV, nil
	}
	return "", fmt.Errorf("probe: cannot tell the format of %q from its extension, pass one explicitly", rawURL)
}

// nameFromURL derives a dataset name from the URL's file name:
// ".../yellow_tripdata_2025-11.parquet" becomes "yellow_tripdata_2025_11".
func nameFromURL(rawURL string) string {
	base := ""
	if u, err := neturl.Parse(rawURL); err == nil {
		base = path.Base(u.Path)
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "dataset"
	}
	return schema.NormalizeName(base)
}

// suggestCSV samples the head of the file and infers a type per column.
func suggestCSV(ctx context.Context, c *fetch.Client, url string, opt Options) (schema.Schema, error) {
	sampleBytes := opt.SampleBytes
	if sampleBytes <= 0 {
		sampleBytes = DefaultSampleBytes
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}

	raw, err := fetch.FirstBytes(ctx, c, url, sampleBytes)
	if err != nil {
		return nil, err
	}
	if len(raw) == sampleBytes {
		// A sample that fills the window almost always stops mid-row.
		raw = trimPartialRow(raw)
	}

	header, rows, err := parseSample(raw, sampleRows)
	if err != nil {
		return nil, fmt.Errorf("probe: %s: %w", url, err)
	}

	types := inferTypes(header, rows)
	required := requiredColumn(types, rows)

	cols := make(schema.Schema, len(header))
	for i, h := range header {
		cols[i] = schema.Column{
			Name:     schema.NormalizeName(h),
			Type:     types[i],
			Required: i == required,
		}
	}
	dedupeNames(cols)
	return cols, nil
}

// suggestParquet maps the file's arrow schema onto column declarations.
// Non-nullable fields become required columns; that is real metadata, not a
// sampling guess.
func suggestParquet(ctx context.Context, c *fetch.Client, url string) (schema.Schema, error) {
	sch, err := fetch.ParquetSchema(ctx, c, url)
	if err != nil {
		return nil, err
	}
	fields := sch.Fields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("probe: %s: parquet schema has no fields", url)
	}

	cols := make(schema.Schema, len(fields))
	for i, f := range fields {
		cols[i] = schema.Column{
			Name:     schema.NormalizeName(f.Name),
			Type:     typeFromArrow(f.Type),
			Required: !f.Nullable,
		}
	}
	dedupeNames(cols)
	return cols, nil
}

// typeFromArrow maps an arrow field type onto a destination column type.
// Anything without a clean mapping loads as text; the text caster renders
// bools and other scalars explicitly.
func typeFromArrow(t arrow.DataType) schema.Type {
	switch t.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return schema.TypeInteger
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64,
		arrow.DECIMAL128, arrow.DECIMAL256:
		return schema.TypeDecimal
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return schema.TypeTimestamp
	default:
		return schema.TypeText
	}
}

// requiredColumn picks the one column worth marking required: the first
// integer column whose sampled values are all non-empty, which in practice is
// the dataset's id column. Everything else stays optional so that schema
// drift in later extracts null-fills instead of failing the run. Returns -1
// when no column qualifies.
func requiredColumn(types []schema.Type, rows [][]string) int {
	if len(rows) == 0 {
		return -1
	}
	for i, t := range types {
		if t != schema.TypeInteger {
			continue
		}
		filled := true
		for _, r := range rows {
			if strings.TrimSpace(r[i]) == "" {
				filled = false
				break
			}
		}
		if filled {
			return i
		}
	}
	return -1
}

// dedupeNames suffixes repeated normalized names so the schema validates:
// when "Total Amount" and "total-amount" both normalize to "total_amount",
// the second becomes "total_amount_2".
func dedupeNames(cols schema.Schema) {
	seen := make(map[string]bool, len(cols))
	for i := range cols {
		name := cols[i].Name
		for n := 2; seen[name]; n++ {
			name = schema.NormalizeName(fmt.Sprintf("%s_%d", cols[i].Name, n))
		}
		seen[name] = true
		cols[i].Name = name
	}
}
