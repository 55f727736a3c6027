package probe

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"nytaxi/internal/schema"
)

// trimPartialRow cuts a byte sample at its last newline. The tail fragment of
// a truncated sample would otherwise skew inference for whichever columns it
// happens to cover.
func trimPartialRow(raw []byte) []byte {
	if i := bytes.LastIndexByte(raw, '\n'); i >= 0 {
		return raw[:i+1]
	}
	return raw
}

// parseSample reads sampled CSV bytes into a header and up to maxRows data
// rows. The reader is deliberately tolerant: quoting is lazy, leading space
// is trimmed, and rows whose field count differs from the header are skipped
// rather than failing the sample.
func parseSample(raw []byte, maxRows int) (header []string, rows [][]string, err error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err = r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	header = stripBOM(header)

	for len(rows) < maxRows {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue // half-quoted garbage inside a trimmed sample
		}
		if len(rec) != len(header) {
			continue
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

// stripBOM drops a UTF-8 byte order mark from the first header cell. The TLC
// zone lookup ships one.
func stripBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return header
}

// inferTypes types each header column from its sampled values.
func inferTypes(header []string, rows [][]string) []schema.Type {
	types := make([]schema.Type, len(header))
	values := make([]string, 0, len(rows))
	for i := range header {
		values = values[:0]
		for _, r := range rows {
			values = append(values, r[i])
		}
		types[i] = inferColumnType(values)
	}
	return types
}

// inferColumnType returns the narrowest type that every non-empty value in
// the column satisfies, checked integer, then decimal, then timestamp.
// Columns with no non-empty samples fall back to text, as does anything
// mixed.
//
// The order matters: "20250101" is an integer before it is a date, and
// "12.30" is a decimal before a day.month reading gets a chance. A value the
// narrower parser accepts never reaches a wider one.
func inferColumnType(values []string) schema.Type {
	seen := false
	allInt, allDec, allTS := true, true, true
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen = true
		if allInt && !isInteger(v) {
			allInt = false
		}
		if allDec && !isDecimal(v) {
			allDec = false
		}
		if allTS && !isTimestamp(v) {
			allTS = false
		}
		if !allInt && !allDec && !allTS {
			break
		}
	}
	switch {
	case !seen:
		return schema.TypeText
	case allInt:
		return schema.TypeInteger
	case allDec:
		return schema.TypeDecimal
	case allTS:
		return schema.TypeTimestamp
	default:
		return schema.TypeText
	}
}

func isInteger(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isDecimal accepts anything ParseFloat does except the infinity and NaN
// spellings, which are never amount or distance columns.
func isDecimal(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// isTimestamp delegates to the same parser the caster uses, so a column the
// probe calls timestamp is one the loader will actually accept.
func isTimestamp(s string) bool {
	_, err := dateparse.ParseAny(s)
	return err == nil
}
