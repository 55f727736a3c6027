package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jackc/pgx/v5/pgtype"
)

// CoercionError reports a cell value that could not be cast to its column's
// declared type. Rows carrying one are rejected, never silently altered.
type CoercionError struct {
	Column string
	Type   Type
	Value  any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("column %q: cannot cast %v (%T) to %s", e.Column, e.Value, e.Value, e.Type)
}

// Cast converts a raw cell into the canonical Go value for the column's type:
// time.Time for timestamp, int64 for integer, pgtype.Numeric for decimal,
// string for text. nil stays nil; empty and whitespace-only strings become nil
// for every type, matching the bulk loader's NULL treatment.
func (c Column) Cast(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		v = s
	}
	out, ok := castValue(c.Type, v)
	if !ok {
		return nil, &CoercionError{Column: c.Name, Type: c.Type, Value: v}
	}
	return out, nil
}

func castValue(t Type, v any) (any, bool) {
	switch t {
	case TypeTimestamp:
		return castTimestamp(v)
	case TypeInteger:
		return castInteger(v)
	case TypeDecimal:
		return castDecimal(v)
	default:
		return castText(v)
	}
}

// castTimestamp accepts native times, ISO-8601-ish strings (any layout
// dateparse understands) and epoch numbers. Epoch magnitude selects the unit:
// seconds, then milli/micro/nanoseconds as the digits grow.
func castTimestamp(v any) (any, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		t, err := dateparse.ParseAny(x)
		if err != nil {
			return nil, false
		}
		return t, true
	case int64:
		return epochToTime(x), true
	case int32:
		return epochToTime(int64(x)), true
	case int:
		return epochToTime(int64(x)), true
	case float64:
		if math.IsNaN(x) {
			return nil, true
		}
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return nil, false
		}
		return epochToTime(int64(x)), true
	default:
		return nil, false
	}
}

// epochToTime interprets n as a Unix timestamp, picking the unit from its
// magnitude. 1e11 seconds is year 5138, so anything that large is a
// finer-grained unit.
func epochToTime(n int64) time.Time {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e17:
		return time.Unix(0, n).UTC()
	case abs >= 1e14:
		return time.UnixMicro(n).UTC()
	case abs >= 1e11:
		return time.UnixMilli(n).UTC()
	default:
		return time.Unix(n, 0).UTC()
	}
}

// castInteger round-trips integers exactly. Floats are accepted only when
// integral (monthly extracts ship counts as doubles); anything lossy fails.
func castInteger(v any) (any, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	case int:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return nil, false
		}
		return int64(x), true
	case uint32:
		return int64(x), true
	case float64:
		if math.IsNaN(x) {
			return nil, true
		}
		if x != math.Trunc(x) || math.IsInf(x, 0) || x > math.MaxInt64 || x < math.MinInt64 {
			return nil, false
		}
		return int64(x), true
	case float32:
		return castInteger(float64(x))
	case string:
		i, ok := toInt(x)
		if !ok {
			return nil, false
		}
		return i, true
	case bool:
		if x {
			return int64(1), true
		}
		return int64(0), true
	default:
		return nil, false
	}
}

// toInt parses integers quickly and only falls back to float parsing when the
// field contains a '.' (supporting inputs like "42.0").
func toInt(s string) (int64, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	if strings.IndexByte(s, '.') >= 0 {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if f == float64(int64(f)) {
				return int64(f), true
			}
		}
	}
	return 0, false
}

// castDecimal produces an exact pgtype.Numeric (big-integer mantissa plus
// decimal exponent), so values survive load without float rounding drift.
// Floats are rendered shortest-exact first; NaN maps to NULL the way the
// upstream extracts encode missing amounts.
func castDecimal(v any) (any, bool) {
	switch x := v.(type) {
	case string:
		return numericFromString(x)
	case float64:
		if math.IsNaN(x) {
			return nil, true
		}
		if math.IsInf(x, 0) {
			return nil, false
		}
		return numericFromString(strconv.FormatFloat(x, 'f', -1, 64))
	case float32:
		if math.IsNaN(float64(x)) {
			return nil, true
		}
		return numericFromString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case int64:
		var n pgtype.Numeric
		if err := n.Scan(strconv.FormatInt(x, 10)); err != nil {
			return nil, false
		}
		return n, true
	case int32:
		return castDecimal(int64(x))
	case int:
		return castDecimal(int64(x))
	case uint64:
		return numericFromString(strconv.FormatUint(x, 10))
	default:
		return nil, false
	}
}

func numericFromString(s string) (any, bool) {
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return nil, false
	}
	return n, true
}

// NumericString renders n as plain decimal text ("12.30", "-0.50"). pgx
// encodes Numeric natively on the Postgres wire; backends without a numeric
// wire type (SQLite) bind this representation instead.
func NumericString(n pgtype.Numeric) string {
	if !n.Valid || n.Int == nil {
		return ""
	}
	if n.NaN {
		return "NaN"
	}
	s := n.Int.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	switch {
	case n.Exp > 0:
		s += strings.Repeat("0", int(n.Exp))
	case n.Exp < 0:
		d := int(-n.Exp)
		if len(s) <= d {
			s = strings.Repeat("0", d-len(s)+1) + s
		}
		s = s[:len(s)-d] + "." + s[len(s)-d:]
	}
	if neg {
		s = "-" + s
	}
	return s
}

// castText passes strings through and formats other scalars explicitly, so a
// text column never depends on fmt's default rendering.
func castText(v any) (any, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case bool:
		return strconv.FormatBool(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int:
		return strconv.FormatInt(int64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float64:
		if math.IsNaN(x) {
			return nil, true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case time.Time:
		return x.Format(time.RFC3339), true
	default:
		return nil, false
	}
}
