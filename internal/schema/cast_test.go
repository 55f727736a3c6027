package schema

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// TestCastTimestamp covers the accepted representations: native times,
// ISO-8601 variants, the space-separated layout the trip extracts use, and
// epoch numbers in seconds and milliseconds.
func TestCastTimestamp(t *testing.T) {
	t.Parallel()

	col := Column{Name: "tpep_pickup_datetime", Type: TypeTimestamp}
	want := time.Date(2025, 11, 1, 0, 45, 11, 0, time.UTC)

	cases := []struct {
		name string
		in   any
	}{
		{"native", want},
		{"iso8601", "2025-11-01T00:45:11Z"},
		{"space layout", "2025-11-01 00:45:11"},
		{"epoch seconds string", "1761957911"},
		{"epoch seconds int", int64(1761957911)},
		{"epoch millis int", int64(1761957911000)},
		{"epoch micros int", int64(1761957911000000)},
	}
	for _, tc := range cases {
		got, err := col.Cast(tc.in)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		ts, ok := got.(time.Time)
		if !ok {
			t.Errorf("%s: got %T, want time.Time", tc.name, got)
			continue
		}
		if !ts.Equal(want) {
			t.Errorf("%s: got %v, want %v", tc.name, ts, want)
		}
	}
}

func TestCastTimestampRejectsGarbage(t *testing.T) {
	t.Parallel()

	col := Column{Name: "pickup", Type: TypeTimestamp}
	for _, in := range []any{"not a date", "2025-13-45", []byte("x"), 1.5} {
		if _, err := col.Cast(in); err == nil {
			t.Errorf("Cast(%v): expected error", in)
		}
	}

	var ce *CoercionError
	_, err := col.Cast("never oclock")
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want *CoercionError", err)
	}
	if ce.Column != "pickup" || ce.Type != TypeTimestamp {
		t.Errorf("CoercionError = %+v, want column pickup / timestamp", ce)
	}
}

// TestCastInteger asserts exact round-trips, including the integral-float
// shape parquet extracts use for counts.
func TestCastInteger(t *testing.T) {
	t.Parallel()

	col := Column{Name: "passenger_count", Type: TypeInteger}

	cases := []struct {
		name string
		in   any
		want int64
	}{
		{"int64", int64(9007199254740993), 9007199254740993},
		{"int32", int32(-42), -42},
		{"uint64", uint64(265), 265},
		{"integral float", float64(3), 3},
		{"string", "265", 265},
		{"string float", "2.0", 2},
		{"negative string", "-17", -17},
		{"bool", true, 1},
	}
	for _, tc := range cases {
		got, err := col.Cast(tc.in)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %v (%T), want %d", tc.name, got, got, tc.want)
		}
	}

	for _, in := range []any{"abc", "1.5", 2.5, uint64(math.MaxUint64), time.Now()} {
		if _, err := col.Cast(in); err == nil {
			t.Errorf("Cast(%v): expected error", in)
		}
	}

	// NaN is a missing value upstream, not a coercion failure.
	got, err := col.Cast(nan())
	if err != nil || got != nil {
		t.Errorf("Cast(NaN) = %v, %v; want nil, nil", got, err)
	}
}

// TestCastDecimal asserts exact digit preservation via the numeric mantissa
// and exponent, with no float round-trip in the string path.
func TestCastDecimal(t *testing.T) {
	t.Parallel()

	col := Column{Name: "fare_amount", Type: TypeDecimal}

	cases := []struct {
		name    string
		in      any
		wantInt string
		wantExp int32
	}{
		{"string cents", "12.30", "1230", -2},
		{"string", "4.5", "45", -1},
		{"string whole", "7", "7", 0},
		{"float", float64(1.1), "11", -1},
		{"negative", "-0.50", "-50", -2},
		{"int", int64(120), "120", 0},
		{"uint", uint64(99), "99", 0},
	}
	for _, tc := range cases {
		got, err := col.Cast(tc.in)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		n, ok := got.(pgtype.Numeric)
		if !ok {
			t.Errorf("%s: got %T, want pgtype.Numeric", tc.name, got)
			continue
		}
		if !n.Valid {
			t.Errorf("%s: numeric not valid", tc.name)
			continue
		}
		if n.Int.String() != tc.wantInt || n.Exp != tc.wantExp {
			t.Errorf("%s: got %s e%d, want %s e%d", tc.name, n.Int.String(), n.Exp, tc.wantInt, tc.wantExp)
		}
	}

	for _, in := range []any{"$5", "1,5", time.Now()} {
		if _, err := col.Cast(in); err == nil {
			t.Errorf("Cast(%v): expected error", in)
		}
	}

	got, err := col.Cast(nan())
	if err != nil || got != nil {
		t.Errorf("Cast(NaN) = %v, %v; want nil, nil", got, err)
	}
}

func TestCastText(t *testing.T) {
	t.Parallel()

	col := Column{Name: "store_and_fwd_flag", Type: TypeText}

	cases := []struct {
		in   any
		want string
	}{
		{"N", "N"},
		{[]byte("Y"), "Y"},
		{int64(4), "4"},
		{uint64(18446744073709551615), "18446744073709551615"},
		{float64(2.5), "2.5"},
		{true, "true"},
		{time.Date(2025, 11, 1, 0, 45, 11, 0, time.UTC), "2025-11-01T00:45:11Z"},
	}
	for _, tc := range cases {
		got, err := col.Cast(tc.in)
		if err != nil {
			t.Errorf("Cast(%v): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Cast(%v) = %v, want %q", tc.in, got, tc.want)
		}
	}
}

// TestNumericString renders decimals back to plain text without drift.
func TestNumericString(t *testing.T) {
	t.Parallel()

	col := Column{Name: "fare_amount", Type: TypeDecimal}
	cases := []struct {
		in   any
		want string
	}{
		{"12.30", "12.30"},
		{"-0.50", "-0.50"},
		{"0.00", "0.00"},
		{"4.5", "4.5"},
		{int64(755), "755"},
		{float64(1.1), "1.1"},
	}
	for _, tc := range cases {
		v, err := col.Cast(tc.in)
		if err != nil {
			t.Fatalf("Cast(%v): %v", tc.in, err)
		}
		n, ok := v.(pgtype.Numeric)
		if !ok {
			t.Fatalf("Cast(%v) returned %T, want pgtype.Numeric", tc.in, v)
		}
		if got := NumericString(n); got != tc.want {
			t.Errorf("NumericString(Cast(%v)) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if got := NumericString(pgtype.Numeric{}); got != "" {
		t.Errorf("NumericString(zero) = %q, want empty", got)
	}
}

// TestCastNullish: nil and blank strings become NULL for every type.
func TestCastNullish(t *testing.T) {
	t.Parallel()

	for _, typ := range []Type{TypeText, TypeTimestamp, TypeInteger, TypeDecimal} {
		col := Column{Name: "c", Type: typ}
		for _, in := range []any{nil, "", "   ", "\t"} {
			got, err := col.Cast(in)
			if err != nil {
				t.Errorf("%s Cast(%q): %v", typ, in, err)
				continue
			}
			if got != nil {
				t.Errorf("%s Cast(%q) = %v, want nil", typ, in, got)
			}
		}
	}
}

func nan() float64 { return math.NaN() }
