package schema

import (
	"encoding/json"
	"testing"
)

func TestParseType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"text", TypeText, false},
		{"string", TypeText, false},
		{"timestamp", TypeTimestamp, false},
		{"datetime", TypeTimestamp, false},
		{"integer", TypeInteger, false},
		{"int", TypeInteger, false},
		{"bigint", TypeInteger, false},
		{"decimal", TypeDecimal, false},
		{"numeric", TypeDecimal, false},
		{"float", TypeDecimal, false},
		{" Timestamp ", TypeTimestamp, false},
		{"uuid", TypeText, true},
		{"", TypeText, true},
	}
	for _, tc := range cases {
		got, err := ParseType(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseType(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseType(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseType(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTypeJSONRoundTrip(t *testing.T) {
	t.Parallel()

	col := Column{Name: "fare_amount", Type: TypeDecimal, Required: true}
	b, err := json.Marshal(col)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Column
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != col {
		t.Errorf("round trip = %+v, want %+v", back, col)
	}

	var bad Column
	if err := json.Unmarshal([]byte(`{"name":"x","type":"uuid"}`), &bad); err == nil {
		t.Error("expected error for unknown type in JSON")
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"LocationID", "locationid"},
		{"tpep_pickup_datetime", "tpep_pickup_datetime"},
		{"Airport_fee", "airport_fee"},
		{"service_zone", "service_zone"},
		{" Borough ", "borough"},
		{"Trip Distance", "trip_distance"},
		{"store-and-fwd.flag", "store_and_fwd_flag"},
		{"Počet vozidel", "pocet_vozidel"},
		{"__x__", "x"},
		{"***", "col"},
		{"", "col"},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSchemaValidate(t *testing.T) {
	t.Parallel()

	good := Schema{
		{Name: "locationid", Type: TypeInteger},
		{Name: "borough", Type: TypeText},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid schema rejected: %v", err)
	}

	cases := []struct {
		name string
		s    Schema
	}{
		{"empty", Schema{}},
		{"empty name", Schema{{Name: "", Type: TypeText}}},
		{"duplicate", Schema{{Name: "a", Type: TypeText}, {Name: "a", Type: TypeInteger}}},
		{"not normalized", Schema{{Name: "LocationID", Type: TypeInteger}}},
	}
	for _, tc := range cases {
		if err := tc.s.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSchemaNames(t *testing.T) {
	t.Parallel()

	s := Schema{
		{Name: "locationid", Type: TypeInteger},
		{Name: "borough", Type: TypeText},
		{Name: "zone", Type: TypeText},
	}
	got := s.Names()
	want := []string{"locationid", "borough", "zone"}
	if len(got) != len(want) {
		t.Fatalf("Names() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
