package ddl

import (
	"strings"
	"testing"

	gddl "nytaxi/internal/ddl"
	"nytaxi/internal/schema"
)

// TestQuoteIdent verifies that quoteIdent applies SQLite-style double-quoted
// identifier quoting and correctly escapes embedded double quotes.
func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "zone", want: `"zone"`},
		{name: "with quote", in: `we"ird`, want: `"we""ird"`},
		{name: "empty", in: "", want: `""`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := quoteIdent(tt.in); got != tt.want {
				t.Fatalf("quoteIdent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestMapType verifies the declared-type to SQLite-affinity mapping.
func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind schema.Type
		want string
	}{
		{schema.TypeInteger, "INTEGER"},
		{schema.TypeDecimal, "NUMERIC"},
		{schema.TypeTimestamp, "TEXT"},
		{schema.TypeText, "TEXT"},
	}
	for _, tt := range tests {
		if got := MapType(tt.kind); got != tt.want {
			t.Errorf("MapType(%v) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

// TestFromSchemaAndBuild renders the full create/drop pair for a
// zone-lookup-shaped schema and asserts the exact statements.
func TestFromSchemaAndBuild(t *testing.T) {
	t.Parallel()

	sch := schema.Schema{
		{Name: "locationid", Type: schema.TypeInteger},
		{Name: "borough", Type: schema.TypeText},
		{Name: "fare_amount", Type: schema.TypeDecimal},
		{Name: "pickup_ts", Type: schema.TypeTimestamp},
	}

	def, err := FromSchema("taxi_zones", sch)
	if err != nil {
		t.Fatalf("FromSchema error: %v", err)
	}
	if def.FQN != "taxi_zones" {
		t.Fatalf("FQN = %q, want unquoted name (builder quotes)", def.FQN)
	}

	create, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL error: %v", err)
	}
	want := "CREATE TABLE \"taxi_zones\" (\n" +
		"  \"locationid\" INTEGER,\n" +
		"  \"borough\" TEXT,\n" +
		"  \"fare_amount\" NUMERIC,\n" +
		"  \"pickup_ts\" TEXT\n" +
		");"
	if create != want {
		t.Fatalf("create =\n%s\nwant:\n%s", create, want)
	}

	drop, err := BuildDropTableSQL(def)
	if err != nil {
		t.Fatalf("BuildDropTableSQL error: %v", err)
	}
	if want := `DROP TABLE IF EXISTS "taxi_zones";`; drop != want {
		t.Fatalf("drop = %q, want %q", drop, want)
	}
}

// TestBuildCreateTableSQL_Errors covers invalid table definitions.
func TestBuildCreateTableSQL_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		def         gddl.TableDef
		errContains string
	}{
		{
			name:        "empty FQN",
			def:         gddl.TableDef{Columns: []gddl.ColumnDef{{Name: "a", SQLType: "TEXT"}}},
			errContains: "FQN must not be empty",
		},
		{
			name:        "no columns",
			def:         gddl.TableDef{FQN: "t"},
			errContains: "at least one column",
		},
		{
			name:        "empty column name",
			def:         gddl.TableDef{FQN: "t", Columns: []gddl.ColumnDef{{Name: " ", SQLType: "TEXT"}}},
			errContains: "column with empty name",
		},
		{
			name:        "empty column type",
			def:         gddl.TableDef{FQN: "t", Columns: []gddl.ColumnDef{{Name: "a"}}},
			errContains: "missing SQLType",
		},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := BuildCreateTableSQL(tt.def)
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Fatalf("error = %v, want substring %q", err, tt.errContains)
			}
		})
	}
}

// TestFromSchema_Invalid covers the guard clauses.
func TestFromSchema_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := FromSchema("", schema.Schema{{Name: "a", Type: schema.TypeText}}); err == nil {
		t.Fatal("empty table: expected error")
	}
	if _, err := FromSchema("t", nil); err == nil {
		t.Fatal("empty schema: expected error")
	}
}
