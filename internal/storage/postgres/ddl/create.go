package ddl

import (
	"fmt"
	"strings"

	gddl "nytaxi/internal/ddl"
	"nytaxi/internal/schema"
)

// FromSchema turns a table name plus a declared schema into a generic
// ddl.TableDef with Postgres quoting already applied to every identifier.
// All columns are nullable: cells may legitimately be empty in the source
// files, and missing optional columns are null-filled upstream.
func FromSchema(table string, sch schema.Schema) (gddl.TableDef, error) {
	if strings.TrimSpace(table) == "" {
		return gddl.TableDef{}, fmt.Errorf("postgres ddl: table name is required")
	}
	if len(sch) == 0 {
		return gddl.TableDef{}, fmt.Errorf("postgres ddl: schema must not be empty")
	}

	defs := make([]gddl.ColumnDef, 0, len(sch))
	for _, col := range sch {
		defs = append(defs, gddl.ColumnDef{
			Name:     quoteIdent(col.Name),
			SQLType:  MapType(col.Type),
			Nullable: true,
		})
	}

	return gddl.TableDef{
		FQN:     quoteFQN(table),
		Columns: defs,
	}, nil
}

// BuildCreateTableSQL returns a Postgres CREATE TABLE statement for the given
// table definition. It is a thin wrapper over the generic ddl implementation;
// FromSchema has already applied Postgres-compatible quoting to the names.
var BuildCreateTableSQL = gddl.BuildCreateTableSQL

// BuildDropTableSQL returns the matching DROP TABLE IF EXISTS statement.
var BuildDropTableSQL = gddl.BuildDropTableSQL

// quoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	quoteIdent(`vendorid`)    => `"vendorid"`
//	quoteIdent(`weird"name`)  => `"weird""name"`
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// quoteFQN quotes a possibly schema-qualified name like "public.taxi_zones"
// to `"public"."taxi_zones"`. Empty segments are ignored.
func quoteFQN(f string) string {
	parts := strings.Split(f, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(p))
	}
	return strings.Join(out, ".")
}
