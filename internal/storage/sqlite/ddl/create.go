// Package ddl provides SQLite-specific helpers for generating the DDL a
// drop-and-recreate load needs, from the generic ddl.TableDef model.
//
// The builder here:
//   - Uses simple double-quoted identifiers: "table", "col".
//   - Quotes at render time; FromSchema keeps names unquoted in the model.
package ddl

import (
	"fmt"
	"strings"

	gddl "nytaxi/internal/ddl"
	"nytaxi/internal/schema"
)

// FromSchema turns a table name plus a declared schema into a generic
// ddl.TableDef using the SQLite type mapping. Names stay unquoted; the
// builders below quote them. All columns are nullable because cells may be
// empty in the source files and missing optional columns arrive null-filled.
func FromSchema(table string, sch schema.Schema) (gddl.TableDef, error) {
	if strings.TrimSpace(table) == "" {
		return gddl.TableDef{}, fmt.Errorf("sqlite ddl: table name is required")
	}
	if len(sch) == 0 {
		return gddl.TableDef{}, fmt.Errorf("sqlite ddl: schema must not be empty")
	}

	defs := make([]gddl.ColumnDef, 0, len(sch))
	for _, col := range sch {
		defs = append(defs, gddl.ColumnDef{
			Name:     col.Name,
			SQLType:  MapType(col.Type),
			Nullable: true,
		})
	}

	return gddl.TableDef{FQN: table, Columns: defs}, nil
}

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for the given
// table definition. The statement has the form:
//
//	CREATE TABLE "table" (
//	  "col1" TYPE,
//	  "col2" TYPE
//	);
//
// TableDef.FQN is interpreted as a table name; if it contains dots (e.g.,
// "main.taxi_zones"), each segment is individually quoted.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("sqlite ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("sqlite ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("sqlite ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("sqlite ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(quoteIdent(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}

		cols = append(cols, sb.String())
	}

	stmt := fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n);",
		quoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	)
	return stmt, nil
}

// BuildDropTableSQL returns the matching DROP TABLE IF EXISTS statement.
func BuildDropTableSQL(t gddl.TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("sqlite ddl: table FQN must not be empty")
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteFQN(fqn)), nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quoteIdent(p))
	}
	return strings.Join(out, ".")
}
