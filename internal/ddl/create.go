// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render the statements a drop-and-recreate load needs: DROP TABLE and
// CREATE TABLE.
//
// The package stays generic: it does not assume any specific SQL dialect.
// In particular, it:
//
//   - Does not quote identifiers; it emits TableDef.FQN and ColumnDef.Name as-is.
//     Backends that need quoting quote the names before building the TableDef,
//     or wrap these builders with their own.
//   - Relies only on clauses every supported dialect accepts (DROP TABLE
//     IF EXISTS is understood by Postgres and SQLite alike).
//
// Backend-specific packages (internal/storage/postgres/ddl,
// internal/storage/sqlite/ddl) adapt this model to their dialect.
package ddl

import (
	"fmt"
	"strings"
)

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// Rules:
//
//   - t.FQN must be non-empty; it is emitted verbatim as the table name.
//
//   - Each column must have a non-empty Name and SQLType.
//
//   - A column is rendered as:
//
//     <Name> <SQLType> [NOT NULL]
//
//     where NOT NULL is added when Nullable == false.
//
// The resulting statement has the form:
//
//	CREATE TABLE <FQN> (
//	  <col1-def>,
//	  <col2-def>,
//	  ...
//	);
func BuildCreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(name)
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}

		cols = append(cols, sb.String())
	}

	stmt := fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n);",
		fqn,
		strings.Join(cols, ",\n  "),
	)

	return stmt, nil
}

// BuildDropTableSQL renders the DROP TABLE IF EXISTS statement for t. The
// IF EXISTS guard makes the statement safe on the first run, when the landing
// table does not exist yet.
func BuildDropTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", fqn), nil
}
