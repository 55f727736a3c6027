package ddl

// ColumnDef describes a single column of a landing table. The model is
// deliberately small and database-agnostic; backends decide how a logical
// column type maps onto their SQL type before building a ColumnDef.
//
// Fields:
//   - Name: column name (quoting/escaping is the renderer's concern)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, NUMERIC(12,2))
//   - Nullable: whether NULL is allowed. Landing tables are loaded from
//     external files where any cell may be empty, so columns are normally
//     nullable.
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef holds the table name and an ordered list of columns. The FQN may
// be schema-qualified in dotted form (e.g., "public.yellow_taxi_trips");
// renderers quote or pass it through as their dialect requires.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
