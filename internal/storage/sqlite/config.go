package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:taxi.db?cache=shared"
	//   "taxi.db"
	//   ":memory:"
	DSN string

	// Table is the target table name for inserts, e.g. "taxi_zones".
	// SQLite does not use schemas the way Postgres does; dotted values such
	// as "main.taxi_zones" are still accepted and quoted per segment.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}
