package ddl

import "nytaxi/internal/schema"

// MapType maps a declared column type into a SQLite column type.
//
// SQLite types are affinities rather than strict types, so the mapping
// prefers canonical choices:
//
//	timestamp -> TEXT ("YYYY-MM-DD HH:MM:SS" UTC, how the repository binds
//	             time values)
//	integer   -> INTEGER
//	decimal   -> NUMERIC
//	text      -> TEXT
func MapType(t schema.Type) string {
	switch t {
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeDecimal:
		return "NUMERIC"
	case schema.TypeTimestamp:
		return "TEXT"
	default:
		return "TEXT"
	}
}
