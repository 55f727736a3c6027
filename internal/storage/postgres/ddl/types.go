// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import "nytaxi/internal/schema"

// MapType maps a declared column type onto the Postgres type used for
// landing tables.
//
//	timestamp -> TIMESTAMP
//	integer   -> BIGINT
//	decimal   -> NUMERIC(12,2)
//	text      -> TEXT
//
// BIGINT leaves headroom for identifier-style integers; NUMERIC(12,2) covers
// every money column in the trip data and rounds half-up server-side, which
// keeps fares free of binary-float drift.
func MapType(t schema.Type) string {
	switch t {
	case schema.TypeTimestamp:
		return "TIMESTAMP"
	case schema.TypeInteger:
		return "BIGINT"
	case schema.TypeDecimal:
		return "NUMERIC(12,2)"
	default:
		return "TEXT"
	}
}
