// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories and DDL bootstrappers with the
// storage package.
//
// In other words, importing this package makes the following storage kinds
// available at runtime:
//
//   - "postgres" (nytaxi/internal/storage/postgres)
//   - "sqlite"   (nytaxi/internal/storage/sqlite)
//
// Typical usage (in cmd/ingest/main.go or a similar wiring layer):
//
//	import (
//	    _ "nytaxi/internal/storage/all" // enable all built-in backends
//
//	    "nytaxi/internal/storage"
//	)
//
//	repo, err := storage.New(ctx, storage.Config{
//	    Kind:    cfg.Storage.Kind,
//	    DSN:     cfg.Storage.DSN(),
//	    Table:   ds.Table,
//	    Columns: ds.Schema.Names(),
//	})
//
// A binary that supports only a subset of backends can import the required
// backend packages directly instead of this one.
package all

import (
	_ "nytaxi/internal/storage/postgres"
	_ "nytaxi/internal/storage/sqlite"
)
