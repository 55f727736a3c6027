// This file wires the SQLite backend into the storage factory. Registration
// happens in init, so callers obtain a Repository via storage.New without
// importing this package directly.

package sqlite

import (
	"context"
	"fmt"

	"nytaxi/internal/schema"
	"nytaxi/internal/storage"
	sqliteddl "nytaxi/internal/storage/sqlite/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo adapts *sqlite.Repository to the storage.Repository interface,
// adding a Close method that calls the cleanup function returned by
// NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// Ensure wrappedRepo satisfies the interface at compile time.
var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	// DDL bootstrap registration.
	storage.RegisterDDL("sqlite",
		func(ctx context.Context, repo storage.Repository, table string, sch schema.Schema) error {
			td, err := sqliteddl.FromSchema(table, sch)
			if err != nil {
				return fmt.Errorf("build table definition: %w", err)
			}
			return sqliteddl.RecreateTable(ctx, repo, td)
		})
}
