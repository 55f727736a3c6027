// Package postgres provides a Postgres-backed storage.Repository
// implementation. This adapter wires the Postgres backend into the
// storage-agnostic factory by registering a constructor at init time. The CLI
// (cmd/ingest) and other callers can then obtain a Repository via
// storage.New(...) without importing this package directly.
//
// The adapter also registers a DDL bootstrapper so that callers can recreate
// a landing table based only on storage.Kind, without branching on the
// backend themselves.
package postgres

import (
	"context"
	"fmt"

	"nytaxi/internal/schema"
	"nytaxi/internal/storage"
	pgddl "nytaxi/internal/storage/postgres/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo implements storage.Repository by delegating to the concrete
// *postgres.Repository while providing a Close method that calls the close
// function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Ensure wrappedRepo satisfies storage.Repository at compile time.
var _ storage.Repository = (*wrappedRepo)(nil)

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// init registers the "postgres" backend with the storage factory and a DDL
// bootstrapper for storage.Kind == "postgres". This keeps the wiring in one
// place and allows callers to remain backend-agnostic.
//
// Typical usage:
//
//	repo, err := storage.New(ctx, storage.Config{Kind: "postgres", ...})
//	defer repo.Close()
//
//	if err := storage.RecreateTable(ctx, "postgres", repo, table, sch); err != nil {
//	    // handle DDL error
//	}
func init() {
	// Repository factory registration.
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
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

	// DDL bootstrap registration: map the declared schema to Postgres types
	// and apply drop-and-recreate via the generic Repository.Exec method.
	storage.RegisterDDL("postgres",
		func(ctx context.Context, repo storage.Repository, table string, sch schema.Schema) error {
			td, err := pgddl.FromSchema(table, sch)
			if err != nil {
				return fmt.Errorf("build table definition: %w", err)
			}
			if err := pgddl.RecreateTable(ctx, repo, td); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}
