// Package storage contains storage-agnostic contracts and utilities: the
// Repository interface every backend implements, a factory keyed by storage
// kind, a DDL bootstrap registry, and a generic batched loader.
//
// Backends (Postgres, SQLite) live in subpackages and register themselves at
// init time; importing internal/storage/all wires in every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is the minimal surface a load needs from a database backend:
// bulk insert, raw DDL execution, row counting for verification, and cleanup.
type Repository interface {
	// CopyFrom bulk-inserts rows (aligned to the columns order) into the
	// configured table and returns the number of rows the backend reports
	// as inserted. Implementations use their most efficient primitive
	// (Postgres COPY, SQLite transactional multi-row INSERT).
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec executes an arbitrary SQL statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Count returns SELECT COUNT(*) for the named table.
	Count(ctx context.Context, table string) (int64, error)

	// Close releases the underlying connection or pool.
	Close()
}

// Config carries everything a backend factory needs to open a Repository.
type Config struct {
	// Kind selects the backend: "postgres" or "sqlite".
	Kind string

	// DSN is the backend connection string.
	DSN string

	// Table is the target landing table, possibly schema-qualified for
	// backends that support schemas (e.g., "public.yellow_taxi_trips").
	Table string

	// Columns is the ordered list of destination columns for CopyFrom.
	Columns []string
}

// Factory constructs a Repository for a storage kind. Backend packages
// register their factory in init().
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	facMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for the given storage kind.
// It is typically called from backend packages' init() functions; tests may
// re-register a kind to substitute fakes.
func Register(kind string, fn Factory) {
	facMu.Lock()
	defer facMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository using the factory registered for cfg.Kind. Callers
// stay backend-agnostic: the same code path loads into Postgres in production
// and into SQLite in tests.
func New(ctx context.Context, cfg Config) (Repository, error) {
	facMu.RLock()
	fn, ok := factories[cfg.Kind]
	facMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered storage kinds.
// Mutating the returned slice does not affect the registry.
func ListKinds() []string {
	facMu.RLock()
	defer facMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
