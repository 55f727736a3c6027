package storage

import (
	"context"
	"fmt"
	"sync"

	"nytaxi/internal/schema"
)

// DDLBootstrapper is a backend-specific function that resets a landing table:
// it drops any existing table of that name and creates a fresh one whose
// columns follow the declared schema, using the backend's type mapping.
//
// Backends register their implementation for a given storage kind (e.g.,
// "postgres") at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string, sch schema.Schema) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given storage
// kind. It is typically called from backend packages' init() functions.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// RecreateTable locates the DDLBootstrapper for the given kind and invokes
// it. Dropping before creating makes reruns idempotent: a second load of the
// same dataset replaces the table contents instead of appending to them.
//
// If no DDL bootstrapper has been registered for the storage kind, an error
// is returned.
func RecreateTable(ctx context.Context, kind string, repo Repository, table string, sch schema.Schema) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, table, sch)
}
