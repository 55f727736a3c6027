// Package postgres implements a Postgres repository using pgx v5. Bulk
// inserts go through the COPY protocol, which is the fastest way to land
// large trip files; DDL and counting use plain Exec/QueryRow on the pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nytaxi/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN     string   // connection string for pgxpool
	Table   string   // possibly schema-qualified target table, e.g. "public.yellow_taxi_trips"
	Columns []string // ordered columns for COPY
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup. The pool is pinged before use so that an unreachable server or a
// bad DSN fails here, classified as a connection error, rather than at the
// first COPY.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, &storage.Error{Class: storage.ClassConnection, Op: "connect", Err: fmt.Errorf("pgxpool: %w", err)}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, &storage.Error{Class: storage.ClassConnection, Op: "connect", Err: err}
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// CopyFrom implements storage.Repository.CopyFrom via the COPY protocol.
// Values must already be typed (int64, time.Time, pgtype.Numeric, string, or
// nil); pgx encodes them in binary form.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	n, err := r.pool.CopyFrom(ctx, splitFQN(r.cfg.Table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, classify("copy", err)
	}
	return n, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return classify("exec", err)
	}
	return nil
}

// Count implements storage.Repository.Count.
func (r *Repository) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+pgFQN(table)).Scan(&n); err != nil {
		return 0, classify("count", err)
	}
	return n, nil
}

// classify wraps a pgx error as a storage.Error. Postgres reports the failure
// category in the SQLSTATE class: 08 is a connection exception, 22 a data
// exception (value rejected for the column type), 23 an integrity constraint
// violation. When the server attached detail, it is folded into the message
// because the generic error text ("invalid input syntax ...") rarely names
// the offending value.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		class := storage.ClassOther
		switch {
		case strings.HasPrefix(pgErr.Code, "08"):
			class = storage.ClassConnection
		case strings.HasPrefix(pgErr.Code, "22"):
			class = storage.ClassCoercion
		case strings.HasPrefix(pgErr.Code, "23"):
			class = storage.ClassConstraint
		}
		if pgErr.Detail != "" {
			return &storage.Error{
				Class: class,
				Op:    op,
				Err:   fmt.Errorf("%s: %s (%s)", pgErr.Message, pgErr.Detail, pgErr.SQLState()),
			}
		}
		return &storage.Error{Class: class, Op: op, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &storage.Error{Class: storage.ClassConnection, Op: op, Err: err}
	}
	return &storage.Error{Class: storage.ClassOther, Op: op, Err: err}
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.taxi_zones" to
// "public"."taxi_zones". If no dot is present, returns a single quoted ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, pgIdent(p))
	}
	return strings.Join(out, ".")
}
