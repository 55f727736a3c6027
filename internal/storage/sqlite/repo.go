// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. It performs batched INSERTs inside a transaction; SQLite does
// not have a dedicated bulk-load API like Postgres COPY, but transactions
// keep performance acceptable for moderate volumes. The backend doubles as
// the hermetic test target for the pipeline: every load path that works here
// works against Postgres with only the DSN changed.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	_ "modernc.org/sqlite" // cgo-free SQLite driver

	"nytaxi/internal/schema"
	"nytaxi/internal/storage"
)

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:taxi.db?cache=shared"
//	"taxi.db"
//	":memory:"
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, &storage.Error{Class: storage.ClassConnection, Op: "connect", Err: fmt.Errorf("sqlite: DSN must not be empty")}
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, &storage.Error{Class: storage.ClassConnection, Op: "connect", Err: fmt.Errorf("sqlite: open: %w", err)}
	}

	// Apply a basic ping with context to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, &storage.Error{Class: storage.ClassConnection, Op: "connect", Err: fmt.Errorf("sqlite: ping: %w", err)}
	}

	// A :memory: database lives per-connection; more than one open
	// connection would each see their own empty database.
	db.SetMaxOpenConns(1)

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// CopyFrom inserts the given rows into the configured table using a single
// transaction and a prepared INSERT statement.
//
// It returns the number of rows successfully inserted or an error. The
// columns slice must match the configured table columns, and len(row) must
// equal len(columns) for every row.
func (r *Repository) CopyFrom(
	ctx context.Context,
	columns []string,
	rows [][]any,
) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	// Build INSERT INTO <table> (<cols>) VALUES (?, ?, ...).
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = sqlIdent(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		sqlIdent(r.cfg.Table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify("copy", fmt.Errorf("sqlite: begin tx: %w", err))
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, classify("copy", fmt.Errorf("sqlite: prepare insert: %w", err))
	}
	defer stmt.Close()

	var inserted int64
	args := make([]any, len(columns))
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		for i, v := range row {
			args[i] = bindValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return 0, classify("copy", fmt.Errorf("sqlite: insert: %w", err))
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, classify("copy", fmt.Errorf("sqlite: commit: %w", err))
	}
	return inserted, nil
}

// Exec executes an arbitrary SQL statement (typically DDL) using the
// underlying database/sql connection.
func (r *Repository) Exec(ctx context.Context, sqlStmt string) error {
	if strings.TrimSpace(sqlStmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlStmt); err != nil {
		return classify("exec", fmt.Errorf("sqlite: exec: %w", err))
	}
	return nil
}

// Count implements storage.Repository.Count.
func (r *Repository) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+sqlIdent(table)).Scan(&n); err != nil {
		return 0, classify("count", fmt.Errorf("sqlite: count: %w", err))
	}
	return n, nil
}

// bindValue converts canonical typed values into forms database/sql can bind
// for SQLite. Timestamps land as "YYYY-MM-DD HH:MM:SS" UTC text and decimals
// as plain decimal strings; SQLite's affinity rules keep both comparable and
// aggregatable.
func bindValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04:05")
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		return schema.NumericString(x)
	default:
		return v
	}
}

// classify wraps driver errors as storage.Error. SQLite reports integrity
// failures with "constraint failed" in the message; there is no SQLSTATE to
// inspect, so the match is textual.
func classify(op string, err error) error {
	class := storage.ClassOther
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "constraint"):
		class = storage.ClassConstraint
	case strings.Contains(msg, "unable to open"), strings.Contains(msg, "database is locked"):
		class = storage.ClassConnection
	case strings.Contains(msg, "datatype mismatch"):
		class = storage.ClassCoercion
	}
	return &storage.Error{Class: class, Op: op, Err: err}
}

// sqlIdent quotes a possibly dotted identifier ("main.taxi_zones") segment by
// segment with SQLite double-quote rules.
func sqlIdent(name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, `"`+strings.ReplaceAll(p, `"`, `""`)+`"`)
	}
	return strings.Join(out, ".")
}
