package storage

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"nytaxi/internal/schema"
)

// fakeRepo is a minimal Repository implementation for tests. It records every
// Exec statement so DDL bootstrap behavior can be asserted.
type fakeRepo struct {
	execs  []string
	closed bool
}

func (f *fakeRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(ctx context.Context, sql string) error {
	f.execs = append(f.execs, sql)
	return nil
}

func (f *fakeRepo) Count(ctx context.Context, table string) (int64, error) { return 0, nil }

func (f *fakeRepo) Close() { f.closed = true }

// TestRegisterAndNew_Success verifies that registering a backend enables New()
// to return the corresponding repository.
func TestRegisterAndNew_Success(t *testing.T) {
	t.Parallel()

	kind := "fake"
	var gotCfg Config
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		gotCfg = cfg
		return &fakeRepo{}, nil
	})

	cfg := Config{Kind: kind, DSN: "dsn://x", Table: "taxi_zones", Columns: []string{"locationid"}}
	repo, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if repo == nil {
		t.Fatalf("New returned nil repo")
	}
	if !reflect.DeepEqual(gotCfg, cfg) {
		t.Fatalf("factory received cfg %+v, want %+v", gotCfg, cfg)
	}

	// Ensure ListKinds contains the registered kind.
	kinds := ListKinds()
	found := false
	for _, k := range kinds {
		if k == kind {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("registered kind %q not present in ListKinds: %v", kind, kinds)
	}
}

// TestNew_Unsupported verifies that unsupported kinds return a helpful error.
func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
	if got, want := err.Error(), "unsupported storage.kind=does-not-exist"; got != want {
		t.Fatalf("error = %q, want %q", got, want)
	}
}

// TestRegister_Override verifies that re-registering a kind overrides the
// previous factory (useful for tests and dynamic wiring).
func TestRegister_Override(t *testing.T) {
	t.Parallel()

	kind := "override"
	calls := 0

	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls++
		return &fakeRepo{}, nil
	})
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls += 10
		return &fakeRepo{}, nil
	})

	_, err := New(context.Background(), Config{Kind: kind})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if calls != 10 { // only the second factory should have been used
		t.Fatalf("factory call count = %d, want 10", calls)
	}
}

// TestListKinds_Snapshot performs a shallow sanity check that ListKinds returns
// a copy (mutations by caller do not affect internal registry).
func TestListKinds_Snapshot(t *testing.T) {
	t.Parallel()

	k := "snap"
	Register(k, func(ctx context.Context, cfg Config) (Repository, error) { return &fakeRepo{}, nil })

	a := ListKinds()
	if len(a) == 0 {
		t.Fatalf("ListKinds empty after registration")
	}
	// Mutate the returned slice; registry should be unaffected.
	a[0] = "mutated"

	b := ListKinds()
	if reflect.DeepEqual(a, b) {
		t.Fatalf("ListKinds returned same slice; want snapshot copy")
	}
}

// TestRegister_AllowsErrors shows factories can return errors that bubble up.
func TestRegister_AllowsErrors(t *testing.T) {
	t.Parallel()

	kind := "errkind"
	want := errors.New("boom")

	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		return nil, want
	})

	_, err := New(context.Background(), Config{Kind: kind})
	if !errors.Is(err, want) {
		t.Fatalf("want %v, got %v", want, err)
	}
}

// TestRecreateTable_Dispatch verifies the kind-keyed DDL registry routes to
// the registered bootstrapper with the caller's table and schema.
func TestRecreateTable_Dispatch(t *testing.T) {
	t.Parallel()

	sch := schema.Schema{{Name: "locationid", Type: schema.TypeInteger}}
	var gotTable string
	var gotCols int
	RegisterDDL("fake-ddl", func(ctx context.Context, repo Repository, table string, s schema.Schema) error {
		gotTable = table
		gotCols = len(s)
		return repo.Exec(ctx, "DROP TABLE IF EXISTS "+table+";")
	})

	repo := &fakeRepo{}
	if err := RecreateTable(context.Background(), "fake-ddl", repo, "taxi_zones", sch); err != nil {
		t.Fatalf("RecreateTable error: %v", err)
	}
	if gotTable != "taxi_zones" || gotCols != 1 {
		t.Fatalf("bootstrapper got table=%q cols=%d, want taxi_zones/1", gotTable, gotCols)
	}
	if len(repo.execs) != 1 || !strings.Contains(repo.execs[0], "DROP TABLE") {
		t.Fatalf("exec log %v, want one DROP TABLE statement", repo.execs)
	}
}

// TestRecreateTable_UnknownKind verifies the error for unregistered kinds.
func TestRecreateTable_UnknownKind(t *testing.T) {
	t.Parallel()

	err := RecreateTable(context.Background(), "no-such-kind", &fakeRepo{}, "t", schema.Schema{})
	if err == nil {
		t.Fatal("expected error for unregistered DDL kind")
	}
	if !strings.Contains(err.Error(), `storage.kind="no-such-kind"`) {
		t.Fatalf("error %q does not name the kind", err)
	}
}

// TestClassOf checks classification extraction from wrapped errors.
func TestClassOf(t *testing.T) {
	t.Parallel()

	inner := errors.New("null value in column")
	err := &Error{Class: ClassConstraint, Op: "copy", Err: inner}

	if got := ClassOf(err); got != ClassConstraint {
		t.Fatalf("ClassOf = %v, want ClassConstraint", got)
	}
	wrapped := errors.New("outer: " + err.Error())
	if got := ClassOf(wrapped); got != ClassOther {
		t.Fatalf("ClassOf on unrelated error = %v, want ClassOther", got)
	}
	if !errors.Is(err, inner) {
		t.Fatal("Error.Unwrap should expose the inner error")
	}
	if msg := err.Error(); !strings.Contains(msg, "constraint") || !strings.Contains(msg, "copy") {
		t.Fatalf("Error() = %q, want op and class named", msg)
	}
}
