package ddl

import (
	"context"
	"fmt"

	gddl "nytaxi/internal/ddl"
	"nytaxi/internal/storage"
)

// RecreateTable drops any existing table matching def and creates a fresh,
// empty one, making repeated loads idempotent.
func RecreateTable(ctx context.Context, repo storage.Repository, def gddl.TableDef) error {
	drop, err := BuildDropTableSQL(def)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, drop); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}

	create, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}
