package ledger

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the
// schema changes; stale databases must be re-collected.
const schemaVersion = 1

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete the ledger and re-run collect)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// DebugSetSchemaVersion overwrites the recorded schema version so
// tests can exercise the mismatch path.
func (s *Store) DebugSetSchemaVersion(ctx context.Context, version int) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE schema_version SET version = ?", version); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// CheckInventoryColumns validates that the inventory table carries
// exactly the expected 14 ledger columns, in order, between the id and
// created_at bookkeeping columns. A mismatch is fatal for the run.
func (s *Store) CheckInventoryColumns(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info('inventory') ORDER BY cid")
	if err != nil {
		return fmt.Errorf("read inventory columns: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan column name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read inventory columns: %w", err)
	}

	want := len(inventoryColumns) + 2 // id + ledger columns + created_at
	if len(names) != want || names[0] != "id" || names[len(names)-1] != "created_at" {
		return fmt.Errorf("%w: found %v", ErrColumnMismatch, names)
	}
	for i, column := range inventoryColumns {
		if names[i+1] != column {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrColumnMismatch, i+1, names[i+1], column)
		}
	}
	return nil
}
