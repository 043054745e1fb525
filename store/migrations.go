package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// A migration mutates the schema of an existing database. The base schema is
// applied separately on open, so version 1 is a marker row and fresh databases
// record every version without re-running the DDL.
type migration struct {
	version     int
	description string
	apply       func(ctx context.Context, tx *sql.Tx) error
}

// Append-only. Released versions must never be edited.
var migrations = []migration{
	{
		version:     1,
		description: "base schema",
		apply:       func(ctx context.Context, tx *sql.Tx) error { return nil },
	},
	{
		version:     2,
		description: "add refused flag to query_log",
		apply: func(ctx context.Context, tx *sql.Tx) error {
			// Fresh databases already have the column from the base schema,
			// so the ALTER is allowed to fail.
			_, err := tx.ExecContext(ctx,
				"ALTER TABLE query_log ADD COLUMN refused INTEGER DEFAULT 0")
			if err != nil {
				slog.Debug("refused column already present", "error", err)
			}
			return nil
		},
	},
	{
		version:     3,
		description: "add lifecycle status and version to chunks",
		apply: func(ctx context.Context, tx *sql.Tx) error {
			for _, ddl := range []string{
				"ALTER TABLE chunks ADD COLUMN lifecycle_status TEXT NOT NULL DEFAULT 'active'",
				"ALTER TABLE chunks ADD COLUMN version INTEGER NOT NULL DEFAULT 1",
			} {
				if _, err := tx.ExecContext(ctx, ddl); err != nil {
					slog.Debug("lifecycle column already present", "error", err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database up to the latest schema version.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
		slog.Info("schema migrated", "version", m.version, "description", m.description)
	}
	return nil
}

func (s *Store) applyMigration(ctx context.Context, m migration) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := m.apply(ctx, tx); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_version (version, description) VALUES (?, ?)",
			m.version, m.description); err != nil {
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		return nil
	})
}
