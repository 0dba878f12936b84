package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: users, sessions, receipts, subscriptions",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					email TEXT UNIQUE NOT NULL,
					password_hash TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS sessions (
					token TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					expires_at DATETIME NOT NULL,
					FOREIGN KEY (user_id) REFERENCES users(id)
				)`,
				`CREATE INDEX idx_sessions_user ON sessions(user_id)`,

				`CREATE TABLE IF NOT EXISTS receipts (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					title TEXT NOT NULL,
					note TEXT NOT NULL DEFAULT '',
					date DATETIME NOT NULL,
					total_cost REAL NOT NULL DEFAULT 0,
					category TEXT NOT NULL DEFAULT '',
					subcategory TEXT NOT NULL DEFAULT '',
					account TEXT NOT NULL DEFAULT '',
					repeating INTEGER NOT NULL DEFAULT 0,
					completed INTEGER NOT NULL DEFAULT 0,
					path_to_img TEXT NOT NULL DEFAULT '',
					subscription_id TEXT,
					date_added_to_db DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (user_id) REFERENCES users(id)
				)`,

				`CREATE TABLE IF NOT EXISTS subscriptions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					receipt_id TEXT NOT NULL,
					repeating_day INTEGER NOT NULL DEFAULT 0,
					repeating_week INTEGER NOT NULL DEFAULT 0,
					repeating_month INTEGER NOT NULL DEFAULT 0,
					repeating_year INTEGER NOT NULL DEFAULT 0,
					end_date DATETIME NOT NULL,
					last_run DATETIME NOT NULL,
					next_run DATETIME NOT NULL,
					active INTEGER NOT NULL DEFAULT 1,
					FOREIGN KEY (user_id) REFERENCES users(id),
					FOREIGN KEY (receipt_id) REFERENCES receipts(id)
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add profiles table for categories, accounts, and settings",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS profiles (
					user_id TEXT PRIMARY KEY,
					theme TEXT NOT NULL DEFAULT '',
					settings TEXT NOT NULL DEFAULT '{}',
					categories TEXT NOT NULL DEFAULT '{}',
					accounts_and_cards TEXT NOT NULL DEFAULT '{}',
					FOREIGN KEY (user_id) REFERENCES users(id)
				)
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Add listing indexes for both sort keys",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_receipts_user_date ON receipts(user_id, completed, date DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_receipts_user_added ON receipts(user_id, completed, date_added_to_db DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(user_id, active)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query %q: %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		slog.Info("applying migration", "version", m.Version, "description", m.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
	}

	final, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("database at schema version %d, expected %d", final, ExpectedSchemaVersion)
	}

	return nil
}

func (s *SQLiteStorage) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
