package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

type Migration struct {
	Version int
	Name    string
	Up      string
}

// Schema is applied in order; each entry runs in its own transaction and is
// recorded in schema_migrations so restarts are no-ops.
var Schema = []Migration{
	{
		Version: 1,
		Name:    "create_users",
		Up: `
			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		Version: 2,
		Name:    "create_password_resets",
		Up: `
			CREATE TABLE IF NOT EXISTS password_resets (
				email TEXT NOT NULL,
				token TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				expires_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_password_resets_email_token
				ON password_resets (email, token, created_at DESC)
		`,
	},
	{
		Version: 3,
		Name:    "create_profiles",
		Up: `
			CREATE TABLE IF NOT EXISTS profiles (
				id UUID PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL,
				cpf TEXT NOT NULL,
				telefone TEXT NOT NULL,
				avatar_url TEXT NOT NULL DEFAULT ''
			)
		`,
	},
	{
		Version: 4,
		Name:    "create_points",
		Up: `
			CREATE TABLE IF NOT EXISTS points (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL,
				points INTEGER NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_points_user_id ON points (user_id)
		`,
	},
}

func RunMigrations(db *sql.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, m := range Schema {
		if applied[m.Version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.Name, err)
		}
		log.Printf("Applied migration: %s", m.Name)
	}

	return nil
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func getAppliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func applyMigration(db *sql.DB, migration Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migration.Up); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES ($1, $2) ON CONFLICT (version) DO NOTHING",
		migration.Version,
		migration.Name,
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
