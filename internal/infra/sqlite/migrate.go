// Migration runner for the invocation log schema.
// Uses embed.FS so the binary carries its own SQL (zero runtime file deps);
// applied versions are tracked in schema_migrations (idempotent by design).
package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

// MigrateUp applies all pending *.up.sql migrations in filename order.
// Already-applied versions are skipped; each migration runs in its own
// transaction.
func MigrateUp(db *sql.DB) error {
	if err := ensureMigrationsTable(db); err != nil {
		return fmt.Errorf("migrate: ensure migrations table: %w", err)
	}

	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("migrate: read embedded dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	// Lexicographic = numeric order for the 001_, 002_, ... prefix.
	sort.Strings(names)

	for _, name := range names {
		version := versionFromFilename(name)

		applied, checkErr := isMigrationApplied(db, version)
		if checkErr != nil {
			return fmt.Errorf("migrate: check applied %d: %w", version, checkErr)
		}
		if applied {
			continue
		}

		content, readErr := migrations.ReadFile("migrations/" + name)
		if readErr != nil {
			return fmt.Errorf("migrate: read %s: %w", name, readErr)
		}
		if applyErr := applyMigration(db, version, name, string(content)); applyErr != nil {
			return fmt.Errorf("migrate: apply %s: %w", name, applyErr)
		}
	}

	return nil
}

// MigrationVersion returns the highest migration version currently applied,
// or 0 if none have been applied yet.
func MigrationVersion(db *sql.DB) (int, error) {
	if err := ensureMigrationsTable(db); err != nil {
		return 0, fmt.Errorf("migrate: ensure migrations table: %w", err)
	}

	var version int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("migrate: query version: %w", err)
	}

	return version, nil
}

// --- internal ---

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER NOT NULL PRIMARY KEY,
			name        TEXT    NOT NULL,
			applied_at  TEXT    NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

// versionFromFilename extracts the numeric version prefix:
// "001_invocation_log.up.sql" → 1.
func versionFromFilename(name string) int {
	var version int
	if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
		return 0
	}
	return version
}

func isMigrationApplied(db *sql.DB, version int) (bool, error) {
	var count int
	row := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyMigration executes one migration in a transaction and records it.
func applyMigration(db *sql.DB, version int, name, sqlContent string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback after commit is a no-op
	}()

	if _, execErr := tx.Exec(sqlContent); execErr != nil {
		return fmt.Errorf("exec SQL: %w", execErr)
	}

	if _, execErr := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		version, name,
	); execErr != nil {
		return fmt.Errorf("record migration: %w", execErr)
	}

	return tx.Commit()
}
