package migrations

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNewerSchema is returned by Run when the database was migrated by a
// newer build
var ErrNewerSchema = errors.New("history schema is newer than this build")

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "Add lookup indices on call history",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_history_endpoint ON history(endpoint);
			CREATE INDEX IF NOT EXISTS idx_history_status ON history(status);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_history_endpoint;
			DROP INDEX IF EXISTS idx_history_status;
		`,
	},
	{
		Version: 2,
		Name:    "Add market column to call history",
		Up: `
			ALTER TABLE history ADD COLUMN market TEXT NOT NULL DEFAULT '';
			CREATE INDEX IF NOT EXISTS idx_history_market ON history(market);
		`,
		Down: `
			-- SQLite does not support DROP COLUMN easily
			DROP INDEX IF EXISTS idx_history_market;
		`,
	},
	{
		Version: 3,
		Name:    "Add composite index for per-endpoint analytics",
		Up: `
			-- GROUP BY endpoint with aggregates over status and duration
			CREATE INDEX IF NOT EXISTS idx_history_analytics ON history(endpoint, status, duration_ms, timestamp_ms);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_history_analytics;
		`,
	},
}

// InitSchema creates all tables required across all modules
// This must be called before running migrations to ensure all tables exist
func InitSchema(db *sql.DB) error {
	schema := `
	-- Call history table
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		timestamp_ms INTEGER NOT NULL,
		endpoint TEXT NOT NULL,
		method TEXT NOT NULL,
		url TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		response_size INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp_ms DESC);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// Run executes all pending migrations on the database
func Run(db *sql.DB) error {
	// Initialize schema first to ensure all tables exist
	if err := InitSchema(db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := GetCurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if currentVersion > Latest() {
		return fmt.Errorf("%w: database is at version %d, this build knows %d", ErrNewerSchema, currentVersion, Latest())
	}

	for _, migration := range AllMigrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// GetCurrentVersion returns the current database schema version
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`
		SELECT COALESCE(MAX(version), 0)
		FROM schema_migrations
	`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return version, nil
}

// Latest returns the version the database reaches after Run
func Latest() int {
	if len(AllMigrations) == 0 {
		return 0
	}
	return AllMigrations[len(AllMigrations)-1].Version
}
