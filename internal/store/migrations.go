package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// SchemaVersion returns the version recorded in schema_version.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS daily_stats (
			date        TEXT PRIMARY KEY,
			total_xp    INTEGER NOT NULL,
			base_xp     INTEGER NOT NULL,
			multiplier  REAL NOT NULL,
			messages    INTEGER NOT NULL,
			sessions    INTEGER NOT NULL,
			tool_calls  INTEGER NOT NULL,
			projects    INTEGER NOT NULL DEFAULT 0,
			edits       INTEGER NOT NULL DEFAULT 0,
			commits     INTEGER NOT NULL DEFAULT 0,
			unique_tools INTEGER NOT NULL DEFAULT 0,
			streak_day  BOOLEAN NOT NULL DEFAULT false
		)`,

		`CREATE TABLE IF NOT EXISTS engagement_history (
			date          TEXT PRIMARY KEY,
			mu            REAL NOT NULL,
			phi           REAL NOT NULL,
			sigma         REAL NOT NULL,
			quality_score REAL NOT NULL,
			mu_before     REAL NOT NULL,
			phi_before    REAL NOT NULL,
			tier          TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS achievements (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			unlocked_at TEXT,
			progress    REAL NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS profile (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS sync_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL UNIQUE,
			started_at  TEXT NOT NULL,
			mode        TEXT NOT NULL,
			days_synced INTEGER NOT NULL,
			total_xp    INTEGER NOT NULL,
			level       INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_daily_stats_streak ON daily_stats(streak_day, date)`,
		`CREATE INDEX IF NOT EXISTS idx_achievements_unlocked ON achievements(unlocked_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_runs_started ON sync_runs(started_at)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
