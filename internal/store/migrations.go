package store

import (
	"fmt"

	"go.uber.org/zap"
)

// migrations are applied in order; schema_version records the last applied
// index so upgrades are incremental and idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		title      TEXT NOT NULL,
		project    TEXT NOT NULL DEFAULT '',
		priority   INTEGER NOT NULL DEFAULT 0,
		due        TEXT NOT NULL DEFAULT '',
		tags       TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL,
		done_at    TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		archived    INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS time_logs (
		id         TEXT PRIMARY KEY,
		project    TEXT NOT NULL DEFAULT '',
		task_id    INTEGER NOT NULL DEFAULT 0,
		date       TEXT NOT NULL,
		minutes    INTEGER NOT NULL,
		notes      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
	`CREATE INDEX IF NOT EXISTS idx_time_logs_task ON time_logs(task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_time_logs_date ON time_logs(date)`,
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	version := 0
	row := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`)
	if err := row.Scan(&version); err != nil {
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("failed to seed schema_version: %w", err)
		}
	}

	for i := version; i < len(migrations); i++ {
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
		s.log.Debug("applied migration", zap.Int("version", i+1))
	}
	return nil
}
