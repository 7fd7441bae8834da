package cache

import (
	"context"
	"fmt"
)

const schemaVersion = 1

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS kv (
        key        TEXT PRIMARY KEY,
        value      TEXT NOT NULL,
        updated_at TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS trigger_records (
        user_id      TEXT NOT NULL,
        plan_id      TEXT NOT NULL,
        handles_json TEXT NOT NULL,
        updated_at   TEXT NOT NULL,
        PRIMARY KEY (user_id, plan_id)
    )`,
	`CREATE TABLE IF NOT EXISTS draft_records (
        id              INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id         TEXT NOT NULL,
        status          TEXT NOT NULL,
        title           TEXT NOT NULL,
        set_count       INTEGER NOT NULL,
        planned_minutes INTEGER NOT NULL,
        elapsed_seconds INTEGER NOT NULL,
        completed_at    TEXT NOT NULL,
        mood            INTEGER,
        focus           INTEGER,
        goal_achieved   INTEGER,
        has_checkin     INTEGER NOT NULL DEFAULT 0
    )`,
	`CREATE INDEX IF NOT EXISTS idx_draft_records_user ON draft_records(user_id, id)`,
	`CREATE TABLE IF NOT EXISTS schema_info (
        version INTEGER NOT NULL
    )`,
}

func (s *Store) applyMigrations(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_info`).Scan(&count); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if count == 0 {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_info (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	}
	return nil
}
