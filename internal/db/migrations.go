package db

import (
	"context"
	"fmt"
)

// migrations are applied in order. The index of the last applied one plus
// one is kept in PRAGMA user_version, so entries must never be reordered.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS visit_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		server_id TEXT NOT NULL,
		visits_count INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_visit_snapshots_server_time ON visit_snapshots(server_id, timestamp);
	`,
	`
	CREATE TABLE IF NOT EXISTS visit_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		server_id TEXT NOT NULL,
		short_code TEXT NOT NULL,
		referer TEXT,
		user_agent TEXT,
		visited_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_visit_events_server_time ON visit_events(server_id, visited_at);
	CREATE INDEX IF NOT EXISTS idx_visit_events_short_code ON visit_events(server_id, short_code);
	`,
}

// SchemaVersion returns the number of applied migrations.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	if err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// migrate applies every migration newer than the stored schema version.
func (db *DB) migrate() error {
	version, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.BeginTx(context.Background(), nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}

		if _, err := tx.ExecContext(context.Background(), migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.ExecContext(context.Background(), fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
