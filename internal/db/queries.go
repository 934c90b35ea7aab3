package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/logger"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

// InsertVisitSnapshot records the visits count of a server after a refresh.
func (db *DB) InsertVisitSnapshot(snapshot models.VisitSnapshot) error {
	timestamp := snapshot.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err := db.ExecContext(context.Background(),
		`INSERT INTO visit_snapshots (server_id, visits_count, timestamp) VALUES (?, ?, ?)`,
		snapshot.ServerID,
		snapshot.VisitsCount,
		formatTime(timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to insert visit snapshot: %w", err)
	}
	return nil
}

// GetVisitSnapshots returns the snapshots of a server within a time range,
// oldest first.
func (db *DB) GetVisitSnapshots(serverID string, timeRange models.TimeRange) ([]models.VisitSnapshot, error) {
	query := `
		SELECT server_id, visits_count, timestamp
		FROM visit_snapshots
		WHERE server_id = ?
	`
	args := []any{serverID}
	if modifier := timeRange.SQLiteModifier(); modifier != "" {
		query += " " + sqlTimeFilterClause("timestamp")
		args = append(args, modifier)
	}
	query += " ORDER BY timestamp ASC, id ASC"

	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visit snapshots: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var snapshots []models.VisitSnapshot
	for rows.Next() {
		var s models.VisitSnapshot
		var ts string
		if err := rows.Scan(&s.ServerID, &s.VisitsCount, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan visit snapshot: %w", err)
		}
		s.Timestamp, _ = parseTimeString(ts)
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// InsertVisitEvents stores pushed visits in a single transaction.
func (db *DB) InsertVisitEvents(events []models.VisitEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(context.Background(), `
		INSERT INTO visit_events (server_id, short_code, referer, user_agent, visited_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare visit event insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range events {
		visitedAt := e.VisitedAt
		if visitedAt.IsZero() {
			visitedAt = time.Now()
		}
		_, err := stmt.ExecContext(context.Background(),
			e.ServerID,
			e.ShortCode,
			nullString(e.Referer),
			nullString(e.UserAgent),
			formatTime(visitedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert visit event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit visit events: %w", err)
	}
	return nil
}

// GetRecentVisitEvents returns the latest pushed visits of a server, newest first.
func (db *DB) GetRecentVisitEvents(serverID string, limit int) ([]models.VisitEvent, error) {
	if limit <= 0 {
		limit = defaultRecentEventsLimit
	}

	rows, err := db.QueryContext(context.Background(), `
		SELECT id, server_id, short_code, referer, user_agent, visited_at
		FROM visit_events
		WHERE server_id = ?
		ORDER BY visited_at DESC, id DESC
		LIMIT ?
	`, serverID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent visit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.VisitEvent
	for rows.Next() {
		var e models.VisitEvent
		var referer, userAgent sql.NullString
		var visitedAt string
		if err := rows.Scan(&e.ID, &e.ServerID, &e.ShortCode, &referer, &userAgent, &visitedAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit event: %w", err)
		}
		e.Referer = referer.String
		e.UserAgent = userAgent.String
		e.VisitedAt, _ = parseTimeString(visitedAt)
		events = append(events, e)
	}

	return events, rows.Err()
}

// CountVisitEventsByShortCode ranks short codes by pushed visits within a range.
func (db *DB) CountVisitEventsByShortCode(serverID string, timeRange models.TimeRange, limit int) ([]models.ShortCodeVisits, error) {
	query := `
		SELECT short_code, COUNT(*) AS visits
		FROM visit_events
		WHERE server_id = ?
	`
	args := []any{serverID}
	if modifier := timeRange.SQLiteModifier(); modifier != "" {
		query += " " + sqlTimeFilterClause("visited_at")
		args = append(args, modifier)
	}
	query += " GROUP BY short_code ORDER BY visits DESC, short_code ASC LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count visit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []models.ShortCodeVisits
	for rows.Next() {
		var c models.ShortCodeVisits
		if err := rows.Scan(&c.ShortCode, &c.Visits); err != nil {
			return nil, fmt.Errorf("failed to scan visit count: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// Prune deletes snapshots and events older than retention and returns the
// number of removed rows.
func (db *DB) Prune(retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := formatTime(time.Now().Add(-retention))

	var total int64
	for _, query := range []string{
		`DELETE FROM visit_snapshots WHERE timestamp < ?`,
		`DELETE FROM visit_events WHERE visited_at < ?`,
	} {
		result, err := db.ExecContext(context.Background(), query, cutoff)
		if err != nil {
			return total, fmt.Errorf("failed to prune history: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil {
			total += n
		}
	}

	if total > 0 {
		logger.Info("Pruned visits history", "rows", total, "retention", retention)
	}
	return total, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqlTimeFormat)
}

func sqlTimeFilterClause(column string) string {
	return "AND " + column + " >= datetime('now', ?)"
}
