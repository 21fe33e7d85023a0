package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/debtbook/internal/models"
)

// AppendHistory inserts a new history entry. There is no
// update or delete counterpart; triggers reject both at the SQL level.
func (s *SQLiteStore) AppendHistory(ctx context.Context, entry *models.History) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var debtID sql.NullString
	if entry.DebtID != nil {
		debtID = sql.NullString{String: *entry.DebtID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO history (id, action, debt_id, timestamp, details) VALUES (?, ?, ?, ?, ?)",
		entry.ID, string(entry.Action), debtID, toUnix(entry.Timestamp), entry.Details,
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	return nil
}

// ListHistory returns history entries newest first.
func (s *SQLiteStore) ListHistory(ctx context.Context, limit int) ([]models.History, error) {
	query := "SELECT id, action, debt_id, timestamp, details FROM history ORDER BY timestamp DESC, rowid DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []models.History
	for rows.Next() {
		var (
			entry     models.History
			action    string
			debtID    sql.NullString
			timestamp int64
		)
		if err := rows.Scan(&entry.ID, &action, &debtID, &timestamp, &entry.Details); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		entry.Action = models.Action(action)
		if debtID.Valid {
			id := debtID.String
			entry.DebtID = &id
		}
		entry.Timestamp = fromUnix(timestamp)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return entries, nil
}
