// Package history appends the audit trail written after every ledger mutation.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/debtbook/internal/metrics"
	"github.com/mmynk/debtbook/internal/models"
)

// ErrEmptyDetails is returned when an entry carries no description.
var ErrEmptyDetails = errors.New("history details must not be empty")

// Appender is the slice of the store the logger writes through.
type Appender interface {
	AppendHistory(ctx context.Context, entry *models.History) error
}

// Publisher receives each entry after it has been written. Record runs
// under the ledger lock, so PublishHistory must not wait on the network.
type Publisher interface {
	PublishHistory(ctx context.Context, entry models.History) error
}

// Logger appends immutable history entries.
//
// Record must only be called once the mutation it describes is committed:
// a failed Record never rolls anything back, so an entry may be missing but
// never describes something that did not happen.
type Logger struct {
	store     Appender
	publisher Publisher
	now       func() time.Time
}

// NewLogger creates a Logger writing to store.
func NewLogger(store Appender) *Logger {
	return &Logger{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetPublisher sets an optional publisher notified after each write.
func (l *Logger) SetPublisher(p Publisher) { l.publisher = p }

// Record appends one entry stamped with the current time.
func (l *Logger) Record(ctx context.Context, action models.Action, debtID *string, details string) (models.History, error) {
	if !action.Valid() {
		return models.History{}, fmt.Errorf("unknown history action %q", action)
	}
	if strings.TrimSpace(details) == "" {
		return models.History{}, ErrEmptyDetails
	}

	entry := models.History{
		Action:    action,
		DebtID:    debtID,
		Timestamp: l.now(),
		Details:   details,
	}
	if err := l.store.AppendHistory(ctx, &entry); err != nil {
		metrics.HistoryWriteFailures.Inc()
		return models.History{}, fmt.Errorf("record %s: %w", action, err)
	}
	metrics.HistoryRecords.WithLabelValues(string(action)).Inc()

	slog.Debug("History recorded", "action", action, "history_id", entry.ID)

	if l.publisher != nil {
		if err := l.publisher.PublishHistory(ctx, entry); err != nil {
			metrics.HistoryPublishFailures.Inc()
			slog.Warn("Failed to publish history entry",
				"history_id", entry.ID,
				"action", action,
				"error", err,
			)
		}
	}

	return entry, nil
}
