package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/debtbook/internal/models"
)

type memAppender struct {
	entries []models.History
	err     error
}

func (m *memAppender) AppendHistory(_ context.Context, entry *models.History) error {
	if m.err != nil {
		return m.err
	}
	entry.ID = "h-" + string(rune('a'+len(m.entries)))
	m.entries = append(m.entries, *entry)
	return nil
}

type recordingPublisher struct {
	published []models.History
	err       error
}

func (p *recordingPublisher) PublishHistory(_ context.Context, entry models.History) error {
	p.published = append(p.published, entry)
	return p.err
}

func TestLogger_Record(t *testing.T) {
	store := &memAppender{}
	logger := NewLogger(store)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	logger.now = func() time.Time { return fixed }

	debtID := "debt-1"
	entry, err := logger.Record(context.Background(), models.ActionAddDebt, &debtID, "Added debt: 5 from Alice to Bob")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if len(store.entries) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(store.entries))
	}
	if entry.ID == "" {
		t.Error("expected entry ID from store")
	}
	if !entry.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", entry.Timestamp, fixed)
	}
	if entry.DebtID == nil || *entry.DebtID != debtID {
		t.Errorf("DebtID = %v, want %s", entry.DebtID, debtID)
	}
}

func TestLogger_Record_Validation(t *testing.T) {
	tests := []struct {
		name    string
		action  models.Action
		details string
	}{
		{name: "empty details", action: models.ActionAddPerson, details: "   "},
		{name: "unknown action", action: models.Action("rename_debt"), details: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memAppender{}
			logger := NewLogger(store)
			if _, err := logger.Record(context.Background(), tt.action, nil, tt.details); err == nil {
				t.Error("expected error")
			}
			if len(store.entries) != 0 {
				t.Errorf("expected nothing stored, got %d", len(store.entries))
			}
		})
	}
}

func TestLogger_Record_StoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	pub := &recordingPublisher{}
	logger := NewLogger(&memAppender{err: boom})
	logger.SetPublisher(pub)

	_, err := logger.Record(context.Background(), models.ActionAddPerson, nil, "Added person: Alice")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Error("failed writes must not be published")
	}
}

func TestLogger_Record_PublishFailureIsNotFatal(t *testing.T) {
	store := &memAppender{}
	pub := &recordingPublisher{err: errors.New("broker down")}
	logger := NewLogger(store)
	logger.SetPublisher(pub)

	if _, err := logger.Record(context.Background(), models.ActionDeletePerson, nil, "Deleted person: Bob"); err != nil {
		t.Fatalf("publish failure should not fail Record: %v", err)
	}
	if len(store.entries) != 1 || len(pub.published) != 1 {
		t.Errorf("stored=%d published=%d, want 1/1", len(store.entries), len(pub.published))
	}
}
