package events

import (
	"encoding/json"
	"time"

	"github.com/mmynk/debtbook/internal/models"
)

// HistoryMessage is the body published for each history entry.
type HistoryMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	DebtID    string    `json:"debt_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}

// NewHistoryMessage converts a history entry into its wire form.
func NewHistoryMessage(entry models.History) *HistoryMessage {
	msg := &HistoryMessage{
		ID:        entry.ID,
		Action:    string(entry.Action),
		Timestamp: entry.Timestamp,
		Details:   entry.Details,
	}
	if entry.DebtID != nil {
		msg.DebtID = *entry.DebtID
	}
	return msg
}

// ToJSON converts the message to JSON bytes.
func (m *HistoryMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// HistoryMessageFromJSON decodes a message published by PublishHistory.
func HistoryMessageFromJSON(data []byte) (*HistoryMessage, error) {
	var msg HistoryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
