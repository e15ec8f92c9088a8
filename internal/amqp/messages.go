package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names a lifecycle change of the billing engine.
type EventType string

const (
	EventPurchaseCreated    EventType = "purchase.created"
	EventPurchaseUpdated    EventType = "purchase.updated"
	EventPurchaseDeleted    EventType = "purchase.deleted"
	EventInstallmentUpdated EventType = "installment.updated"
	EventStatementUpdated   EventType = "statement.updated"
)

// Event is a lightweight notification. It carries ids only; consumers load
// current state from the database.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Type          EventType `json:"type"`
	UserID        int64     `json:"user_id"`
	PurchaseID    int64     `json:"purchase_id,omitempty"`
	InstallmentID int64     `json:"installment_id,omitempty"`
	StatementID   int64     `json:"statement_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewEvent creates an event with a fresh id and the current time
func NewEvent(t EventType, userID int64) Event {
	return Event{
		ID:        uuid.New(),
		Type:      t,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

func (e Event) Known() bool {
	switch e.Type {
	case EventPurchaseCreated, EventPurchaseUpdated, EventPurchaseDeleted,
		EventInstallmentUpdated, EventStatementUpdated:
		return true
	}
	return false
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event and rejects payloads without id or type.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	if e.ID == uuid.Nil || e.Type == "" {
		return Event{}, fmt.Errorf("event missing id or type")
	}
	return e, nil
}
