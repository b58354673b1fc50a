// Package events announces ledger changes to other services over AMQP.
package events

import (
	"context"
	"encoding/json"
	"time"
)

type Type string

const (
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
	TransferCreated    Type = "transfer.created"
	AccountArchived    Type = "account.archived"
)

// Event is a lightweight notification: consumers fetch current figures
// themselves. AccountIDs lists every account whose balance may have changed.
type Event struct {
	Type       Type      `json:"type"`
	OwnerID    string    `json:"owner_id"`
	EntityID   string    `json:"entity_id"`
	AccountIDs []string  `json:"account_ids"`
	At         time.Time `json:"at"`
}

func New(t Type, ownerID, entityID string, accountIDs ...string) Event {
	if accountIDs == nil {
		accountIDs = []string{}
	}
	return Event{Type: t, OwnerID: ownerID, EntityID: entityID, AccountIDs: accountIDs, At: time.Now().UTC()}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event published by Client.
func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                          { return nil }
