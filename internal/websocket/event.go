package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeUpdated    EventType = "updated"
	EventTypeSaved      EventType = "saved"
	EventTypeSaveFailed EventType = "save_failed"
	EventTypeLoadFailed EventType = "load_failed"
	EventTypeStatus     EventType = "status"
	EventTypeFlushed    EventType = "flushed"
	EventTypeRejected   EventType = "rejected"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeLedger   EntityType = "ledger"
	EntityTypeSettings EntityType = "settings"
	EntityTypeCommand  EntityType = "command"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "ledger.updated"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "ledger"
	Payload   interface{} `json:"payload"`   // Entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// SaveResult is the payload of ledger.saved
type SaveResult struct {
	Revision uint64    `json:"revision"`
	SavedAt  time.Time `json:"savedAt"`
}

// FailureReport is the payload of ledger.save_failed and ledger.load_failed
type FailureReport struct {
	Revision uint64 `json:"revision,omitempty"`
	Error    string `json:"error"`
}

// LedgerUpdated creates a ledger.updated event carrying the recomputed summary
func LedgerUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeLedger, payload)
}

// LedgerSaved creates a ledger.saved event
func LedgerSaved(revision uint64, at time.Time) Event {
	return NewEvent(EventTypeSaved, EntityTypeLedger, SaveResult{Revision: revision, SavedAt: at.UTC()})
}

// LedgerSaveFailed creates a ledger.save_failed event
func LedgerSaveFailed(revision uint64, err error) Event {
	return NewEvent(EventTypeSaveFailed, EntityTypeLedger, FailureReport{Revision: revision, Error: err.Error()})
}

// LedgerLoadFailed creates a ledger.load_failed event
func LedgerLoadFailed(err error) Event {
	return NewEvent(EventTypeLoadFailed, EntityTypeLedger, FailureReport{Error: err.Error()})
}

// SettingsUpdated creates a settings.updated event
func SettingsUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeSettings, payload)
}

// LedgerStatus creates a ledger.status event, the answer to a status command
func LedgerStatus(payload interface{}) Event {
	return NewEvent(EventTypeStatus, EntityTypeLedger, payload)
}

// LedgerFlushed creates a ledger.flushed event, the answer to a flush command
func LedgerFlushed(saving bool) Event {
	return NewEvent(EventTypeFlushed, EntityTypeLedger, map[string]bool{"saving": saving})
}

// CommandRejected creates a command.rejected event for a frame the server could not act on
func CommandRejected(err error) Event {
	return NewEvent(EventTypeRejected, EntityTypeCommand, FailureReport{Error: err.Error()})
}
