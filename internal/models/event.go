// Package models defines the records faultgen persists.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes ledger events.
type EventType string

const (
	// Generation events
	EventTypeGenerationCompleted EventType = "generation.completed"
	EventTypeGenerationSkipped   EventType = "generation.skipped"

	// Check events
	EventTypeCheckPassed EventType = "check.passed"
	EventTypeCheckFailed EventType = "check.failed"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeDeclaration EntityType = "declaration"
)

// Event represents an append-only ledger entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the declaration source path.
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// DecodePayload unmarshals the event payload into v.
func (e *Event) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}

// GenerationPayload is the payload for generation.* events.
type GenerationPayload struct {
	Declaration string   `json:"declaration"`
	Checksum    string   `json:"checksum"`
	Output      string   `json:"output,omitempty"`
	Variants    int      `json:"variants"`
	Unused      []string `json:"unused,omitempty"`
	Reason      string   `json:"reason,omitempty"`
}

// CheckPayload is the payload for check.* events.
type CheckPayload struct {
	Declaration string   `json:"declaration"`
	Checksum    string   `json:"checksum"`
	Variants    int      `json:"variants"`
	Unused      []string `json:"unused,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// EventSummary counts events per type.
type EventSummary struct {
	Total  int64               `json:"total"`
	ByType map[EventType]int64 `json:"by_type"`
	First  time.Time           `json:"first,omitempty"`
	Last   time.Time           `json:"last,omitempty"`
}
