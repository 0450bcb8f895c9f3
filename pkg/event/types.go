package event

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	AppointmentDeleted EventType = "appointment.deleted"
)

// EventContext is filled by a handler while the tracker middleware waits.
// A nil Data means nothing happened worth publishing.
type EventContext struct {
	Resource   string
	Operation  string
	Data       interface{}
	Additional map[string]interface{}
}

type Event struct {
	ID         uuid.UUID              `json:"id"`
	Type       EventType              `json:"type"`
	Resource   string                 `json:"resource"`
	Payload    interface{}            `json:"payload"`
	Additional map[string]interface{} `json:"additional,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}
