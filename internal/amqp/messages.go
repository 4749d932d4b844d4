package amqp

import (
	"encoding/json"
	"time"

	"vmreport/internal/core"
)

// InstanceEventMessage carries one audit event from the host to the
// ingest worker. The full event travels in the message; the worker does
// not call back into the host.
type InstanceEventMessage struct {
	Username   string    `json:"username"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewInstanceEventMessage creates a message for a single audit event
func NewInstanceEventMessage(e core.AuditEvent) *InstanceEventMessage {
	return &InstanceEventMessage{
		Username:   e.Username,
		EventType:  e.EventType,
		OccurredAt: e.OccurredAt,
		Timestamp:  time.Now(),
	}
}

// Event converts the message back into a domain audit event
func (m *InstanceEventMessage) Event() core.AuditEvent {
	return core.AuditEvent{
		Username:   m.Username,
		EventType:  m.EventType,
		OccurredAt: m.OccurredAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *InstanceEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// InstanceEventMessageFromJSON creates a message from JSON bytes
func InstanceEventMessageFromJSON(data []byte) (*InstanceEventMessage, error) {
	var msg InstanceEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
