package http

import (
	"errors"
	"time"

	"vmreport/internal/core"
)

// eventFromValues builds an audit event from request values. The event
// type defaults to instance.created and the occurrence time to now.
func eventFromValues(username, eventType, occurredAt string) (core.AuditEvent, error) {
	if username == "" {
		return core.AuditEvent{}, errors.New("username is required")
	}
	if eventType == "" {
		eventType = core.EventInstanceCreated
	}

	when := time.Now().UTC()
	if occurredAt != "" {
		parsed, err := parseEventTime(occurredAt)
		if err != nil {
			return core.AuditEvent{}, errors.New("occurred_at must be RFC3339 or YYYY-MM-DD")
		}
		when = parsed
	}

	event := core.AuditEvent{
		Username:   username,
		EventType:  eventType,
		OccurredAt: when,
	}
	if err := event.Validate(); err != nil {
		return core.AuditEvent{}, err
	}
	return event, nil
}

func parseEventTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
