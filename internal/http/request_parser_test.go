package http

import (
	"testing"
	"time"

	"vmreport/internal/core"
)

func TestEventFromValues(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		eventType  string
		occurredAt string
		wantErr    bool
		check      func(t *testing.T, e core.AuditEvent)
	}{
		{
			name:     "missing username",
			username: "",
			wantErr:  true,
		},
		{
			name:       "bad timestamp",
			username:   "alice",
			occurredAt: "yesterday",
			wantErr:    true,
		},
		{
			name:     "defaults applied",
			username: "alice",
			check: func(t *testing.T, e core.AuditEvent) {
				if e.EventType != core.EventInstanceCreated {
					t.Errorf("event type: got %q", e.EventType)
				}
				if e.OccurredAt.IsZero() {
					t.Error("occurred at should default to now")
				}
			},
		},
		{
			name:       "rfc3339 timestamp",
			username:   "alice",
			occurredAt: "2024-05-01T10:30:00Z",
			check: func(t *testing.T, e core.AuditEvent) {
				want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
				if !e.OccurredAt.Equal(want) {
					t.Errorf("occurred at: got %v, want %v", e.OccurredAt, want)
				}
			},
		},
		{
			name:       "date only timestamp",
			username:   "alice",
			occurredAt: "2024-05-01",
			check: func(t *testing.T, e core.AuditEvent) {
				want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
				if !e.OccurredAt.Equal(want) {
					t.Errorf("occurred at: got %v, want %v", e.OccurredAt, want)
				}
			},
		},
		{
			name:      "explicit event type kept",
			username:  "alice",
			eventType: "instance.deleted",
			check: func(t *testing.T, e core.AuditEvent) {
				if e.EventType != "instance.deleted" {
					t.Errorf("event type: got %q", e.EventType)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := eventFromValues(tt.username, tt.eventType, tt.occurredAt)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, e)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  alice\x00\x01  "); got != "alice" {
		t.Fatalf("got %q, want alice", got)
	}
	if got := sanitizeInput("line1\nline2"); got != "line1\nline2" {
		t.Fatalf("newlines should survive, got %q", got)
	}
}
