package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"vmreport/internal/core"
)

type fakeRecorder struct {
	ref string
	err error
	got []core.AuditEvent
}

func (f *fakeRecorder) RecordEvent(_ context.Context, e core.AuditEvent) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.got = append(f.got, e)
	return f.ref, nil
}

func TestRecordEvent(t *testing.T) {
	recorder := &fakeRecorder{ref: "42"}
	svc := NewEventService(recorder, nil)

	ref, err := svc.RecordEvent(context.Background(), core.AuditEvent{
		Username:   "alice",
		EventType:  core.EventInstanceCreated,
		OccurredAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if ref != "42" {
		t.Fatalf("ref: got %q, want %q", ref, "42")
	}
	if len(recorder.got) != 1 {
		t.Fatalf("recorder saw %d events, want 1", len(recorder.got))
	}
}

func TestRecordEventStorageFailure(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("disk full")}
	svc := NewEventService(recorder, nil)

	if _, err := svc.RecordEvent(context.Background(), core.AuditEvent{
		Username:   "alice",
		EventType:  core.EventInstanceCreated,
		OccurredAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}); err == nil {
		t.Fatal("expected storage error to surface")
	}
}
