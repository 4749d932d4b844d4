package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"vmreport/internal/amqp"
	"vmreport/internal/core"
)

type fakeRecorder struct {
	err error
	got []core.AuditEvent
}

func (f *fakeRecorder) RecordEvent(_ context.Context, e core.AuditEvent) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.got = append(f.got, e)
	return "1", nil
}

func TestHandleEventMessage(t *testing.T) {
	recorder := &fakeRecorder{}
	w := NewIngestWorker(recorder)

	msg := amqp.NewInstanceEventMessage(core.AuditEvent{
		Username:   "alice",
		EventType:  core.EventInstanceCreated,
		OccurredAt: time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC),
	})

	if err := w.HandleEventMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(recorder.got) != 1 {
		t.Fatalf("recorder saw %d events, want 1", len(recorder.got))
	}
	if recorder.got[0].Username != "alice" {
		t.Fatalf("username: got %q, want alice", recorder.got[0].Username)
	}
}

func TestHandleEventMessageRecorderFailure(t *testing.T) {
	w := NewIngestWorker(&fakeRecorder{err: errors.New("db closed")})

	msg := amqp.NewInstanceEventMessage(core.AuditEvent{
		Username:   "alice",
		EventType:  core.EventInstanceCreated,
		OccurredAt: time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC),
	})

	if err := w.HandleEventMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error so the delivery gets requeued")
	}
}
