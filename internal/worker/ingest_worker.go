package worker

import (
	"context"
	"fmt"
	"log/slog"

	"vmreport/internal/amqp"
	"vmreport/internal/ports"
)

// IngestWorker persists audit events delivered over AMQP
type IngestWorker struct {
	recorder ports.EventRecorder
}

func NewIngestWorker(recorder ports.EventRecorder) *IngestWorker {
	return &IngestWorker{recorder: recorder}
}

// HandleEventMessage processes a single audit event message from AMQP
func (w *IngestWorker) HandleEventMessage(ctx context.Context, msg *amqp.InstanceEventMessage) error {
	slog.InfoContext(ctx, "Processing audit event message",
		"username", msg.Username,
		"event_type", msg.EventType,
		"occurred_at", msg.OccurredAt)

	ref, err := w.recorder.RecordEvent(ctx, msg.Event())
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	slog.InfoContext(ctx, "Audit event ingested",
		"ref", ref,
		"username", msg.Username,
		"event_type", msg.EventType)

	return nil
}
