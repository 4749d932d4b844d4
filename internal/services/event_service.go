package services

import (
	"context"
	"fmt"
	"log/slog"

	"vmreport/internal/amqp"
	"vmreport/internal/core"
	"vmreport/internal/ports"
)

// EventService orchestrates audit-event intake across storage and AMQP
type EventService struct {
	recorder   ports.EventRecorder
	amqpClient *amqp.Client
}

func NewEventService(recorder ports.EventRecorder, amqpClient *amqp.Client) *EventService {
	return &EventService{
		recorder:   recorder,
		amqpClient: amqpClient,
	}
}

// RecordEvent saves an audit event locally and publishes it for downstream
// consumers. Publishing is best effort: the event is durable once stored.
func (s *EventService) RecordEvent(ctx context.Context, e core.AuditEvent) (string, error) {
	ref, err := s.recorder.RecordEvent(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save audit event: %w", err)
	}

	if err := s.publishEventMessage(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish audit event message",
			"ref", ref, "error", err)
		// Don't fail the request - the event is saved locally
	}

	return ref, nil
}

func (s *EventService) publishEventMessage(ctx context.Context, e core.AuditEvent) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping event message")
		return nil
	}

	return s.amqpClient.PublishInstanceEvent(ctx, amqp.NewInstanceEventMessage(e))
}
