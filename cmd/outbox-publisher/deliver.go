package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/registry"
)

type deliveryOutcome int

const (
	outcomePublished deliveryOutcome = iota + 1
	outcomeRetry
	outcomeParked
)

const (
	parkUnresolvable = "unresolvable"
	parkNonRetryable = "non_retryable"
	parkMaxAttempts  = "max_attempts"
)

// deliver publishes one row and records the result on it. The returned error
// is reserved for bookkeeping failures, which abort the batch.
func (s *Service) deliver(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) (deliveryOutcome, error) {
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return outcomeParked, s.park(ctx, tx, event, nil, parkUnresolvable, err)
	}

	pubErr := s.publish(ctx, event, resolved)
	if pubErr == nil {
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return 0, fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.metrics.IncPublished(string(event.EventType))
		s.logg.Info(s.logg.WithFields(ctx, s.eventFields(event, resolved)), "outbox event published")
		return outcomePublished, nil
	}

	var nonRetry registry.NonRetryableError
	if errors.As(pubErr, &nonRetry) {
		return outcomeParked, s.park(ctx, tx, event, resolved, parkNonRetryable, pubErr)
	}
	if event.AttemptCount+1 >= s.maxAttempts {
		return outcomeParked, s.park(ctx, tx, event, resolved, parkMaxAttempts,
			fmt.Errorf("max publish attempts reached: %w", pubErr))
	}

	fields := s.eventFields(event, resolved)
	fields["attempt_count"] = event.AttemptCount + 1
	fields["error"] = pubErr.Error()
	s.logg.Warn(s.logg.WithFields(ctx, fields), "outbox publish failed")
	s.metrics.IncFailed(string(event.EventType))
	if err := s.repo.MarkFailedTx(tx, event.ID, pubErr); err != nil {
		return 0, fmt.Errorf("mark failure %s: %w", event.ID, err)
	}
	return outcomeRetry, nil
}

// park moves the row to the attempt ceiling so later batches skip it. The
// payload stays in place with last_error set for manual replay.
func (s *Service) park(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, resolved *registry.ResolvedEvent, reason string, cause error) error {
	fields := s.eventFields(event, resolved)
	fields["terminal_reason"] = reason
	fields["error"] = cause.Error()
	s.logg.Warn(s.logg.WithFields(ctx, fields), "outbox event will not be retried")
	s.metrics.IncFailed(string(event.EventType))

	if err := s.repo.MarkTerminalTx(tx, event.ID, cause, s.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisher(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}

	msg := s.message(event, resolved)
	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := pub.Publish(publishCtx, msg)
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	if _, err := result.Get(publishCtx); err != nil {
		// A failed ordered publish pauses its key until resumed.
		if msg.OrderingKey != "" {
			if r, ok := pub.(orderingResumer); ok {
				r.ResumePublish(msg.OrderingKey)
			}
		}
		return err
	}
	return nil
}

// message builds the Pub/Sub message. Attributes let subscribers filter
// without decoding the body.
func (s *Service) message(event models.OutboxEvent, resolved *registry.ResolvedEvent) *gcppubsub.Message {
	attrs := map[string]string{
		"event_id":       resolved.Envelope.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if v := resolved.Envelope.Version; v > 0 {
		attrs["schema_version"] = strconv.Itoa(v)
	}
	msg := &gcppubsub.Message{Data: event.Payload, Attributes: attrs}
	if s.ordered {
		msg.OrderingKey = event.AggregateID.String()
	}
	return msg
}

func (s *Service) eventFields(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	if resolved != nil {
		fields["topic"] = resolved.Descriptor.Topic
		if id := resolved.Envelope.EventID; id != "" {
			fields["event_id"] = id
			fields["occurred_at"] = resolved.Envelope.OccurredAt.Format(time.RFC3339Nano)
		}
	}
	return fields
}
