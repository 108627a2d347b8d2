package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "communitypulse/contexts/community-events/event-service/application"
	"communitypulse/contexts/community-events/event-service/ports"
)

// OutboxRelay publishes pending event-service outbox rows to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("events outbox list failed",
			"event", "events_outbox_list_failed",
			"module", "community-events/event-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("events outbox decode failed",
				"event", "events_outbox_decode_failed",
				"module", "community-events/event-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if event.EventType == "" {
			event.EventType = row.EventType
		}

		topic := event.Topic()
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("events outbox publish failed",
				"event", "events_outbox_publish_failed",
				"module", "community-events/event-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_type", event.EventType,
				"topic", topic,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("events outbox mark published failed",
				"event", "events_outbox_mark_published_failed",
				"module", "community-events/event-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("events outbox relay cycle completed",
			"event", "events_outbox_relay_completed",
			"module", "community-events/event-service",
			"layer", "worker",
			"published_count", len(pending),
		)
	}
	return nil
}
