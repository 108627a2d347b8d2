package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "communitypulse/contexts/community-events/event-service/application"
	"communitypulse/contexts/community-events/event-service/ports"
)

const EventTypeReminderDue = "event.reminder_due"

// ReminderScheduler queues one reminder per approved event once the event
// falls inside Window. Delivery is left to whoever consumes the bus.
type ReminderScheduler struct {
	Reminders ports.ReminderRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Window    time.Duration
	BatchSize int
	Logger    *slog.Logger
}

func (j ReminderScheduler) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	window := j.Window
	if window <= 0 {
		window = 24 * time.Hour
	}
	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}

	due, err := j.Reminders.ListDueReminders(ctx, now, window, limit)
	if err != nil {
		logger.Error("reminder sweep failed",
			"event", "events_reminder_sweep_failed",
			"module", "community-events/event-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	queued := 0
	for _, view := range due {
		envelopeID, err := j.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		envelope, err := newReminderEnvelope(envelopeID, view, now)
		if err != nil {
			return err
		}
		ok, err := j.Reminders.QueueReminder(ctx, view.Event.EventID, now, envelope)
		if err != nil {
			logger.Error("reminder queue failed",
				"event", "events_reminder_queue_failed",
				"module", "community-events/event-service",
				"layer", "worker",
				"event_id", view.Event.EventID,
				"error", err.Error(),
			)
			return err
		}
		if ok {
			queued++
		}
	}

	if queued > 0 {
		logger.Info("reminder sweep completed",
			"event", "events_reminder_sweep_completed",
			"module", "community-events/event-service",
			"layer", "worker",
			"queued_count", queued,
		)
	}
	return nil
}

func newReminderEnvelope(envelopeID string, view ports.EventView, now time.Time) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(map[string]any{
		"event_id":            view.Event.EventID,
		"title":               view.Event.Title,
		"location":            view.Event.Location,
		"date":                view.Event.Date.Format(time.RFC3339),
		"rsvp_count":          view.RSVPCount,
		"committed_attendees": view.CommittedAttendees,
	})
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          envelopeID,
		EventType:        EventTypeReminderDue,
		OccurredAt:       now.UTC(),
		SourceService:    "event-service",
		SchemaVersion:    1,
		PartitionKeyPath: "event_id",
		PartitionKey:     view.Event.EventID,
		Data:             payload,
	}, nil
}
