package commands

import (
	"encoding/json"
	"time"

	"communitypulse/contexts/community-events/event-service/ports"
)

const sourceService = "event-service"

const (
	EventTypeEventSubmitted = "event.submitted"
	EventTypeEventDecided   = "event.decided"
	EventTypeRSVPAdmitted   = "rsvp.admitted"
	EventTypeRSVPCancelled  = "rsvp.cancelled"
	EventTypeEventUpdated   = "event.updated"
	EventTypeEventDeleted   = "event.deleted"
	EventTypeRSVPAttendance = "rsvp.attendance_marked"
)

func newEventEnvelope(
	envelopeID string,
	eventType string,
	eventID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Partitioned by event so consumers see one event's history in order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          envelopeID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    sourceService,
		SchemaVersion:    1,
		PartitionKeyPath: "event_id",
		PartitionKey:     eventID,
		Data:             payload,
	}, nil
}

func resolveNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
