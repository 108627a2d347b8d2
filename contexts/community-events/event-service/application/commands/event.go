package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "communitypulse/contexts/community-events/event-service/application"
	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	"communitypulse/contexts/community-events/event-service/ports"
)

type CreateEventCommand struct {
	Title        string
	Description  string
	Category     string
	Location     string
	Date         time.Time
	MaxAttendees int
}

// EventUseCase owns the event publication lifecycle: submission by any
// authenticated user and the one-time admin decision.
type EventUseCase struct {
	Events ports.EventRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// CreateEvent stores a new event as pending. Admin-created events are not
// auto-approved; every event goes through the same decision.
func (uc EventUseCase) CreateEvent(ctx context.Context, actor ports.Actor, cmd CreateEventCommand) (entities.Event, error) {
	logger := application.ResolveLogger(uc.Logger)
	if actor.IsAnonymous() {
		return entities.Event{}, domainerrors.ErrUnauthenticated
	}

	now := resolveNow(uc.Clock)
	event, err := newPendingEvent(actor.UserID, cmd, now)
	if err != nil {
		logger.Warn("event create validation failed",
			"event", "events_create_validation_failed",
			"module", "community-events/event-service",
			"layer", "application",
			"organizer_id", actor.UserID,
			"error", err.Error(),
		)
		return entities.Event{}, err
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Event{}, err
	}
	event.EventID = eventID

	envelopeID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Event{}, err
	}
	envelope, err := newEventEnvelope(envelopeID, EventTypeEventSubmitted, event.EventID, now, map[string]any{
		"event_id":      event.EventID,
		"organizer_id":  event.OrganizerID,
		"category":      string(event.Category),
		"date":          event.Date.Format(time.RFC3339),
		"max_attendees": event.MaxAttendees,
	})
	if err != nil {
		return entities.Event{}, err
	}
	if err := uc.Events.CreateEvent(ctx, event, envelope); err != nil {
		return entities.Event{}, err
	}

	logger.Info("event submitted for review",
		"event", "events_event_submitted",
		"module", "community-events/event-service",
		"layer", "application",
		"event_id", event.EventID,
		"organizer_id", event.OrganizerID,
	)
	return event, nil
}

// DecideEvent approves or rejects a pending event. The state check runs
// against the locked row, so two concurrent decisions cannot both succeed.
func (uc EventUseCase) DecideEvent(ctx context.Context, actor ports.Actor, eventID string, approve bool) (entities.Event, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !actor.Admin() {
		return entities.Event{}, domainerrors.ErrForbidden
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return entities.Event{}, domainerrors.ErrEventNotFound
	}

	now := resolveNow(uc.Clock)
	decided, err := uc.Events.DecideEvent(ctx, eventID, func(current entities.Event) (entities.Event, ports.EventEnvelope, error) {
		next, err := current.Decide(approve, actor.UserID, now)
		if err != nil {
			return current, ports.EventEnvelope{}, err
		}
		envelopeID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return current, ports.EventEnvelope{}, err
		}
		envelope, err := newEventEnvelope(envelopeID, EventTypeEventDecided, next.EventID, now, map[string]any{
			"event_id":     next.EventID,
			"organizer_id": next.OrganizerID,
			"status":       string(next.Status),
			"decided_by":   next.DecidedBy,
		})
		return next, envelope, err
	})
	if err != nil {
		logger.Warn("event decision rejected",
			"event", "events_decision_rejected",
			"module", "community-events/event-service",
			"layer", "application",
			"event_id", eventID,
			"admin_id", actor.UserID,
			"error", err.Error(),
		)
		return entities.Event{}, err
	}

	logger.Info("event decided",
		"event", "events_event_decided",
		"module", "community-events/event-service",
		"layer", "application",
		"event_id", decided.EventID,
		"status", string(decided.Status),
		"admin_id", actor.UserID,
	)
	return decided, nil
}

// UpdateEvent replaces an event's details. Only its organizer or an admin may
// edit it. The capacity check runs against committed seats read under the
// event lock.
func (uc EventUseCase) UpdateEvent(ctx context.Context, actor ports.Actor, eventID string, cmd CreateEventCommand) (ports.EventView, error) {
	logger := application.ResolveLogger(uc.Logger)
	if actor.IsAnonymous() {
		return ports.EventView{}, domainerrors.ErrUnauthenticated
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return ports.EventView{}, domainerrors.ErrEventNotFound
	}

	now := resolveNow(uc.Clock)
	details, err := parseEventDetails(cmd, now)
	if err != nil {
		return ports.EventView{}, err
	}
	view, err := uc.Events.UpdateEvent(ctx, eventID, func(current ports.EventView) (entities.Event, ports.EventEnvelope, error) {
		if err := authorizeOrganizer(actor, current.Event); err != nil {
			return current.Event, ports.EventEnvelope{}, err
		}
		next, err := current.Event.Revise(details, current.CommittedAttendees, actor.Admin(), now)
		if err != nil {
			return current.Event, ports.EventEnvelope{}, err
		}
		envelopeID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return current.Event, ports.EventEnvelope{}, err
		}
		envelope, err := newEventEnvelope(envelopeID, EventTypeEventUpdated, next.EventID, now, map[string]any{
			"event_id":      next.EventID,
			"organizer_id":  next.OrganizerID,
			"updated_by":    actor.UserID,
			"status":        string(next.Status),
			"date":          next.Date.Format(time.RFC3339),
			"max_attendees": next.MaxAttendees,
		})
		return next, envelope, err
	})
	if err != nil {
		logger.Warn("event update rejected",
			"event", "events_update_rejected",
			"module", "community-events/event-service",
			"layer", "application",
			"event_id", eventID,
			"user_id", actor.UserID,
			"error", err.Error(),
		)
		return ports.EventView{}, err
	}

	logger.Info("event updated",
		"event", "events_event_updated",
		"module", "community-events/event-service",
		"layer", "application",
		"event_id", view.Event.EventID,
		"status", string(view.Event.Status),
		"user_id", actor.UserID,
	)
	return view, nil
}

// DeleteEvent removes an upcoming event and everything hanging off it. The
// event.deleted envelope lists the reservation holders so they can be told.
func (uc EventUseCase) DeleteEvent(ctx context.Context, actor ports.Actor, eventID string) error {
	logger := application.ResolveLogger(uc.Logger)
	if actor.IsAnonymous() {
		return domainerrors.ErrUnauthenticated
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return domainerrors.ErrEventNotFound
	}

	now := resolveNow(uc.Clock)
	deleted, err := uc.Events.DeleteEvent(ctx, eventID, func(current entities.Event, rsvps []entities.RSVP) (ports.EventEnvelope, error) {
		if err := authorizeOrganizer(actor, current); err != nil {
			return ports.EventEnvelope{}, err
		}
		if err := current.CheckRemovable(now); err != nil {
			return ports.EventEnvelope{}, err
		}
		attendees := make([]map[string]any, 0, len(rsvps))
		for _, rsvp := range rsvps {
			attendees = append(attendees, map[string]any{
				"rsvp_id": rsvp.RSVPID,
				"user_id": rsvp.UserID,
				"name":    rsvp.Name,
				"email":   rsvp.Email,
				"phone":   rsvp.Phone,
			})
		}
		envelopeID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return ports.EventEnvelope{}, err
		}
		return newEventEnvelope(envelopeID, EventTypeEventDeleted, current.EventID, now, map[string]any{
			"event_id":     current.EventID,
			"event_title":  current.Title,
			"event_date":   current.Date.Format(time.RFC3339),
			"organizer_id": current.OrganizerID,
			"deleted_by":   actor.UserID,
			"attendees":    attendees,
		})
	})
	if err != nil {
		logger.Warn("event delete rejected",
			"event", "events_delete_rejected",
			"module", "community-events/event-service",
			"layer", "application",
			"event_id", eventID,
			"user_id", actor.UserID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("event deleted",
		"event", "events_event_deleted",
		"module", "community-events/event-service",
		"layer", "application",
		"event_id", deleted.EventID,
		"user_id", actor.UserID,
	)
	return nil
}

func authorizeOrganizer(actor ports.Actor, event entities.Event) error {
	if actor.Admin() || event.OrganizerID == actor.UserID {
		return nil
	}
	return domainerrors.ErrForbidden
}

func newPendingEvent(organizerID string, cmd CreateEventCommand, now time.Time) (entities.Event, error) {
	details, err := parseEventDetails(cmd, now)
	if err != nil {
		return entities.Event{}, err
	}
	return entities.Event{
		OrganizerID:  strings.TrimSpace(organizerID),
		Title:        details.Title,
		Description:  details.Description,
		Category:     details.Category,
		Location:     details.Location,
		Date:         details.Date,
		MaxAttendees: details.MaxAttendees,
		Status:       entities.EventStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func parseEventDetails(cmd CreateEventCommand, now time.Time) (entities.EventDetails, error) {
	title := strings.TrimSpace(cmd.Title)
	description := strings.TrimSpace(cmd.Description)
	location := strings.TrimSpace(cmd.Location)
	switch {
	case title == "":
		return entities.EventDetails{}, fmt.Errorf("%w: title is required", domainerrors.ErrValidation)
	case description == "":
		return entities.EventDetails{}, fmt.Errorf("%w: description is required", domainerrors.ErrValidation)
	case location == "":
		return entities.EventDetails{}, fmt.Errorf("%w: location is required", domainerrors.ErrValidation)
	case cmd.MaxAttendees < 1:
		return entities.EventDetails{}, fmt.Errorf("%w: max_attendees must be at least 1", domainerrors.ErrValidation)
	case cmd.Date.IsZero() || !cmd.Date.After(now):
		return entities.EventDetails{}, fmt.Errorf("%w: date must be in the future", domainerrors.ErrValidation)
	}
	category, ok := entities.ParseCategory(cmd.Category)
	if !ok {
		return entities.EventDetails{}, fmt.Errorf("%w: unknown category %q", domainerrors.ErrValidation, strings.TrimSpace(cmd.Category))
	}
	return entities.EventDetails{
		Title:        title,
		Description:  description,
		Category:     category,
		Location:     location,
		Date:         cmd.Date.UTC(),
		MaxAttendees: cmd.MaxAttendees,
	}, nil
}
