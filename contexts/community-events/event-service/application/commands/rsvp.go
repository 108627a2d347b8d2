package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "communitypulse/contexts/community-events/event-service/application"
	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	"communitypulse/contexts/community-events/event-service/ports"
)

type RequestRSVPCommand struct {
	EventID       string
	Name          string
	Email         string
	Phone         string
	AttendeeCount int
}

// RSVPUseCase admits and cancels reservations. Admission runs as one atomic
// read-check-write inside the repository, serialized per event.
type RSVPUseCase struct {
	RSVPs  ports.RSVPRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc RSVPUseCase) RequestRSVP(ctx context.Context, actor ports.Actor, cmd RequestRSVPCommand) (ports.AdmissionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if actor.IsAnonymous() {
		return ports.AdmissionResult{}, domainerrors.ErrUnauthenticated
	}
	cmd = normalizeRSVPCommand(cmd)
	if err := validateRSVPCommand(cmd); err != nil {
		logger.Warn("rsvp validation failed",
			"event", "events_rsvp_validation_failed",
			"module", "community-events/event-service",
			"layer", "application",
			"event_id", cmd.EventID,
			"user_id", actor.UserID,
			"error", err.Error(),
		)
		return ports.AdmissionResult{}, err
	}

	now := resolveNow(uc.Clock)
	result, err := uc.RSVPs.AdmitRSVP(ctx, cmd.EventID, actor.UserID,
		func(event entities.Event, existing *entities.RSVP, committed int) (ports.Admission, error) {
			if err := entities.CheckAdmission(event, committed, existing, cmd.AttendeeCount, now); err != nil {
				return ports.Admission{}, err
			}
			rsvp := entities.RSVP{
				EventID:       event.EventID,
				UserID:        actor.UserID,
				Name:          cmd.Name,
				Email:         cmd.Email,
				Phone:         cmd.Phone,
				AttendeeCount: cmd.AttendeeCount,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			previousCount := 0
			if existing != nil {
				rsvp.RSVPID = existing.RSVPID
				rsvp.CreatedAt = existing.CreatedAt
				previousCount = existing.AttendeeCount
			} else {
				rsvpID, err := uc.IDGen.NewID(ctx)
				if err != nil {
					return ports.Admission{}, err
				}
				rsvp.RSVPID = rsvpID
			}

			envelopeID, err := uc.IDGen.NewID(ctx)
			if err != nil {
				return ports.Admission{}, err
			}
			envelope, err := newEventEnvelope(envelopeID, EventTypeRSVPAdmitted, event.EventID, now, map[string]any{
				"rsvp_id":             rsvp.RSVPID,
				"event_id":            event.EventID,
				"event_title":         event.Title,
				"event_date":          event.Date.Format(time.RFC3339),
				"event_location":      event.Location,
				"user_id":             rsvp.UserID,
				"name":                rsvp.Name,
				"email":               rsvp.Email,
				"phone":               rsvp.Phone,
				"attendee_count":      rsvp.AttendeeCount,
				"previous_count":      previousCount,
				"committed_attendees": committed - previousCount + rsvp.AttendeeCount,
			})
			if err != nil {
				return ports.Admission{}, err
			}
			return ports.Admission{RSVP: rsvp, Envelope: envelope}, nil
		},
	)
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, domainerrors.ErrCapacityExceeded) ||
			errors.Is(err, domainerrors.ErrEventNotOpen) ||
			errors.Is(err, domainerrors.ErrEventNotFound) {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "rsvp admission declined",
			"event", "events_rsvp_admission_declined",
			"module", "community-events/event-service",
			"layer", "application",
			"event_id", cmd.EventID,
			"user_id", actor.UserID,
			"attendee_count", cmd.AttendeeCount,
			"error", err.Error(),
		)
		return ports.AdmissionResult{}, err
	}

	logger.Info("rsvp admitted",
		"event", "events_rsvp_admitted",
		"module", "community-events/event-service",
		"layer", "application",
		"event_id", result.RSVP.EventID,
		"user_id", result.RSVP.UserID,
		"attendee_count", result.RSVP.AttendeeCount,
		"committed_attendees", result.CommittedAttendees,
		"created", result.Created,
	)
	return result, nil
}

// CancelRSVP removes the caller's reservation. Having nothing to cancel is
// not an error; the boolean reports whether a reservation was removed.
func (uc RSVPUseCase) CancelRSVP(ctx context.Context, actor ports.Actor, eventID string) (bool, error) {
	logger := application.ResolveLogger(uc.Logger)
	if actor.IsAnonymous() {
		return false, domainerrors.ErrUnauthenticated
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return false, fmt.Errorf("%w: event id is required", domainerrors.ErrValidation)
	}

	now := resolveNow(uc.Clock)
	_, removed, err := uc.RSVPs.CancelRSVP(ctx, eventID, actor.UserID, now, func(cancelled entities.RSVP) (ports.EventEnvelope, error) {
		envelopeID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return ports.EventEnvelope{}, err
		}
		return newEventEnvelope(envelopeID, EventTypeRSVPCancelled, cancelled.EventID, now, map[string]any{
			"rsvp_id":        cancelled.RSVPID,
			"event_id":       cancelled.EventID,
			"user_id":        cancelled.UserID,
			"attendee_count": cancelled.AttendeeCount,
		})
	})
	if err != nil {
		return false, err
	}
	logger.Info("rsvp cancel processed",
		"event", "events_rsvp_cancel_processed",
		"module", "community-events/event-service",
		"layer", "application",
		"event_id", eventID,
		"user_id", actor.UserID,
		"removed", removed,
	)
	return removed, nil
}

// MarkAttendance records whether a reservation holder attended. Only the
// event's organizer or an admin may mark it, and only once the event started.
func (uc RSVPUseCase) MarkAttendance(ctx context.Context, actor ports.Actor, rsvpID string, attended bool) (entities.RSVP, error) {
	logger := application.ResolveLogger(uc.Logger)
	if actor.IsAnonymous() {
		return entities.RSVP{}, domainerrors.ErrUnauthenticated
	}
	rsvpID = strings.TrimSpace(rsvpID)
	if rsvpID == "" {
		return entities.RSVP{}, domainerrors.ErrRSVPNotFound
	}

	now := resolveNow(uc.Clock)
	marked, err := uc.RSVPs.MarkAttendance(ctx, rsvpID, func(event entities.Event, current entities.RSVP) (entities.RSVP, ports.EventEnvelope, error) {
		if err := authorizeOrganizer(actor, event); err != nil {
			return current, ports.EventEnvelope{}, err
		}
		next, err := current.MarkAttendance(event, attended, now)
		if err != nil {
			return current, ports.EventEnvelope{}, err
		}
		envelopeID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return current, ports.EventEnvelope{}, err
		}
		envelope, err := newEventEnvelope(envelopeID, EventTypeRSVPAttendance, event.EventID, now, map[string]any{
			"rsvp_id":   next.RSVPID,
			"event_id":  next.EventID,
			"user_id":   next.UserID,
			"attended":  next.Attended,
			"marked_by": actor.UserID,
		})
		return next, envelope, err
	})
	if err != nil {
		logger.Warn("attendance mark rejected",
			"event", "events_attendance_rejected",
			"module", "community-events/event-service",
			"layer", "application",
			"rsvp_id", rsvpID,
			"user_id", actor.UserID,
			"error", err.Error(),
		)
		return entities.RSVP{}, err
	}

	logger.Info("attendance marked",
		"event", "events_attendance_marked",
		"module", "community-events/event-service",
		"layer", "application",
		"rsvp_id", marked.RSVPID,
		"event_id", marked.EventID,
		"attended", marked.Attended,
	)
	return marked, nil
}

func normalizeRSVPCommand(cmd RequestRSVPCommand) RequestRSVPCommand {
	cmd.EventID = strings.TrimSpace(cmd.EventID)
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Email = strings.TrimSpace(cmd.Email)
	cmd.Phone = strings.TrimSpace(cmd.Phone)
	return cmd
}

func validateRSVPCommand(cmd RequestRSVPCommand) error {
	switch {
	case cmd.EventID == "" || cmd.Name == "" || cmd.Email == "" || cmd.Phone == "":
		return fmt.Errorf("%w: name, email and phone are required", domainerrors.ErrValidation)
	case !entities.ValidContactEmail(cmd.Email):
		return fmt.Errorf("%w: email is not well-formed", domainerrors.ErrValidation)
	case cmd.AttendeeCount < entities.MinAttendeeCount || cmd.AttendeeCount > entities.MaxAttendeeCount:
		return fmt.Errorf("%w: attendee_count must be between %d and %d",
			domainerrors.ErrValidation, entities.MinAttendeeCount, entities.MaxAttendeeCount)
	}
	return nil
}
