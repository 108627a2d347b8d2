package queries

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	"communitypulse/contexts/community-events/event-service/ports"
)

type ListEventsQuery struct {
	Category string
	Location string
	Upcoming bool
}

// EventDetail is the joined read model returned by GetEvent.
type EventDetail struct {
	View          ports.EventView
	OrganizerName string
}

type EventQueries struct {
	Events    ports.EventRepository
	RSVPs     ports.RSVPRepository
	Feedback  ports.FeedbackRepository
	Directory ports.OrganizerDirectory
	Clock     ports.Clock
}

// ListEvents returns approved events only. Trending flags are derived from
// the RSVP counts read with each call.
func (q EventQueries) ListEvents(ctx context.Context, query ListEventsQuery) ([]ports.EventView, error) {
	filter := ports.EventFilter{
		Status:   entities.EventStatusApproved,
		Location: strings.TrimSpace(query.Location),
		Window:   ports.WindowPast,
		Now:      q.now(),
	}
	if query.Upcoming {
		filter.Window = ports.WindowUpcoming
	}
	if raw := strings.TrimSpace(query.Category); raw != "" {
		category, ok := entities.ParseCategory(raw)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", domainerrors.ErrValidation, raw)
		}
		filter.Category = category
	}
	return q.Events.ListEventViews(ctx, filter)
}

func (q EventQueries) ListPendingEvents(ctx context.Context, actor ports.Actor) ([]ports.EventView, error) {
	if !actor.Admin() {
		return nil, domainerrors.ErrForbidden
	}
	return q.Events.ListEventViews(ctx, ports.EventFilter{
		Status: entities.EventStatusPending,
		Window: ports.WindowAny,
		Now:    q.now(),
	})
}

// GetEvent returns the joined view. Events that are not approved are only
// visible to their organizer and admins; everyone else gets not found.
func (q EventQueries) GetEvent(ctx context.Context, actor ports.Actor, eventID string) (EventDetail, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return EventDetail{}, domainerrors.ErrEventNotFound
	}
	view, err := q.Events.GetEventView(ctx, eventID)
	if err != nil {
		return EventDetail{}, err
	}
	if view.Event.Status != entities.EventStatusApproved && !canManage(actor, view.Event) {
		return EventDetail{}, domainerrors.ErrEventNotFound
	}

	detail := EventDetail{View: view}
	if q.Directory != nil {
		names, err := q.Directory.DisplayNames(ctx, []string{view.Event.OrganizerID})
		if err != nil {
			return EventDetail{}, err
		}
		detail.OrganizerName = names[view.Event.OrganizerID]
	}
	return detail, nil
}

// ListEventRSVPs exposes attendee contact details to the organizer and admins.
func (q EventQueries) ListEventRSVPs(ctx context.Context, actor ports.Actor, eventID string) ([]entities.RSVP, error) {
	if actor.IsAnonymous() {
		return nil, domainerrors.ErrUnauthenticated
	}
	view, err := q.Events.GetEventView(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return nil, err
	}
	if !canManage(actor, view.Event) {
		return nil, domainerrors.ErrForbidden
	}
	return q.RSVPs.ListRSVPs(ctx, view.Event.EventID)
}

// ListFeedback returns an event's feedback, newest first.
func (q EventQueries) ListFeedback(ctx context.Context, eventID string) ([]entities.Feedback, error) {
	view, err := q.Events.GetEventView(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return nil, err
	}
	items, err := q.Feedback.ListFeedback(ctx, view.Event.EventID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].FeedbackID < items[j].FeedbackID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (q EventQueries) now() time.Time {
	if q.Clock == nil {
		return time.Now().UTC()
	}
	return q.Clock.Now().UTC()
}

func canManage(actor ports.Actor, event entities.Event) bool {
	if actor.IsAnonymous() {
		return false
	}
	return actor.Admin() || actor.UserID == event.OrganizerID
}
