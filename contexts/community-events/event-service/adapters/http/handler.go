package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"communitypulse/contexts/community-events/event-service/application/commands"
	"communitypulse/contexts/community-events/event-service/application/queries"
	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	"communitypulse/contexts/community-events/event-service/ports"
	httptransport "communitypulse/contexts/community-events/event-service/transport/http"

	"github.com/shopspring/decimal"
)

type Handler struct {
	Events    commands.EventUseCase
	RSVPs     commands.RSVPUseCase
	Feedback  commands.FeedbackUseCase
	Queries   queries.EventQueries
	Analytics queries.AnalyticsQuery
	Logger    *slog.Logger
}

func (h Handler) CreateEventHandler(
	ctx context.Context,
	actor ports.Actor,
	req httptransport.CreateEventRequest,
) (httptransport.EventResponse, error) {
	if actor.IsAnonymous() {
		return httptransport.EventResponse{}, domainerrors.ErrUnauthenticated
	}
	date, err := parseEventDate(req.Date)
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	event, err := h.Events.CreateEvent(ctx, actor, commands.CreateEventCommand{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Location:     req.Location,
		Date:         date,
		MaxAttendees: req.MaxAttendees,
	})
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	return mapEventView(ports.EventView{Event: event}, ""), nil
}

func (h Handler) UpdateEventHandler(
	ctx context.Context,
	actor ports.Actor,
	eventID string,
	req httptransport.CreateEventRequest,
) (httptransport.EventResponse, error) {
	if actor.IsAnonymous() {
		return httptransport.EventResponse{}, domainerrors.ErrUnauthenticated
	}
	date, err := parseEventDate(req.Date)
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	view, err := h.Events.UpdateEvent(ctx, actor, eventID, commands.CreateEventCommand{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Location:     req.Location,
		Date:         date,
		MaxAttendees: req.MaxAttendees,
	})
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	return mapEventView(view, ""), nil
}

func (h Handler) DeleteEventHandler(ctx context.Context, actor ports.Actor, eventID string) (httptransport.DeleteEventResponse, error) {
	if err := h.Events.DeleteEvent(ctx, actor, eventID); err != nil {
		return httptransport.DeleteEventResponse{}, err
	}
	return httptransport.DeleteEventResponse{EventID: strings.TrimSpace(eventID), Deleted: true}, nil
}

func (h Handler) ListEventsHandler(
	ctx context.Context,
	category string,
	location string,
	upcoming bool,
) (httptransport.ListEventsResponse, error) {
	views, err := h.Queries.ListEvents(ctx, queries.ListEventsQuery{
		Category: category,
		Location: location,
		Upcoming: upcoming,
	})
	if err != nil {
		return httptransport.ListEventsResponse{}, err
	}
	return mapEventViews(views), nil
}

func (h Handler) ListPendingEventsHandler(ctx context.Context, actor ports.Actor) (httptransport.ListEventsResponse, error) {
	views, err := h.Queries.ListPendingEvents(ctx, actor)
	if err != nil {
		return httptransport.ListEventsResponse{}, err
	}
	return mapEventViews(views), nil
}

func (h Handler) GetEventHandler(ctx context.Context, actor ports.Actor, eventID string) (httptransport.EventResponse, error) {
	detail, err := h.Queries.GetEvent(ctx, actor, eventID)
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	return mapEventView(detail.View, detail.OrganizerName), nil
}

func (h Handler) DecideEventHandler(
	ctx context.Context,
	actor ports.Actor,
	eventID string,
	approve bool,
) (httptransport.EventResponse, error) {
	event, err := h.Events.DecideEvent(ctx, actor, eventID, approve)
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	view, err := h.Queries.Events.GetEventView(ctx, event.EventID)
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	return mapEventView(view, ""), nil
}

func (h Handler) RequestRSVPHandler(
	ctx context.Context,
	actor ports.Actor,
	eventID string,
	req httptransport.RSVPRequest,
) (httptransport.AdmitRSVPResponse, error) {
	result, err := h.RSVPs.RequestRSVP(ctx, actor, commands.RequestRSVPCommand{
		EventID:       eventID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		AttendeeCount: req.AttendeeCount,
	})
	if err != nil {
		return httptransport.AdmitRSVPResponse{}, err
	}
	remaining := result.Event.MaxAttendees - result.CommittedAttendees
	if remaining < 0 {
		remaining = 0
	}
	return httptransport.AdmitRSVPResponse{
		RSVP:               mapRSVP(result.RSVP),
		Created:            result.Created,
		CommittedAttendees: result.CommittedAttendees,
		RemainingCapacity:  remaining,
	}, nil
}

func (h Handler) CancelRSVPHandler(ctx context.Context, actor ports.Actor, eventID string) (httptransport.CancelRSVPResponse, error) {
	removed, err := h.RSVPs.CancelRSVP(ctx, actor, eventID)
	if err != nil {
		return httptransport.CancelRSVPResponse{}, err
	}
	return httptransport.CancelRSVPResponse{
		EventID: strings.TrimSpace(eventID),
		Removed: removed,
	}, nil
}

func (h Handler) MarkAttendanceHandler(
	ctx context.Context,
	actor ports.Actor,
	rsvpID string,
	attended bool,
) (httptransport.RSVPResponse, error) {
	rsvp, err := h.RSVPs.MarkAttendance(ctx, actor, rsvpID, attended)
	if err != nil {
		return httptransport.RSVPResponse{}, err
	}
	return mapRSVP(rsvp), nil
}

func (h Handler) ListEventRSVPsHandler(ctx context.Context, actor ports.Actor, eventID string) (httptransport.ListRSVPsResponse, error) {
	items, err := h.Queries.ListEventRSVPs(ctx, actor, eventID)
	if err != nil {
		return httptransport.ListRSVPsResponse{}, err
	}
	response := httptransport.ListRSVPsResponse{Items: make([]httptransport.RSVPResponse, 0, len(items))}
	for _, item := range items {
		response.Items = append(response.Items, mapRSVP(item))
	}
	return response, nil
}

func (h Handler) SubmitFeedbackHandler(
	ctx context.Context,
	actor ports.Actor,
	eventID string,
	req httptransport.FeedbackRequest,
) (httptransport.FeedbackResponse, error) {
	feedback, err := h.Feedback.SubmitFeedback(ctx, actor, commands.SubmitFeedbackCommand{
		EventID: eventID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return httptransport.FeedbackResponse{}, err
	}
	return mapFeedback(feedback), nil
}

func (h Handler) ListFeedbackHandler(ctx context.Context, eventID string) (httptransport.ListFeedbackResponse, error) {
	items, err := h.Queries.ListFeedback(ctx, eventID)
	if err != nil {
		return httptransport.ListFeedbackResponse{}, err
	}
	response := httptransport.ListFeedbackResponse{Items: make([]httptransport.FeedbackResponse, 0, len(items))}
	for _, item := range items {
		response.Items = append(response.Items, mapFeedback(item))
	}
	return response, nil
}

func (h Handler) AnalyticsHandler(ctx context.Context, actor ports.Actor) (httptransport.AnalyticsResponse, error) {
	result, err := h.Analytics.Analytics(ctx, actor)
	if err != nil {
		return httptransport.AnalyticsResponse{}, err
	}
	response := httptransport.AnalyticsResponse{
		Events: httptransport.EventAnalyticsResponse{
			Total:      result.TotalEvents,
			ByStatus:   make(map[string]int, len(result.ByStatus)),
			Upcoming:   result.UpcomingEvents,
			Categories: make([]httptransport.CategoryCountResponse, 0, len(result.Categories)),
			Popular:    make([]httptransport.PopularEventResponse, 0, len(result.Popular)),
		},
		Feedback: httptransport.FeedbackAnalyticsResponse{
			Total:         result.FeedbackTotal,
			AverageRating: round2(result.AverageRating),
		},
		Users: httptransport.UserAnalyticsResponse{
			Total:       result.Users.Total,
			NewLastWeek: result.Users.NewLastWeek,
		},
		GeneratedAt: result.GeneratedAt.UTC().Format(time.RFC3339),
	}
	for status, count := range result.ByStatus {
		response.Events.ByStatus[string(status)] = count
	}
	for _, item := range result.Categories {
		response.Events.Categories = append(response.Events.Categories, httptransport.CategoryCountResponse{
			Category: string(item.Category),
			Count:    item.Count,
		})
	}
	for _, item := range result.Popular {
		response.Events.Popular = append(response.Events.Popular, httptransport.PopularEventResponse{
			EventID:   item.EventID,
			Title:     item.Title,
			Date:      item.Date.UTC().Format(time.RFC3339),
			RSVPCount: item.RSVPCount,
		})
	}
	return response, nil
}

func parseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", domainerrors.ErrValidation)
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be RFC3339", domainerrors.ErrValidation)
	}
	return parsed.UTC(), nil
}

func mapEventViews(views []ports.EventView) httptransport.ListEventsResponse {
	response := httptransport.ListEventsResponse{Items: make([]httptransport.EventResponse, 0, len(views))}
	for _, view := range views {
		response.Items = append(response.Items, mapEventView(view, ""))
	}
	return response
}

func mapEventView(view ports.EventView, organizerName string) httptransport.EventResponse {
	event := view.Event
	response := httptransport.EventResponse{
		EventID:            event.EventID,
		Title:              event.Title,
		Description:        event.Description,
		Category:           string(event.Category),
		Location:           event.Location,
		Date:               event.Date.UTC().Format(time.RFC3339),
		MaxAttendees:       event.MaxAttendees,
		Status:             string(event.Status),
		OrganizerID:        event.OrganizerID,
		RSVPCount:          view.RSVPCount,
		CommittedAttendees: view.CommittedAttendees,
		RemainingCapacity:  view.RemainingCapacity(),
		Trending:           view.Trending(),
		DecidedBy:          event.DecidedBy,
		CreatedAt:          event.CreatedAt.UTC().Format(time.RFC3339),
	}
	if organizerName != "" {
		response.Organizer = &httptransport.OrganizerSummary{
			UserID: event.OrganizerID,
			Name:   organizerName,
		}
	}
	if event.DecidedAt != nil {
		response.DecidedAt = event.DecidedAt.UTC().Format(time.RFC3339)
	}
	return response
}

func mapRSVP(item entities.RSVP) httptransport.RSVPResponse {
	response := httptransport.RSVPResponse{
		RSVPID:        item.RSVPID,
		EventID:       item.EventID,
		UserID:        item.UserID,
		Name:          item.Name,
		Email:         item.Email,
		Phone:         item.Phone,
		AttendeeCount: item.AttendeeCount,
		Attended:      item.Attended,
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.AttendanceMarkedAt != nil {
		response.AttendanceMarkedAt = item.AttendanceMarkedAt.UTC().Format(time.RFC3339)
	}
	return response
}

func mapFeedback(item entities.Feedback) httptransport.FeedbackResponse {
	return httptransport.FeedbackResponse{
		FeedbackID: item.FeedbackID,
		EventID:    item.EventID,
		UserID:     item.UserID,
		Rating:     item.Rating,
		Comment:    item.Comment,
		CreatedAt:  item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func round2(value float64) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(2).Float64()
	return rounded
}
