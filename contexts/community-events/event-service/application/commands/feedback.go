package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "communitypulse/contexts/community-events/event-service/application"
	"communitypulse/contexts/community-events/event-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/event-service/domain/errors"
	"communitypulse/contexts/community-events/event-service/ports"
)

type SubmitFeedbackCommand struct {
	EventID string
	Rating  int
	Comment string
}

type FeedbackUseCase struct {
	Events   ports.EventRepository
	RSVPs    ports.RSVPRepository
	Feedback ports.FeedbackRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// SubmitFeedback records one rating per attendee once the event date has
// passed. Only users holding a reservation for the event may rate it.
func (uc FeedbackUseCase) SubmitFeedback(ctx context.Context, actor ports.Actor, cmd SubmitFeedbackCommand) (entities.Feedback, error) {
	logger := application.ResolveLogger(uc.Logger)
	if actor.IsAnonymous() {
		return entities.Feedback{}, domainerrors.ErrUnauthenticated
	}
	cmd.EventID = strings.TrimSpace(cmd.EventID)
	cmd.Comment = strings.TrimSpace(cmd.Comment)
	if cmd.Rating < entities.MinRating || cmd.Rating > entities.MaxRating {
		return entities.Feedback{}, fmt.Errorf("%w: rating must be between %d and %d",
			domainerrors.ErrValidation, entities.MinRating, entities.MaxRating)
	}
	if cmd.EventID == "" {
		return entities.Feedback{}, domainerrors.ErrEventNotFound
	}

	now := resolveNow(uc.Clock)
	view, err := uc.Events.GetEventView(ctx, cmd.EventID)
	if err != nil {
		return entities.Feedback{}, err
	}
	if !view.Event.HasHappened(now) {
		return entities.Feedback{}, domainerrors.ErrFeedbackNotOpen
	}
	if _, attended, err := uc.RSVPs.GetRSVP(ctx, cmd.EventID, actor.UserID); err != nil {
		return entities.Feedback{}, err
	} else if !attended {
		return entities.Feedback{}, fmt.Errorf("%w: only attendees may leave feedback", domainerrors.ErrForbidden)
	}

	feedbackID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Feedback{}, err
	}
	feedback := entities.Feedback{
		FeedbackID: feedbackID,
		EventID:    cmd.EventID,
		UserID:     actor.UserID,
		Rating:     cmd.Rating,
		Comment:    cmd.Comment,
		CreatedAt:  now,
	}
	if err := uc.Feedback.CreateFeedback(ctx, feedback); err != nil {
		return entities.Feedback{}, err
	}
	logger.Info("feedback submitted",
		"event", "events_feedback_submitted",
		"module", "community-events/event-service",
		"layer", "application",
		"event_id", feedback.EventID,
		"user_id", feedback.UserID,
		"rating", feedback.Rating,
	)
	return feedback, nil
}
