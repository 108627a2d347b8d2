package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"communitypulse/contexts/community-events/trust-score-service/domain/entities"
	domainerrors "communitypulse/contexts/community-events/trust-score-service/domain/errors"
	"communitypulse/contexts/community-events/trust-score-service/domain/services"
	"communitypulse/contexts/community-events/trust-score-service/ports"
)

// Service recomputes trust scores on every call. Nothing is cached, so a
// score always reflects the snapshot it was read from.
type Service struct {
	Activity  ports.ActivitySource
	Directory ports.Directory
	Clock     ports.Clock
	Logger    *slog.Logger
}

// ListOrganizerScores ranks every organizer by score, then hosted events,
// then organizer id.
func (s Service) ListOrganizerScores(ctx context.Context, actor ports.Actor) ([]entities.TrustScore, error) {
	if !actor.Admin() {
		return nil, domainerrors.ErrForbidden
	}
	activity, err := s.Activity.OrganizerActivity(ctx, "")
	if err != nil {
		s.logReadFailure(err, "")
		return nil, err
	}
	scores := s.scoreAll(activity)
	sort.SliceStable(scores, func(i, j int) bool {
		left, right := scores[i], scores[j]
		if left.Score != right.Score {
			return left.Score > right.Score
		}
		if left.EventsHosted != right.EventsHosted {
			return left.EventsHosted > right.EventsHosted
		}
		return left.OrganizerID < right.OrganizerID
	})
	if err := s.attachNames(ctx, scores); err != nil {
		return nil, err
	}
	return scores, nil
}

func (s Service) OrganizerScore(ctx context.Context, organizerID string) (entities.TrustScore, error) {
	organizerID = strings.TrimSpace(organizerID)
	if organizerID == "" {
		return entities.TrustScore{}, domainerrors.ErrOrganizerNotFound
	}
	activity, err := s.Activity.OrganizerActivity(ctx, organizerID)
	if err != nil {
		s.logReadFailure(err, organizerID)
		return entities.TrustScore{}, err
	}
	if len(activity) == 0 || len(activity[0].Events) == 0 {
		return entities.TrustScore{}, domainerrors.ErrOrganizerNotFound
	}
	scores := s.scoreAll(activity[:1])
	if err := s.attachNames(ctx, scores); err != nil {
		return entities.TrustScore{}, err
	}
	return scores[0], nil
}

func (s Service) scoreAll(activity []entities.OrganizerActivity) []entities.TrustScore {
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}
	scores := make([]entities.TrustScore, 0, len(activity))
	for _, item := range activity {
		scores = append(scores, services.Score(item, now))
	}
	return scores
}

func (s Service) attachNames(ctx context.Context, scores []entities.TrustScore) error {
	if s.Directory == nil || len(scores) == 0 {
		return nil
	}
	ids := make([]string, 0, len(scores))
	for _, score := range scores {
		ids = append(ids, score.OrganizerID)
	}
	names, err := s.Directory.DisplayNames(ctx, ids)
	if err != nil {
		return err
	}
	for i := range scores {
		scores[i].OrganizerName = names[scores[i].OrganizerID]
	}
	return nil
}

func (s Service) logReadFailure(err error, organizerID string) {
	ResolveLogger(s.Logger).Error("trust activity read failed",
		"event", "trust_activity_read_failed",
		"module", "community-events/trust-score-service",
		"layer", "application",
		"organizer_id", organizerID,
		"error", err.Error(),
	)
}
