package httpadapter

import (
	"context"
	"log/slog"

	"communitypulse/contexts/community-events/trust-score-service/application"
	"communitypulse/contexts/community-events/trust-score-service/domain/entities"
	"communitypulse/contexts/community-events/trust-score-service/ports"
	httptransport "communitypulse/contexts/community-events/trust-score-service/transport/http"

	"github.com/shopspring/decimal"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListTrustScoresHandler(ctx context.Context, actor ports.Actor) (httptransport.ListTrustScoresResponse, error) {
	scores, err := h.Service.ListOrganizerScores(ctx, actor)
	if err != nil {
		return httptransport.ListTrustScoresResponse{}, err
	}
	response := httptransport.ListTrustScoresResponse{
		Items: make([]httptransport.TrustScoreResponse, 0, len(scores)),
	}
	for _, score := range scores {
		response.Items = append(response.Items, mapScore(score))
	}
	return response, nil
}

func (h Handler) OrganizerScoreHandler(ctx context.Context, organizerID string) (httptransport.TrustScoreResponse, error) {
	score, err := h.Service.OrganizerScore(ctx, organizerID)
	if err != nil {
		return httptransport.TrustScoreResponse{}, err
	}
	return mapScore(score), nil
}

func mapScore(score entities.TrustScore) httptransport.TrustScoreResponse {
	return httptransport.TrustScoreResponse{
		OrganizerID:      score.OrganizerID,
		OrganizerName:    score.OrganizerName,
		EventsHosted:     score.EventsHosted,
		AttendanceRate:   round(score.AttendanceRate, 4),
		AvgRating:        round(score.AvgRating, 2),
		CancellationRate: round(score.CancellationRate, 4),
		TrustScore:       round(score.Score, 2),
		Unrated:          score.EventsHosted == 0,
	}
}

func round(value float64, places int32) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return rounded
}
