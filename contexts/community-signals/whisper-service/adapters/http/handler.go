package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"communitypulse/contexts/community-signals/whisper-service/application"
	"communitypulse/contexts/community-signals/whisper-service/domain/entities"
	"communitypulse/contexts/community-signals/whisper-service/ports"
	httptransport "communitypulse/contexts/community-signals/whisper-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) PostWhisperHandler(ctx context.Context, req httptransport.PostWhisperRequest) (httptransport.WhisperResponse, error) {
	whisper, err := h.Service.PostWhisper(ctx, req.Text, req.Location)
	if err != nil {
		return httptransport.WhisperResponse{}, err
	}
	return mapWhisper(whisper), nil
}

func (h Handler) ListWhispersHandler(ctx context.Context, actor ports.Actor, location string, limit int) (httptransport.ListWhispersResponse, error) {
	whispers, err := h.Service.ListWhispers(ctx, actor, application.ListWhispersQuery{
		Location: location,
		Limit:    limit,
	})
	if err != nil {
		return httptransport.ListWhispersResponse{}, err
	}
	response := httptransport.ListWhispersResponse{Items: make([]httptransport.WhisperResponse, 0, len(whispers))}
	for _, whisper := range whispers {
		response.Items = append(response.Items, mapWhisper(whisper))
	}
	return response, nil
}

func (h Handler) ModerateWhisperHandler(ctx context.Context, actor ports.Actor, whisperID string, approve bool) (httptransport.ModerateWhisperResponse, error) {
	whisper, deleted, err := h.Service.Moderate(ctx, actor, whisperID, approve)
	if err != nil {
		return httptransport.ModerateWhisperResponse{}, err
	}
	response := httptransport.ModerateWhisperResponse{WhisperID: whisperID, Deleted: deleted}
	if !deleted {
		mapped := mapWhisper(whisper)
		response.Whisper = &mapped
	}
	return response, nil
}

func mapWhisper(whisper entities.Whisper) httptransport.WhisperResponse {
	response := httptransport.WhisperResponse{
		WhisperID:  whisper.WhisperID,
		Text:       whisper.Text,
		Location:   whisper.Location,
		IsApproved: whisper.IsApproved,
		CreatedAt:  whisper.CreatedAt.UTC().Format(time.RFC3339),
	}
	if whisper.ApprovedAt != nil {
		response.ApprovedAt = whisper.ApprovedAt.UTC().Format(time.RFC3339)
	}
	return response
}
