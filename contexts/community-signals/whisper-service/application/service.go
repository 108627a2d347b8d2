package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"communitypulse/contexts/community-signals/whisper-service/domain/entities"
	domainerrors "communitypulse/contexts/community-signals/whisper-service/domain/errors"
	"communitypulse/contexts/community-signals/whisper-service/ports"
)

type Service struct {
	Whispers ports.WhisperRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

type ListWhispersQuery struct {
	Location string
	Limit    int
}

// PostWhisper accepts anonymous posts. New whispers wait for moderation.
func (s Service) PostWhisper(ctx context.Context, text string, location string) (entities.Whisper, error) {
	text = strings.TrimSpace(text)
	location = strings.TrimSpace(location)
	switch {
	case text == "" || location == "":
		return entities.Whisper{}, fmt.Errorf("%w: text and location are required", domainerrors.ErrValidation)
	case utf8.RuneCountInString(text) > entities.MaxTextLength:
		return entities.Whisper{}, fmt.Errorf("%w: text exceeds %d characters", domainerrors.ErrValidation, entities.MaxTextLength)
	}

	whisperID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Whisper{}, err
	}
	whisper := entities.Whisper{
		WhisperID: whisperID,
		Text:      text,
		Location:  location,
		CreatedAt: s.now(),
	}
	if err := s.Whispers.CreateWhisper(ctx, whisper); err != nil {
		return entities.Whisper{}, err
	}
	ResolveLogger(s.Logger).Info("whisper queued for moderation",
		"event", "whispers_whisper_queued",
		"module", "community-signals/whisper-service",
		"layer", "application",
		"whisper_id", whisper.WhisperID,
	)
	return whisper, nil
}

// ListWhispers shows admins the whole queue and everyone else approved
// whispers only.
func (s Service) ListWhispers(ctx context.Context, actor ports.Actor, query ListWhispersQuery) ([]entities.Whisper, error) {
	return s.Whispers.ListWhispers(ctx, ports.WhisperFilter{
		ApprovedOnly: !actor.Admin(),
		Location:     strings.TrimSpace(query.Location),
		Limit:        entities.ClampLimit(query.Limit),
	})
}

// Moderate approves a whisper or deletes it for good.
func (s Service) Moderate(ctx context.Context, actor ports.Actor, whisperID string, approve bool) (entities.Whisper, bool, error) {
	logger := ResolveLogger(s.Logger)
	if !actor.Admin() {
		return entities.Whisper{}, false, domainerrors.ErrForbidden
	}
	whisperID = strings.TrimSpace(whisperID)
	if whisperID == "" {
		return entities.Whisper{}, false, domainerrors.ErrWhisperNotFound
	}

	if !approve {
		if err := s.Whispers.DeleteWhisper(ctx, whisperID); err != nil {
			return entities.Whisper{}, false, err
		}
		logger.Info("whisper rejected",
			"event", "whispers_whisper_deleted",
			"module", "community-signals/whisper-service",
			"layer", "application",
			"whisper_id", whisperID,
			"admin_id", actor.UserID,
		)
		return entities.Whisper{}, true, nil
	}

	whisper, err := s.Whispers.ApproveWhisper(ctx, whisperID, s.now())
	if err != nil {
		return entities.Whisper{}, false, err
	}
	logger.Info("whisper approved",
		"event", "whispers_whisper_approved",
		"module", "community-signals/whisper-service",
		"layer", "application",
		"whisper_id", whisperID,
		"admin_id", actor.UserID,
	)
	return whisper, false, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
