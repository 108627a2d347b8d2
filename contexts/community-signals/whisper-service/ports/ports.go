package ports

import (
	"context"
	"time"

	"communitypulse/contexts/community-signals/whisper-service/domain/entities"
	identityv1 "communitypulse/contracts/identity/v1"
)

type Actor = identityv1.Caller

type WhisperFilter struct {
	ApprovedOnly bool
	Location     string
	Limit        int
}

type WhisperRepository interface {
	CreateWhisper(ctx context.Context, whisper entities.Whisper) error
	// ListWhispers returns newest first.
	ListWhispers(ctx context.Context, filter WhisperFilter) ([]entities.Whisper, error)
	// ApproveWhisper and DeleteWhisper are single conditional writes that
	// fail with not found when the whisper is gone.
	ApproveWhisper(ctx context.Context, whisperID string, at time.Time) (entities.Whisper, error)
	DeleteWhisper(ctx context.Context, whisperID string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
