package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"communitypulse/contexts/community-signals/whisper-service/domain/entities"
	domainerrors "communitypulse/contexts/community-signals/whisper-service/domain/errors"
	"communitypulse/contexts/community-signals/whisper-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	whispers map[string]entities.Whisper
}

func NewStore(seed []entities.Whisper) *Store {
	whispers := make(map[string]entities.Whisper, len(seed))
	for _, whisper := range seed {
		whispers[whisper.WhisperID] = cloneWhisper(whisper)
	}
	return &Store{whispers: whispers}
}

func (s *Store) CreateWhisper(ctx context.Context, whisper entities.Whisper) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.whispers[whisper.WhisperID] = cloneWhisper(whisper)
	return nil
}

func (s *Store) ListWhispers(_ context.Context, filter ports.WhisperFilter) ([]entities.Whisper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	location := strings.ToLower(strings.TrimSpace(filter.Location))
	items := make([]entities.Whisper, 0, len(s.whispers))
	for _, whisper := range s.whispers {
		if filter.ApprovedOnly && !whisper.IsApproved {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(whisper.Location), location) {
			continue
		}
		items = append(items, cloneWhisper(whisper))
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].WhisperID < items[j].WhisperID
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

// ApproveWhisper keeps the first approval time when called twice.
func (s *Store) ApproveWhisper(ctx context.Context, whisperID string, at time.Time) (entities.Whisper, error) {
	if err := ctx.Err(); err != nil {
		return entities.Whisper{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	whisper, ok := s.whispers[strings.TrimSpace(whisperID)]
	if !ok {
		return entities.Whisper{}, domainerrors.ErrWhisperNotFound
	}
	if !whisper.IsApproved {
		approvedAt := at.UTC()
		whisper.IsApproved = true
		whisper.ApprovedAt = &approvedAt
		s.whispers[whisper.WhisperID] = whisper
	}
	return cloneWhisper(whisper), nil
}

func (s *Store) DeleteWhisper(ctx context.Context, whisperID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	whisperID = strings.TrimSpace(whisperID)
	if _, ok := s.whispers[whisperID]; !ok {
		return domainerrors.ErrWhisperNotFound
	}
	delete(s.whispers, whisperID)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func cloneWhisper(whisper entities.Whisper) entities.Whisper {
	if whisper.ApprovedAt != nil {
		approvedAt := *whisper.ApprovedAt
		whisper.ApprovedAt = &approvedAt
	}
	return whisper
}

var (
	_ ports.WhisperRepository = (*Store)(nil)
	_ ports.Clock             = (*Store)(nil)
	_ ports.IDGenerator       = (*Store)(nil)
)
