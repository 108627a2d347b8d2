package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"communitypulse/contexts/identity-access/identity-service/domain/entities"
	domainerrors "communitypulse/contexts/identity-access/identity-service/domain/errors"
	"communitypulse/contexts/identity-access/identity-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	users   map[string]entities.User
	byEmail map[string]string
}

func NewStore(seed []entities.User) *Store {
	store := &Store{
		users:   make(map[string]entities.User, len(seed)),
		byEmail: make(map[string]string, len(seed)),
	}
	for _, user := range seed {
		store.users[user.UserID] = user
		store.byEmail[entities.NormalizeEmail(user.Email)] = user.UserID
	}
	return store
}

func (s *Store) CreateUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := entities.NormalizeEmail(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return domainerrors.ErrEmailTaken
	}
	user.Email = email
	s.users[user.UserID] = user
	s.byEmail[email] = user.UserID
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[entities.NormalizeEmail(email)]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return s.users[userID], nil
}

func (s *Store) ListUsersByID(_ context.Context, userIDs []string) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.User, 0, len(userIDs))
	for _, userID := range userIDs {
		if user, ok := s.users[strings.TrimSpace(userID)]; ok {
			items = append(items, user)
		}
	}
	return items, nil
}

func (s *Store) CountUsers(_ context.Context, createdSince time.Time) (ports.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := ports.UserStats{TotalUsers: len(s.users), CountedFrom: createdSince.UTC()}
	for _, user := range s.users {
		if !user.CreatedAt.Before(createdSince) {
			stats.NewSince++
		}
	}
	return stats, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.UserRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
