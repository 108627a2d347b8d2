package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"communitypulse/contexts/community-signals/poll-service/domain/entities"
	domainerrors "communitypulse/contexts/community-signals/poll-service/domain/errors"
	"communitypulse/contexts/community-signals/poll-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	polls map[string]entities.Poll
	votes map[string]entities.Vote
}

func NewStore(seed []entities.Poll) *Store {
	polls := make(map[string]entities.Poll, len(seed))
	for _, poll := range seed {
		polls[poll.PollID] = clonePoll(poll)
	}
	return &Store{
		polls: polls,
		votes: make(map[string]entities.Vote),
	}
}

func (s *Store) CreatePoll(ctx context.Context, poll entities.Poll) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.polls[poll.PollID]; exists {
		return domainerrors.ErrConflict
	}
	s.polls[poll.PollID] = clonePoll(poll)
	return nil
}

func (s *Store) GetPoll(_ context.Context, pollID string) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return clonePoll(poll), nil
}

func (s *Store) ListPolls(_ context.Context) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Poll, 0, len(s.polls))
	for _, poll := range s.polls {
		items = append(items, clonePoll(poll))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].IsActive != items[j].IsActive {
			return items[i].IsActive
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].PollID < items[j].PollID
	})
	return items, nil
}

func (s *Store) ClosePoll(ctx context.Context, pollID string, close ports.CloseFunc) (entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	next, err := close(clonePoll(current))
	if err != nil {
		return entities.Poll{}, err
	}
	if err := ctx.Err(); err != nil {
		return entities.Poll{}, err
	}
	s.polls[current.PollID] = clonePoll(next)
	return next, nil
}

func (s *Store) CastVote(ctx context.Context, pollID string, userID string, vote ports.VoteFunc) (ports.VoteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return ports.VoteResult{}, domainerrors.ErrPollNotFound
	}
	key := voteKey(current.PollID, userID)
	var existing *entities.Vote
	if previous, ok := s.votes[key]; ok {
		existing = &previous
	}

	next, record, err := vote(clonePoll(current), existing)
	if err != nil {
		return ports.VoteResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return ports.VoteResult{}, err
	}
	s.polls[current.PollID] = clonePoll(next)
	s.votes[key] = record

	result := ports.VoteResult{Poll: next, Vote: record}
	if existing != nil {
		result.PreviousOption = existing.Option
	}
	return result, nil
}

func (s *Store) CountVotes(_ context.Context, pollID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pollID = strings.TrimSpace(pollID)
	count := 0
	for _, item := range s.votes {
		if item.PollID == pollID {
			count++
		}
	}
	return count, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func clonePoll(poll entities.Poll) entities.Poll {
	poll.Options = append([]entities.Option(nil), poll.Options...)
	if poll.ClosedAt != nil {
		closedAt := *poll.ClosedAt
		poll.ClosedAt = &closedAt
	}
	return poll
}

func voteKey(pollID string, userID string) string {
	return strings.TrimSpace(pollID) + "|" + strings.TrimSpace(userID)
}

var (
	_ ports.PollRepository = (*Store)(nil)
	_ ports.Clock          = (*Store)(nil)
	_ ports.IDGenerator    = (*Store)(nil)
)
