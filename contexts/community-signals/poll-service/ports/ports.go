package ports

import (
	"context"
	"time"

	"communitypulse/contexts/community-signals/poll-service/domain/entities"
	identityv1 "communitypulse/contracts/identity/v1"
)

type Actor = identityv1.Caller

// VoteFunc decides a vote against the current poll while the store holds
// the poll's lock. existing is nil for a first vote.
type VoteFunc func(poll entities.Poll, existing *entities.Vote) (entities.Poll, entities.Vote, error)

type CloseFunc func(poll entities.Poll) (entities.Poll, error)

type VoteResult struct {
	Poll           entities.Poll
	Vote           entities.Vote
	PreviousOption string
}

type PollRepository interface {
	CreatePoll(ctx context.Context, poll entities.Poll) error
	GetPoll(ctx context.Context, pollID string) (entities.Poll, error)
	// ListPolls returns active polls first, then newest first.
	ListPolls(ctx context.Context) ([]entities.Poll, error)
	ClosePoll(ctx context.Context, pollID string, close CloseFunc) (entities.Poll, error)
	// CastVote persists the tally change and the vote record together.
	CastVote(ctx context.Context, pollID string, userID string, vote VoteFunc) (VoteResult, error)
	CountVotes(ctx context.Context, pollID string) (int, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
