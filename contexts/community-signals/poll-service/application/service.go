package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"communitypulse/contexts/community-signals/poll-service/domain/entities"
	domainerrors "communitypulse/contexts/community-signals/poll-service/domain/errors"
	"communitypulse/contexts/community-signals/poll-service/ports"
)

type Service struct {
	Polls  ports.PollRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

type CreatePollCommand struct {
	Question string
	Options  []string
}

type PollDetail struct {
	Poll   entities.Poll
	Voters int
}

func (s Service) CreatePoll(ctx context.Context, actor ports.Actor, cmd CreatePollCommand) (entities.Poll, error) {
	logger := ResolveLogger(s.Logger)
	if !actor.Admin() {
		return entities.Poll{}, domainerrors.ErrForbidden
	}
	poll, err := entities.NewPoll(cmd.Question, cmd.Options)
	if err != nil {
		return entities.Poll{}, err
	}
	pollID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Poll{}, err
	}
	poll.PollID = pollID
	poll.CreatedBy = actor.UserID
	poll.CreatedAt = s.now()
	if err := s.Polls.CreatePoll(ctx, poll); err != nil {
		return entities.Poll{}, err
	}
	logger.Info("poll created",
		"event", "polls_poll_created",
		"module", "community-signals/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
		"option_count", len(poll.Options),
	)
	return poll, nil
}

func (s Service) ClosePoll(ctx context.Context, actor ports.Actor, pollID string) (entities.Poll, error) {
	if !actor.Admin() {
		return entities.Poll{}, domainerrors.ErrForbidden
	}
	now := s.now()
	poll, err := s.Polls.ClosePoll(ctx, strings.TrimSpace(pollID), func(current entities.Poll) (entities.Poll, error) {
		return current.Close(now)
	})
	if err != nil {
		return entities.Poll{}, err
	}
	ResolveLogger(s.Logger).Info("poll closed",
		"event", "polls_poll_closed",
		"module", "community-signals/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
		"total_votes", poll.TotalVotes(),
	)
	return poll, nil
}

// CastVote counts one vote per user and poll. Re-voting the same option is
// rejected; choosing another option moves the existing vote.
func (s Service) CastVote(ctx context.Context, actor ports.Actor, pollID string, option string) (ports.VoteResult, error) {
	logger := ResolveLogger(s.Logger)
	if actor.IsAnonymous() {
		return ports.VoteResult{}, domainerrors.ErrUnauthenticated
	}
	pollID = strings.TrimSpace(pollID)
	if pollID == "" {
		return ports.VoteResult{}, domainerrors.ErrPollNotFound
	}

	now := s.now()
	result, err := s.Polls.CastVote(ctx, pollID, actor.UserID, func(poll entities.Poll, existing *entities.Vote) (entities.Poll, entities.Vote, error) {
		next, err := poll.ApplyVote(existing, option)
		if err != nil {
			return poll, entities.Vote{}, err
		}
		vote := entities.Vote{
			PollID:    poll.PollID,
			UserID:    actor.UserID,
			Option:    strings.TrimSpace(option),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if existing != nil {
			vote.VoteID = existing.VoteID
			vote.CreatedAt = existing.CreatedAt
		} else {
			voteID, err := s.IDGen.NewID(ctx)
			if err != nil {
				return poll, entities.Vote{}, err
			}
			vote.VoteID = voteID
		}
		return next, vote, nil
	})
	if err != nil {
		level := slog.LevelWarn
		if !isExpected(err) {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "vote rejected",
			"event", "polls_vote_rejected",
			"module", "community-signals/poll-service",
			"layer", "application",
			"poll_id", pollID,
			"user_id", actor.UserID,
			"error", err.Error(),
		)
		return ports.VoteResult{}, err
	}
	logger.Info("vote counted",
		"event", "polls_vote_counted",
		"module", "community-signals/poll-service",
		"layer", "application",
		"poll_id", pollID,
		"user_id", actor.UserID,
		"moved_from", result.PreviousOption,
	)
	return result, nil
}

func (s Service) ListPolls(ctx context.Context) ([]entities.Poll, error) {
	return s.Polls.ListPolls(ctx)
}

func (s Service) GetPoll(ctx context.Context, pollID string) (PollDetail, error) {
	pollID = strings.TrimSpace(pollID)
	if pollID == "" {
		return PollDetail{}, domainerrors.ErrPollNotFound
	}
	poll, err := s.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return PollDetail{}, err
	}
	voters, err := s.Polls.CountVotes(ctx, pollID)
	if err != nil {
		return PollDetail{}, err
	}
	return PollDetail{Poll: poll, Voters: voters}, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func isExpected(err error) bool {
	return errors.Is(err, domainerrors.ErrAlreadyVoted) ||
		errors.Is(err, domainerrors.ErrInvalidState) ||
		errors.Is(err, domainerrors.ErrPollNotFound) ||
		errors.Is(err, domainerrors.ErrOptionNotFound)
}
