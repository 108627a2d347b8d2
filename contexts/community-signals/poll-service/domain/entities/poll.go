package entities

import (
	"fmt"
	"strings"
	"time"

	domainerrors "communitypulse/contexts/community-signals/poll-service/domain/errors"
)

const (
	MinOptions = 2
	MaxOptions = 10
)

type Option struct {
	Text  string
	Votes int
}

// Poll holds its own tallies. The option set is fixed at creation.
type Poll struct {
	PollID    string
	Question  string
	Options   []Option
	IsActive  bool
	CreatedBy string
	CreatedAt time.Time
	ClosedAt  *time.Time
}

// Vote is the single counted vote of a user on a poll.
type Vote struct {
	VoteID    string
	PollID    string
	UserID    string
	Option    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPoll validates and normalizes a poll definition.
func NewPoll(question string, options []string) (Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Poll{}, fmt.Errorf("%w: question is required", domainerrors.ErrValidation)
	}
	if len(options) < MinOptions || len(options) > MaxOptions {
		return Poll{}, fmt.Errorf("%w: a poll needs between %d and %d options",
			domainerrors.ErrValidation, MinOptions, MaxOptions)
	}
	seen := make(map[string]struct{}, len(options))
	normalized := make([]Option, 0, len(options))
	for _, raw := range options {
		text := strings.TrimSpace(raw)
		if text == "" {
			return Poll{}, fmt.Errorf("%w: options must not be empty", domainerrors.ErrValidation)
		}
		if _, dup := seen[text]; dup {
			return Poll{}, fmt.Errorf("%w: duplicate option %q", domainerrors.ErrValidation, text)
		}
		seen[text] = struct{}{}
		normalized = append(normalized, Option{Text: text})
	}
	return Poll{Question: question, Options: normalized, IsActive: true}, nil
}

func (p Poll) TotalVotes() int {
	total := 0
	for _, option := range p.Options {
		total += option.Votes
	}
	return total
}

func (p Poll) optionIndex(text string) int {
	text = strings.TrimSpace(text)
	for i, option := range p.Options {
		if option.Text == text {
			return i
		}
	}
	return -1
}

// ApplyVote counts a vote for option. existing is the caller's previous vote,
// if any; choosing a different option moves that vote.
func (p Poll) ApplyVote(existing *Vote, option string) (Poll, error) {
	target := p.optionIndex(option)
	if target < 0 {
		return p, domainerrors.ErrOptionNotFound
	}
	if !p.IsActive {
		return p, domainerrors.ErrPollClosed
	}
	next := p
	next.Options = append([]Option(nil), p.Options...)
	if existing != nil {
		previous := next.optionIndex(existing.Option)
		if previous == target {
			return p, domainerrors.ErrAlreadyVoted
		}
		if previous >= 0 && next.Options[previous].Votes > 0 {
			next.Options[previous].Votes--
		}
	}
	next.Options[target].Votes++
	return next, nil
}

func (p Poll) Close(at time.Time) (Poll, error) {
	if !p.IsActive {
		return p, domainerrors.ErrPollAlreadyClosed
	}
	closedAt := at.UTC()
	p.IsActive = false
	p.ClosedAt = &closedAt
	return p, nil
}

type OptionShare struct {
	Text       string
	Votes      int
	Percentage float64
}

// Shares converts tallies to percentages of the total. With no votes every
// option shows 0.
func Shares(options []Option) []OptionShare {
	total := 0
	for _, option := range options {
		total += option.Votes
	}
	out := make([]OptionShare, 0, len(options))
	for _, option := range options {
		share := OptionShare{Text: option.Text, Votes: option.Votes}
		if total > 0 {
			share.Percentage = float64(option.Votes) * 100 / float64(total)
		}
		out = append(out, share)
	}
	return out
}
