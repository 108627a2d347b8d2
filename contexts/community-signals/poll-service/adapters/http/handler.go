package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"communitypulse/contexts/community-signals/poll-service/application"
	"communitypulse/contexts/community-signals/poll-service/domain/entities"
	"communitypulse/contexts/community-signals/poll-service/ports"
	httptransport "communitypulse/contexts/community-signals/poll-service/transport/http"

	"github.com/shopspring/decimal"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListPollsHandler(ctx context.Context) (httptransport.ListPollsResponse, error) {
	polls, err := h.Service.ListPolls(ctx)
	if err != nil {
		return httptransport.ListPollsResponse{}, err
	}
	response := httptransport.ListPollsResponse{Items: make([]httptransport.PollResponse, 0, len(polls))}
	for _, poll := range polls {
		response.Items = append(response.Items, mapPoll(poll))
	}
	return response, nil
}

func (h Handler) GetPollHandler(ctx context.Context, pollID string) (httptransport.PollResponse, error) {
	detail, err := h.Service.GetPoll(ctx, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	response := mapPoll(detail.Poll)
	voters := detail.Voters
	response.Voters = &voters
	return response, nil
}

func (h Handler) CreatePollHandler(ctx context.Context, actor ports.Actor, req httptransport.CreatePollRequest) (httptransport.PollResponse, error) {
	poll, err := h.Service.CreatePoll(ctx, actor, application.CreatePollCommand{
		Question: req.Question,
		Options:  append([]string(nil), req.Options...),
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(poll), nil
}

func (h Handler) ClosePollHandler(ctx context.Context, actor ports.Actor, pollID string) (httptransport.PollResponse, error) {
	poll, err := h.Service.ClosePoll(ctx, actor, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return mapPoll(poll), nil
}

func (h Handler) CastVoteHandler(ctx context.Context, actor ports.Actor, req httptransport.VoteRequest) (httptransport.VoteResponse, error) {
	result, err := h.Service.CastVote(ctx, actor, req.PollID, req.Option)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		Poll:           mapPoll(result.Poll),
		Option:         result.Vote.Option,
		PreviousOption: result.PreviousOption,
	}, nil
}

func mapPoll(poll entities.Poll) httptransport.PollResponse {
	response := httptransport.PollResponse{
		PollID:     poll.PollID,
		Question:   poll.Question,
		Options:    make([]httptransport.OptionResponse, 0, len(poll.Options)),
		TotalVotes: poll.TotalVotes(),
		IsActive:   poll.IsActive,
		CreatedAt:  poll.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, share := range entities.Shares(poll.Options) {
		percentage, _ := decimal.NewFromFloat(share.Percentage).Round(2).Float64()
		response.Options = append(response.Options, httptransport.OptionResponse{
			Text:       share.Text,
			Votes:      share.Votes,
			Percentage: percentage,
		})
	}
	if poll.ClosedAt != nil {
		response.ClosedAt = poll.ClosedAt.UTC().Format(time.RFC3339)
	}
	return response
}
