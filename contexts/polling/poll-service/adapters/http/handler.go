package httpadapter

import (
	"context"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"pollux/contexts/polling/poll-service/application/commands"
	"pollux/contexts/polling/poll-service/application/queries"
	"pollux/contexts/polling/poll-service/domain/entities"
	domainerrors "pollux/contexts/polling/poll-service/domain/errors"
	"pollux/contexts/polling/poll-service/ports"
	httptransport "pollux/contexts/polling/poll-service/transport/http"
)

type Handler struct {
	Polls   commands.PollUseCase
	Queries queries.PollQueries
	Logger  *slog.Logger
}

func (h Handler) CreatePollHandler(ctx context.Context, caller string, req httptransport.CreatePollRequest) (httptransport.PollResponse, error) {
	endDate, err := time.Parse(time.RFC3339, strings.TrimSpace(req.EndDate))
	if err != nil {
		return httptransport.PollResponse{}, domainerrors.ErrInvalidPollParameters
	}
	poll, err := h.Polls.CreatePoll(ctx, commands.CreatePollCommand{
		Caller:            caller,
		Title:             req.Title,
		Options:           req.Options,
		EndDate:           endDate,
		MinAge:            req.MinAge,
		Location:          req.Location,
		MinTokensRequired: req.MinTokensRequired,
		TotalSupply:       req.TotalSupply,
	})
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return toPollResponse(poll, time.Now().UTC()), nil
}

func (h Handler) CastVotesHandler(ctx context.Context, caller string, pollID string, req httptransport.CastVotesRequest) error {
	return h.Polls.CastVotes(ctx, commands.CastVotesCommand{
		Caller:        caller,
		PollID:        pollID,
		OptionIndexes: req.OptionIndexes,
		Amounts:       req.Amounts,
	})
}

func (h Handler) AuthorizedVotesHandler(ctx context.Context, caller string, pollID string, req httptransport.AuthorizedVotesRequest) error {
	signature, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(req.Signature), "0x"))
	if err != nil {
		return domainerrors.ErrInvalidAuthorization
	}
	return h.Polls.CastVotesWithAuthorization(ctx, commands.CastVotesWithAuthorizationCommand{
		Relayer:       caller,
		PollID:        pollID,
		OptionIndexes: req.OptionIndexes,
		Amounts:       req.Amounts,
		Ticket: ports.TransferTicket{
			Holder:    req.Holder,
			Spender:   req.Spender,
			AssetID:   req.AssetID,
			Amount:    req.Amount,
			Nonce:     req.Nonce,
			Expiry:    time.Unix(req.ExpiryUnix, 0).UTC(),
			Signature: signature,
		},
	})
}

func (h Handler) GetPollHandler(ctx context.Context, pollID string) (httptransport.PollResponse, error) {
	poll, err := h.Queries.GetPoll(ctx, pollID)
	if err != nil {
		return httptransport.PollResponse{}, err
	}
	return toPollResponse(poll, time.Now().UTC()), nil
}

func (h Handler) ListPollsHandler(ctx context.Context) (httptransport.PollListResponse, error) {
	polls, err := h.Queries.ListPolls(ctx)
	if err != nil {
		return httptransport.PollListResponse{}, err
	}
	now := time.Now().UTC()
	items := make([]httptransport.PollResponse, 0, len(polls))
	for _, poll := range polls {
		items = append(items, toPollResponse(poll, now))
	}
	return httptransport.PollListResponse{Polls: items}, nil
}

func (h Handler) ResultsHandler(ctx context.Context, pollID string) (httptransport.ResultsResponse, error) {
	results, err := h.Queries.GetResults(ctx, pollID)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	items := make([]httptransport.OptionResultPayload, 0, len(results))
	for _, result := range results {
		items = append(items, httptransport.OptionResultPayload{
			Index:  result.Index,
			Option: result.Option,
			Votes:  result.Votes,
		})
	}
	return httptransport.ResultsResponse{
		PollID:  pollID,
		Results: items,
	}, nil
}

func toPollResponse(poll entities.Poll, now time.Time) httptransport.PollResponse {
	return httptransport.PollResponse{
		PollID:  poll.PollID,
		AssetID: poll.AssetID,
		Title:   poll.Title,
		Options: poll.Options,
		EndDate: poll.EndDate.Format(time.RFC3339),
		Eligibility: httptransport.EligibilityPayload{
			MinAge:            poll.Eligibility.MinAge,
			Location:          poll.Eligibility.Location,
			MinTokensRequired: poll.Eligibility.MinTokensRequired,
		},
		TotalSupply: poll.TotalSupply,
		Open:        poll.IsOpen(now),
		CreatedBy:   poll.CreatedBy,
	}
}
