package commands

import (
	"context"
	"math"
	"strings"
	"time"

	application "pollux/contexts/polling/poll-service/application"
	"pollux/contexts/polling/poll-service/domain/entities"
	domainerrors "pollux/contexts/polling/poll-service/domain/errors"
	"pollux/contexts/polling/poll-service/ports"
)

// CastVotesCommand spends the voter's own balance across one or more
// options of the same poll.
type CastVotesCommand struct {
	Caller        string
	PollID        string
	OptionIndexes []int
	Amounts       []uint64
}

// CastVotesWithAuthorizationCommand lets a relayer submit votes on behalf
// of the ticket holder. The ticket's amount must match the vote total.
type CastVotesWithAuthorizationCommand struct {
	Relayer       string
	PollID        string
	OptionIndexes []int
	Amounts       []uint64
	Ticket        ports.TransferTicket
}

func (uc PollUseCase) CastVotes(ctx context.Context, cmd CastVotesCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.Caller)
	if voter == "" {
		return domainerrors.ErrAccessDenied
	}

	poll, total, now, err := uc.prepareBallot(ctx, voter, cmd.PollID, cmd.OptionIndexes, cmd.Amounts)
	if err != nil {
		return err
	}

	// One all-or-nothing move to the spent address; the tally update
	// cannot fail once the move committed.
	if err := uc.Ledger.BatchTransfer(ctx, voter, poll.SpentAddress(), poll.AssetID, cmd.Amounts); err != nil {
		return err
	}
	if err := uc.Polls.AddTallies(ctx, poll.PollID, cmd.OptionIndexes, cmd.Amounts); err != nil {
		return err
	}
	if err := uc.appendVoteEvents(ctx, poll, voter, cmd.OptionIndexes, cmd.Amounts, now); err != nil {
		return err
	}

	logger.Info("votes cast",
		"event", "poll_votes_cast",
		"module", "polling/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
		"voter", voter,
		"total_weight", total,
		"option_count", len(cmd.OptionIndexes),
	)
	return nil
}

func (uc PollUseCase) CastVotesWithAuthorization(ctx context.Context, cmd CastVotesWithAuthorizationCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	relayer := strings.TrimSpace(cmd.Relayer)
	voter := strings.TrimSpace(cmd.Ticket.Holder)
	if relayer == "" || voter == "" {
		return domainerrors.ErrAccessDenied
	}

	poll, total, now, err := uc.prepareBallot(ctx, voter, cmd.PollID, cmd.OptionIndexes, cmd.Amounts)
	if err != nil {
		return err
	}
	if cmd.Ticket.Amount != total || !strings.EqualFold(strings.TrimSpace(cmd.Ticket.AssetID), poll.AssetID) {
		return domainerrors.ErrInvalidAuthorization
	}

	if err := uc.Ledger.ConsumeAuthorization(ctx, relayer, poll.SpentAddress(), cmd.Ticket); err != nil {
		return err
	}
	if err := uc.Polls.AddTallies(ctx, poll.PollID, cmd.OptionIndexes, cmd.Amounts); err != nil {
		return err
	}
	if err := uc.appendVoteEvents(ctx, poll, voter, cmd.OptionIndexes, cmd.Amounts, now); err != nil {
		return err
	}

	logger.Info("authorized votes cast",
		"event", "poll_votes_cast_authorized",
		"module", "polling/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
		"voter", voter,
		"relayer", relayer,
		"total_weight", total,
	)
	return nil
}

// prepareBallot runs every check shared by the direct and the relayed
// path: voter role, poll existence, open window, index bounds and amount
// shape. It returns the poll, the vote total and the decision timestamp.
func (uc PollUseCase) prepareBallot(
	ctx context.Context,
	voter string,
	pollID string,
	indexes []int,
	amounts []uint64,
) (entities.Poll, uint64, time.Time, error) {
	if len(indexes) == 0 || len(indexes) != len(amounts) {
		return entities.Poll{}, 0, time.Time{}, domainerrors.ErrInvalidOption
	}

	isUser, err := uc.Roles.IsUser(ctx, voter)
	if err != nil {
		return entities.Poll{}, 0, time.Time{}, err
	}
	if !isUser {
		return entities.Poll{}, 0, time.Time{}, domainerrors.ErrAccessDenied
	}

	poll, found, err := uc.Polls.GetPoll(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return entities.Poll{}, 0, time.Time{}, err
	}
	if !found {
		return entities.Poll{}, 0, time.Time{}, domainerrors.ErrPollNotFound
	}
	now := uc.now()
	if !poll.IsOpen(now) {
		return entities.Poll{}, 0, time.Time{}, domainerrors.ErrPollClosed
	}

	total := uint64(0)
	for i, index := range indexes {
		if index < 0 || index >= len(poll.Options) {
			return entities.Poll{}, 0, time.Time{}, domainerrors.ErrInvalidOption
		}
		if amounts[i] == 0 {
			return entities.Poll{}, 0, time.Time{}, domainerrors.ErrInvalidOption
		}
		// The total must not wrap, or the ledger move and the tally
		// increments would disagree.
		if amounts[i] > math.MaxUint64-total {
			return entities.Poll{}, 0, time.Time{}, domainerrors.ErrInvalidOption
		}
		total += amounts[i]
	}
	return poll, total, now, nil
}

func (uc PollUseCase) appendVoteEvents(
	ctx context.Context,
	poll entities.Poll,
	voter string,
	indexes []int,
	amounts []uint64,
	occurredAt time.Time,
) error {
	for i, index := range indexes {
		err := uc.appendPollEvent(ctx, "vote.cast", poll.PollID, map[string]any{
			"poll_id":      poll.PollID,
			"voter":        voter,
			"option_index": index,
			"option":       poll.Options[index],
			"weight":       amounts[i],
		}, occurredAt)
		if err != nil {
			return err
		}
	}
	return nil
}
