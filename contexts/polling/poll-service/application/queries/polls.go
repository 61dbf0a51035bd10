package queries

import (
	"context"
	"strings"

	"pollux/contexts/polling/poll-service/domain/entities"
	domainerrors "pollux/contexts/polling/poll-service/domain/errors"
	"pollux/contexts/polling/poll-service/ports"
)

// OptionResult pairs an option label with its accumulated vote weight.
type OptionResult struct {
	Index  int
	Option string
	Votes  uint64
}

type PollQueries struct {
	Polls ports.PollRepository
}

func (q PollQueries) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	poll, found, err := q.Polls.GetPoll(ctx, strings.TrimSpace(pollID))
	if err != nil {
		return entities.Poll{}, err
	}
	if !found {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return poll, nil
}

func (q PollQueries) ListPolls(ctx context.Context) ([]entities.Poll, error) {
	return q.Polls.ListPolls(ctx)
}

func (q PollQueries) GetVoteCount(ctx context.Context, pollID string, optionIndex int) (uint64, error) {
	poll, err := q.GetPoll(ctx, pollID)
	if err != nil {
		return 0, err
	}
	if optionIndex < 0 || optionIndex >= len(poll.Tallies) {
		return 0, domainerrors.ErrInvalidOption
	}
	return poll.Tallies[optionIndex], nil
}

func (q PollQueries) GetResults(ctx context.Context, pollID string) ([]OptionResult, error) {
	poll, err := q.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	results := make([]OptionResult, 0, len(poll.Options))
	for i, option := range poll.Options {
		results = append(results, OptionResult{
			Index:  i,
			Option: option,
			Votes:  poll.Tallies[i],
		})
	}
	return results, nil
}

func (q PollQueries) GetEligibility(ctx context.Context, pollID string) (entities.Eligibility, error) {
	poll, err := q.GetPoll(ctx, pollID)
	if err != nil {
		return entities.Eligibility{}, err
	}
	return poll.Eligibility, nil
}
