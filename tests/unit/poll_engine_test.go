package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	pollentities "pollux/contexts/polling/poll-service/domain/entities"
	pollerrors "pollux/contexts/polling/poll-service/domain/errors"
	polltransport "pollux/contexts/polling/poll-service/transport/http"
)

func TestCreatePollRejectsBadParameters(t *testing.T) {
	engine := newEngine(t)
	registerInstance(t, engine, "civic-lab")
	ctx := context.Background()
	future := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)

	cases := map[string]polltransport.CreatePollRequest{
		"single option": {
			Title: "One horse race", Options: []string{"Option1"},
			EndDate: future, MinTokensRequired: 100, TotalSupply: 1000,
		},
		"blank option": {
			Title: "Blank", Options: []string{"Option1", "  "},
			EndDate: future, MinTokensRequired: 100, TotalSupply: 1000,
		},
		"zero supply": {
			Title: "No tokens", Options: []string{"Option1", "Option2"},
			EndDate: future, MinTokensRequired: 100, TotalSupply: 0,
		},
		"allowance above supply": {
			Title: "Overdrawn", Options: []string{"Option1", "Option2"},
			EndDate: future, MinTokensRequired: 2000, TotalSupply: 1000,
		},
		"past end date": {
			Title: "Too late", Options: []string{"Option1", "Option2"},
			EndDate: time.Now().UTC().Add(-time.Hour).Format(time.RFC3339), MinTokensRequired: 100, TotalSupply: 1000,
		},
		"unparseable end date": {
			Title: "When", Options: []string{"Option1", "Option2"},
			EndDate: "next tuesday", MinTokensRequired: 100, TotalSupply: 1000,
		},
	}
	for name, req := range cases {
		if _, err := engine.Polls.Handler.CreatePollHandler(ctx, "civic-lab", req); !errors.Is(err, pollerrors.ErrInvalidPollParameters) {
			t.Fatalf("%s: expected invalid parameters, got %v", name, err)
		}
	}
}

func TestCreatePollRequiresInstanceRole(t *testing.T) {
	engine := newEngine(t)
	registerUser(t, engine, "alice", 30, "belgium")
	req := polltransport.CreatePollRequest{
		Title:             "Who decides",
		Options:           []string{"Option1", "Option2"},
		EndDate:           time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
		MinTokensRequired: 100,
		TotalSupply:       1000,
	}

	if _, err := engine.Polls.Handler.CreatePollHandler(context.Background(), "alice", req); !errors.Is(err, pollerrors.ErrAccessDenied) {
		t.Fatalf("expected access denied for user creator, got %v", err)
	}
	if _, err := engine.Polls.Handler.CreatePollHandler(context.Background(), "ghost", req); !errors.Is(err, pollerrors.ErrAccessDenied) {
		t.Fatalf("expected access denied for unregistered creator, got %v", err)
	}
}

func TestCastVotesGuards(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	registerInstance(t, engine, "civic-lab")
	registerUser(t, engine, "alice", 30, "belgium")
	poll := createOpenPoll(t, engine, "civic-lab")
	subscribeSelf(t, engine, "alice", poll.PollID)

	err := engine.Polls.Handler.CastVotesHandler(ctx, "civic-lab", poll.PollID, polltransport.CastVotesRequest{
		OptionIndexes: []int{0}, Amounts: []uint64{10},
	})
	if !errors.Is(err, pollerrors.ErrAccessDenied) {
		t.Fatalf("expected access denied for instance voter, got %v", err)
	}

	err = engine.Polls.Handler.CastVotesHandler(ctx, "alice", "poll-missing", polltransport.CastVotesRequest{
		OptionIndexes: []int{0}, Amounts: []uint64{10},
	})
	if !errors.Is(err, pollerrors.ErrPollNotFound) {
		t.Fatalf("expected poll not found, got %v", err)
	}

	badBallots := map[string]polltransport.CastVotesRequest{
		"index out of range": {OptionIndexes: []int{2}, Amounts: []uint64{10}},
		"negative index":     {OptionIndexes: []int{-1}, Amounts: []uint64{10}},
		"zero weight":        {OptionIndexes: []int{0}, Amounts: []uint64{0}},
		"shape mismatch":     {OptionIndexes: []int{0, 1}, Amounts: []uint64{10}},
		"empty ballot":       {},
	}
	for name, req := range badBallots {
		if err := engine.Polls.Handler.CastVotesHandler(ctx, "alice", poll.PollID, req); !errors.Is(err, pollerrors.ErrInvalidOption) {
			t.Fatalf("%s: expected invalid option, got %v", name, err)
		}
	}

	if err := engine.Polls.Store.SavePoll(ctx, pollentities.Poll{
		PollID:      "poll-over",
		AssetID:     "poll-over",
		Title:       "Closed",
		Options:     []string{"Option1", "Option2"},
		EndDate:     time.Now().UTC().Add(-time.Minute),
		TotalSupply: 1000,
		Tallies:     []uint64{0, 0},
	}); err != nil {
		t.Fatalf("seed poll failed: %v", err)
	}
	err = engine.Polls.Handler.CastVotesHandler(ctx, "alice", "poll-over", polltransport.CastVotesRequest{
		OptionIndexes: []int{0}, Amounts: []uint64{10},
	})
	if !errors.Is(err, pollerrors.ErrPollClosed) {
		t.Fatalf("expected poll closed, got %v", err)
	}

	// Nothing above may have touched the tallies.
	results, err := engine.Polls.Handler.ResultsHandler(ctx, poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	for _, result := range results.Results {
		if result.Votes != 0 {
			t.Fatalf("expected untouched tallies, got %+v", results.Results)
		}
	}
}

func TestPollQueries(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	registerInstance(t, engine, "civic-lab")
	poll := createOpenPoll(t, engine, "civic-lab")

	if _, err := engine.Polls.Handler.GetPollHandler(ctx, "poll-missing"); !errors.Is(err, pollerrors.ErrPollNotFound) {
		t.Fatalf("expected poll not found, got %v", err)
	}

	listed, err := engine.Polls.Handler.ListPollsHandler(ctx)
	if err != nil {
		t.Fatalf("list polls failed: %v", err)
	}
	if len(listed.Polls) != 1 || listed.Polls[0].PollID != poll.PollID {
		t.Fatalf("unexpected poll list: %+v", listed.Polls)
	}

	if _, err := engine.Polls.Queries.GetVoteCount(ctx, poll.PollID, 5); !errors.Is(err, pollerrors.ErrInvalidOption) {
		t.Fatalf("expected invalid option for out-of-range index, got %v", err)
	}

	eligibility, err := engine.Polls.Queries.GetEligibility(ctx, poll.PollID)
	if err != nil {
		t.Fatalf("eligibility failed: %v", err)
	}
	if eligibility.MinAge != 18 || eligibility.Location != "belgium" || eligibility.MinTokensRequired != 100 {
		t.Fatalf("unexpected eligibility: %+v", eligibility)
	}
}
