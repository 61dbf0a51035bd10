package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	pollentities "pollux/contexts/polling/poll-service/domain/entities"
	suberrors "pollux/contexts/polling/subscription-service/domain/errors"
	subtransport "pollux/contexts/polling/subscription-service/transport/http"
)

func TestSubscriptionIsOncePerPoll(t *testing.T) {
	engine := newEngine(t)
	registerInstance(t, engine, "civic-lab")
	registerUser(t, engine, "alice", 22, "belgium")
	poll := createOpenPoll(t, engine, "civic-lab")

	subscribeSelf(t, engine, "alice", poll.PollID)
	err := engine.Subscriptions.Handler.SubscribeHandler(context.Background(), "alice", poll.PollID, subtransport.SubscribeRequest{
		User: "alice",
	})
	if !errors.Is(err, suberrors.ErrAlreadySubscribed) {
		t.Fatalf("expected already subscribed, got %v", err)
	}

	// The failed retry must not grant a second allowance.
	if got := balanceOf(t, engine, "alice", poll.AssetID); got != 100 {
		t.Fatalf("expected allowance to stay at 100, got %d", got)
	}
}

func TestSubscriptionEligibilityGates(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	registerInstance(t, engine, "civic-lab")
	registerUser(t, engine, "minor", 16, "belgium")
	registerUser(t, engine, "tourist", 30, "france")
	registerUser(t, engine, "shouty", 30, "BELGIUM")
	poll := createOpenPoll(t, engine, "civic-lab")

	err := engine.Subscriptions.Handler.SubscribeHandler(ctx, "minor", poll.PollID, subtransport.SubscribeRequest{User: "minor"})
	if !errors.Is(err, suberrors.ErrEligibilityFailed) {
		t.Fatalf("expected eligibility failure for underage user, got %v", err)
	}

	err = engine.Subscriptions.Handler.SubscribeHandler(ctx, "tourist", poll.PollID, subtransport.SubscribeRequest{User: "tourist"})
	if !errors.Is(err, suberrors.ErrEligibilityFailed) {
		t.Fatalf("expected eligibility failure for wrong region, got %v", err)
	}

	// Region comparison ignores case.
	subscribeSelf(t, engine, "shouty", poll.PollID)

	status, err := engine.Subscriptions.Handler.StatusHandler(ctx, "tourist", poll.PollID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Subscribed {
		t.Fatalf("rejected user must not end up subscribed")
	}
}

func TestSubscriptionRequiresSelfServiceUserRole(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	registerInstance(t, engine, "civic-lab")
	registerUser(t, engine, "alice", 22, "belgium")
	poll := createOpenPoll(t, engine, "civic-lab")

	err := engine.Subscriptions.Handler.SubscribeHandler(ctx, "ghost", poll.PollID, subtransport.SubscribeRequest{User: "ghost"})
	if !errors.Is(err, suberrors.ErrAccessDenied) {
		t.Fatalf("expected access denied for unregistered caller, got %v", err)
	}

	err = engine.Subscriptions.Handler.SubscribeHandler(ctx, "civic-lab", poll.PollID, subtransport.SubscribeRequest{User: "civic-lab"})
	if !errors.Is(err, suberrors.ErrAccessDenied) {
		t.Fatalf("expected access denied for instance account, got %v", err)
	}

	// Nobody subscribes on someone else's behalf.
	err = engine.Subscriptions.Handler.SubscribeHandler(ctx, "civic-lab", poll.PollID, subtransport.SubscribeRequest{User: "alice"})
	if !errors.Is(err, suberrors.ErrAccessDenied) {
		t.Fatalf("expected access denied for third-party subscription, got %v", err)
	}
}

func TestSubscriptionClosedAndMissingPolls(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	registerUser(t, engine, "alice", 22, "belgium")

	err := engine.Polls.Store.SavePoll(ctx, pollentities.Poll{
		PollID:  "poll-over",
		AssetID: "poll-over",
		Title:   "Yesterday's question",
		Options: []string{"Option1", "Option2"},
		EndDate: time.Now().UTC().Add(-time.Hour),
		Eligibility: pollentities.Eligibility{
			MinAge:            18,
			Location:          "belgium",
			MinTokensRequired: 100,
		},
		TotalSupply: 1000,
		Tallies:     []uint64{0, 0},
	})
	if err != nil {
		t.Fatalf("seed poll failed: %v", err)
	}

	err = engine.Subscriptions.Handler.SubscribeHandler(ctx, "alice", "poll-over", subtransport.SubscribeRequest{User: "alice"})
	if !errors.Is(err, suberrors.ErrPollClosed) {
		t.Fatalf("expected poll closed, got %v", err)
	}

	err = engine.Subscriptions.Handler.SubscribeHandler(ctx, "alice", "poll-missing", subtransport.SubscribeRequest{User: "alice"})
	if !errors.Is(err, suberrors.ErrPollNotFound) {
		t.Fatalf("expected poll not found, got %v", err)
	}
}
