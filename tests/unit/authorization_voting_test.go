package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	pollerrors "pollux/contexts/polling/poll-service/domain/errors"
	polltransport "pollux/contexts/polling/poll-service/transport/http"
	ledgererrors "pollux/contexts/token-core/token-ledger/domain/errors"
)

// authorizedBallot builds a relayed vote request whose ticket signature
// matches the deterministic test verifier.
func authorizedBallot(holder string, spender string, assetID string, nonce uint64, expiry time.Time, indexes []int, amounts []uint64) polltransport.AuthorizedVotesRequest {
	total := uint64(0)
	for _, amount := range amounts {
		total += amount
	}
	return polltransport.AuthorizedVotesRequest{
		OptionIndexes: indexes,
		Amounts:       amounts,
		Holder:        holder,
		Spender:       spender,
		AssetID:       assetID,
		Amount:        total,
		Nonce:         nonce,
		ExpiryUnix:    expiry.Unix(),
		Signature:     signTicket(holder, spender, assetID, total, nonce, expiry),
	}
}

func TestRelayedVotesConsumeTicket(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	registerInstance(t, engine, "civic-lab")
	registerUser(t, engine, "alice", 28, "belgium")
	poll := createOpenPoll(t, engine, "civic-lab")
	subscribeSelf(t, engine, "alice", poll.PollID)

	expiry := time.Unix(time.Now().UTC().Add(time.Hour).Unix(), 0).UTC()
	req := authorizedBallot("alice", "relay-1", poll.AssetID, 1, expiry, []int{0, 1}, []uint64{30, 70})

	if err := engine.Polls.Handler.AuthorizedVotesHandler(ctx, "relay-1", poll.PollID, req); err != nil {
		t.Fatalf("relayed vote failed: %v", err)
	}

	results, err := engine.Polls.Handler.ResultsHandler(ctx, poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.Results[0].Votes != 30 || results.Results[1].Votes != 70 {
		t.Fatalf("unexpected tallies: %+v", results.Results)
	}
	if got := balanceOf(t, engine, "alice", poll.AssetID); got != 0 {
		t.Fatalf("expected alice drained, got %d", got)
	}
	if got := balanceOf(t, engine, "spent:"+poll.PollID, poll.AssetID); got != 100 {
		t.Fatalf("expected spent at 100, got %d", got)
	}

	// Replaying the same ticket burns on the consumed nonce.
	err = engine.Polls.Handler.AuthorizedVotesHandler(ctx, "relay-1", poll.PollID, req)
	if !errors.Is(err, ledgererrors.ErrAuthorizationConsumed) {
		t.Fatalf("expected authorization consumed, got %v", err)
	}
	results, err = engine.Polls.Handler.ResultsHandler(ctx, poll.PollID)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.Results[0].Votes != 30 || results.Results[1].Votes != 70 {
		t.Fatalf("replay must not change tallies: %+v", results.Results)
	}
}

func TestRelayedVoteTicketRejections(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	registerInstance(t, engine, "civic-lab")
	registerUser(t, engine, "alice", 28, "belgium")
	poll := createOpenPoll(t, engine, "civic-lab")
	subscribeSelf(t, engine, "alice", poll.PollID)

	future := time.Unix(time.Now().UTC().Add(time.Hour).Unix(), 0).UTC()

	expired := authorizedBallot("alice", "relay-1", poll.AssetID, 2, time.Unix(time.Now().UTC().Add(-time.Minute).Unix(), 0).UTC(), []int{0}, []uint64{100})
	err := engine.Polls.Handler.AuthorizedVotesHandler(ctx, "relay-1", poll.PollID, expired)
	if !errors.Is(err, ledgererrors.ErrAuthorizationExpired) {
		t.Fatalf("expected authorization expired, got %v", err)
	}

	// Only the spender the ticket names may submit it.
	stolen := authorizedBallot("alice", "relay-1", poll.AssetID, 3, future, []int{0}, []uint64{100})
	err = engine.Polls.Handler.AuthorizedVotesHandler(ctx, "relay-2", poll.PollID, stolen)
	if !errors.Is(err, ledgererrors.ErrAccessDenied) {
		t.Fatalf("expected access denied for foreign relayer, got %v", err)
	}

	mismatched := authorizedBallot("alice", "relay-1", poll.AssetID, 4, future, []int{0}, []uint64{100})
	mismatched.Amount = 90
	mismatched.Signature = signTicket("alice", "relay-1", poll.AssetID, 90, 4, future)
	err = engine.Polls.Handler.AuthorizedVotesHandler(ctx, "relay-1", poll.PollID, mismatched)
	if !errors.Is(err, pollerrors.ErrInvalidAuthorization) {
		t.Fatalf("expected invalid authorization for amount mismatch, got %v", err)
	}

	foreignAsset := authorizedBallot("alice", "relay-1", "asset-other", 5, future, []int{0}, []uint64{100})
	err = engine.Polls.Handler.AuthorizedVotesHandler(ctx, "relay-1", poll.PollID, foreignAsset)
	if !errors.Is(err, pollerrors.ErrInvalidAuthorization) {
		t.Fatalf("expected invalid authorization for asset mismatch, got %v", err)
	}

	// A single altered field breaks the signature.
	tampered := authorizedBallot("alice", "relay-1", poll.AssetID, 6, future, []int{0}, []uint64{100})
	tampered.Nonce = 60
	err = engine.Polls.Handler.AuthorizedVotesHandler(ctx, "relay-1", poll.PollID, tampered)
	if !errors.Is(err, ledgererrors.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature for tampered nonce, got %v", err)
	}

	// None of the rejected tickets may have moved tokens or tallies.
	if got := balanceOf(t, engine, "alice", poll.AssetID); got != 100 {
		t.Fatalf("expected alice untouched at 100, got %d", got)
	}
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
