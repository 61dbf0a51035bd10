package unit

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	ledgercommands "pollux/contexts/token-core/token-ledger/application/commands"
	ledgererrors "pollux/contexts/token-core/token-ledger/domain/errors"
	ledgertransport "pollux/contexts/token-core/token-ledger/transport/http"
)

func TestCreateAssetRequiresDistributor(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	grantRole(t, engine, "dist-1", "distributor")

	err := engine.Ledger.Ledger.CreateAsset(ctx, ledgercommands.CreateAssetCommand{
		Caller:      "mallory",
		AssetID:     "asset-1",
		FloatHolder: "float-1",
		TotalSupply: 500,
	})
	if !errors.Is(err, ledgererrors.ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}

	if err := engine.Ledger.Ledger.CreateAsset(ctx, ledgercommands.CreateAssetCommand{
		Caller:      "dist-1",
		AssetID:     "asset-1",
		FloatHolder: "float-1",
		TotalSupply: 500,
	}); err != nil {
		t.Fatalf("distributor asset creation failed: %v", err)
	}

	err = engine.Ledger.Ledger.CreateAsset(ctx, ledgercommands.CreateAssetCommand{
		Caller:      "dist-1",
		AssetID:     "asset-1",
		FloatHolder: "float-2",
		TotalSupply: 900,
	})
	if !errors.Is(err, ledgererrors.ErrAssetExists) {
		t.Fatalf("expected asset exists, got %v", err)
	}

	asset, err := engine.Ledger.Handler.AssetHandler(ctx, "asset-1")
	if err != nil {
		t.Fatalf("asset lookup failed: %v", err)
	}
	if asset.TotalSupply != 500 {
		t.Fatalf("expected supply 500, got %d", asset.TotalSupply)
	}
}

func TestTransferOperatorRules(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	grantRole(t, engine, "dist-1", "distributor")
	if err := engine.Ledger.Ledger.CreateAsset(ctx, ledgercommands.CreateAssetCommand{
		Caller: "dist-1", AssetID: "asset-1", FloatHolder: "holder-1", TotalSupply: 500,
	}); err != nil {
		t.Fatalf("asset creation failed: %v", err)
	}

	// The holder moves its own balance.
	if err := engine.Ledger.Handler.TransferHandler(ctx, "holder-1", ledgertransport.TransferRequest{
		From: "holder-1", To: "holder-2", AssetID: "asset-1", Amounts: []uint64{100},
	}); err != nil {
		t.Fatalf("self transfer failed: %v", err)
	}

	err := engine.Ledger.Handler.TransferHandler(ctx, "stranger", ledgertransport.TransferRequest{
		From: "holder-1", To: "stranger", AssetID: "asset-1", Amounts: []uint64{10},
	})
	if !errors.Is(err, ledgererrors.ErrAccessDenied) {
		t.Fatalf("expected access denied for stranger, got %v", err)
	}

	// Approval for all unlocks third-party moves until revoked.
	if err := engine.Ledger.Handler.SetApprovalHandler(ctx, "holder-1", ledgertransport.ApprovalRequest{
		Spender: "broker", Approved: true,
	}); err != nil {
		t.Fatalf("set approval failed: %v", err)
	}
	if err := engine.Ledger.Handler.TransferHandler(ctx, "broker", ledgertransport.TransferRequest{
		From: "holder-1", To: "holder-3", AssetID: "asset-1", Amounts: []uint64{50},
	}); err != nil {
		t.Fatalf("approved transfer failed: %v", err)
	}
	if err := engine.Ledger.Handler.SetApprovalHandler(ctx, "holder-1", ledgertransport.ApprovalRequest{
		Spender: "broker", Approved: false,
	}); err != nil {
		t.Fatalf("revoke approval failed: %v", err)
	}
	err = engine.Ledger.Handler.TransferHandler(ctx, "broker", ledgertransport.TransferRequest{
		From: "holder-1", To: "holder-3", AssetID: "asset-1", Amounts: []uint64{50},
	})
	if !errors.Is(err, ledgererrors.ErrAccessDenied) {
		t.Fatalf("expected access denied after revocation, got %v", err)
	}

	// Distributors operate on any balance.
	if err := engine.Ledger.Handler.TransferHandler(ctx, "dist-1", ledgertransport.TransferRequest{
		From: "holder-2", To: "holder-1", AssetID: "asset-1", Amounts: []uint64{25},
	}); err != nil {
		t.Fatalf("distributor transfer failed: %v", err)
	}

	if got := balanceOf(t, engine, "holder-1", "asset-1"); got != 375 {
		t.Fatalf("expected holder-1 at 375, got %d", got)
	}
}

func TestBatchTransferIsAllOrNothing(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	grantRole(t, engine, "dist-1", "distributor")
	if err := engine.Ledger.Ledger.CreateAsset(ctx, ledgercommands.CreateAssetCommand{
		Caller: "dist-1", AssetID: "asset-1", FloatHolder: "holder-1", TotalSupply: 100,
	}); err != nil {
		t.Fatalf("asset creation failed: %v", err)
	}

	err := engine.Ledger.Handler.TransferHandler(ctx, "holder-1", ledgertransport.TransferRequest{
		From: "holder-1", To: "holder-2", AssetID: "asset-1", Amounts: []uint64{60, 50},
	})
	if !errors.Is(err, ledgererrors.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if got := balanceOf(t, engine, "holder-1", "asset-1"); got != 100 {
		t.Fatalf("failed batch must not move anything, holder-1 at %d", got)
	}
	if got := balanceOf(t, engine, "holder-2", "asset-1"); got != 0 {
		t.Fatalf("failed batch must not move anything, holder-2 at %d", got)
	}

	err = engine.Ledger.Handler.TransferHandler(ctx, "holder-1", ledgertransport.TransferRequest{
		From: "holder-1", To: "holder-2", AssetID: "asset-1", Amounts: []uint64{60, 0},
	})
	if !errors.Is(err, ledgererrors.ErrInvalidTransfer) {
		t.Fatalf("expected invalid transfer for zero amount, got %v", err)
	}

	err = engine.Ledger.Handler.TransferHandler(ctx, "holder-1", ledgertransport.TransferRequest{
		From: "holder-1", To: "holder-2", AssetID: "asset-missing", Amounts: []uint64{10},
	})
	if !errors.Is(err, ledgererrors.ErrUnknownAsset) {
		t.Fatalf("expected unknown asset, got %v", err)
	}

	// A batch whose sum wraps uint64 must be rejected outright, not
	// debited by the wrapped remainder.
	err = engine.Ledger.Handler.TransferHandler(ctx, "holder-1", ledgertransport.TransferRequest{
		From: "holder-1", To: "holder-2", AssetID: "asset-1", Amounts: []uint64{math.MaxUint64, 101},
	})
	if !errors.Is(err, ledgererrors.ErrInvalidTransfer) {
		t.Fatalf("expected invalid transfer for wrapping batch, got %v", err)
	}
	if got := balanceOf(t, engine, "holder-1", "asset-1"); got != 100 {
		t.Fatalf("wrapping batch must not move anything, holder-1 at %d", got)
	}
	if got := balanceOf(t, engine, "holder-2", "asset-1"); got != 0 {
		t.Fatalf("wrapping batch must not move anything, holder-2 at %d", got)
	}
}

func TestConsumeAuthorizationMovesBalanceOnce(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	grantRole(t, engine, "dist-1", "distributor")
	if err := engine.Ledger.Ledger.CreateAsset(ctx, ledgercommands.CreateAssetCommand{
		Caller: "dist-1", AssetID: "asset-1", FloatHolder: "float-1", TotalSupply: 100,
	}); err != nil {
		t.Fatalf("asset creation failed: %v", err)
	}
	if err := engine.Ledger.Handler.TransferHandler(ctx, "dist-1", ledgertransport.TransferRequest{
		From: "float-1", To: "holder-1", AssetID: "asset-1", Amounts: []uint64{50},
	}); err != nil {
		t.Fatalf("funding transfer failed: %v", err)
	}

	expiry := time.Unix(time.Now().UTC().Add(time.Hour).Unix(), 0).UTC()
	req := ledgertransport.ConsumeAuthorizationRequest{
		Holder:     "holder-1",
		Spender:    "broker",
		AssetID:    "asset-1",
		Amount:     80,
		Nonce:      7,
		ExpiryUnix: expiry.Unix(),
		Recipient:  "treasury",
		Signature:  signTicket("holder-1", "broker", "asset-1", 80, 7, expiry),
	}

	// The transfer fails while underfunded, and the ticket survives it.
	err := engine.Ledger.Handler.ConsumeAuthorizationHandler(ctx, "broker", req)
	if !errors.Is(err, ledgererrors.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	if err := engine.Ledger.Handler.TransferHandler(ctx, "dist-1", ledgertransport.TransferRequest{
		From: "float-1", To: "holder-1", AssetID: "asset-1", Amounts: []uint64{30},
	}); err != nil {
		t.Fatalf("top-up transfer failed: %v", err)
	}
	if err := engine.Ledger.Handler.ConsumeAuthorizationHandler(ctx, "broker", req); err != nil {
		t.Fatalf("consume after top-up failed: %v", err)
	}

	if got := balanceOf(t, engine, "treasury", "asset-1"); got != 80 {
		t.Fatalf("expected treasury at 80, got %d", got)
	}
	if got := balanceOf(t, engine, "holder-1", "asset-1"); got != 0 {
		t.Fatalf("expected holder-1 drained, got %d", got)
	}

	// The nonce burned with the redemption.
	err = engine.Ledger.Handler.ConsumeAuthorizationHandler(ctx, "broker", req)
	if !errors.Is(err, ledgererrors.ErrAuthorizationConsumed) {
		t.Fatalf("expected authorization consumed, got %v", err)
	}
}
