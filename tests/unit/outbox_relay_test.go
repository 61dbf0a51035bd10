package unit

import (
	"context"
	"errors"
	"testing"

	ledgercommands "pollux/contexts/token-core/token-ledger/application/commands"
	ledgerworkers "pollux/contexts/token-core/token-ledger/application/workers"
	ledgerports "pollux/contexts/token-core/token-ledger/ports"
	ledgertransport "pollux/contexts/token-core/token-ledger/transport/http"
)

type capturePublisher struct {
	events []ledgerports.EventEnvelope
	fail   error
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event ledgerports.EventEnvelope) error {
	if p.fail != nil {
		return p.fail
	}
	p.events = append(p.events, event)
	return nil
}

func TestLedgerOutboxRelayDrainsOnce(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	grantRole(t, engine, "dist-1", "distributor")
	if err := engine.Ledger.Ledger.CreateAsset(ctx, ledgercommands.CreateAssetCommand{
		Caller: "dist-1", AssetID: "asset-1", FloatHolder: "float-1", TotalSupply: 100,
	}); err != nil {
		t.Fatalf("asset creation failed: %v", err)
	}
	if err := engine.Ledger.Handler.TransferHandler(ctx, "dist-1", ledgertransport.TransferRequest{
		From: "float-1", To: "holder-1", AssetID: "asset-1", Amounts: []uint64{40},
	}); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	publisher := &capturePublisher{}
	relay := ledgerworkers.OutboxRelay{
		Outbox:    engine.LedgerOutbox,
		Publisher: publisher,
		BatchSize: 10,
	}
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected one transfer event, got %d", len(publisher.events))
	}
	if publisher.events[0].EventType != "ledger.transferred" {
		t.Fatalf("unexpected event type %q", publisher.events[0].EventType)
	}
	if publisher.events[0].PartitionKey != "asset-1" {
		t.Fatalf("unexpected partition key %q", publisher.events[0].PartitionKey)
	}

	// A drained outbox publishes nothing on the next cycle.
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected no republish, got %d events", len(publisher.events))
	}
}

func TestLedgerOutboxRelayKeepsRowsOnPublishFailure(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	grantRole(t, engine, "dist-1", "distributor")
	if err := engine.Ledger.Ledger.CreateAsset(ctx, ledgercommands.CreateAssetCommand{
		Caller: "dist-1", AssetID: "asset-1", FloatHolder: "float-1", TotalSupply: 100,
	}); err != nil {
		t.Fatalf("asset creation failed: %v", err)
	}
	if err := engine.Ledger.Handler.TransferHandler(ctx, "dist-1", ledgertransport.TransferRequest{
		From: "float-1", To: "holder-1", AssetID: "asset-1", Amounts: []uint64{40},
	}); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	brokerDown := errors.New("broker unavailable")
	publisher := &capturePublisher{fail: brokerDown}
	relay := ledgerworkers.OutboxRelay{
		Outbox:    engine.LedgerOutbox,
		Publisher: publisher,
		BatchSize: 10,
	}
	if err := relay.RunOnce(ctx); !errors.Is(err, brokerDown) {
		t.Fatalf("expected broker error, got %v", err)
	}

	// The row stays pending and goes out once the broker recovers.
	publisher.fail = nil
	if err := relay.RunOnce(ctx); err != nil {
		t.Fatalf("retry run failed: %v", err)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected one event after recovery, got %d", len(publisher.events))
	}
}
