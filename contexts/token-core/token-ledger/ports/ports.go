package ports

import (
	"context"
	"encoding/json"
	"time"

	"pollux/contexts/token-core/token-ledger/domain/entities"
)

// BalanceRepository owns asset and balance state. Move and MoveBatch are
// atomic: they validate sufficiency and commit under one lock or
// transaction, returning ErrInsufficientBalance without partial effect.
type BalanceRepository interface {
	CreateAsset(ctx context.Context, asset entities.Asset, floatHolder string) error
	GetAsset(ctx context.Context, assetID string) (entities.Asset, bool, error)
	BalanceOf(ctx context.Context, holder string, assetID string) (uint64, error)
	Move(ctx context.Context, assetID string, from string, to string, amount uint64) error
	MoveBatch(ctx context.Context, assetID string, from string, to string, amounts []uint64) error
	ListBalances(ctx context.Context, assetID string) ([]entities.Balance, error)
}

type ApprovalRepository interface {
	SetApproval(ctx context.Context, owner string, spender string, approved bool) error
	IsApproved(ctx context.Context, owner string, spender string) (bool, error)
}

type NonceStore interface {
	IsNonceUsed(ctx context.Context, holder string, nonce uint64) (bool, error)
	MarkNonceUsed(ctx context.Context, holder string, nonce uint64, usedAt time.Time) error
}

// SignatureVerifier checks an asymmetric signature over the canonical
// authorization message. Production wiring uses sr25519; tests inject a
// deterministic fake.
type SignatureVerifier interface {
	Verify(ctx context.Context, signer string, message []byte, signature []byte) (bool, error)
}

// RoleChecker consults the access-control context. Distributor-role
// services act as ledger operators for balances they do not own.
type RoleChecker interface {
	IsDistributor(ctx context.Context, account string) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope mirrors the canonical contracts/gen/events/v1 shape.
type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event EventEnvelope) error
}

type OutboxRow struct {
	OutboxID  string
	EventType string
	Payload   []byte
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxRow, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
