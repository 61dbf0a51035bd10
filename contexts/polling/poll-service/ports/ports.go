package ports

import (
	"context"
	"encoding/json"
	"time"

	"pollux/contexts/polling/poll-service/domain/entities"
)

type PollRepository interface {
	SavePoll(ctx context.Context, poll entities.Poll) error
	GetPoll(ctx context.Context, pollID string) (entities.Poll, bool, error)
	ListPolls(ctx context.Context) ([]entities.Poll, error)
	// AddTallies increments tally[index] by the paired amount for every
	// (index, amount) pair. Callers validate bounds first; the batch is
	// applied atomically.
	AddTallies(ctx context.Context, pollID string, indexes []int, amounts []uint64) error
}

// TransferTicket carries a holder-signed one-time spend authorization
// into the ledger without crossing context boundaries with ledger types.
type TransferTicket struct {
	Holder    string
	Spender   string
	AssetID   string
	Amount    uint64
	Nonce     uint64
	Expiry    time.Time
	Signature []byte
}

// TokenLedger couples the poll engine to balance custody. Implementations
// must surface this context's sentinels: ErrInsufficientBalance when the
// source balance cannot cover the batch, ErrInvalidAuthorization for a
// rejected ticket (bad signature, expired, replayed, wrong spender).
type TokenLedger interface {
	CreateAsset(ctx context.Context, assetID string, floatHolder string, totalSupply uint64) error
	BatchTransfer(ctx context.Context, from string, to string, assetID string, amounts []uint64) error
	ConsumeAuthorization(ctx context.Context, submitter string, recipient string, ticket TransferTicket) error
	BalanceOf(ctx context.Context, holder string, assetID string) (uint64, error)
}

// RoleChecker answers the role gates polls care about.
type RoleChecker interface {
	IsInstance(ctx context.Context, account string) (bool, error)
	IsUser(ctx context.Context, account string) (bool, error)
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
