package ports

import (
	"context"
	"encoding/json"
	"time"

	"pollux/contexts/polling/subscription-service/domain/entities"
)

type SubscriptionRepository interface {
	GetSubscription(ctx context.Context, user string, pollID string) (entities.Subscription, bool, error)
	SaveSubscription(ctx context.Context, subscription entities.Subscription) error
}

// PollSummary is the slice of a poll the subscription gate needs.
type PollSummary struct {
	PollID            string
	AssetID           string
	FloatAddress      string
	EndDate           time.Time
	MinAge            int
	Location          string
	MinTokensRequired uint64
}

// PollDirectory exposes poll lookups across the context boundary.
// Implementations must surface this context's ErrPollNotFound sentinel.
type PollDirectory interface {
	GetPoll(ctx context.Context, pollID string) (PollSummary, error)
}

// UserProfile carries the registered attributes eligibility checks read.
type UserProfile struct {
	Address  string
	Age      int
	Location string
}

// ProfileDirectory exposes registered user profiles. Implementations
// must surface ErrNotRegistered for unknown or non-user addresses.
type ProfileDirectory interface {
	GetUserProfile(ctx context.Context, account string) (UserProfile, error)
}

// TokenGranter moves the subscription allowance from the poll float to
// the user. Implementations call the ledger with the subscription
// service account as operator.
type TokenGranter interface {
	GrantTokens(ctx context.Context, assetID string, from string, to string, amount uint64) error
}

type RoleChecker interface {
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
