package ports

import (
	"context"
	"encoding/json"
	"time"

	"pollux/contexts/identity-access/access-control/domain/entities"
)

type RoleRepository interface {
	GetGrant(ctx context.Context, account string) (entities.RoleGrant, bool, error)
	SaveGrant(ctx context.Context, grant entities.RoleGrant) error
	ListGrants(ctx context.Context) ([]entities.RoleGrant, error)
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
