package ports

import (
	"context"
	"encoding/json"
	"time"

	"pollux/contexts/identity-access/registration-service/domain/entities"
)

type AccountRepository interface {
	GetAccount(ctx context.Context, address string) (entities.Account, bool, error)
	SaveAccount(ctx context.Context, account entities.Account) error
}

// RoleAssigner couples registration to the access-control role graph.
// Implementations must surface the registration-service ErrRoleConflict
// sentinel when the address already holds a conflicting role.
type RoleAssigner interface {
	AssignUserRole(ctx context.Context, account string) error
	AssignInstanceRole(ctx context.Context, account string) error
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
