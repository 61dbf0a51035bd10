package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "pollux/contexts/identity-access/access-control/application"
	"pollux/contexts/identity-access/access-control/domain/entities"
	domainerrors "pollux/contexts/identity-access/access-control/domain/errors"
	"pollux/contexts/identity-access/access-control/ports"
)

// AssignRoleCommand is the write-model input for role assignment.
type AssignRoleCommand struct {
	Caller  string
	Account string
	Role    entities.Role
}

// RoleUseCase enforces the one-role-per-account rule. Assignments are
// admin-gated and permanent: a matching re-assignment is a no-op, a
// conflicting one fails.
type RoleUseCase struct {
	Roles  ports.RoleRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Outbox ports.OutboxWriter
	Logger *slog.Logger
}

func (uc RoleUseCase) AssignRole(ctx context.Context, cmd AssignRoleCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	account := strings.TrimSpace(cmd.Account)
	logger.Info("role assignment started",
		"event", "access_assign_role_started",
		"module", "identity-access/access-control",
		"layer", "application",
		"caller", caller,
		"account", account,
		"role", string(cmd.Role),
	)
	if account == "" || caller == "" {
		return domainerrors.ErrInvalidAccount
	}
	if !cmd.Role.Valid() {
		return domainerrors.ErrInvalidRole
	}

	callerGrant, found, err := uc.Roles.GetGrant(ctx, caller)
	if err != nil {
		return err
	}
	if !found || callerGrant.Role != entities.RoleAdmin {
		logger.Warn("role assignment denied",
			"event", "access_assign_role_denied",
			"module", "identity-access/access-control",
			"layer", "application",
			"caller", caller,
			"account", account,
		)
		return domainerrors.ErrAccessDenied
	}

	if existing, found, err := uc.Roles.GetGrant(ctx, account); err != nil {
		return err
	} else if found {
		if existing.Role == cmd.Role {
			// Same role twice is harmless.
			return nil
		}
		logger.Warn("role assignment conflict",
			"event", "access_assign_role_conflict",
			"module", "identity-access/access-control",
			"layer", "application",
			"account", account,
			"existing_role", string(existing.Role),
			"requested_role", string(cmd.Role),
		)
		return domainerrors.ErrRoleConflict
	}

	now := uc.now()
	grant := entities.RoleGrant{
		Account:    account,
		Role:       cmd.Role,
		AssignedBy: caller,
		AssignedAt: now,
	}
	if err := uc.Roles.SaveGrant(ctx, grant); err != nil {
		return err
	}
	if err := uc.appendRoleEvent(ctx, grant, now); err != nil {
		return err
	}
	logger.Info("role assigned",
		"event", "access_role_assigned",
		"module", "identity-access/access-control",
		"layer", "application",
		"account", account,
		"role", string(cmd.Role),
		"assigned_by", caller,
	)
	return nil
}

func (uc RoleUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc RoleUseCase) appendRoleEvent(ctx context.Context, grant entities.RoleGrant, occurredAt time.Time) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID := grant.Account
	if uc.IDGen != nil {
		id, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		eventID = id
	}
	payload, err := json.Marshal(map[string]any{
		"account":     grant.Account,
		"role":        string(grant.Role),
		"assigned_by": grant.AssignedBy,
		"occurred_at": occurredAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        "role.assigned",
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "access-control",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "account",
		PartitionKey:     grant.Account,
		Data:             payload,
	})
}
