package queries

import (
	"context"
	"strings"

	"pollux/contexts/identity-access/access-control/domain/entities"
	domainerrors "pollux/contexts/identity-access/access-control/domain/errors"
	"pollux/contexts/identity-access/access-control/ports"
)

// RoleQueries answers pure role lookups. RequireRole is the single
// enforcement point every other context routes its checks through.
type RoleQueries struct {
	Roles ports.RoleRepository
}

func (q RoleQueries) HasRole(ctx context.Context, account string, role entities.Role) (bool, error) {
	grant, found, err := q.Roles.GetGrant(ctx, strings.TrimSpace(account))
	if err != nil {
		return false, err
	}
	return found && grant.Role == role, nil
}

func (q RoleQueries) RoleOf(ctx context.Context, account string) (entities.Role, error) {
	grant, found, err := q.Roles.GetGrant(ctx, strings.TrimSpace(account))
	if err != nil {
		return entities.RoleNone, err
	}
	if !found {
		return entities.RoleNone, nil
	}
	return grant.Role, nil
}

func (q RoleQueries) RequireRole(ctx context.Context, account string, role entities.Role) error {
	ok, err := q.HasRole(ctx, account, role)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrAccessDenied
	}
	return nil
}

func (q RoleQueries) ListGrants(ctx context.Context) ([]entities.RoleGrant, error) {
	return q.Roles.ListGrants(ctx)
}
