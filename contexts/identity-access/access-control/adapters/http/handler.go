package httpadapter

import (
	"context"
	"log/slog"

	"pollux/contexts/identity-access/access-control/application/commands"
	"pollux/contexts/identity-access/access-control/application/queries"
	"pollux/contexts/identity-access/access-control/domain/entities"
	httptransport "pollux/contexts/identity-access/access-control/transport/http"
)

type Handler struct {
	Roles   commands.RoleUseCase
	Queries queries.RoleQueries
	Logger  *slog.Logger
}

func (h Handler) AssignRoleHandler(ctx context.Context, caller string, req httptransport.AssignRoleRequest) error {
	return h.Roles.AssignRole(ctx, commands.AssignRoleCommand{
		Caller:  caller,
		Account: req.Account,
		Role:    entities.Role(req.Role),
	})
}

func (h Handler) AccountRoleHandler(ctx context.Context, account string) (httptransport.AccountRoleResponse, error) {
	role, err := h.Queries.RoleOf(ctx, account)
	if err != nil {
		return httptransport.AccountRoleResponse{}, err
	}
	return httptransport.AccountRoleResponse{
		Account: account,
		Role:    string(role),
		HasRole: role != entities.RoleNone,
	}, nil
}
