package httpadapter

import (
	"context"
	"log/slog"

	"pollux/contexts/identity-access/registration-service/application/commands"
	"pollux/contexts/identity-access/registration-service/application/queries"
	"pollux/contexts/identity-access/registration-service/domain/entities"
	httptransport "pollux/contexts/identity-access/registration-service/transport/http"
)

type Handler struct {
	Registration commands.RegistrationUseCase
	Queries      queries.RegistryQueries
	Logger       *slog.Logger
}

func (h Handler) RegisterUserHandler(ctx context.Context, req httptransport.RegisterUserRequest) error {
	return h.Registration.RegisterUser(ctx, commands.RegisterUserCommand{
		Account:     req.Account,
		DisplayName: req.DisplayName,
		Age:         req.Age,
		Location:    req.Location,
		Contact:     req.Contact,
	})
}

func (h Handler) RegisterInstanceHandler(ctx context.Context, req httptransport.RegisterInstanceRequest) error {
	return h.Registration.RegisterInstance(ctx, commands.RegisterInstanceCommand{
		Account:      req.Account,
		Organization: req.Organization,
		Contact:      req.Contact,
	})
}

func (h Handler) AccountHandler(ctx context.Context, address string) (httptransport.AccountResponse, error) {
	account, err := h.Queries.GetAccount(ctx, address)
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return httptransport.AccountResponse{
		Account:      account.Address,
		Class:        string(account.Class),
		IsUser:       account.Class == entities.ClassUser,
		IsInstance:   account.Class == entities.ClassInstance,
		DisplayName:  account.DisplayName,
		Organization: account.Organization,
		Age:          account.Age,
		Location:     account.Location,
		Contact:      account.Contact,
	}, nil
}
