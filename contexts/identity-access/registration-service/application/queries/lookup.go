package queries

import (
	"context"
	"strings"

	"pollux/contexts/identity-access/registration-service/domain/entities"
	domainerrors "pollux/contexts/identity-access/registration-service/domain/errors"
	"pollux/contexts/identity-access/registration-service/ports"
)

type RegistryQueries struct {
	Accounts ports.AccountRepository
}

func (q RegistryQueries) IsUser(ctx context.Context, address string) (bool, error) {
	account, found, err := q.Accounts.GetAccount(ctx, strings.TrimSpace(address))
	if err != nil {
		return false, err
	}
	return found && account.Class == entities.ClassUser, nil
}

func (q RegistryQueries) IsInstance(ctx context.Context, address string) (bool, error) {
	account, found, err := q.Accounts.GetAccount(ctx, strings.TrimSpace(address))
	if err != nil {
		return false, err
	}
	return found && account.Class == entities.ClassInstance, nil
}

func (q RegistryQueries) GetAccount(ctx context.Context, address string) (entities.Account, error) {
	account, found, err := q.Accounts.GetAccount(ctx, strings.TrimSpace(address))
	if err != nil {
		return entities.Account{}, err
	}
	if !found {
		return entities.Account{}, domainerrors.ErrNotRegistered
	}
	return account, nil
}
