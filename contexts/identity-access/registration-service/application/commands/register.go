package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "pollux/contexts/identity-access/registration-service/application"
	"pollux/contexts/identity-access/registration-service/domain/entities"
	domainerrors "pollux/contexts/identity-access/registration-service/domain/errors"
	"pollux/contexts/identity-access/registration-service/ports"
)

// RegisterUserCommand is the write-model input for end-user registration.
type RegisterUserCommand struct {
	Account     string
	DisplayName string
	Age         int
	Location    string
	Contact     string
}

// RegisterInstanceCommand is the write-model input for organization
// registration.
type RegisterInstanceCommand struct {
	Account      string
	Organization string
	Contact      string
}

// RegistrationUseCase writes profile and role as one observable step:
// validation and the role grant happen before the profile write, so a
// rejected grant leaves no partial state behind.
type RegistrationUseCase struct {
	Accounts ports.AccountRepository
	Assigner ports.RoleAssigner
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Outbox   ports.OutboxWriter
	Logger   *slog.Logger
}

func (uc RegistrationUseCase) RegisterUser(ctx context.Context, cmd RegisterUserCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	address := strings.TrimSpace(cmd.Account)
	logger.Info("user registration started",
		"event", "registry_register_user_started",
		"module", "identity-access/registration-service",
		"layer", "application",
		"account", address,
	)
	if address == "" || strings.TrimSpace(cmd.DisplayName) == "" || cmd.Age <= 0 {
		return domainerrors.ErrInvalidProfile
	}
	if err := uc.checkUnregistered(ctx, address, entities.ClassUser); err != nil {
		return err
	}
	if err := uc.Assigner.AssignUserRole(ctx, address); err != nil {
		logger.Warn("user role grant rejected",
			"event", "registry_register_user_role_rejected",
			"module", "identity-access/registration-service",
			"layer", "application",
			"account", address,
			"error", err.Error(),
		)
		return err
	}

	now := uc.now()
	account := entities.Account{
		Address:      address,
		Class:        entities.ClassUser,
		DisplayName:  strings.TrimSpace(cmd.DisplayName),
		Age:          cmd.Age,
		Location:     strings.TrimSpace(cmd.Location),
		Contact:      strings.TrimSpace(cmd.Contact),
		RegisteredAt: now,
	}
	if err := uc.Accounts.SaveAccount(ctx, account); err != nil {
		return err
	}
	if err := uc.appendRegisteredEvent(ctx, account, now); err != nil {
		return err
	}
	logger.Info("user registered",
		"event", "registry_user_registered",
		"module", "identity-access/registration-service",
		"layer", "application",
		"account", address,
	)
	return nil
}

func (uc RegistrationUseCase) RegisterInstance(ctx context.Context, cmd RegisterInstanceCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	address := strings.TrimSpace(cmd.Account)
	logger.Info("instance registration started",
		"event", "registry_register_instance_started",
		"module", "identity-access/registration-service",
		"layer", "application",
		"account", address,
	)
	if address == "" || strings.TrimSpace(cmd.Organization) == "" {
		return domainerrors.ErrInvalidProfile
	}
	if err := uc.checkUnregistered(ctx, address, entities.ClassInstance); err != nil {
		return err
	}
	if err := uc.Assigner.AssignInstanceRole(ctx, address); err != nil {
		logger.Warn("instance role grant rejected",
			"event", "registry_register_instance_role_rejected",
			"module", "identity-access/registration-service",
			"layer", "application",
			"account", address,
			"error", err.Error(),
		)
		return err
	}

	now := uc.now()
	account := entities.Account{
		Address:      address,
		Class:        entities.ClassInstance,
		Organization: strings.TrimSpace(cmd.Organization),
		Contact:      strings.TrimSpace(cmd.Contact),
		RegisteredAt: now,
	}
	if err := uc.Accounts.SaveAccount(ctx, account); err != nil {
		return err
	}
	if err := uc.appendRegisteredEvent(ctx, account, now); err != nil {
		return err
	}
	logger.Info("instance registered",
		"event", "registry_instance_registered",
		"module", "identity-access/registration-service",
		"layer", "application",
		"account", address,
	)
	return nil
}

func (uc RegistrationUseCase) checkUnregistered(
	ctx context.Context,
	address string,
	requested entities.RegistrationClass,
) error {
	existing, found, err := uc.Accounts.GetAccount(ctx, address)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if existing.Class == requested {
		return domainerrors.ErrAlreadyRegistered
	}
	return domainerrors.ErrRoleConflict
}

func (uc RegistrationUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc RegistrationUseCase) appendRegisteredEvent(
	ctx context.Context,
	account entities.Account,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID := account.Address
	if uc.IDGen != nil {
		id, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		eventID = id
	}
	payload, err := json.Marshal(map[string]any{
		"account":     account.Address,
		"class":       string(account.Class),
		"occurred_at": occurredAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        "account.registered",
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "registration-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "account",
		PartitionKey:     account.Address,
		Data:             payload,
	})
}
