package registrationservice

import (
	"log/slog"

	httpadapter "pollux/contexts/identity-access/registration-service/adapters/http"
	"pollux/contexts/identity-access/registration-service/adapters/memory"
	"pollux/contexts/identity-access/registration-service/application/commands"
	"pollux/contexts/identity-access/registration-service/application/queries"
	"pollux/contexts/identity-access/registration-service/ports"
)

type Module struct {
	Handler      httpadapter.Handler
	Registration commands.RegistrationUseCase
	Queries      queries.RegistryQueries
	Store        *memory.Store
}

type Dependencies struct {
	Accounts ports.AccountRepository
	Assigner ports.RoleAssigner
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Outbox   ports.OutboxWriter
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	registrationUseCase := commands.RegistrationUseCase{
		Accounts: deps.Accounts,
		Assigner: deps.Assigner,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Outbox:   deps.Outbox,
		Logger:   deps.Logger,
	}
	registryQueries := queries.RegistryQueries{Accounts: deps.Accounts}
	return Module{
		Handler: httpadapter.Handler{
			Registration: registrationUseCase,
			Queries:      registryQueries,
			Logger:       deps.Logger,
		},
		Registration: registrationUseCase,
		Queries:      registryQueries,
	}
}

func NewInMemoryModule(assigner ports.RoleAssigner, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Accounts: store,
		Assigner: assigner,
		Clock:    store,
		IDGen:    store,
		Outbox:   store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
