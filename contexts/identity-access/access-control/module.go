package accesscontrol

import (
	"log/slog"

	httpadapter "pollux/contexts/identity-access/access-control/adapters/http"
	"pollux/contexts/identity-access/access-control/adapters/memory"
	"pollux/contexts/identity-access/access-control/application/commands"
	"pollux/contexts/identity-access/access-control/application/queries"
	"pollux/contexts/identity-access/access-control/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Roles   commands.RoleUseCase
	Queries queries.RoleQueries
	Store   *memory.Store
}

type Dependencies struct {
	Roles  ports.RoleRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Outbox ports.OutboxWriter
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	roleUseCase := commands.RoleUseCase{
		Roles:  deps.Roles,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Outbox: deps.Outbox,
		Logger: deps.Logger,
	}
	roleQueries := queries.RoleQueries{Roles: deps.Roles}
	return Module{
		Handler: httpadapter.Handler{
			Roles:   roleUseCase,
			Queries: roleQueries,
			Logger:  deps.Logger,
		},
		Roles:   roleUseCase,
		Queries: roleQueries,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Roles:  store,
		Clock:  store,
		IDGen:  store,
		Outbox: store,
		Logger: logger,
	})
	module.Store = store
	return module
}
