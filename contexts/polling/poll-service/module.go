package pollservice

import (
	"log/slog"

	httpadapter "pollux/contexts/polling/poll-service/adapters/http"
	"pollux/contexts/polling/poll-service/adapters/memory"
	"pollux/contexts/polling/poll-service/application/commands"
	"pollux/contexts/polling/poll-service/application/queries"
	"pollux/contexts/polling/poll-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Polls   commands.PollUseCase
	Queries queries.PollQueries
	Store   *memory.Store
}

type Dependencies struct {
	Polls  ports.PollRepository
	Ledger ports.TokenLedger
	Roles  ports.RoleChecker
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Outbox ports.OutboxWriter
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	pollUseCase := commands.PollUseCase{
		Polls:  deps.Polls,
		Ledger: deps.Ledger,
		Roles:  deps.Roles,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Outbox: deps.Outbox,
		Logger: deps.Logger,
	}
	pollQueries := queries.PollQueries{Polls: deps.Polls}
	return Module{
		Handler: httpadapter.Handler{
			Polls:   pollUseCase,
			Queries: pollQueries,
			Logger:  deps.Logger,
		},
		Polls:   pollUseCase,
		Queries: pollQueries,
	}
}

// NewInMemoryModule wires the poll engine against the in-memory store.
// Ledger and role lookups stay injected since they live in other contexts.
func NewInMemoryModule(ledger ports.TokenLedger, roles ports.RoleChecker, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Polls:  store,
		Ledger: ledger,
		Roles:  roles,
		Clock:  store,
		IDGen:  store,
		Outbox: store,
		Logger: logger,
	})
	module.Store = store
	return module
}
