package subscriptionservice

import (
	"log/slog"

	httpadapter "pollux/contexts/polling/subscription-service/adapters/http"
	"pollux/contexts/polling/subscription-service/adapters/memory"
	"pollux/contexts/polling/subscription-service/application/commands"
	"pollux/contexts/polling/subscription-service/application/queries"
	"pollux/contexts/polling/subscription-service/ports"
)

type Module struct {
	Handler       httpadapter.Handler
	Subscriptions commands.SubscriptionUseCase
	Queries       queries.SubscriptionQueries
	Store         *memory.Store
}

type Dependencies struct {
	Subscriptions ports.SubscriptionRepository
	Polls         ports.PollDirectory
	Profiles      ports.ProfileDirectory
	Granter       ports.TokenGranter
	Roles         ports.RoleChecker
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Outbox        ports.OutboxWriter
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	subscriptionUseCase := commands.SubscriptionUseCase{
		Subscriptions: deps.Subscriptions,
		Polls:         deps.Polls,
		Profiles:      deps.Profiles,
		Granter:       deps.Granter,
		Roles:         deps.Roles,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Outbox:        deps.Outbox,
		Logger:        deps.Logger,
	}
	subscriptionQueries := queries.SubscriptionQueries{Subscriptions: deps.Subscriptions}
	return Module{
		Handler: httpadapter.Handler{
			Subscriptions: subscriptionUseCase,
			Queries:       subscriptionQueries,
			Logger:        deps.Logger,
		},
		Subscriptions: subscriptionUseCase,
		Queries:       subscriptionQueries,
	}
}

// NewInMemoryModule wires subscriptions against the in-memory store.
// Poll, profile, grant and role lookups stay injected since they live in
// other contexts.
func NewInMemoryModule(
	polls ports.PollDirectory,
	profiles ports.ProfileDirectory,
	granter ports.TokenGranter,
	roles ports.RoleChecker,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Subscriptions: store,
		Polls:         polls,
		Profiles:      profiles,
		Granter:       granter,
		Roles:         roles,
		Clock:         store,
		IDGen:         store,
		Outbox:        store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
