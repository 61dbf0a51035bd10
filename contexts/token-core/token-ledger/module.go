package tokenledger

import (
	"log/slog"

	httpadapter "pollux/contexts/token-core/token-ledger/adapters/http"
	"pollux/contexts/token-core/token-ledger/adapters/memory"
	"pollux/contexts/token-core/token-ledger/application/commands"
	"pollux/contexts/token-core/token-ledger/application/queries"
	"pollux/contexts/token-core/token-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Ledger  commands.LedgerUseCase
	Queries queries.LedgerQueries
	Store   *memory.Store
}

type Dependencies struct {
	Balances        ports.BalanceRepository
	Approvals       ports.ApprovalRepository
	Nonces          ports.NonceStore
	Verifier        ports.SignatureVerifier
	Roles           ports.RoleChecker
	Clock           ports.Clock
	IDGen           ports.IDGenerator
	Outbox          ports.OutboxWriter
	DomainSeparator string
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ledgerUseCase := commands.LedgerUseCase{
		Balances:        deps.Balances,
		Approvals:       deps.Approvals,
		Nonces:          deps.Nonces,
		Verifier:        deps.Verifier,
		Roles:           deps.Roles,
		Clock:           deps.Clock,
		IDGen:           deps.IDGen,
		Outbox:          deps.Outbox,
		DomainSeparator: deps.DomainSeparator,
		Logger:          deps.Logger,
	}
	ledgerQueries := queries.LedgerQueries{
		Balances:  deps.Balances,
		Approvals: deps.Approvals,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ledger:  ledgerUseCase,
			Queries: ledgerQueries,
			Logger:  deps.Logger,
		},
		Ledger:  ledgerUseCase,
		Queries: ledgerQueries,
	}
}

// NewInMemoryModule wires the ledger against the in-memory store and the
// deterministic signature fake.
func NewInMemoryModule(roles ports.RoleChecker, domainSeparator string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Balances:        store,
		Approvals:       store,
		Nonces:          store,
		Verifier:        memory.StaticVerifier{},
		Roles:           roles,
		Clock:           store,
		IDGen:           store,
		Outbox:          store,
		DomainSeparator: domainSeparator,
		Logger:          logger,
	})
	module.Store = store
	return module
}
