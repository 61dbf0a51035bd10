package bootstrap

import (
	"log/slog"
	"strings"
	"time"

	accesscontrol "pollux/contexts/identity-access/access-control"
	accessmemory "pollux/contexts/identity-access/access-control/adapters/memory"
	accessentities "pollux/contexts/identity-access/access-control/domain/entities"
	registrationservice "pollux/contexts/identity-access/registration-service"
	pollservice "pollux/contexts/polling/poll-service"
	pollpostgres "pollux/contexts/polling/poll-service/adapters/postgres"
	pollports "pollux/contexts/polling/poll-service/ports"
	subscriptionservice "pollux/contexts/polling/subscription-service"
	subports "pollux/contexts/polling/subscription-service/ports"
	tokenledger "pollux/contexts/token-core/token-ledger"
	ledgermemory "pollux/contexts/token-core/token-ledger/adapters/memory"
	ledgerpostgres "pollux/contexts/token-core/token-ledger/adapters/postgres"
	ledgerports "pollux/contexts/token-core/token-ledger/ports"
	"pollux/internal/platform/db"
)

// Engine is the fully wired voting platform: all five context modules
// plus the outbox handles the worker relays drain.
type Engine struct {
	Access        accesscontrol.Module
	Registry      registrationservice.Module
	Ledger        tokenledger.Module
	Polls         pollservice.Module
	Subscriptions subscriptionservice.Module

	LedgerOutbox       ledgerports.OutboxRepository
	PollOutbox         pollports.OutboxRepository
	SubscriptionOutbox subports.OutboxRepository
}

// BuildMemoryEngine wires every context against in-memory adapters.
// Tests and DSN-less development both start here.
func BuildMemoryEngine(
	domainSeparator string,
	bootstrapAdmin string,
	verifier ledgerports.SignatureVerifier,
	logger *slog.Logger,
) Engine {
	return buildEngine(domainSeparator, bootstrapAdmin, verifier, nil, logger)
}

// buildEngine assembles the cross-context graph. When a postgres handle
// is provided, ledger and poll state move to durable repositories; the
// remaining contexts stay on their in-memory stores.
func buildEngine(
	domainSeparator string,
	bootstrapAdmin string,
	verifier ledgerports.SignatureVerifier,
	pg *db.Postgres,
	logger *slog.Logger,
) Engine {
	accessModule := accesscontrol.NewInMemoryModule(logger)
	seedServiceAccounts(accessModule.Store, bootstrapAdmin)
	roles := roleDirectory{queries: accessModule.Queries}

	registryModule := registrationservice.NewInMemoryModule(
		roleAssigner{roles: accessModule.Roles},
		logger,
	)

	var ledgerModule tokenledger.Module
	var ledgerOutbox ledgerports.OutboxRepository
	if pg != nil {
		repo := ledgerpostgres.NewRepository(pg.DB, logger)
		ledgerModule = tokenledger.NewModule(tokenledger.Dependencies{
			Balances:        repo,
			Approvals:       repo,
			Nonces:          repo,
			Verifier:        verifier,
			Roles:           roles,
			Clock:           ledgerpostgres.SystemClock{},
			IDGen:           ledgerpostgres.UUIDGenerator{},
			Outbox:          repo,
			DomainSeparator: domainSeparator,
			Logger:          logger,
		})
		ledgerOutbox = repo
	} else {
		store := ledgermemory.NewStore()
		ledgerModule = tokenledger.NewModule(tokenledger.Dependencies{
			Balances:        store,
			Approvals:       store,
			Nonces:          store,
			Verifier:        verifier,
			Roles:           roles,
			Clock:           store,
			IDGen:           store,
			Outbox:          store,
			DomainSeparator: domainSeparator,
			Logger:          logger,
		})
		ledgerModule.Store = store
		ledgerOutbox = store
	}
	custody := pollLedger{
		ledger:  ledgerModule.Ledger,
		queries: ledgerModule.Queries,
	}

	var pollModule pollservice.Module
	var pollOutbox pollports.OutboxRepository
	if pg != nil {
		repo := pollpostgres.NewRepository(pg.DB, logger)
		pollModule = pollservice.NewModule(pollservice.Dependencies{
			Polls:  repo,
			Ledger: custody,
			Roles:  roles,
			Clock:  pollpostgres.SystemClock{},
			IDGen:  pollpostgres.UUIDGenerator{},
			Outbox: repo,
			Logger: logger,
		})
		pollOutbox = repo
	} else {
		pollModule = pollservice.NewInMemoryModule(custody, roles, logger)
		pollOutbox = pollModule.Store
	}

	subscriptionModule := subscriptionservice.NewInMemoryModule(
		subscriptionPolls{queries: pollModule.Queries},
		subscriptionProfiles{queries: registryModule.Queries},
		subscriptionGranter{ledger: ledgerModule.Ledger},
		roles,
		logger,
	)

	return Engine{
		Access:        accessModule,
		Registry:      registryModule,
		Ledger:        ledgerModule,
		Polls:         pollModule,
		Subscriptions: subscriptionModule,

		LedgerOutbox:       ledgerOutbox,
		PollOutbox:         pollOutbox,
		SubscriptionOutbox: subscriptionModule.Store,
	}
}

// seedServiceAccounts plants the standing role graph. Re-seeding is a
// plain overwrite with identical grants, so restarts are idempotent.
func seedServiceAccounts(store *accessmemory.Store, bootstrapAdmin string) {
	now := time.Now().UTC()
	grants := []accessentities.RoleGrant{
		{Account: svcRegistration, Role: accessentities.RoleAdmin, AssignedBy: "bootstrap", AssignedAt: now},
		{Account: svcPollFactory, Role: accessentities.RoleDistributor, AssignedBy: "bootstrap", AssignedAt: now},
		{Account: svcSubscription, Role: accessentities.RoleDistributor, AssignedBy: "bootstrap", AssignedAt: now},
		{Account: svcVoting, Role: accessentities.RoleDistributor, AssignedBy: "bootstrap", AssignedAt: now},
	}
	if admin := strings.TrimSpace(bootstrapAdmin); admin != "" {
		grants = append(grants, accessentities.RoleGrant{
			Account:    admin,
			Role:       accessentities.RoleAdmin,
			AssignedBy: "bootstrap",
			AssignedAt: now,
		})
	}
	for _, grant := range grants {
		store.SeedGrant(grant)
	}
}
