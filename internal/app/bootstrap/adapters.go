package bootstrap

import (
	"context"
	"errors"

	accesscommands "pollux/contexts/identity-access/access-control/application/commands"
	accessqueries "pollux/contexts/identity-access/access-control/application/queries"
	accessentities "pollux/contexts/identity-access/access-control/domain/entities"
	accesserrors "pollux/contexts/identity-access/access-control/domain/errors"
	registryqueries "pollux/contexts/identity-access/registration-service/application/queries"
	registryentities "pollux/contexts/identity-access/registration-service/domain/entities"
	registryerrors "pollux/contexts/identity-access/registration-service/domain/errors"
	registryports "pollux/contexts/identity-access/registration-service/ports"
	pollqueries "pollux/contexts/polling/poll-service/application/queries"
	pollerrors "pollux/contexts/polling/poll-service/domain/errors"
	pollports "pollux/contexts/polling/poll-service/ports"
	suberrors "pollux/contexts/polling/subscription-service/domain/errors"
	subports "pollux/contexts/polling/subscription-service/ports"
	ledgercommands "pollux/contexts/token-core/token-ledger/application/commands"
	ledgerqueries "pollux/contexts/token-core/token-ledger/application/queries"
	ledgerentities "pollux/contexts/token-core/token-ledger/domain/entities"
	ledgererrors "pollux/contexts/token-core/token-ledger/domain/errors"
	ledgerports "pollux/contexts/token-core/token-ledger/ports"
	"pollux/internal/platform/messaging"
	"pollux/internal/shared/events"
)

// Service accounts mirror the role graph planted at deploy time: the
// registry assigns identities, the factory mints poll supply, and the
// subscription/voting services move balances they do not own.
const (
	svcRegistration = "svc:registration"
	svcPollFactory  = "svc:poll-factory"
	svcSubscription = "svc:subscription"
	svcVoting       = "svc:voting"
)

// roleAssigner lets the registry grant identity roles through the
// access-control admin gate, acting as the registration service account.
type roleAssigner struct {
	roles accesscommands.RoleUseCase
}

var _ registryports.RoleAssigner = roleAssigner{}

func (a roleAssigner) AssignUserRole(ctx context.Context, account string) error {
	return a.assign(ctx, account, accessentities.RoleUser)
}

func (a roleAssigner) AssignInstanceRole(ctx context.Context, account string) error {
	return a.assign(ctx, account, accessentities.RoleInstance)
}

func (a roleAssigner) assign(ctx context.Context, account string, role accessentities.Role) error {
	err := a.roles.AssignRole(ctx, accesscommands.AssignRoleCommand{
		Caller:  svcRegistration,
		Account: account,
		Role:    role,
	})
	if errors.Is(err, accesserrors.ErrRoleConflict) {
		return registryerrors.ErrRoleConflict
	}
	return err
}

// roleDirectory answers the role gates of the ledger, poll and
// subscription contexts from the single access-control grant table.
type roleDirectory struct {
	queries accessqueries.RoleQueries
}

func (d roleDirectory) IsDistributor(ctx context.Context, account string) (bool, error) {
	return d.queries.HasRole(ctx, account, accessentities.RoleDistributor)
}

func (d roleDirectory) IsInstance(ctx context.Context, account string) (bool, error) {
	return d.queries.HasRole(ctx, account, accessentities.RoleInstance)
}

func (d roleDirectory) IsUser(ctx context.Context, account string) (bool, error) {
	return d.queries.HasRole(ctx, account, accessentities.RoleUser)
}

// pollLedger backs the poll engine's custody port with the token ledger,
// using the factory account for mints and the voting account for spends.
type pollLedger struct {
	ledger  ledgercommands.LedgerUseCase
	queries ledgerqueries.LedgerQueries
}

var _ pollports.TokenLedger = pollLedger{}

func (l pollLedger) CreateAsset(ctx context.Context, assetID string, floatHolder string, totalSupply uint64) error {
	return l.ledger.CreateAsset(ctx, ledgercommands.CreateAssetCommand{
		Caller:      svcPollFactory,
		AssetID:     assetID,
		FloatHolder: floatHolder,
		TotalSupply: totalSupply,
	})
}

func (l pollLedger) BatchTransfer(ctx context.Context, from string, to string, assetID string, amounts []uint64) error {
	err := l.ledger.BatchTransfer(ctx, ledgercommands.BatchTransferCommand{
		Caller:  svcVoting,
		From:    from,
		To:      to,
		AssetID: assetID,
		Amounts: amounts,
	})
	if errors.Is(err, ledgererrors.ErrInsufficientBalance) {
		return pollerrors.ErrInsufficientBalance
	}
	return err
}

func (l pollLedger) ConsumeAuthorization(ctx context.Context, submitter string, recipient string, ticket pollports.TransferTicket) error {
	// Ticket rejections keep their ledger sentinels; the transport edge
	// maps them to status codes.
	return l.ledger.ConsumeAuthorization(ctx, ledgercommands.ConsumeAuthorizationCommand{
		Submitter: submitter,
		Recipient: recipient,
		Authorization: ledgerentities.TransferAuthorization{
			Holder:    ticket.Holder,
			Spender:   ticket.Spender,
			AssetID:   ticket.AssetID,
			Amount:    ticket.Amount,
			Nonce:     ticket.Nonce,
			Expiry:    ticket.Expiry,
			Signature: ticket.Signature,
		},
	})
}

func (l pollLedger) BalanceOf(ctx context.Context, holder string, assetID string) (uint64, error) {
	return l.queries.BalanceOf(ctx, holder, assetID)
}

// subscriptionPolls exposes poll lookups to the subscription gate.
type subscriptionPolls struct {
	queries pollqueries.PollQueries
}

var _ subports.PollDirectory = subscriptionPolls{}

func (p subscriptionPolls) GetPoll(ctx context.Context, pollID string) (subports.PollSummary, error) {
	poll, err := p.queries.GetPoll(ctx, pollID)
	if err != nil {
		if errors.Is(err, pollerrors.ErrPollNotFound) {
			return subports.PollSummary{}, suberrors.ErrPollNotFound
		}
		return subports.PollSummary{}, err
	}
	return subports.PollSummary{
		PollID:            poll.PollID,
		AssetID:           poll.AssetID,
		FloatAddress:      poll.FloatAddress(),
		EndDate:           poll.EndDate,
		MinAge:            poll.Eligibility.MinAge,
		Location:          poll.Eligibility.Location,
		MinTokensRequired: poll.Eligibility.MinTokensRequired,
	}, nil
}

// subscriptionProfiles reads registered user profiles for eligibility.
type subscriptionProfiles struct {
	queries registryqueries.RegistryQueries
}

var _ subports.ProfileDirectory = subscriptionProfiles{}

func (p subscriptionProfiles) GetUserProfile(ctx context.Context, account string) (subports.UserProfile, error) {
	profile, err := p.queries.GetAccount(ctx, account)
	if err != nil {
		if errors.Is(err, registryerrors.ErrNotRegistered) {
			return subports.UserProfile{}, suberrors.ErrNotRegistered
		}
		return subports.UserProfile{}, err
	}
	if profile.Class != registryentities.ClassUser {
		return subports.UserProfile{}, suberrors.ErrNotRegistered
	}
	return subports.UserProfile{
		Address:  profile.Address,
		Age:      profile.Age,
		Location: profile.Location,
	}, nil
}

// subscriptionGranter funds subscriptions from the poll float using the
// subscription service account.
type subscriptionGranter struct {
	ledger ledgercommands.LedgerUseCase
}

var _ subports.TokenGranter = subscriptionGranter{}

func (g subscriptionGranter) GrantTokens(ctx context.Context, assetID string, from string, to string, amount uint64) error {
	return g.ledger.Transfer(ctx, ledgercommands.TransferCommand{
		Caller:  svcSubscription,
		From:    from,
		To:      to,
		AssetID: assetID,
		Amount:  amount,
	})
}

// Per-context publisher adapters translate each context's envelope to the
// shared bus envelope.

type ledgerEventPublisher struct {
	bus *messaging.Kafka
}

func (p ledgerEventPublisher) Publish(ctx context.Context, topic string, event ledgerports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		OccurredAt:       event.OccurredAt,
		SourceService:    event.SourceService,
		TraceID:          event.TraceID,
		SchemaVersion:    event.SchemaVersion,
		PartitionKeyPath: event.PartitionKeyPath,
		PartitionKey:     event.PartitionKey,
		Data:             event.Data,
	})
}

type pollEventPublisher struct {
	bus *messaging.Kafka
}

func (p pollEventPublisher) Publish(ctx context.Context, topic string, event pollports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		OccurredAt:       event.OccurredAt,
		SourceService:    event.SourceService,
		TraceID:          event.TraceID,
		SchemaVersion:    event.SchemaVersion,
		PartitionKeyPath: event.PartitionKeyPath,
		PartitionKey:     event.PartitionKey,
		Data:             event.Data,
	})
}

type subscriptionEventPublisher struct {
	bus *messaging.Kafka
}

func (p subscriptionEventPublisher) Publish(ctx context.Context, topic string, event subports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope{
		EventID:          event.EventID,
		EventType:        event.EventType,
		OccurredAt:       event.OccurredAt,
		SourceService:    event.SourceService,
		TraceID:          event.TraceID,
		SchemaVersion:    event.SchemaVersion,
		PartitionKeyPath: event.PartitionKeyPath,
		PartitionKey:     event.PartitionKey,
		Data:             event.Data,
	})
}
