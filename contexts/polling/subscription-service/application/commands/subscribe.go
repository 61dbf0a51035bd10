package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "pollux/contexts/polling/subscription-service/application"
	"pollux/contexts/polling/subscription-service/domain/entities"
	domainerrors "pollux/contexts/polling/subscription-service/domain/errors"
	"pollux/contexts/polling/subscription-service/ports"
)

// SubscribeCommand claims a user's one-time token allowance for a poll.
type SubscribeCommand struct {
	Caller string
	PollID string
	User   string
}

// SubscriptionUseCase gates access to poll allowances. A user passes the
// registered-profile eligibility check exactly once per poll; the grant
// is funded from the poll float.
type SubscriptionUseCase struct {
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

func (uc SubscriptionUseCase) Subscribe(ctx context.Context, cmd SubscribeCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	user := strings.TrimSpace(cmd.User)
	pollID := strings.TrimSpace(cmd.PollID)
	logger.Info("subscription started",
		"event", "subscription_started",
		"module", "polling/subscription-service",
		"layer", "application",
		"caller", caller,
		"user", user,
		"poll_id", pollID,
	)

	if caller == "" || user == "" || pollID == "" {
		return domainerrors.ErrAccessDenied
	}
	// Users claim their own allowance; nobody subscribes on behalf of
	// someone else.
	if caller != user {
		return domainerrors.ErrAccessDenied
	}
	isUser, err := uc.Roles.IsUser(ctx, user)
	if err != nil {
		return err
	}
	if !isUser {
		return domainerrors.ErrAccessDenied
	}

	poll, err := uc.Polls.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}
	now := uc.now()
	if !now.Before(poll.EndDate) {
		return domainerrors.ErrPollClosed
	}

	if _, exists, err := uc.Subscriptions.GetSubscription(ctx, user, pollID); err != nil {
		return err
	} else if exists {
		return domainerrors.ErrAlreadySubscribed
	}

	profile, err := uc.Profiles.GetUserProfile(ctx, user)
	if err != nil {
		return err
	}
	if !uc.isEligible(profile, poll) {
		logger.Warn("subscription rejected",
			"event", "subscription_eligibility_failed",
			"module", "polling/subscription-service",
			"layer", "application",
			"user", user,
			"poll_id", pollID,
		)
		return domainerrors.ErrEligibilityFailed
	}

	if err := uc.Granter.GrantTokens(ctx, poll.AssetID, poll.FloatAddress, user, poll.MinTokensRequired); err != nil {
		return err
	}
	subscription := entities.Subscription{
		User:          user,
		PollID:        pollID,
		TokensGranted: poll.MinTokensRequired,
		SubscribedAt:  now,
	}
	if err := uc.Subscriptions.SaveSubscription(ctx, subscription); err != nil {
		return err
	}
	if err := uc.appendSubscriptionEvent(ctx, subscription); err != nil {
		return err
	}

	logger.Info("user subscribed",
		"event", "subscription_completed",
		"module", "polling/subscription-service",
		"layer", "application",
		"user", user,
		"poll_id", pollID,
		"tokens_granted", poll.MinTokensRequired,
	)
	return nil
}

func (uc SubscriptionUseCase) isEligible(profile ports.UserProfile, poll ports.PollSummary) bool {
	if profile.Age < poll.MinAge {
		return false
	}
	if strings.TrimSpace(poll.Location) == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(poll.Location), strings.TrimSpace(profile.Location))
}

func (uc SubscriptionUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc SubscriptionUseCase) appendSubscriptionEvent(ctx context.Context, subscription entities.Subscription) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID := subscription.PollID + ":" + subscription.User
	if uc.IDGen != nil {
		id, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		eventID = id
	}
	payload, err := json.Marshal(map[string]any{
		"user":           subscription.User,
		"poll_id":        subscription.PollID,
		"tokens_granted": subscription.TokensGranted,
		"subscribed_at":  subscription.SubscribedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        "poll.subscribed",
		OccurredAt:       subscription.SubscribedAt.UTC(),
		SourceService:    "subscription-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "poll_id",
		PartitionKey:     subscription.PollID,
		Data:             payload,
	})
}
