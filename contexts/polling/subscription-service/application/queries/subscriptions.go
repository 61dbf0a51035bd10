package queries

import (
	"context"
	"strings"

	"pollux/contexts/polling/subscription-service/ports"
)

type SubscriptionQueries struct {
	Subscriptions ports.SubscriptionRepository
}

func (q SubscriptionQueries) HasSubscribed(ctx context.Context, user string, pollID string) (bool, error) {
	_, exists, err := q.Subscriptions.GetSubscription(ctx, strings.TrimSpace(user), strings.TrimSpace(pollID))
	if err != nil {
		return false, err
	}
	return exists, nil
}
