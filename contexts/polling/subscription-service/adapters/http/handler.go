package httpadapter

import (
	"context"
	"log/slog"

	"pollux/contexts/polling/subscription-service/application/commands"
	"pollux/contexts/polling/subscription-service/application/queries"
	httptransport "pollux/contexts/polling/subscription-service/transport/http"
)

type Handler struct {
	Subscriptions commands.SubscriptionUseCase
	Queries       queries.SubscriptionQueries
	Logger        *slog.Logger
}

func (h Handler) SubscribeHandler(ctx context.Context, caller string, pollID string, req httptransport.SubscribeRequest) error {
	user := req.User
	if user == "" {
		user = caller
	}
	return h.Subscriptions.Subscribe(ctx, commands.SubscribeCommand{
		Caller: caller,
		PollID: pollID,
		User:   user,
	})
}

func (h Handler) StatusHandler(ctx context.Context, user string, pollID string) (httptransport.SubscriptionStatusResponse, error) {
	subscribed, err := h.Queries.HasSubscribed(ctx, user, pollID)
	if err != nil {
		return httptransport.SubscriptionStatusResponse{}, err
	}
	return httptransport.SubscriptionStatusResponse{
		User:       user,
		PollID:     pollID,
		Subscribed: subscribed,
	}, nil
}
