package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "pollux/contexts/polling/poll-service/application"
	"pollux/contexts/polling/poll-service/domain/entities"
	domainerrors "pollux/contexts/polling/poll-service/domain/errors"
	"pollux/contexts/polling/poll-service/ports"
)

// CreatePollCommand opens a new poll with its own token asset.
type CreatePollCommand struct {
	Caller            string
	Title             string
	Options           []string
	EndDate           time.Time
	MinAge            int
	Location          string
	MinTokensRequired uint64
	TotalSupply       uint64
}

// PollUseCase owns poll lifecycle and vote accounting. Token custody is
// delegated to the ledger port; tallies never mutate unless the matching
// balance move committed first.
type PollUseCase struct {
	Polls  ports.PollRepository
	Ledger ports.TokenLedger
	Roles  ports.RoleChecker
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Outbox ports.OutboxWriter
	Logger *slog.Logger
}

func (uc PollUseCase) CreatePoll(ctx context.Context, cmd CreatePollCommand) (entities.Poll, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	title := strings.TrimSpace(cmd.Title)
	logger.Info("poll creation started",
		"event", "poll_create_started",
		"module", "polling/poll-service",
		"layer", "application",
		"caller", caller,
		"title", title,
	)

	if caller == "" || title == "" || len(cmd.Options) < 2 {
		return entities.Poll{}, domainerrors.ErrInvalidPollParameters
	}
	options := make([]string, 0, len(cmd.Options))
	for _, option := range cmd.Options {
		option = strings.TrimSpace(option)
		if option == "" {
			return entities.Poll{}, domainerrors.ErrInvalidPollParameters
		}
		options = append(options, option)
	}
	if cmd.TotalSupply == 0 || cmd.MinTokensRequired == 0 || cmd.MinTokensRequired > cmd.TotalSupply {
		return entities.Poll{}, domainerrors.ErrInvalidPollParameters
	}
	if cmd.MinAge < 0 {
		return entities.Poll{}, domainerrors.ErrInvalidPollParameters
	}
	now := uc.now()
	if !cmd.EndDate.After(now) {
		return entities.Poll{}, domainerrors.ErrInvalidPollParameters
	}

	isInstance, err := uc.Roles.IsInstance(ctx, caller)
	if err != nil {
		return entities.Poll{}, err
	}
	if !isInstance {
		logger.Warn("poll creation denied",
			"event", "poll_create_denied",
			"module", "polling/poll-service",
			"layer", "application",
			"caller", caller,
		)
		return entities.Poll{}, domainerrors.ErrAccessDenied
	}

	pollID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Poll{}, err
	}
	poll := entities.Poll{
		PollID:  pollID,
		AssetID: pollID,
		Title:   title,
		Options: options,
		EndDate: cmd.EndDate.UTC(),
		Eligibility: entities.Eligibility{
			MinAge:            cmd.MinAge,
			Location:          strings.TrimSpace(cmd.Location),
			MinTokensRequired: cmd.MinTokensRequired,
		},
		TotalSupply: cmd.TotalSupply,
		Tallies:     make([]uint64, len(options)),
		CreatedBy:   caller,
		CreatedAt:   now,
	}

	if err := uc.Ledger.CreateAsset(ctx, poll.AssetID, poll.FloatAddress(), poll.TotalSupply); err != nil {
		return entities.Poll{}, err
	}
	if err := uc.Polls.SavePoll(ctx, poll); err != nil {
		return entities.Poll{}, err
	}
	if err := uc.appendPollEvent(ctx, "poll.created", poll.PollID, map[string]any{
		"poll_id":      poll.PollID,
		"asset_id":     poll.AssetID,
		"title":        poll.Title,
		"options":      poll.Options,
		"end_date":     poll.EndDate.Format(time.RFC3339),
		"total_supply": poll.TotalSupply,
		"created_by":   poll.CreatedBy,
	}, now); err != nil {
		return entities.Poll{}, err
	}

	logger.Info("poll created",
		"event", "poll_created",
		"module", "polling/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
		"option_count", len(poll.Options),
		"total_supply", poll.TotalSupply,
	)
	return poll, nil
}

func (uc PollUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc PollUseCase) appendPollEvent(
	ctx context.Context,
	eventType string,
	pollID string,
	data map[string]any,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID := pollID
	if uc.IDGen != nil {
		id, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		eventID = id
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "poll-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "poll_id",
		PartitionKey:     pollID,
		Data:             payload,
	})
}
