package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pollux/contexts/polling/poll-service/domain/entities"
	domainerrors "pollux/contexts/polling/poll-service/domain/errors"
	"pollux/contexts/polling/poll-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SavePoll(ctx context.Context, poll entities.Poll) error {
	row, err := toModel(poll)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "poll_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "options", "end_date", "min_age", "location", "min_tokens_required", "total_supply", "tallies"}),
	}).Create(&row).Error
	if err != nil && isUniqueViolation(err) {
		return domainerrors.ErrInvalidPollParameters
	}
	return err
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (entities.Poll, bool, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, false, nil
		}
		return entities.Poll{}, false, err
	}
	poll, err := row.toEntity()
	if err != nil {
		return entities.Poll{}, false, err
	}
	return poll, true, nil
}

func (r *Repository) ListPolls(ctx context.Context) ([]entities.Poll, error) {
	var rows []pollModel
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Poll, 0, len(rows))
	for _, row := range rows {
		poll, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, poll)
	}
	return items, nil
}

func (r *Repository) AddTallies(ctx context.Context, pollID string, indexes []int, amounts []uint64) error {
	if len(indexes) != len(amounts) {
		return domainerrors.ErrInvalidOption
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row pollModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("poll_id = ?", strings.TrimSpace(pollID)).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrPollNotFound
			}
			return err
		}

		var tallies []uint64
		if err := json.Unmarshal(row.Tallies, &tallies); err != nil {
			return err
		}
		for _, index := range indexes {
			if index < 0 || index >= len(tallies) {
				return domainerrors.ErrInvalidOption
			}
		}
		for i, index := range indexes {
			tallies[index] += amounts[i]
		}
		encoded, err := json.Marshal(tallies)
		if err != nil {
			return err
		}
		return tx.Model(&pollModel{}).
			Where("poll_id = ?", strings.TrimSpace(pollID)).
			Update("tallies", encoded).
			Error
	})
}

func (r *Repository) AppendOutbox(ctx context.Context, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:  event.EventID,
		EventType: event.EventType,
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: event.OccurredAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxRow, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]ports.OutboxRow, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxRow{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   row.Payload,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	stamp := publishedAt.UTC()
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &stamp,
		}).
		Error
}

type pollModel struct {
	PollID            string    `gorm:"column:poll_id;primaryKey"`
	AssetID           string    `gorm:"column:asset_id"`
	Title             string    `gorm:"column:title"`
	Options           []byte    `gorm:"column:options"`
	EndDate           time.Time `gorm:"column:end_date"`
	MinAge            int       `gorm:"column:min_age"`
	Location          string    `gorm:"column:location"`
	MinTokensRequired uint64    `gorm:"column:min_tokens_required"`
	TotalSupply       uint64    `gorm:"column:total_supply"`
	Tallies           []byte    `gorm:"column:tallies"`
	CreatedBy         string    `gorm:"column:created_by"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (pollModel) TableName() string { return "polls" }

func toModel(poll entities.Poll) (pollModel, error) {
	options, err := json.Marshal(poll.Options)
	if err != nil {
		return pollModel{}, err
	}
	tallies, err := json.Marshal(poll.Tallies)
	if err != nil {
		return pollModel{}, err
	}
	return pollModel{
		PollID:            strings.TrimSpace(poll.PollID),
		AssetID:           strings.TrimSpace(poll.AssetID),
		Title:             poll.Title,
		Options:           options,
		EndDate:           poll.EndDate.UTC(),
		MinAge:            poll.Eligibility.MinAge,
		Location:          poll.Eligibility.Location,
		MinTokensRequired: poll.Eligibility.MinTokensRequired,
		TotalSupply:       poll.TotalSupply,
		Tallies:           tallies,
		CreatedBy:         poll.CreatedBy,
		CreatedAt:         poll.CreatedAt.UTC(),
	}, nil
}

func (m pollModel) toEntity() (entities.Poll, error) {
	var options []string
	if err := json.Unmarshal(m.Options, &options); err != nil {
		return entities.Poll{}, err
	}
	var tallies []uint64
	if err := json.Unmarshal(m.Tallies, &tallies); err != nil {
		return entities.Poll{}, err
	}
	return entities.Poll{
		PollID:  m.PollID,
		AssetID: m.AssetID,
		Title:   m.Title,
		Options: options,
		EndDate: m.EndDate,
		Eligibility: entities.Eligibility{
			MinAge:            m.MinAge,
			Location:          m.Location,
			MinTokensRequired: m.MinTokensRequired,
		},
		TotalSupply: m.TotalSupply,
		Tallies:     tallies,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}, nil
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "poll_outbox" }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
