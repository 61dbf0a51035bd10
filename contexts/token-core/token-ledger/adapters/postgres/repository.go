package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"pollux/contexts/token-core/token-ledger/domain/entities"
	domainerrors "pollux/contexts/token-core/token-ledger/domain/errors"
	"pollux/contexts/token-core/token-ledger/ports"

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

func (r *Repository) CreateAsset(ctx context.Context, asset entities.Asset, floatHolder string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assetRow := assetModel{
			AssetID:     strings.TrimSpace(asset.AssetID),
			TotalSupply: asset.TotalSupply,
			CreatedAt:   asset.CreatedAt.UTC(),
		}
		if err := tx.Create(&assetRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAssetExists
			}
			return err
		}
		floatRow := balanceModel{
			AssetID: assetRow.AssetID,
			Holder:  strings.TrimSpace(floatHolder),
			Amount:  asset.TotalSupply,
		}
		return tx.Create(&floatRow).Error
	})
}

func (r *Repository) GetAsset(ctx context.Context, assetID string) (entities.Asset, bool, error) {
	var row assetModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", strings.TrimSpace(assetID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Asset{}, false, nil
		}
		return entities.Asset{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) BalanceOf(ctx context.Context, holder string, assetID string) (uint64, error) {
	if err := r.requireAsset(ctx, assetID); err != nil {
		return 0, err
	}
	var row balanceModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND holder = ?", strings.TrimSpace(assetID), strings.TrimSpace(holder)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Amount, nil
}

func (r *Repository) Move(ctx context.Context, assetID string, from string, to string, amount uint64) error {
	return r.MoveBatch(ctx, assetID, from, to, []uint64{amount})
}

func (r *Repository) MoveBatch(ctx context.Context, assetID string, from string, to string, amounts []uint64) error {
	assetID = strings.TrimSpace(assetID)
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	total := uint64(0)
	for _, amount := range amounts {
		if amount > math.MaxUint64-total {
			return domainerrors.ErrInvalidTransfer
		}
		total += amount
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var asset assetModel
		if err := tx.Where("asset_id = ?", assetID).First(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrUnknownAsset
			}
			return err
		}

		var fromRow balanceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("asset_id = ? AND holder = ?", assetID, from).
			First(&fromRow).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrInsufficientBalance
			}
			return err
		}
		if fromRow.Amount < total {
			return domainerrors.ErrInsufficientBalance
		}

		if err := tx.Model(&balanceModel{}).
			Where("asset_id = ? AND holder = ?", assetID, from).
			Update("amount", fromRow.Amount-total).
			Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "asset_id"}, {Name: "holder"}},
			DoUpdates: clause.Assignments(map[string]any{"amount": gorm.Expr("ledger_balances.amount + ?", total)}),
		}).Create(&balanceModel{
			AssetID: assetID,
			Holder:  to,
			Amount:  total,
		}).Error
	})
}

func (r *Repository) ListBalances(ctx context.Context, assetID string) ([]entities.Balance, error) {
	if err := r.requireAsset(ctx, assetID); err != nil {
		return nil, err
	}
	var rows []balanceModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", strings.TrimSpace(assetID)).
		Order("holder ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Balance, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Balance{
			Holder:  row.Holder,
			AssetID: row.AssetID,
			Amount:  row.Amount,
		})
	}
	return items, nil
}

func (r *Repository) SetApproval(ctx context.Context, owner string, spender string, approved bool) error {
	row := approvalModel{
		Owner:     strings.TrimSpace(owner),
		Spender:   strings.TrimSpace(spender),
		Approved:  approved,
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.AssignmentColumns([]string{"approved", "updated_at"}),
	}).Create(&row).Error
}

func (r *Repository) IsApproved(ctx context.Context, owner string, spender string) (bool, error) {
	var row approvalModel
	err := r.db.WithContext(ctx).
		Where("owner = ? AND spender = ?", strings.TrimSpace(owner), strings.TrimSpace(spender)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return row.Approved, nil
}

func (r *Repository) IsNonceUsed(ctx context.Context, holder string, nonce uint64) (bool, error) {
	var row nonceModel
	err := r.db.WithContext(ctx).
		Where("holder = ? AND nonce = ?", strings.TrimSpace(holder), nonce).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Repository) MarkNonceUsed(ctx context.Context, holder string, nonce uint64, usedAt time.Time) error {
	row := nonceModel{
		Holder: strings.TrimSpace(holder),
		Nonce:  nonce,
		UsedAt: usedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAuthorizationConsumed
		}
		return err
	}
	return nil
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

func (r *Repository) requireAsset(ctx context.Context, assetID string) error {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&assetModel{}).
		Where("asset_id = ?", strings.TrimSpace(assetID)).
		Count(&count).
		Error
	if err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrUnknownAsset
	}
	return nil
}

type assetModel struct {
	AssetID     string    `gorm:"column:asset_id;primaryKey"`
	TotalSupply uint64    `gorm:"column:total_supply"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (assetModel) TableName() string { return "ledger_assets" }

func (m assetModel) toEntity() entities.Asset {
	return entities.Asset{
		AssetID:     m.AssetID,
		TotalSupply: m.TotalSupply,
		CreatedAt:   m.CreatedAt,
	}
}

type balanceModel struct {
	AssetID string `gorm:"column:asset_id;primaryKey"`
	Holder  string `gorm:"column:holder;primaryKey"`
	Amount  uint64 `gorm:"column:amount"`
}

func (balanceModel) TableName() string { return "ledger_balances" }

type approvalModel struct {
	Owner     string    `gorm:"column:owner;primaryKey"`
	Spender   string    `gorm:"column:spender;primaryKey"`
	Approved  bool      `gorm:"column:approved"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (approvalModel) TableName() string { return "ledger_approvals" }

type nonceModel struct {
	Holder string    `gorm:"column:holder;primaryKey"`
	Nonce  uint64    `gorm:"column:nonce;primaryKey"`
	UsedAt time.Time `gorm:"column:used_at"`
}

func (nonceModel) TableName() string { return "ledger_nonces" }

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "ledger_outbox" }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
