package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	application "pollux/contexts/token-core/token-ledger/application"
	"pollux/contexts/token-core/token-ledger/domain/entities"
	domainerrors "pollux/contexts/token-core/token-ledger/domain/errors"
	"pollux/contexts/token-core/token-ledger/ports"
)

// CreateAssetCommand mints a poll's full supply to its float holder.
type CreateAssetCommand struct {
	Caller      string
	AssetID     string
	FloatHolder string
	TotalSupply uint64
}

// TransferCommand is the write-model input for a single balance move.
type TransferCommand struct {
	Caller  string
	From    string
	To      string
	AssetID string
	Amount  uint64
}

// BatchTransferCommand moves several amounts between the same pair
// all-or-nothing.
type BatchTransferCommand struct {
	Caller  string
	From    string
	To      string
	AssetID string
	Amounts []uint64
}

// ApprovalCommand grants or revokes a standing operator permission.
type ApprovalCommand struct {
	Owner    string
	Spender  string
	Approved bool
}

// LedgerUseCase guards every balance mutation. Supply per asset is fixed
// once CreateAsset succeeds; transfers conserve it by construction.
type LedgerUseCase struct {
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

func (uc LedgerUseCase) CreateAsset(ctx context.Context, cmd CreateAssetCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	assetID := strings.TrimSpace(cmd.AssetID)
	logger.Info("asset creation started",
		"event", "ledger_create_asset_started",
		"module", "token-core/token-ledger",
		"layer", "application",
		"caller", caller,
		"asset_id", assetID,
		"total_supply", cmd.TotalSupply,
	)
	if assetID == "" || strings.TrimSpace(cmd.FloatHolder) == "" || cmd.TotalSupply == 0 {
		return domainerrors.ErrInvalidTransfer
	}
	if err := uc.requireDistributor(ctx, caller); err != nil {
		return err
	}

	now := uc.now()
	asset := entities.Asset{
		AssetID:     assetID,
		TotalSupply: cmd.TotalSupply,
		CreatedAt:   now,
	}
	if err := uc.Balances.CreateAsset(ctx, asset, strings.TrimSpace(cmd.FloatHolder)); err != nil {
		return err
	}
	logger.Info("asset created",
		"event", "ledger_asset_created",
		"module", "token-core/token-ledger",
		"layer", "application",
		"asset_id", assetID,
		"float_holder", strings.TrimSpace(cmd.FloatHolder),
		"total_supply", cmd.TotalSupply,
	)
	return nil
}

func (uc LedgerUseCase) Transfer(ctx context.Context, cmd TransferCommand) error {
	return uc.BatchTransfer(ctx, BatchTransferCommand{
		Caller:  cmd.Caller,
		From:    cmd.From,
		To:      cmd.To,
		AssetID: cmd.AssetID,
		Amounts: []uint64{cmd.Amount},
	})
}

func (uc LedgerUseCase) BatchTransfer(ctx context.Context, cmd BatchTransferCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	from := strings.TrimSpace(cmd.From)
	to := strings.TrimSpace(cmd.To)
	assetID := strings.TrimSpace(cmd.AssetID)
	if caller == "" || from == "" || to == "" || assetID == "" || len(cmd.Amounts) == 0 {
		return domainerrors.ErrInvalidTransfer
	}
	total := uint64(0)
	for _, amount := range cmd.Amounts {
		if amount == 0 {
			return domainerrors.ErrInvalidTransfer
		}
		// A wrapping total would debit less than the batch claims.
		if amount > math.MaxUint64-total {
			return domainerrors.ErrInvalidTransfer
		}
		total += amount
	}

	allowed, err := uc.mayOperate(ctx, caller, from)
	if err != nil {
		return err
	}
	if !allowed {
		logger.Warn("transfer denied",
			"event", "ledger_transfer_denied",
			"module", "token-core/token-ledger",
			"layer", "application",
			"caller", caller,
			"from", from,
			"asset_id", assetID,
		)
		return domainerrors.ErrAccessDenied
	}

	if err := uc.Balances.MoveBatch(ctx, assetID, from, to, cmd.Amounts); err != nil {
		return err
	}
	now := uc.now()
	if err := uc.appendTransferEvent(ctx, "ledger.transferred", assetID, from, to, total, now); err != nil {
		return err
	}
	logger.Info("balance transferred",
		"event", "ledger_transferred",
		"module", "token-core/token-ledger",
		"layer", "application",
		"asset_id", assetID,
		"from", from,
		"to", to,
		"amount", total,
	)
	return nil
}

func (uc LedgerUseCase) SetApprovalForAll(ctx context.Context, cmd ApprovalCommand) error {
	owner := strings.TrimSpace(cmd.Owner)
	spender := strings.TrimSpace(cmd.Spender)
	if owner == "" || spender == "" || owner == spender {
		return domainerrors.ErrInvalidTransfer
	}
	if err := uc.Approvals.SetApproval(ctx, owner, spender, cmd.Approved); err != nil {
		return err
	}
	application.ResolveLogger(uc.Logger).Info("approval updated",
		"event", "ledger_approval_updated",
		"module", "token-core/token-ledger",
		"layer", "application",
		"owner", owner,
		"spender", spender,
		"approved", cmd.Approved,
	)
	return nil
}

// mayOperate answers whether caller can move from's balance: the holder
// itself, an approved-for-all spender, or a Distributor-role service.
func (uc LedgerUseCase) mayOperate(ctx context.Context, caller string, from string) (bool, error) {
	if caller == from {
		return true, nil
	}
	approved, err := uc.Approvals.IsApproved(ctx, from, caller)
	if err != nil {
		return false, err
	}
	if approved {
		return true, nil
	}
	if uc.Roles == nil {
		return false, nil
	}
	return uc.Roles.IsDistributor(ctx, caller)
}

func (uc LedgerUseCase) requireDistributor(ctx context.Context, caller string) error {
	if uc.Roles == nil {
		return domainerrors.ErrAccessDenied
	}
	ok, err := uc.Roles.IsDistributor(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrAccessDenied
	}
	return nil
}

func (uc LedgerUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc LedgerUseCase) appendTransferEvent(
	ctx context.Context,
	eventType string,
	assetID string,
	from string,
	to string,
	amount uint64,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID := assetID
	if uc.IDGen != nil {
		id, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		eventID = id
	}
	payload, err := json.Marshal(map[string]any{
		"asset_id":    assetID,
		"from":        from,
		"to":          to,
		"amount":      amount,
		"occurred_at": occurredAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "token-ledger",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "asset_id",
		PartitionKey:     assetID,
		Data:             payload,
	})
}
