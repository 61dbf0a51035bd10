package queries

import (
	"context"
	"strings"

	"pollux/contexts/token-core/token-ledger/domain/entities"
	domainerrors "pollux/contexts/token-core/token-ledger/domain/errors"
	"pollux/contexts/token-core/token-ledger/ports"
)

type LedgerQueries struct {
	Balances  ports.BalanceRepository
	Approvals ports.ApprovalRepository
}

func (q LedgerQueries) BalanceOf(ctx context.Context, holder string, assetID string) (uint64, error) {
	return q.Balances.BalanceOf(ctx, strings.TrimSpace(holder), strings.TrimSpace(assetID))
}

func (q LedgerQueries) IsApprovedForAll(ctx context.Context, owner string, spender string) (bool, error) {
	return q.Approvals.IsApproved(ctx, strings.TrimSpace(owner), strings.TrimSpace(spender))
}

func (q LedgerQueries) AssetSupply(ctx context.Context, assetID string) (uint64, error) {
	asset, found, err := q.Balances.GetAsset(ctx, strings.TrimSpace(assetID))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domainerrors.ErrUnknownAsset
	}
	return asset.TotalSupply, nil
}

func (q LedgerQueries) ListBalances(ctx context.Context, assetID string) ([]entities.Balance, error) {
	return q.Balances.ListBalances(ctx, strings.TrimSpace(assetID))
}
