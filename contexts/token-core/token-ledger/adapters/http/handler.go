package httpadapter

import (
	"context"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"pollux/contexts/token-core/token-ledger/application/commands"
	"pollux/contexts/token-core/token-ledger/application/queries"
	"pollux/contexts/token-core/token-ledger/domain/entities"
	domainerrors "pollux/contexts/token-core/token-ledger/domain/errors"
	httptransport "pollux/contexts/token-core/token-ledger/transport/http"
)

type Handler struct {
	Ledger  commands.LedgerUseCase
	Queries queries.LedgerQueries
	Logger  *slog.Logger
}

func (h Handler) TransferHandler(ctx context.Context, caller string, req httptransport.TransferRequest) error {
	return h.Ledger.BatchTransfer(ctx, commands.BatchTransferCommand{
		Caller:  caller,
		From:    req.From,
		To:      req.To,
		AssetID: req.AssetID,
		Amounts: req.Amounts,
	})
}

func (h Handler) SetApprovalHandler(ctx context.Context, caller string, req httptransport.ApprovalRequest) error {
	return h.Ledger.SetApprovalForAll(ctx, commands.ApprovalCommand{
		Owner:    caller,
		Spender:  req.Spender,
		Approved: req.Approved,
	})
}

func (h Handler) ConsumeAuthorizationHandler(ctx context.Context, caller string, req httptransport.ConsumeAuthorizationRequest) error {
	signature, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(req.Signature), "0x"))
	if err != nil {
		return domainerrors.ErrInvalidSignature
	}
	return h.Ledger.ConsumeAuthorization(ctx, commands.ConsumeAuthorizationCommand{
		Submitter: caller,
		Recipient: req.Recipient,
		Authorization: entities.TransferAuthorization{
			Holder:    req.Holder,
			Spender:   req.Spender,
			AssetID:   req.AssetID,
			Amount:    req.Amount,
			Nonce:     req.Nonce,
			Expiry:    time.Unix(req.ExpiryUnix, 0).UTC(),
			Signature: signature,
		},
	})
}

func (h Handler) BalanceHandler(ctx context.Context, holder string, assetID string) (httptransport.BalanceResponse, error) {
	amount, err := h.Queries.BalanceOf(ctx, holder, assetID)
	if err != nil {
		return httptransport.BalanceResponse{}, err
	}
	return httptransport.BalanceResponse{
		Holder:  holder,
		AssetID: assetID,
		Amount:  amount,
	}, nil
}

func (h Handler) AssetHandler(ctx context.Context, assetID string) (httptransport.AssetResponse, error) {
	supply, err := h.Queries.AssetSupply(ctx, assetID)
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return httptransport.AssetResponse{
		AssetID:     assetID,
		TotalSupply: supply,
	}, nil
}

func (h Handler) ApprovalHandler(ctx context.Context, owner string, spender string) (httptransport.ApprovalResponse, error) {
	approved, err := h.Queries.IsApprovedForAll(ctx, owner, spender)
	if err != nil {
		return httptransport.ApprovalResponse{}, err
	}
	return httptransport.ApprovalResponse{
		Owner:    owner,
		Spender:  spender,
		Approved: approved,
	}, nil
}
