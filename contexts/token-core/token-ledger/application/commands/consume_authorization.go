package commands

import (
	"context"
	"strings"

	application "pollux/contexts/token-core/token-ledger/application"
	"pollux/contexts/token-core/token-ledger/domain/entities"
	domainerrors "pollux/contexts/token-core/token-ledger/domain/errors"
	"pollux/contexts/token-core/token-ledger/domain/services"
)

// ConsumeAuthorizationCommand redeems a signed one-time transfer ticket.
// Submitter must be the spender the ticket names; Recipient receives the
// moved balance.
type ConsumeAuthorizationCommand struct {
	Submitter     string
	Recipient     string
	Authorization entities.TransferAuthorization
}

// ConsumeAuthorization validates the ticket end to end and performs the
// equivalent of one transfer. The (holder, nonce) pair burns on success,
// so an identical replay fails with ErrAuthorizationConsumed.
func (uc LedgerUseCase) ConsumeAuthorization(ctx context.Context, cmd ConsumeAuthorizationCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	auth := cmd.Authorization
	holder := strings.TrimSpace(auth.Holder)
	spender := strings.TrimSpace(auth.Spender)
	submitter := strings.TrimSpace(cmd.Submitter)
	recipient := strings.TrimSpace(cmd.Recipient)
	assetID := strings.TrimSpace(auth.AssetID)
	logger.Info("authorization consume started",
		"event", "ledger_consume_authorization_started",
		"module", "token-core/token-ledger",
		"layer", "application",
		"holder", holder,
		"spender", spender,
		"asset_id", assetID,
		"nonce", auth.Nonce,
	)
	if holder == "" || spender == "" || submitter == "" || recipient == "" ||
		assetID == "" || auth.Amount == 0 {
		return domainerrors.ErrInvalidTransfer
	}
	if submitter != spender {
		logger.Warn("authorization submitter mismatch",
			"event", "ledger_consume_authorization_denied",
			"module", "token-core/token-ledger",
			"layer", "application",
			"submitter", submitter,
			"spender", spender,
		)
		return domainerrors.ErrAccessDenied
	}

	now := uc.now()
	if now.After(auth.Expiry.UTC()) {
		return domainerrors.ErrAuthorizationExpired
	}
	used, err := uc.Nonces.IsNonceUsed(ctx, holder, auth.Nonce)
	if err != nil {
		return err
	}
	if used {
		return domainerrors.ErrAuthorizationConsumed
	}

	message := services.CanonicalAuthorizationMessage(uc.DomainSeparator, auth)
	valid, err := uc.Verifier.Verify(ctx, holder, message, auth.Signature)
	if err != nil {
		return err
	}
	if !valid {
		logger.Warn("authorization signature rejected",
			"event", "ledger_consume_authorization_invalid_signature",
			"module", "token-core/token-ledger",
			"layer", "application",
			"holder", holder,
			"nonce", auth.Nonce,
		)
		return domainerrors.ErrInvalidSignature
	}

	// Move first: a failed transfer must leave the ticket redeemable.
	// Operations are serialized, so burning the nonce right after cannot
	// race another consume of the same ticket.
	if err := uc.Balances.Move(ctx, assetID, holder, recipient, auth.Amount); err != nil {
		return err
	}
	if err := uc.Nonces.MarkNonceUsed(ctx, holder, auth.Nonce, now); err != nil {
		return err
	}
	if err := uc.appendTransferEvent(ctx, "ledger.authorization_consumed", assetID, holder, recipient, auth.Amount, now); err != nil {
		return err
	}
	logger.Info("authorization consumed",
		"event", "ledger_authorization_consumed",
		"module", "token-core/token-ledger",
		"layer", "application",
		"holder", holder,
		"spender", spender,
		"asset_id", assetID,
		"amount", auth.Amount,
		"nonce", auth.Nonce,
	)
	return nil
}
