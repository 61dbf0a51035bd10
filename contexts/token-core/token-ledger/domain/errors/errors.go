package errors

import "errors"

var (
	ErrAccessDenied          = errors.New("access denied: caller may not move this balance")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrUnknownAsset          = errors.New("unknown asset")
	ErrAssetExists           = errors.New("asset already exists")
	ErrInvalidTransfer       = errors.New("invalid transfer")
	ErrInvalidSignature      = errors.New("authorization signature does not verify")
	ErrAuthorizationExpired  = errors.New("authorization is expired")
	ErrAuthorizationConsumed = errors.New("authorization nonce already consumed")
)
