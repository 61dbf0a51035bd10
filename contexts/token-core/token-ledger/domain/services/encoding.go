package services

import (
	"fmt"
	"strings"

	"pollux/contexts/token-core/token-ledger/domain/entities"
)

// Canonical message prefix. Versioned so a future encoding change cannot
// collide with tickets signed against this one.
const messagePrefix = "pollux-ledger/v1"

// CanonicalAuthorizationMessage renders the exact byte string a holder
// signs. The domain separator binds the ticket to one ledger deployment;
// replaying it against another deployment changes the message and fails
// verification.
func CanonicalAuthorizationMessage(domainSeparator string, auth entities.TransferAuthorization) []byte {
	return []byte(fmt.Sprintf("%s|%s|%s|%s|%s|%d|%d|%d",
		messagePrefix,
		strings.TrimSpace(domainSeparator),
		strings.TrimSpace(auth.Holder),
		strings.TrimSpace(auth.Spender),
		strings.TrimSpace(auth.AssetID),
		auth.Amount,
		auth.Nonce,
		auth.Expiry.UTC().Unix(),
	))
}
