package entities

import "time"

// TransferAuthorization is a holder-signed one-time transfer ticket.
// The signature covers the canonical encoding of every other field plus
// the ledger domain separator, so a mismatch in any field invalidates it.
type TransferAuthorization struct {
	Holder    string
	Spender   string
	AssetID   string
	Amount    uint64
	Nonce     uint64
	Expiry    time.Time
	Signature []byte
}
