package crypto

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/mr-tron/base58"
)

// Signing context for ledger authorization tickets. Wallets must sign
// with the same context bytes or verification fails.
var signingContext = []byte("pollux-ledger")

// Sr25519Verifier verifies schnorrkel signatures. Holder addresses are
// either 0x-prefixed hex public keys or SS58-encoded.
type Sr25519Verifier struct{}

func (Sr25519Verifier) Verify(_ context.Context, signer string, message []byte, signature []byte) (bool, error) {
	pubKeyBytes, err := decodeAddress(signer)
	if err != nil {
		return false, err
	}
	if len(signature) != 64 {
		return false, nil
	}

	var pkRaw [32]byte
	copy(pkRaw[:], pubKeyBytes)
	var sigRaw [64]byte
	copy(sigRaw[:], signature)

	var pk schnorrkel.PublicKey
	if err := pk.Decode(pkRaw); err != nil {
		return false, fmt.Errorf("decode public key: %w", err)
	}
	var sig schnorrkel.Signature
	if err := sig.Decode(sigRaw); err != nil {
		return false, nil
	}

	transcript := schnorrkel.NewSigningContext(signingContext, message)
	valid, err := pk.Verify(&sig, transcript)
	if err != nil {
		return false, err
	}
	return valid, nil
}

// decodeAddress converts a holder address to the raw 32-byte public key.
func decodeAddress(addr string) ([]byte, error) {
	addr = strings.TrimSpace(addr)
	if strings.HasPrefix(addr, "0x") {
		raw, err := hex.DecodeString(addr[2:])
		if err != nil {
			return nil, fmt.Errorf("decode hex address: %w", err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("invalid public key length: %d", len(raw))
		}
		return raw, nil
	}

	raw, err := base58.Decode(addr)
	if err != nil || len(raw) < 35 {
		return nil, fmt.Errorf("invalid ss58 address")
	}
	// Drop the 1-byte network prefix and 2-byte checksum.
	return raw[1:33], nil
}
