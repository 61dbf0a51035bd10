package memory

import (
	"context"
	"crypto/sha256"
)

// StaticVerifier is the deterministic fake used in test wiring: the
// expected "signature" is sha256(signer || 0x00 || message). It rejects a
// tamper in any field of the canonical message, which is all the
// authorization logic needs exercised without real cryptography.
type StaticVerifier struct{}

func Sign(signer string, message []byte) []byte {
	h := sha256.New()
	h.Write([]byte(signer))
	h.Write([]byte{0})
	h.Write(message)
	return h.Sum(nil)
}

func (StaticVerifier) Verify(_ context.Context, signer string, message []byte, signature []byte) (bool, error) {
	expected := Sign(signer, message)
	if len(signature) != len(expected) {
		return false, nil
	}
	for i := range expected {
		if signature[i] != expected[i] {
			return false, nil
		}
	}
	return true, nil
}
